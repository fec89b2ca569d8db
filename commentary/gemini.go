package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const raterPrompt = `You are the resident AI gossip editor of a crypto
rumor board. Rate the following submission and react to it in one short,
punchy sentence with plenty of attitude.

Submission:
%s

Output strict JSON only, no markdown fences:
{"spiciness": 0-10, "chaos": 0-10, "relevance": 0-10, "reaction": "one sentence"}
spiciness = how juicy the gossip is, chaos = how unhinged it is,
relevance = how much the crypto crowd cares right now.`

// GeminiRater rates submissions through the Gemini API.
type GeminiRater struct {
	client *genai.Client
	model  string
}

// NewGeminiRater creates a rater. Reads GEMINI_API_KEY when apiKey is empty.
func NewGeminiRater(ctx context.Context, apiKey string) (*GeminiRater, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiRater{
		client: client,
		model:  "gemini-2.5-flash-lite",
	}, nil
}

var _ Rater = (*GeminiRater)(nil)

// Rate implements Rater.
func (r *GeminiRater) Rate(ctx context.Context, content string) (Rating, error) {
	prompt := fmt.Sprintf(raterPrompt, content)

	result, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		return Rating{}, fmt.Errorf("gemini generate failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return Rating{}, fmt.Errorf("gemini returned no candidates")
	}

	text := cleanJSON(result.Candidates[0].Content.Parts[0].Text)

	var rating Rating
	if err := json.Unmarshal([]byte(text), &rating); err != nil {
		return Rating{}, fmt.Errorf("failed to parse rating: %w", err)
	}

	rating.Spiciness = clampScore(rating.Spiciness)
	rating.Chaos = clampScore(rating.Chaos)
	rating.Relevance = clampScore(rating.Relevance)
	rating.Reaction = strings.TrimSpace(rating.Reaction)
	return rating, nil
}

func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
