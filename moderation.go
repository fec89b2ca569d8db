package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"ctea-newsroom/types"
)

// ModerationResult contains the result of content moderation
type ModerationResult struct {
	Status        types.Status // approved or rejected
	ModeratedText string       // Redacted version if needed
	Reason        string       // Explanation for rejection/redaction
	Categories    []string     // Flagged categories
}

// ContentModerator screens tea submissions before they reach the feed.
// Flagged content is rejected; content with PII is approved with the
// sensitive spans redacted.
type ContentModerator struct {
	openaiAPIKey string
	client       *http.Client
}

// NewContentModerator creates a new content moderator
func NewContentModerator(apiKey string) *ContentModerator {
	return &ContentModerator{
		openaiAPIKey: apiKey,
		client:       &http.Client{},
	}
}

// ModerateTea performs content moderation on a submission body
func (cm *ContentModerator) ModerateTea(content string) (*ModerationResult, error) {
	if strings.TrimSpace(content) == "" {
		return &ModerationResult{
			Status: types.StatusRejected,
			Reason: "Empty content",
		}, nil
	}

	// OpenAI Moderation API (check for ToS violations)
	if cm.openaiAPIKey != "" {
		moderationResp, err := cm.callModerationAPI(content)
		if err != nil {
			// If moderation API fails, fall back to pattern matching
			fmt.Printf("⚠️  OpenAI Moderation API failed: %v\n", err)
		} else if moderationResp.Flagged {
			return &ModerationResult{
				Status:     types.StatusRejected,
				Reason:     fmt.Sprintf("Content flagged for: %s", strings.Join(moderationResp.Categories, ", ")),
				Categories: moderationResp.Categories,
			}, nil
		}
	}

	// Pattern-based PII redaction
	redactedText, wasRedacted := cm.redactSensitiveContent(content)

	result := &ModerationResult{
		Status:        types.StatusApproved,
		ModeratedText: content,
	}
	if wasRedacted {
		result.ModeratedText = redactedText
		result.Reason = "Sensitive information redacted"
	}
	return result, nil
}

// OpenAI Moderation API types
type openAIModerationRequest struct {
	Input string `json:"input"`
}

type openAIModerationResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Results []struct {
		Flagged    bool `json:"flagged"`
		Categories struct {
			Hate            bool `json:"hate"`
			HateThreatening bool `json:"hate/threatening"`
			SelfHarm        bool `json:"self-harm"`
			Sexual          bool `json:"sexual"`
			SexualMinors    bool `json:"sexual/minors"`
			Violence        bool `json:"violence"`
			ViolenceGraphic bool `json:"violence/graphic"`
		} `json:"categories"`
	} `json:"results"`
}

type moderationAPIResult struct {
	Flagged    bool
	Categories []string
}

// callModerationAPI calls OpenAI Moderation API
func (cm *ContentModerator) callModerationAPI(content string) (*moderationAPIResult, error) {
	reqBody := openAIModerationRequest{Input: content}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/moderations", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cm.openaiAPIKey)

	resp, err := cm.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API returned status %d", resp.StatusCode)
	}

	var moderationResp openAIModerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&moderationResp); err != nil {
		return nil, err
	}

	if len(moderationResp.Results) == 0 {
		return &moderationAPIResult{Flagged: false}, nil
	}

	result := moderationResp.Results[0]
	categories := []string{}

	if result.Categories.Hate {
		categories = append(categories, "hate")
	}
	if result.Categories.HateThreatening {
		categories = append(categories, "hate/threatening")
	}
	if result.Categories.SelfHarm {
		categories = append(categories, "self-harm")
	}
	if result.Categories.Sexual {
		categories = append(categories, "sexual")
	}
	if result.Categories.SexualMinors {
		categories = append(categories, "sexual/minors")
	}
	if result.Categories.Violence {
		categories = append(categories, "violence")
	}
	if result.Categories.ViolenceGraphic {
		categories = append(categories, "violence/graphic")
	}

	return &moderationAPIResult{
		Flagged:    result.Flagged,
		Categories: categories,
	}, nil
}

// redactSensitiveContent uses pattern matching to redact PII. Gossip about
// public figures stays; their phone numbers don't.
func (cm *ContentModerator) redactSensitiveContent(content string) (string, bool) {
	original := content

	// Email pattern
	emailPattern := regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	content = emailPattern.ReplaceAllString(content, "[EMAIL_REDACTED]")

	// Phone number patterns (US and international)
	phonePatterns := []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`), // 123-456-7890
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.]?\d{4}`),   // (123) 456-7890
		regexp.MustCompile(`\+\d{1,3}\s*\d{7,14}`),          // +1 234567890
		regexp.MustCompile(`\b\d{3}\s\d{3}\s\d{4}\b`),       // 123 456 7890
	}
	for _, pattern := range phonePatterns {
		content = pattern.ReplaceAllString(content, "[PHONE_REDACTED]")
	}

	// SSN pattern
	ssnPattern := regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	content = ssnPattern.ReplaceAllString(content, "[SSN_REDACTED]")

	// Crypto wallet addresses (ETH-style hex, BTC-style base58)
	walletPatterns := []*regexp.Regexp{
		regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`),
		regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`),
	}
	for _, pattern := range walletPatterns {
		content = pattern.ReplaceAllString(content, "[WALLET_REDACTED]")
	}

	// Street address pattern (basic)
	addressPattern := regexp.MustCompile(`\b\d+\s+[A-Z][a-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way)\b`)
	content = addressPattern.ReplaceAllString(content, "[ADDRESS_REDACTED]")

	// IP address pattern
	ipPattern := regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	content = ipPattern.ReplaceAllString(content, "[IP_REDACTED]")

	return content, content != original
}

// ValidateTeaContent performs basic validation on a submission body
func ValidateTeaContent(content string, maxLength int) error {
	trimmed := strings.TrimSpace(content)

	if trimmed == "" {
		return fmt.Errorf("tea cannot be empty")
	}

	if len(content) > maxLength {
		return fmt.Errorf("tea exceeds maximum length of %d characters", maxLength)
	}

	// Check for suspicious patterns (spam indicators)
	if strings.Count(content, "http") > 3 {
		return fmt.Errorf("too many URLs in content")
	}

	// Check for excessive repetition
	words := strings.Fields(content)
	if len(words) > 5 {
		wordCount := make(map[string]int)
		for _, word := range words {
			wordCount[strings.ToLower(word)]++
		}
		for _, count := range wordCount {
			if count > len(words)/2 {
				return fmt.Errorf("content contains excessive repetition")
			}
		}
	}

	return nil
}

// ValidateCategory checks a submitted category, defaulting empty to gossip.
func ValidateCategory(raw string) (types.Category, error) {
	if raw == "" {
		return types.CategoryGossip, nil
	}
	switch c := types.Category(raw); c {
	case types.CategoryGossip, types.CategoryDrama, types.CategoryRumors,
		types.CategoryExposed, types.CategoryMemes:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}
