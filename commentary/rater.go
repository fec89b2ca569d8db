// Package commentary rates tea submissions with an AI editor persona.
// Ratings feed the spiciest/chaotic/relevant feed filters and the
// ai-commented badge.
package commentary

import "context"

// Rating is the AI editor's take on one submission. Scores run 0-10.
type Rating struct {
	Spiciness int    `json:"spiciness"`
	Chaos     int    `json:"chaos"`
	Relevance int    `json:"relevance"`
	Reaction  string `json:"reaction"`
}

// Rater produces a rating for submission content.
type Rater interface {
	Rate(ctx context.Context, content string) (Rating, error)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
