/*
# Module: types/submission.go
Canonical and raw submission ("tea") data structures.

## Linked Modules
(None - types package has no dependencies)

## Tags
data-types, submissions, feed

## Exports
Submission, RawSubmission, ReactionCounts, Category, Status, SortMode

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "types/submission.go" ;
    code:description "Canonical and raw submission data structures" ;
    code:exports :Submission, :RawSubmission, :ReactionCounts, :Category, :Status, :SortMode ;
    code:tags "data-types", "submissions", "feed" .
<!-- End LinkedDoc RDF -->
*/
package types

import "time"

// MaxContentLength bounds the free-text body of a submission.
const MaxContentLength = 2000

// Category classifies a submission.
type Category string

const (
	CategoryGossip  Category = "gossip"
	CategoryDrama   Category = "drama"
	CategoryRumors  Category = "rumors"
	CategoryExposed Category = "exposed"
	CategoryMemes   Category = "memes"
)

// Status is the moderation state of a submission. Only approved
// submissions are feed-visible.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// SortMode names a fetch ordering for the feed.
type SortMode string

const (
	SortNewest        SortMode = "newest"
	SortReactions     SortMode = "reactions"
	SortBoosted       SortMode = "boosted"
	SortControversial SortMode = "controversial"
)

// ReactionCounts always carries exactly the three fixed reaction keys.
// Counts are never negative.
type ReactionCounts struct {
	Hot   int `json:"hot" dynamodbav:"hot"`
	Cold  int `json:"cold" dynamodbav:"cold"`
	Spicy int `json:"spicy" dynamodbav:"spicy"`
}

// Total returns the sum of all three reaction counters.
func (c ReactionCounts) Total() int {
	return c.Hot + c.Cold + c.Spicy
}

// Submission is a canonical unit of user-generated content.
type Submission struct {
	ID           string         `json:"id" dynamodbav:"id"`
	Content      string         `json:"content" dynamodbav:"content"`
	Category     Category       `json:"category" dynamodbav:"category"`
	EvidenceURLs []string       `json:"evidence_urls,omitempty" dynamodbav:"evidence_urls,omitempty"`
	Reactions    ReactionCounts `json:"reactions" dynamodbav:"reactions"`
	CreatedAt    time.Time      `json:"created_at" dynamodbav:"created_at"`
	Status       Status         `json:"status" dynamodbav:"status"`
	Spiciness    int            `json:"spiciness" dynamodbav:"spiciness"`
	Chaos        int            `json:"chaos" dynamodbav:"chaos"`
	Relevance    int            `json:"relevance" dynamodbav:"relevance"`
	AIReaction   string         `json:"ai_reaction,omitempty" dynamodbav:"ai_reaction"`
	AIRated      bool           `json:"ai_rated" dynamodbav:"ai_rated"`
	BoostScore   int            `json:"boost_score" dynamodbav:"boost_score"`
	Visible      bool           `json:"visible" dynamodbav:"visible"`
	Tweeted      bool           `json:"tweeted" dynamodbav:"tweeted"`
	HasEvidence  bool           `json:"has_evidence" dynamodbav:"has_evidence"`
}

// RawSubmission is the wire shape of a submission record: every field is
// optional and backends of different vintages may omit or misshape any of
// them. feed.Transform turns a RawSubmission into a canonical Submission.
type RawSubmission struct {
	ID           string         `json:"id" dynamodbav:"id"`
	Content      string         `json:"content" dynamodbav:"content"`
	Category     string         `json:"category" dynamodbav:"category"`
	EvidenceURLs []string       `json:"evidence_urls,omitempty" dynamodbav:"evidence_urls"`
	Reactions    map[string]any `json:"reactions,omitempty" dynamodbav:"reactions"`
	CreatedAt    *time.Time     `json:"created_at,omitempty" dynamodbav:"created_at"`
	Status       string         `json:"status" dynamodbav:"status"`
	Spiciness    *int           `json:"spiciness,omitempty" dynamodbav:"spiciness"`
	Chaos        *int           `json:"chaos,omitempty" dynamodbav:"chaos"`
	Relevance    *int           `json:"relevance,omitempty" dynamodbav:"relevance"`
	AIReaction   *string        `json:"ai_reaction,omitempty" dynamodbav:"ai_reaction"`
	Reaction     *string        `json:"reaction,omitempty" dynamodbav:"reaction"` // legacy alias of ai_reaction
	AIRated      *bool          `json:"ai_rated,omitempty" dynamodbav:"ai_rated"`
	BoostScore   *int           `json:"boost_score,omitempty" dynamodbav:"boost_score"`
	Visible      *bool          `json:"visible,omitempty" dynamodbav:"visible"`
	Tweeted      *bool          `json:"tweeted,omitempty" dynamodbav:"tweeted"`
}

// Raw converts a canonical Submission back into its wire shape. Used by
// storage backends when emitting change events.
func (s Submission) Raw() RawSubmission {
	created := s.CreatedAt
	spiciness, chaos, relevance := s.Spiciness, s.Chaos, s.Relevance
	boost := s.BoostScore
	aiRated, visible, tweeted := s.AIRated, s.Visible, s.Tweeted

	raw := RawSubmission{
		ID:           s.ID,
		Content:      s.Content,
		Category:     string(s.Category),
		EvidenceURLs: s.EvidenceURLs,
		Reactions: map[string]any{
			"hot":   s.Reactions.Hot,
			"cold":  s.Reactions.Cold,
			"spicy": s.Reactions.Spicy,
		},
		CreatedAt:  &created,
		Status:     string(s.Status),
		Spiciness:  &spiciness,
		Chaos:      &chaos,
		Relevance:  &relevance,
		AIRated:    &aiRated,
		BoostScore: &boost,
		Visible:    &visible,
		Tweeted:    &tweeted,
	}
	if s.AIReaction != "" {
		reaction := s.AIReaction
		raw.AIReaction = &reaction
	}
	return raw
}
