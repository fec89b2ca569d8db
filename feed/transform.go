/*
# Module: feed/transform.go
Total transformer from raw backend records to canonical submissions.

## Linked Modules
- [types/submission](../types/submission.go) - Submission data structures

## Tags
feed, normalization, pure

## Exports
Transform

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/transform.go" ;
    code:description "Total transformer from raw backend records to canonical submissions" ;
    code:linksTo [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ] ;
    code:exports :Transform ;
    code:tags "feed", "normalization", "pure" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"ctea-newsroom/types"
)

// Transform normalizes a raw record of unspecified completeness into a
// canonical Submission. It is pure and total: missing or misshaped fields
// degrade to safe defaults, never to an error.
func Transform(raw types.RawSubmission) types.Submission {
	sub := types.Submission{
		ID:           raw.ID,
		Content:      raw.Content,
		Category:     types.Category(raw.Category),
		EvidenceURLs: raw.EvidenceURLs,
		Reactions:    normalizeReactions(raw.Reactions),
		Status:       types.Status(raw.Status),
		Spiciness:    intOrZero(raw.Spiciness),
		Chaos:        intOrZero(raw.Chaos),
		Relevance:    intOrZero(raw.Relevance),
		AIRated:      boolOrFalse(raw.AIRated),
		BoostScore:   intOrZero(raw.BoostScore),
		Visible:      boolOrFalse(raw.Visible),
		Tweeted:      boolOrFalse(raw.Tweeted),
		HasEvidence:  len(raw.EvidenceURLs) > 0,
	}
	if raw.CreatedAt != nil {
		sub.CreatedAt = *raw.CreatedAt
	}
	// Newer records carry ai_reaction; legacy ones used reaction.
	switch {
	case raw.AIReaction != nil && *raw.AIReaction != "":
		sub.AIReaction = *raw.AIReaction
	case raw.Reaction != nil:
		sub.AIReaction = *raw.Reaction
	}
	if sub.BoostScore < 0 {
		sub.BoostScore = 0
	}
	return sub
}

// normalizeReactions extracts the three fixed counters from a keyed
// structure, defaulting every absent or malformed entry to zero.
func normalizeReactions(m map[string]any) types.ReactionCounts {
	if m == nil {
		return types.ReactionCounts{}
	}
	return types.ReactionCounts{
		Hot:   countValue(m["hot"]),
		Cold:  countValue(m["cold"]),
		Spicy: countValue(m["spicy"]),
	}
}

// countValue coerces a loosely-typed count to a non-negative int.
// JSON decoding yields float64, DynamoDB unmarshalling may yield float64
// or integer kinds, and in-process events carry plain ints.
func countValue(v any) int {
	var n int
	switch c := v.(type) {
	case int:
		n = c
	case int32:
		n = int(c)
	case int64:
		n = int(c)
	case uint:
		n = int(c)
	case float32:
		n = int(c)
	case float64:
		n = int(c)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func boolOrFalse(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
