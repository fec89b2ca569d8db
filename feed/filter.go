/*
# Module: feed/filter.go
Pure filter evaluator over an ordered submission list.

## Linked Modules
- [types/submission](../types/submission.go) - Submission data structures

## Tags
feed, filtering, pure

## Exports
ApplyFilter

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/filter.go" ;
    code:description "Pure filter evaluator over an ordered submission list" ;
    code:linksTo [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ] ;
    code:exports :ApplyFilter ;
    code:tags "feed", "filtering", "pure" .
<!-- End LinkedDoc RDF -->
*/
package feed

import "ctea-newsroom/types"

// Filter keys accepted by ApplyFilter. An unknown key is the identity
// filter, not an error.
const (
	FilterAll           = "all"
	FilterHot           = "hot"
	FilterCold          = "cold"
	FilterSpicy         = "spicy"
	FilterControversial = "controversial"
	FilterTrending      = "trending"
	FilterVerified      = "verified"
	FilterAICommented   = "ai-commented"
	FilterSpiciest      = "spiciest"
	FilterChaotic       = "chaotic"
	FilterRelevant      = "relevant"
)

// aiRatingThreshold is the minimum AI rating for the spiciest / chaotic /
// relevant filters.
const aiRatingThreshold = 8

// ApplyFilter returns the subset of subs matching the filter key, in the
// same relative order. Sorting is applied upstream at fetch time; this is
// a stable filter, never a re-sort. Pure and side-effect free.
func ApplyFilter(subs []types.Submission, key string) []types.Submission {
	match := matcher(key)
	if match == nil {
		return subs
	}
	out := make([]types.Submission, 0, len(subs))
	for _, s := range subs {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

// matcher returns the predicate for a filter key, or nil for identity.
func matcher(key string) func(types.Submission) bool {
	switch key {
	case FilterHot:
		return func(s types.Submission) bool {
			r := s.Reactions
			return r.Hot > r.Cold && r.Hot > r.Spicy
		}
	case FilterCold:
		return func(s types.Submission) bool {
			r := s.Reactions
			return r.Cold > r.Hot && r.Cold > r.Spicy
		}
	case FilterSpicy:
		return func(s types.Submission) bool {
			r := s.Reactions
			return r.Spicy > r.Hot && r.Spicy > r.Cold
		}
	case FilterControversial:
		return func(s types.Submission) bool {
			r := s.Reactions
			diff := r.Hot - r.Cold
			if diff < 0 {
				diff = -diff
			}
			return r.Total() > 10 && diff < 3
		}
	case FilterTrending:
		return func(s types.Submission) bool {
			return s.Reactions.Total() > 15
		}
	case FilterVerified:
		return func(s types.Submission) bool {
			return s.HasEvidence
		}
	case FilterAICommented:
		return func(s types.Submission) bool {
			return s.AIReaction != ""
		}
	case FilterSpiciest:
		return func(s types.Submission) bool {
			return s.Spiciness >= aiRatingThreshold
		}
	case FilterChaotic:
		return func(s types.Submission) bool {
			return s.Chaos >= aiRatingThreshold
		}
	case FilterRelevant:
		return func(s types.Submission) bool {
			return s.Relevance >= aiRatingThreshold
		}
	}
	// FilterAll and every unknown key pass everything through.
	return nil
}
