package feed

import (
	"reflect"
	"testing"

	"ctea-newsroom/types"
)

func sub(id string, hot, cold, spicy int) types.Submission {
	return types.Submission{
		ID:        id,
		Reactions: types.ReactionCounts{Hot: hot, Cold: cold, Spicy: spicy},
	}
}

func ids(subs []types.Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

func TestApplyFilterDominance(t *testing.T) {
	list := []types.Submission{
		sub("hot", 5, 2, 1),
		sub("cold", 1, 6, 2),
		sub("spicy", 0, 1, 4),
		sub("tied", 3, 3, 1), // tie: dominates nothing
	}

	cases := []struct {
		key  string
		want []string
	}{
		{FilterHot, []string{"hot"}},
		{FilterCold, []string{"cold"}},
		{FilterSpicy, []string{"spicy"}},
	}
	for _, c := range cases {
		got := ids(ApplyFilter(list, c.key))
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: got %v, want %v", c.key, got, c.want)
		}
	}
}

func TestApplyFilterControversialBoundary(t *testing.T) {
	cases := []struct {
		name string
		s    types.Submission
		in   bool
	}{
		{"total 11, diff 1", sub("a", 6, 5, 0), true},
		{"total exactly 10", sub("b", 6, 4, 0), false},
		{"diff exactly 3", sub("c", 7, 4, 0), false},
		{"one-sided", sub("d", 9, 1, 2), false},
		{"balanced and busy", sub("e", 5, 4, 3), true},
	}
	for _, c := range cases {
		got := len(ApplyFilter([]types.Submission{c.s}, FilterControversial)) == 1
		if got != c.in {
			t.Fatalf("%s: in=%v, want %v", c.name, got, c.in)
		}
	}
}

func TestApplyFilterTrending(t *testing.T) {
	// Trending requires strictly more than 15 total reactions.
	atThreshold := sub("a", 5, 5, 5)
	overThreshold := sub("b", 6, 5, 5)

	got := ids(ApplyFilter([]types.Submission{atThreshold, overThreshold}, FilterTrending))
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("got %v, want [b]", got)
	}
}

func TestApplyFilterAIRatings(t *testing.T) {
	rated := types.Submission{ID: "rated", Spiciness: 8, Chaos: 9, Relevance: 7, AIReaction: "wow"}
	unrated := types.Submission{ID: "unrated", Spiciness: 7, Chaos: 7, Relevance: 8}
	list := []types.Submission{rated, unrated}

	if got := ids(ApplyFilter(list, FilterSpiciest)); !reflect.DeepEqual(got, []string{"rated"}) {
		t.Fatalf("spiciest: got %v", got)
	}
	if got := ids(ApplyFilter(list, FilterChaotic)); !reflect.DeepEqual(got, []string{"rated"}) {
		t.Fatalf("chaotic: got %v", got)
	}
	if got := ids(ApplyFilter(list, FilterRelevant)); !reflect.DeepEqual(got, []string{"unrated"}) {
		t.Fatalf("relevant: got %v", got)
	}
	if got := ids(ApplyFilter(list, FilterAICommented)); !reflect.DeepEqual(got, []string{"rated"}) {
		t.Fatalf("ai-commented: got %v", got)
	}
}

func TestApplyFilterVerified(t *testing.T) {
	withEvidence := types.Submission{ID: "ev", HasEvidence: true}
	without := types.Submission{ID: "no"}

	got := ids(ApplyFilter([]types.Submission{without, withEvidence}, FilterVerified))
	if !reflect.DeepEqual(got, []string{"ev"}) {
		t.Fatalf("got %v, want [ev]", got)
	}
}

func TestApplyFilterIdentityKeys(t *testing.T) {
	list := []types.Submission{sub("a", 1, 0, 0), sub("b", 0, 1, 0)}

	for _, key := range []string{FilterAll, "", "definitely-not-a-filter"} {
		got := ApplyFilter(list, key)
		if !reflect.DeepEqual(ids(got), []string{"a", "b"}) {
			t.Fatalf("key %q: got %v, want identity", key, ids(got))
		}
	}
}

func TestApplyFilterPreservesOrderAndInput(t *testing.T) {
	list := []types.Submission{
		sub("first", 5, 1, 1),
		sub("mid", 1, 5, 1),
		sub("last", 6, 1, 2),
	}
	snapshot := make([]types.Submission, len(list))
	copy(snapshot, list)

	got := ids(ApplyFilter(list, FilterHot))
	if !reflect.DeepEqual(got, []string{"first", "last"}) {
		t.Fatalf("relative order not preserved: %v", got)
	}
	if !reflect.DeepEqual(list, snapshot) {
		t.Fatalf("input mutated by filter")
	}
}
