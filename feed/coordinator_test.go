package feed

import (
	"context"
	"fmt"
	"testing"

	"ctea-newsroom/types"
)

type fakeReactionStore struct {
	rows      map[string]types.ReactionRecord // submissionID|token
	failGet   bool
	failWrite bool
}

func newFakeReactionStore() *fakeReactionStore {
	return &fakeReactionStore{rows: make(map[string]types.ReactionRecord)}
}

func (f *fakeReactionStore) key(id, token string) string { return id + "|" + token }

func (f *fakeReactionStore) GetByToken(_ context.Context, id, token string) (*types.ReactionRecord, error) {
	if f.failGet {
		return nil, fmt.Errorf("backend down")
	}
	rec, ok := f.rows[f.key(id, token)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeReactionStore) Insert(_ context.Context, rec types.ReactionRecord) error {
	if f.failWrite {
		return fmt.Errorf("backend down")
	}
	f.rows[f.key(rec.SubmissionID, rec.AnonymousToken)] = rec
	return nil
}

func (f *fakeReactionStore) UpdateType(_ context.Context, id, token string, rt types.ReactionType) error {
	if f.failWrite {
		return fmt.Errorf("backend down")
	}
	rec := f.rows[f.key(id, token)]
	rec.ReactionType = rt
	f.rows[f.key(id, token)] = rec
	return nil
}

type fakeRewards struct {
	counts map[string]int
}

func (f *fakeRewards) IncrementReactionsGiven(_ context.Context, token string) error {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[token]++
	return nil
}

type fixedIdentity string

func (f fixedIdentity) GetOrCreate() (string, error) {
	if f == "" {
		return "", fmt.Errorf("no identity")
	}
	return string(f), nil
}

func newTestCoordinator(reactions *fakeReactionStore, rewards *fakeRewards, store *Store) *ReactionCoordinator {
	return NewReactionCoordinator(reactions, fixedIdentity("anon_test"), rewards, store, noopNotifier{})
}

func TestSubmitReactionNewInsert(t *testing.T) {
	reactions := newFakeReactionStore()
	rewards := &fakeRewards{}
	store := NewStore()
	store.Replace([]types.Submission{{ID: "tea-1"}})

	ok := newTestCoordinator(reactions, rewards, store).SubmitReaction(context.Background(), "tea-1", types.ReactionHot)
	if !ok {
		t.Fatalf("expected success")
	}

	if len(reactions.rows) != 1 {
		t.Fatalf("expected 1 reaction row, got %d", len(reactions.rows))
	}
	if rewards.counts["anon_test"] != 1 {
		t.Fatalf("new reaction should reward once, got %d", rewards.counts["anon_test"])
	}
	if got := store.Snapshot()[0].Reactions.Hot; got != 1 {
		t.Fatalf("local hot count not bumped: %d", got)
	}
}

func TestSubmitReactionChangeKind(t *testing.T) {
	reactions := newFakeReactionStore()
	rewards := &fakeRewards{}
	store := NewStore()
	store.Replace([]types.Submission{{ID: "tea-1"}})
	c := newTestCoordinator(reactions, rewards, store)

	c.SubmitReaction(context.Background(), "tea-1", types.ReactionHot)
	ok := c.SubmitReaction(context.Background(), "tea-1", types.ReactionCold)
	if !ok {
		t.Fatalf("expected success")
	}

	if len(reactions.rows) != 1 {
		t.Fatalf("kind change must not create a second row, got %d", len(reactions.rows))
	}
	if got := reactions.rows["tea-1|anon_test"].ReactionType; got != types.ReactionCold {
		t.Fatalf("kind not updated: %s", got)
	}
	if rewards.counts["anon_test"] != 1 {
		t.Fatalf("kind change must not reward again, got %d", rewards.counts["anon_test"])
	}
}

func TestSubmitReactionInvalidKind(t *testing.T) {
	reactions := newFakeReactionStore()
	store := NewStore()
	store.Replace([]types.Submission{{ID: "tea-1"}})

	ok := newTestCoordinator(reactions, &fakeRewards{}, store).SubmitReaction(context.Background(), "tea-1", "lukewarm")
	if ok {
		t.Fatalf("invalid reaction type should fail")
	}
	if len(reactions.rows) != 0 {
		t.Fatalf("nothing should be written on invalid type")
	}
}

func TestSubmitReactionFailureMutatesNothing(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*fakeReactionStore)
	}{
		{"lookup fails", func(f *fakeReactionStore) { f.failGet = true }},
		{"write fails", func(f *fakeReactionStore) { f.failWrite = true }},
	}

	for _, c := range cases {
		reactions := newFakeReactionStore()
		c.setup(reactions)
		rewards := &fakeRewards{}
		store := NewStore()
		store.Replace([]types.Submission{{ID: "tea-1"}})

		ok := newTestCoordinator(reactions, rewards, store).SubmitReaction(context.Background(), "tea-1", types.ReactionHot)
		if ok {
			t.Fatalf("%s: expected failure", c.name)
		}
		if store.Snapshot()[0].Reactions.Total() != 0 {
			t.Fatalf("%s: local counts must not change on failure", c.name)
		}
		if len(rewards.counts) != 0 {
			t.Fatalf("%s: no reward on failure", c.name)
		}
	}
}

func TestSubmitReactionIdentityFailure(t *testing.T) {
	reactions := newFakeReactionStore()
	store := NewStore()
	c := NewReactionCoordinator(reactions, fixedIdentity(""), &fakeRewards{}, store, noopNotifier{})

	if c.SubmitReaction(context.Background(), "tea-1", types.ReactionHot) {
		t.Fatalf("identity failure should fail the reaction")
	}
}
