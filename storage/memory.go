/*
# Module: storage/memory.go
In-memory repository implementations with change-event publication.

## Linked Modules
- [storage/repository](./repository.go) - Repository interfaces
- [feed/events](../feed/events.go) - Change events

## Tags
storage, memory, fallback, testing

## Exports
MemoryStore, NewMemoryStore

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/memory.go" ;
    code:description "In-memory repository implementations with change-event publication" ;
    code:linksTo [
        code:name "storage/repository" ;
        code:path "./repository.go" ;
        code:relationship "Repository interfaces"
    ], [
        code:name "feed/events" ;
        code:path "../feed/events.go" ;
        code:relationship "Change events"
    ] ;
    code:exports :MemoryStore, :NewMemoryStore ;
    code:tags "storage", "memory", "fallback", "testing" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ctea-newsroom/feed"
	"ctea-newsroom/types"
)

// MemoryStore implements all repository interfaces in process memory.
// It is the fallback storage mode when neither DynamoDB nor Postgres is
// configured, and the test double for the pipeline. Every submission write
// publishes a change event.
type MemoryStore struct {
	mu          sync.RWMutex
	submissions map[string]types.Submission
	reactions   map[string]types.ReactionRecord
	progress    map[string]int
	publisher   Publisher
}

// NewMemoryStore creates an empty store. publisher may be nil when no
// change stream is wanted.
func NewMemoryStore(publisher Publisher) *MemoryStore {
	return &MemoryStore{
		submissions: make(map[string]types.Submission),
		reactions:   make(map[string]types.ReactionRecord),
		progress:    make(map[string]int),
		publisher:   publisher,
	}
}

func reactionKey(submissionID, token string) string {
	return submissionID + "|" + token
}

func (m *MemoryStore) publish(ev feed.ChangeEvent) {
	if m.publisher != nil {
		m.publisher.Publish(ev)
	}
}

// Save inserts or replaces a submission, publishing INSERT for new ids and
// UPDATE for existing ones.
func (m *MemoryStore) Save(ctx context.Context, sub types.Submission) error {
	m.mu.Lock()
	_, existed := m.submissions[sub.ID]
	m.submissions[sub.ID] = sub
	m.mu.Unlock()

	evType := feed.EventInsert
	if existed {
		evType = feed.EventUpdate
	}
	m.publish(feed.ChangeEvent{Type: evType, Record: sub.Raw()})
	return nil
}

// Get retrieves a submission by id.
func (m *MemoryStore) Get(ctx context.Context, id string) (*types.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s not found", id)
	}
	return &sub, nil
}

// ListApproved returns approved submissions in the requested order, at
// most limit rows.
func (m *MemoryStore) ListApproved(ctx context.Context, sortMode types.SortMode, limit int) ([]types.RawSubmission, error) {
	m.mu.RLock()
	approved := make([]types.Submission, 0, len(m.submissions))
	for _, sub := range m.submissions {
		if sub.Status == types.StatusApproved {
			approved = append(approved, sub)
		}
	}
	m.mu.RUnlock()

	sortSubmissions(approved, sortMode)
	if limit > 0 && len(approved) > limit {
		approved = approved[:limit]
	}

	raws := make([]types.RawSubmission, 0, len(approved))
	for _, sub := range approved {
		raws = append(raws, sub.Raw())
	}
	return raws, nil
}

// sortSubmissions orders a page per the sort mode. "boosted" and
// "controversial" alias the default created_at-descending ordering; the
// aliasing is observed product behavior and is kept as-is.
func sortSubmissions(subs []types.Submission, mode types.SortMode) {
	switch mode {
	case types.SortReactions:
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].Reactions.Total() > subs[j].Reactions.Total()
		})
	default:
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		})
	}
}

// UpdateStatus transitions a submission's moderation state and publishes
// an UPDATE event.
func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	m.mu.Lock()
	sub, ok := m.submissions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("submission %s not found", id)
	}
	sub.Status = status
	m.submissions[id] = sub
	m.mu.Unlock()

	m.publish(feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	return nil
}

// SetRating records AI commentary ratings and publishes an UPDATE event.
func (m *MemoryStore) SetRating(ctx context.Context, id string, spiciness, chaos, relevance int, aiReaction string) error {
	m.mu.Lock()
	sub, ok := m.submissions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("submission %s not found", id)
	}
	sub.Spiciness = spiciness
	sub.Chaos = chaos
	sub.Relevance = relevance
	sub.AIReaction = aiReaction
	sub.AIRated = true
	m.submissions[id] = sub
	m.mu.Unlock()

	m.publish(feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	return nil
}

// GetByToken returns the reaction row for a (submission, token) pair, or
// nil when none exists.
func (m *MemoryStore) GetByToken(ctx context.Context, submissionID, token string) (*types.ReactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.reactions[reactionKey(submissionID, token)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Insert stores a new reaction row and adds one to the matching submission
// counter.
func (m *MemoryStore) Insert(ctx context.Context, rec types.ReactionRecord) error {
	key := reactionKey(rec.SubmissionID, rec.AnonymousToken)

	m.mu.Lock()
	if _, exists := m.reactions[key]; exists {
		m.mu.Unlock()
		return fmt.Errorf("reaction already exists for submission %s", rec.SubmissionID)
	}
	m.reactions[key] = rec
	sub, ok := m.submissions[rec.SubmissionID]
	if ok {
		adjustCount(&sub.Reactions, rec.ReactionType, 1)
		m.submissions[rec.SubmissionID] = sub
	}
	m.mu.Unlock()

	if ok {
		m.publish(feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	}
	return nil
}

// UpdateType changes the kind on an existing reaction row, moving one
// count from the old kind to the new. Updating to the same kind is a
// no-op write.
func (m *MemoryStore) UpdateType(ctx context.Context, submissionID, token string, rt types.ReactionType) error {
	key := reactionKey(submissionID, token)

	m.mu.Lock()
	rec, exists := m.reactions[key]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("no reaction to update for submission %s", submissionID)
	}
	old := rec.ReactionType
	rec.ReactionType = rt
	m.reactions[key] = rec

	var sub types.Submission
	changed := false
	if old != rt {
		var ok bool
		sub, ok = m.submissions[submissionID]
		if ok {
			adjustCount(&sub.Reactions, old, -1)
			adjustCount(&sub.Reactions, rt, 1)
			m.submissions[submissionID] = sub
			changed = true
		}
	}
	m.mu.Unlock()

	if changed {
		m.publish(feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	}
	return nil
}

func adjustCount(c *types.ReactionCounts, rt types.ReactionType, delta int) {
	switch rt {
	case types.ReactionHot:
		c.Hot += delta
		if c.Hot < 0 {
			c.Hot = 0
		}
	case types.ReactionCold:
		c.Cold += delta
		if c.Cold < 0 {
			c.Cold = 0
		}
	case types.ReactionSpicy:
		c.Spicy += delta
		if c.Spicy < 0 {
			c.Spicy = 0
		}
	}
}

// IncrementReactionsGiven adds one to the identity's progression counter.
func (m *MemoryStore) IncrementReactionsGiven(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[token]++
	return nil
}

// ReactionsGiven returns the identity's progression counter.
func (m *MemoryStore) ReactionsGiven(ctx context.Context, token string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress[token], nil
}
