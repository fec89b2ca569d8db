/*
# Module: feed/store.go
In-memory ordered submission collection backing the live feed view.

## Linked Modules
- [types/submission](../types/submission.go) - Submission data structures

## Tags
feed, state, store

## Exports
Store, NewStore

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/store.go" ;
    code:description "In-memory ordered submission collection backing the live feed view" ;
    code:linksTo [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ] ;
    code:exports :Store, :NewStore ;
    code:tags "feed", "state", "store" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"sync"

	"ctea-newsroom/types"
)

// Store owns the ordered in-memory submission list for the lifetime of a
// feed view. Mutations never panic for missing ids; they degrade to no-ops
// because callers apply them optimistically.
type Store struct {
	mu    sync.RWMutex
	items []types.Submission
}

// NewStore creates an empty feed store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current ordered list.
func (s *Store) Snapshot() []types.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Submission, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of submissions currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Contains reports whether a submission with the given id is present.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.items {
		if s.items[i].ID == id {
			return true
		}
	}
	return false
}

// Prepend inserts a submission at the head of the list. It performs no
// de-duplication; callers check existence first.
func (s *Store) Prepend(sub types.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]types.Submission{sub}, s.items...)
}

// ReplaceByID replaces an existing entry in place, preserving its position.
// When the id is not present the submission is prepended instead: an update
// for a record not yet loaded (straight from pending to approved) must
// still become visible.
func (s *Store) ReplaceByID(sub types.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == sub.ID {
			s.items[i] = sub
			return
		}
	}
	s.items = append([]types.Submission{sub}, s.items...)
}

// BumpReaction increments the named reaction counter by one for the
// matching submission. No-op when the submission is not present locally.
func (s *Store) BumpReaction(id string, rt types.ReactionType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		switch rt {
		case types.ReactionHot:
			s.items[i].Reactions.Hot++
		case types.ReactionCold:
			s.items[i].Reactions.Cold++
		case types.ReactionSpicy:
			s.items[i].Reactions.Spicy++
		}
		return
	}
}

// Replace swaps the entire contents for a freshly loaded page.
func (s *Store) Replace(subs []types.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]types.Submission, len(subs))
	copy(s.items, subs)
}

// Reset discards all contents, leaving the store in a safe empty state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
