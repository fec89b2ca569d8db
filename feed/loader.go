/*
# Module: feed/loader.go
Initial loader populating the feed store from a bounded fetch.

## Linked Modules
- [feed/store](./store.go) - Feed store
- [feed/transform](./transform.go) - Record normalization
- [types/submission](../types/submission.go) - Submission data structures

## Tags
feed, loading

## Exports
Loader, NewLoader, SubmissionSource, DefaultPageSize

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/loader.go" ;
    code:description "Initial loader populating the feed store from a bounded fetch" ;
    code:linksTo [
        code:name "feed/store" ;
        code:path "./store.go" ;
        code:relationship "Feed store"
    ], [
        code:name "feed/transform" ;
        code:path "./transform.go" ;
        code:relationship "Record normalization"
    ] ;
    code:exports :Loader, :NewLoader, :SubmissionSource, :DefaultPageSize ;
    code:tags "feed", "loading" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"context"
	"fmt"

	"ctea-newsroom/types"
)

// DefaultPageSize bounds the initial fetch.
const DefaultPageSize = 30

// SubmissionSource is the bounded read the loader needs from a backend:
// approved submissions only, ordered per the sort mode, at most limit rows.
// The "boosted" and "controversial" sort modes currently alias the default
// created_at-descending ordering.
type SubmissionSource interface {
	ListApproved(ctx context.Context, sort types.SortMode, limit int) ([]types.RawSubmission, error)
}

// Loader performs the one-shot initial fetch and replaces the feed store's
// contents with the result.
type Loader struct {
	source   SubmissionSource
	store    *Store
	notifier Notifier
}

// NewLoader creates a loader over the given source and store.
func NewLoader(source SubmissionSource, store *Store, notifier Notifier) *Loader {
	return &Loader{source: source, store: store, notifier: notifier}
}

// Load fetches up to DefaultPageSize approved submissions in the requested
// sort order, transforms each, and replaces the store's contents. On fetch
// failure the store is left in a safe empty state, a user-visible notice is
// emitted, and the wrapped error is returned; Load never panics.
func (l *Loader) Load(ctx context.Context, sort types.SortMode) error {
	raws, err := l.source.ListApproved(ctx, sort, DefaultPageSize)
	if err != nil {
		l.store.Reset()
		l.notifier.Notify("Failed to Load Feed", "Could not fetch the latest tea. Please try again.", SeverityDestructive)
		return fmt.Errorf("loading feed: %w", err)
	}

	subs := make([]types.Submission, 0, len(raws))
	for _, raw := range raws {
		subs = append(subs, Transform(raw))
	}
	l.store.Replace(subs)
	return nil
}
