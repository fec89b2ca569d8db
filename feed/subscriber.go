/*
# Module: feed/subscriber.go
Single-owner live subscription merging pushed changes into the feed store.

## Linked Modules
- [feed/events](./events.go) - Change events and feed interface
- [feed/store](./store.go) - Feed store
- [feed/transform](./transform.go) - Record normalization

## Tags
feed, realtime, subscription

## Exports
Subscription, NewSubscription

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/subscriber.go" ;
    code:description "Single-owner live subscription merging pushed changes into the feed store" ;
    code:linksTo [
        code:name "feed/events" ;
        code:path "./events.go" ;
        code:relationship "Change events and feed interface"
    ], [
        code:name "feed/store" ;
        code:path "./store.go" ;
        code:relationship "Feed store"
    ] ;
    code:exports :Subscription, :NewSubscription ;
    code:tags "feed", "realtime", "subscription" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"fmt"
	"sync"
	"time"

	"ctea-newsroom/types"
)

// Subscription is a single-owner handle on the push channel for one feed
// view. Open establishes exactly one live subscription and errors if one is
// already open; Close must run before a new Open may succeed. This replaces
// the fragile teardown-then-recreate-by-timestamp pattern with an explicit
// owned resource.
type Subscription struct {
	feed     ChangeFeed
	store    *Store
	notifier Notifier

	mu   sync.Mutex
	id   string
	done chan struct{}
}

// NewSubscription creates a closed subscription handle.
func NewSubscription(feed ChangeFeed, store *Store, notifier Notifier) *Subscription {
	return &Subscription{feed: feed, store: store, notifier: notifier}
}

// Open establishes the live subscription under a fresh unique id and starts
// merging pushed events into the store. It errors when the handle is
// already open.
func (s *Subscription) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return fmt.Errorf("subscription %s already open", s.id)
	}

	id := fmt.Sprintf("feed-%d", time.Now().UnixNano())
	events, err := s.feed.Subscribe(id)
	if err != nil {
		return fmt.Errorf("opening subscription: %w", err)
	}

	s.id = id
	s.done = make(chan struct{})
	go s.run(events, s.done)
	return nil
}

// Close tears the subscription down. Safe to call when already closed.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == "" {
		return
	}
	s.feed.Unsubscribe(s.id)
	close(s.done)
	s.id = ""
	s.done = nil
}

func (s *Subscription) run(events <-chan ChangeEvent, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handle(ev)
		}
	}
}

// handle merges one pushed event. Records that are not approved are
// ignored, including updates that revert a visible submission; removal on
// un-approval is deliberately not performed.
func (s *Subscription) handle(ev ChangeEvent) {
	if types.Status(ev.Record.Status) != types.StatusApproved {
		return
	}
	sub := Transform(ev.Record)

	switch ev.Type {
	case EventInsert:
		// Duplicate delivery of an already-present id must not create a
		// second entry.
		if s.store.Contains(sub.ID) {
			s.store.ReplaceByID(sub)
			return
		}
		s.store.Prepend(sub)
		s.notifier.Notify("New Tea ☕", "Fresh tea just dropped in the newsroom.", SeverityDefault)
	case EventUpdate:
		s.store.ReplaceByID(sub)
		s.notifier.Notify("Tea Updated", "A submission in your feed was updated.", SeverityDefault)
	}
}
