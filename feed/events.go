/*
# Module: feed/events.go
Change-event types and the in-process fan-out broker.

## Linked Modules
- [types/submission](../types/submission.go) - Submission data structures

## Tags
feed, events, pubsub

## Exports
ChangeEvent, EventType, ChangeFeed, Broker, NewBroker

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/events.go" ;
    code:description "Change-event types and the in-process fan-out broker" ;
    code:linksTo [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ] ;
    code:exports :ChangeEvent, :EventType, :ChangeFeed, :Broker, :NewBroker ;
    code:tags "feed", "events", "pubsub" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"fmt"
	"log"
	"sync"

	"ctea-newsroom/types"
)

// EventType is the kind of change carried on the push channel.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// ChangeEvent is one server-pushed submission change. The record is raw:
// subscribers transform it before merging.
type ChangeEvent struct {
	Type   EventType           `json:"event"`
	Record types.RawSubmission `json:"record"`
}

// ChangeFeed delivers submission change events to named subscribers.
// Delivery follows source order per subscriber; duplicates are possible
// and consumers must merge idempotently.
type ChangeFeed interface {
	Subscribe(id string) (<-chan ChangeEvent, error)
	Unsubscribe(id string)
}

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// this far behind starts losing events; the next full load resynchronizes.
const subscriberBuffer = 64

// Broker is the in-process ChangeFeed: storage backends publish into it and
// any number of named subscribers receive a copy of each event.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]chan ChangeEvent
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]chan ChangeEvent)}
}

// Subscribe registers a named subscriber. The id must be unique among live
// subscribers; reusing a live id is an error so stale subscriptions cannot
// silently double-deliver.
func (b *Broker) Subscribe(id string) (<-chan ChangeEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subs[id]; exists {
		return nil, fmt.Errorf("subscriber %q already registered", id)
	}
	ch := make(chan ChangeEvent, subscriberBuffer)
	b.subs[id] = ch
	return ch, nil
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are
// a no-op.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish fans an event out to every subscriber without blocking the
// publisher. Events to a full subscriber channel are dropped.
func (b *Broker) Publish(ev ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("⚠️  Dropping %s event for slow subscriber %s", ev.Type, id)
		}
	}
}
