package feed

import (
	"reflect"
	"testing"

	"ctea-newsroom/types"
)

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, Severity) {}

// recordingNotifier captures notification titles in order.
type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(title, _ string, _ Severity) {
	n.titles = append(n.titles, title)
}

func approvedRaw(id string) types.RawSubmission {
	return types.RawSubmission{ID: id, Status: string(types.StatusApproved)}
}

func TestSubscriptionSingleOwner(t *testing.T) {
	s := NewSubscription(NewBroker(), NewStore(), noopNotifier{})

	if err := s.Open(); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := s.Open(); err == nil {
		t.Fatalf("second open should fail while subscription is live")
	}

	s.Close()
	if err := s.Open(); err != nil {
		t.Fatalf("reopen after close failed: %v", err)
	}
	s.Close()
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	s := NewSubscription(NewBroker(), NewStore(), noopNotifier{})
	s.Close()

	if err := s.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	s.Close()
	s.Close()
}

func TestHandleInsertPrepends(t *testing.T) {
	store := NewStore()
	store.Replace([]types.Submission{{ID: "old"}})
	notifier := &recordingNotifier{}
	s := NewSubscription(NewBroker(), store, notifier)

	s.handle(ChangeEvent{Type: EventInsert, Record: approvedRaw("new")})

	if got := ids(store.Snapshot()); !reflect.DeepEqual(got, []string{"new", "old"}) {
		t.Fatalf("got %v, want [new old]", got)
	}
	if !reflect.DeepEqual(notifier.titles, []string{"New Tea ☕"}) {
		t.Fatalf("unexpected notifications: %v", notifier.titles)
	}
}

func TestHandleDuplicateInsertDoesNotDuplicate(t *testing.T) {
	store := NewStore()
	s := NewSubscription(NewBroker(), store, &recordingNotifier{})

	s.handle(ChangeEvent{Type: EventInsert, Record: approvedRaw("a")})
	s.handle(ChangeEvent{Type: EventInsert, Record: approvedRaw("a")})

	if store.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", store.Len())
	}
}

func TestHandleUpdateReplacesInPlace(t *testing.T) {
	store := NewStore()
	store.Replace([]types.Submission{
		{ID: "a", Status: types.StatusApproved},
		{ID: "b", Status: types.StatusApproved},
	})
	s := NewSubscription(NewBroker(), store, noopNotifier{})

	raw := approvedRaw("b")
	raw.Content = "now with receipts"
	s.handle(ChangeEvent{Type: EventUpdate, Record: raw})

	snap := store.Snapshot()
	if !reflect.DeepEqual(ids(snap), []string{"a", "b"}) {
		t.Fatalf("order changed: %v", ids(snap))
	}
	if snap[1].Content != "now with receipts" {
		t.Fatalf("update not applied: %+v", snap[1])
	}
}

func TestHandleUpdateForUnseenRecordBecomesVisible(t *testing.T) {
	store := NewStore()
	s := NewSubscription(NewBroker(), store, noopNotifier{})

	// Straight from pending to approved: the feed never saw the INSERT.
	s.handle(ChangeEvent{Type: EventUpdate, Record: approvedRaw("late")})

	if !store.Contains("late") {
		t.Fatalf("approved update for unseen record should appear in feed")
	}
}

func TestHandleIgnoresNonApproved(t *testing.T) {
	store := NewStore()
	notifier := &recordingNotifier{}
	s := NewSubscription(NewBroker(), store, notifier)

	for _, status := range []string{string(types.StatusPending), string(types.StatusRejected), ""} {
		s.handle(ChangeEvent{Type: EventInsert, Record: types.RawSubmission{ID: "x", Status: status}})
		s.handle(ChangeEvent{Type: EventUpdate, Record: types.RawSubmission{ID: "x", Status: status}})
	}

	if store.Len() != 0 {
		t.Fatalf("non-approved records must not enter the feed, got %d", store.Len())
	}
	if len(notifier.titles) != 0 {
		t.Fatalf("non-approved records must not notify, got %v", notifier.titles)
	}
}

func TestBrokerDuplicateSubscriberID(t *testing.T) {
	b := NewBroker()
	if _, err := b.Subscribe("same"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	if _, err := b.Subscribe("same"); err == nil {
		t.Fatalf("duplicate id should error")
	}

	b.Unsubscribe("same")
	if _, err := b.Subscribe("same"); err != nil {
		t.Fatalf("resubscribe after unsubscribe failed: %v", err)
	}
}

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()
	ch1, _ := b.Subscribe("one")
	ch2, _ := b.Subscribe("two")

	b.Publish(ChangeEvent{Type: EventInsert, Record: approvedRaw("a")})

	for name, ch := range map[string]<-chan ChangeEvent{"one": ch1, "two": ch2} {
		select {
		case ev := <-ch:
			if ev.Record.ID != "a" {
				t.Fatalf("%s: got record %q", name, ev.Record.ID)
			}
		default:
			t.Fatalf("%s: no event delivered", name)
		}
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, _ := b.Subscribe("gone")
	b.Unsubscribe("gone")

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after unsubscribe")
	}
}
