/*
# Module: storage/listen.go
Postgres LISTEN loop that relays pg_notify change events into the broker.

## Linked Modules
- [storage/postgres](./postgres.go) - NOTIFY channel and payload shape
- [feed/events](../feed/events.go) - Change events and broker

## Tags
storage, postgres, listen, change-stream

## Exports
PostgresListener, NewPostgresListener

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/listen.go" ;
    code:description "Postgres LISTEN loop that relays pg_notify change events into the broker" ;
    code:linksTo [
        code:name "storage/postgres" ;
        code:path "./postgres.go" ;
        code:relationship "NOTIFY channel and payload shape"
    ], [
        code:name "feed/events" ;
        code:path "../feed/events.go" ;
        code:relationship "Change events and broker"
    ] ;
    code:exports :PostgresListener, :NewPostgresListener ;
    code:tags "storage", "postgres", "listen", "change-stream" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ctea-newsroom/feed"
)

// PostgresListener holds a dedicated connection on LISTEN and republishes
// every notification as a change event. It reconnects with a short backoff
// when the connection drops.
type PostgresListener struct {
	pool      *pgxpool.Pool
	publisher Publisher
}

// NewPostgresListener creates a listener over the given pool.
func NewPostgresListener(pool *pgxpool.Pool, publisher Publisher) *PostgresListener {
	return &PostgresListener{pool: pool, publisher: publisher}
}

// Run blocks until ctx is cancelled, relaying notifications as they
// arrive. Intended to run in its own goroutine.
func (l *PostgresListener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️  Postgres listener dropped, reconnecting: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (l *PostgresListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	log.Printf("👂 Listening for submission changes on %s", NotifyChannel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev feed.ChangeEvent
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			log.Printf("⚠️  Ignoring malformed change payload: %v", err)
			continue
		}
		l.publisher.Publish(ev)
	}
}
