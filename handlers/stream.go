/*
# Module: handlers/stream.go
Server-sent events endpoint streaming submission change events.

## Linked Modules
- [feed/events](../feed/events.go) - Change events and feed interface

## Tags
http, sse, realtime, api

## Exports
HandleStream

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "handlers/stream.go" ;
    code:description "Server-sent events endpoint streaming submission change events" ;
    code:linksTo [
        code:name "feed/events" ;
        code:path "../feed/events.go" ;
        code:relationship "Change events and feed interface"
    ] ;
    code:exports :HandleStream ;
    code:tags "http", "sse", "realtime", "api" .
<!-- End LinkedDoc RDF -->
*/
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"ctea-newsroom/feed"
)

// HandleStream handles GET /api/feed/stream
// Each connection gets its own broker subscription and receives every
// submission change as an SSE message until the client disconnects.
func HandleStream(changes feed.ChangeFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		id := "sse-" + uuid.NewString()
		events, err := changes.Subscribe(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to subscribe")
			return
		}
		defer changes.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		log.Printf("📡 SSE client connected: %s", id)
		defer log.Printf("📡 SSE client disconnected: %s", id)

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
				flusher.Flush()
			}
		}
	}
}
