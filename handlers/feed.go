/*
# Module: handlers/feed.go
Feed read endpoint: filtered, sorted page of approved submissions.

## Linked Modules
- [feed/store](../feed/store.go) - Live feed store
- [feed/filter](../feed/filter.go) - Pure filter evaluator
- [types/api_types](../types/api_types.go) - Response payloads

## Tags
http, feed, api

## Exports
HandleFeed

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "handlers/feed.go" ;
    code:description "Feed read endpoint: filtered, sorted page of approved submissions" ;
    code:linksTo [
        code:name "feed/store" ;
        code:path "../feed/store.go" ;
        code:relationship "Live feed store"
    ], [
        code:name "feed/filter" ;
        code:path "../feed/filter.go" ;
        code:relationship "Pure filter evaluator"
    ], [
        code:name "types/api_types" ;
        code:path "../types/api_types.go" ;
        code:relationship "Response payloads"
    ] ;
    code:exports :HandleFeed ;
    code:tags "http", "feed", "api" .
<!-- End LinkedDoc RDF -->
*/
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ctea-newsroom/feed"
	"ctea-newsroom/types"
)

// HandleFeed handles GET /api/feed?filter=&sort=
// The default sort serves the live in-memory feed; any other sort mode is
// a fresh bounded fetch from the backend so the ordering is authoritative.
func HandleFeed(store *feed.Store, source feed.SubmissionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		filterKey := r.URL.Query().Get("filter")
		if filterKey == "" {
			filterKey = feed.FilterAll
		}
		sortMode := types.SortMode(r.URL.Query().Get("sort"))
		if sortMode == "" {
			sortMode = types.SortNewest
		}

		var subs []types.Submission
		if sortMode == types.SortNewest {
			subs = store.Snapshot()
		} else {
			raws, err := source.ListApproved(r.Context(), sortMode, feed.DefaultPageSize)
			if err != nil {
				log.Printf("❌ Failed to fetch feed: %v", err)
				writeError(w, http.StatusInternalServerError, "failed to fetch feed")
				return
			}
			subs = make([]types.Submission, 0, len(raws))
			for _, raw := range raws {
				subs = append(subs, feed.Transform(raw))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.FeedResponse{
			Submissions: feed.ApplyFilter(subs, filterKey),
			Filter:      filterKey,
			Sort:        sortMode,
		})
	}
}

// writeError sends the uniform JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}
