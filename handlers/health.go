/*
# Module: handlers/health.go
Service health endpoint handler.

## Linked Modules
(None - simple health check with no dependencies)

## Tags
http, health, api

## Exports
HandleHealth

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "handlers/health.go" ;
    code:description "Service health endpoint handler" ;
    code:exports :HandleHealth ;
    code:tags "http", "health", "api" .
<!-- End LinkedDoc RDF -->
*/
package handlers

import (
	"encoding/json"
	"net/http"
)

// HandleHealth handles GET /api/health
// Returns the service name and a simple health status
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "ctea-newsroom",
	})
}
