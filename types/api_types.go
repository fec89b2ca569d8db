/*
# Module: types/api_types.go
Request and response payloads for the HTTP API.

## Linked Modules
- [types/submission](./submission.go) - Submission data structures
- [types/reaction](./reaction.go) - Reaction data structures

## Tags
data-types, api

## Exports
SubmitTeaRequest, SubmitTeaResponse, ReactionRequest, ReactionResponse, StatusUpdateRequest, FeedResponse, ErrorResponse

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "types/api_types.go" ;
    code:description "Request and response payloads for the HTTP API" ;
    code:exports :SubmitTeaRequest, :SubmitTeaResponse, :ReactionRequest, :ReactionResponse, :StatusUpdateRequest, :FeedResponse, :ErrorResponse ;
    code:tags "data-types", "api" .
<!-- End LinkedDoc RDF -->
*/
package types

// SubmitTeaRequest is the POST /api/tea payload.
type SubmitTeaRequest struct {
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

// SubmitTeaResponse acknowledges an accepted submission.
type SubmitTeaResponse struct {
	ID             string `json:"id"`
	Status         Status `json:"status"`
	AnonymousToken string `json:"anonymous_token"`
}

// ReactionRequest is the POST /api/reactions payload.
type ReactionRequest struct {
	SubmissionID string `json:"submission_id"`
	ReactionType string `json:"reaction_type"`
}

// ReactionResponse reports the outcome of a reaction attempt along with
// the caller's lifetime reaction count.
type ReactionResponse struct {
	Success        bool   `json:"success"`
	AnonymousToken string `json:"anonymous_token"`
	ReactionsGiven int    `json:"reactions_given"`
}

// StatusUpdateRequest is the admin payload for moderation transitions.
type StatusUpdateRequest struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
}

// FeedResponse is the GET /api/feed payload.
type FeedResponse struct {
	Submissions []Submission `json:"submissions"`
	Filter      string       `json:"filter"`
	Sort        SortMode     `json:"sort"`
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
