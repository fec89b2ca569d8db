/*
# Module: types/reaction.go
Reaction record and reaction type data structures.

## Linked Modules
(None - types package has no dependencies)

## Tags
data-types, reactions

## Exports
ReactionRecord, ReactionType

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "types/reaction.go" ;
    code:description "Reaction record and reaction type data structures" ;
    code:exports :ReactionRecord, :ReactionType ;
    code:tags "data-types", "reactions" .
<!-- End LinkedDoc RDF -->
*/
package types

import "time"

// ReactionType is one of the three fixed reaction kinds.
type ReactionType string

const (
	ReactionHot   ReactionType = "hot"
	ReactionCold  ReactionType = "cold"
	ReactionSpicy ReactionType = "spicy"
)

// Valid reports whether t is one of the three fixed reaction kinds.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionHot, ReactionCold, ReactionSpicy:
		return true
	}
	return false
}

// ReactionRecord ties one anonymous identity to one reaction kind per
// submission. At most one record exists per (submission, token) pair;
// a second reaction from the same identity replaces the kind.
type ReactionRecord struct {
	SubmissionID   string       `json:"submission_id" dynamodbav:"submission_id"`
	AnonymousToken string       `json:"anonymous_token" dynamodbav:"anonymous_token"`
	ReactionType   ReactionType `json:"reaction_type" dynamodbav:"reaction_type"`
	CreatedAt      time.Time    `json:"created_at" dynamodbav:"created_at"`
}
