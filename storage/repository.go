/*
# Module: storage/repository.go
Repository interfaces for the persistence layer.

## Linked Modules
- [types/submission](../types/submission.go) - Submission data structures
- [types/reaction](../types/reaction.go) - Reaction data structures

## Tags
storage, repository, interface, persistence

## Exports
SubmissionRepository, ReactionRepository, RewardRepository, Publisher

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/repository.go" ;
    code:description "Repository interfaces for the persistence layer" ;
    code:linksTo [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ], [
        code:name "types/reaction" ;
        code:path "../types/reaction.go" ;
        code:relationship "Reaction data structures"
    ] ;
    code:exports :SubmissionRepository, :ReactionRepository, :RewardRepository, :Publisher ;
    code:tags "storage", "repository", "interface", "persistence" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"

	"ctea-newsroom/feed"
	"ctea-newsroom/types"
)

// Publisher receives change events for every submission write. The
// in-process broker satisfies this; backends with native push channels
// (DynamoDB Streams, Postgres NOTIFY) feed the broker through their own
// listeners instead.
type Publisher interface {
	Publish(ev feed.ChangeEvent)
}

// SubmissionRepository handles submission persistence.
type SubmissionRepository interface {
	Save(ctx context.Context, sub types.Submission) error
	Get(ctx context.Context, id string) (*types.Submission, error)
	ListApproved(ctx context.Context, sort types.SortMode, limit int) ([]types.RawSubmission, error)
	UpdateStatus(ctx context.Context, id string, status types.Status) error
	SetRating(ctx context.Context, id string, spiciness, chaos, relevance int, aiReaction string) error
}

// ReactionRepository handles reaction rows. Implementations enforce at
// most one row per (submission, token) pair and maintain the denormalized
// reaction counters on the submission record: Insert adds one to the new
// kind, UpdateType moves one count from the old kind to the new.
type ReactionRepository interface {
	GetByToken(ctx context.Context, submissionID, token string) (*types.ReactionRecord, error)
	Insert(ctx context.Context, rec types.ReactionRecord) error
	UpdateType(ctx context.Context, submissionID, token string, rt types.ReactionType) error
}

// RewardRepository tracks per-identity progression counters.
type RewardRepository interface {
	IncrementReactionsGiven(ctx context.Context, token string) error
	ReactionsGiven(ctx context.Context, token string) (int, error)
}
