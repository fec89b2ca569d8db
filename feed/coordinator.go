/*
# Module: feed/coordinator.go
Reaction coordinator: anonymous-identity resolution and reaction upsert.

## Linked Modules
- [feed/store](./store.go) - Feed store
- [feed/notify](./notify.go) - Notifications
- [types/reaction](../types/reaction.go) - Reaction data structures

## Tags
feed, reactions, upsert

## Exports
ReactionCoordinator, NewReactionCoordinator, IdentityProvider, ReactionStore, RewardTracker

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/coordinator.go" ;
    code:description "Reaction coordinator: anonymous-identity resolution and reaction upsert" ;
    code:linksTo [
        code:name "feed/store" ;
        code:path "./store.go" ;
        code:relationship "Feed store"
    ], [
        code:name "types/reaction" ;
        code:path "../types/reaction.go" ;
        code:relationship "Reaction data structures"
    ] ;
    code:exports :ReactionCoordinator, :NewReactionCoordinator, :IdentityProvider, :ReactionStore, :RewardTracker ;
    code:tags "feed", "reactions", "upsert" .
<!-- End LinkedDoc RDF -->
*/
package feed

import (
	"context"
	"log"
	"time"

	"ctea-newsroom/types"
)

// IdentityProvider resolves the caller's anonymous token, creating and
// persisting one on first use.
type IdentityProvider interface {
	GetOrCreate() (string, error)
}

// ReactionStore is the backend surface the coordinator needs: look up the
// existing row for a (submission, token) pair, insert a new row, or change
// the kind on an existing row. Implementations enforce at most one row per
// pair and keep the denormalized submission counters consistent.
type ReactionStore interface {
	GetByToken(ctx context.Context, submissionID, token string) (*types.ReactionRecord, error)
	Insert(ctx context.Context, rec types.ReactionRecord) error
	UpdateType(ctx context.Context, submissionID, token string, rt types.ReactionType) error
}

// RewardTracker records user progression ("reactions given").
type RewardTracker interface {
	IncrementReactionsGiven(ctx context.Context, token string) error
}

// ReactionCoordinator performs the linear submit-reaction flow: resolve
// identity, upsert the reaction row, then reflect the result optimistically
// in the feed store.
type ReactionCoordinator struct {
	reactions ReactionStore
	identity  IdentityProvider
	rewards   RewardTracker
	store     *Store
	notifier  Notifier
}

// NewReactionCoordinator wires a coordinator. rewards may be nil when no
// progression tracking is configured.
func NewReactionCoordinator(reactions ReactionStore, identity IdentityProvider, rewards RewardTracker, store *Store, notifier Notifier) *ReactionCoordinator {
	return &ReactionCoordinator{
		reactions: reactions,
		identity:  identity,
		rewards:   rewards,
		store:     store,
		notifier:  notifier,
	}
}

// SubmitReaction records one reaction from the caller's anonymous identity
// on a submission. A second reaction from the same identity replaces the
// kind; resubmitting the same kind is a harmless no-op update. On any
// failure no local state is mutated and false is returned; there is no
// retry policy, a failed attempt requires explicit re-initiation.
func (c *ReactionCoordinator) SubmitReaction(ctx context.Context, submissionID string, rt types.ReactionType) bool {
	if !rt.Valid() {
		c.notifier.Notify("Reaction Failed", "Unknown reaction type.", SeverityDestructive)
		return false
	}

	token, err := c.identity.GetOrCreate()
	if err != nil {
		c.notifier.Notify("Reaction Failed", "Could not resolve your anonymous identity.", SeverityDestructive)
		return false
	}

	existing, err := c.reactions.GetByToken(ctx, submissionID, token)
	if err != nil {
		c.notifier.Notify("Reaction Failed", "Could not check your previous reaction.", SeverityDestructive)
		return false
	}

	if existing != nil {
		if err := c.reactions.UpdateType(ctx, submissionID, token, rt); err != nil {
			c.notifier.Notify("Reaction Failed", "Could not save your reaction.", SeverityDestructive)
			return false
		}
	} else {
		rec := types.ReactionRecord{
			SubmissionID:   submissionID,
			AnonymousToken: token,
			ReactionType:   rt,
			CreatedAt:      time.Now(),
		}
		if err := c.reactions.Insert(ctx, rec); err != nil {
			c.notifier.Notify("Reaction Failed", "Could not save your reaction.", SeverityDestructive)
			return false
		}
		// Progression only rewards a brand-new reaction, not a kind change.
		if c.rewards != nil {
			if err := c.rewards.IncrementReactionsGiven(ctx, token); err != nil {
				log.Printf("⚠️  Failed to record reaction reward for %s: %v", token, err)
			}
		}
	}

	c.store.BumpReaction(submissionID, rt)
	c.notifier.Notify(reactionTitle(rt), "Your reaction was counted.", SeverityDefault)
	return true
}

func reactionTitle(rt types.ReactionType) string {
	switch rt {
	case types.ReactionHot:
		return "Hot Take! 🔥"
	case types.ReactionCold:
		return "Ice Cold 🧊"
	case types.ReactionSpicy:
		return "Extra Spicy 🌶️"
	}
	return "Reaction Counted"
}
