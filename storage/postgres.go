/*
# Module: storage/postgres.go
Postgres repository implementations backed by pgxpool, with pg_notify
change publication.

## Linked Modules
- [storage/repository](./repository.go) - Repository interfaces
- [storage/listen](./listen.go) - NOTIFY listener feeding the broker
- [types/submission](../types/submission.go) - Submission data structures

## Tags
storage, postgres, persistence, repository

## Exports
PostgresStore, NewPostgresStore, NotifyChannel

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/postgres.go" ;
    code:description "Postgres repository implementations backed by pgxpool, with pg_notify change publication" ;
    code:linksTo [
        code:name "storage/repository" ;
        code:path "./repository.go" ;
        code:relationship "Repository interfaces"
    ], [
        code:name "storage/listen" ;
        code:path "./listen.go" ;
        code:relationship "NOTIFY listener feeding the broker"
    ], [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ] ;
    code:exports :PostgresStore, :NewPostgresStore, :NotifyChannel ;
    code:tags "storage", "postgres", "persistence", "repository" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ctea-newsroom/feed"
	"ctea-newsroom/types"
)

// NotifyChannel is the pg_notify channel carrying submission change
// events. The payload is the JSON form of feed.ChangeEvent.
const NotifyChannel = "ctea_submissions"

// PostgresStore implements the submission, reaction, and reward
// repositories over a pgxpool connection pool. Writes publish change
// events via pg_notify so every connected instance sees them through
// the listener.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &PostgresStore{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}

	log.Printf("🐘 Connected to Postgres")
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'gossip',
			evidence_urls TEXT[],
			hot INT NOT NULL DEFAULT 0,
			cold INT NOT NULL DEFAULT 0,
			spicy INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status TEXT NOT NULL DEFAULT 'pending',
			spiciness INT NOT NULL DEFAULT 0,
			chaos INT NOT NULL DEFAULT 0,
			relevance INT NOT NULL DEFAULT 0,
			ai_reaction TEXT NOT NULL DEFAULT '',
			ai_rated BOOLEAN NOT NULL DEFAULT FALSE,
			boost_score INT NOT NULL DEFAULT 0,
			visible BOOLEAN NOT NULL DEFAULT TRUE,
			tweeted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS reactions (
			submission_id TEXT NOT NULL,
			anonymous_token TEXT NOT NULL,
			reaction_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (submission_id, anonymous_token)
		)`,
		`CREATE TABLE IF NOT EXISTS reaction_progress (
			anonymous_token TEXT PRIMARY KEY,
			reactions_given INT NOT NULL DEFAULT 0
		)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

// notify publishes a change event on the NOTIFY channel. Failures are
// logged only; the write itself already succeeded.
func (s *PostgresStore) notify(ctx context.Context, ev feed.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("⚠️  Failed to marshal change event: %v", err)
		return
	}
	if _, err := s.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", NotifyChannel, string(payload)); err != nil {
		log.Printf("⚠️  Failed to notify change event: %v", err)
	}
}

// Save inserts or replaces a submission, notifying INSERT for new ids
// and UPDATE for existing ones.
func (s *PostgresStore) Save(ctx context.Context, sub types.Submission) error {
	var inserted bool
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO submissions
			(id, content, category, evidence_urls, hot, cold, spicy, created_at, status,
			 spiciness, chaos, relevance, ai_reaction, ai_rated, boost_score, visible, tweeted)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			evidence_urls = EXCLUDED.evidence_urls,
			hot = EXCLUDED.hot,
			cold = EXCLUDED.cold,
			spicy = EXCLUDED.spicy,
			status = EXCLUDED.status,
			spiciness = EXCLUDED.spiciness,
			chaos = EXCLUDED.chaos,
			relevance = EXCLUDED.relevance,
			ai_reaction = EXCLUDED.ai_reaction,
			ai_rated = EXCLUDED.ai_rated,
			boost_score = EXCLUDED.boost_score,
			visible = EXCLUDED.visible,
			tweeted = EXCLUDED.tweeted
		 RETURNING (xmax = 0)`,
		sub.ID, sub.Content, sub.Category, sub.EvidenceURLs,
		sub.Reactions.Hot, sub.Reactions.Cold, sub.Reactions.Spicy,
		sub.CreatedAt, sub.Status, sub.Spiciness, sub.Chaos, sub.Relevance,
		sub.AIReaction, sub.AIRated, sub.BoostScore, sub.Visible, sub.Tweeted,
	).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	evType := feed.EventUpdate
	if inserted {
		evType = feed.EventInsert
	}
	s.notify(ctx, feed.ChangeEvent{Type: evType, Record: sub.Raw()})
	log.Printf("💾 Submission saved to Postgres: id=%s status=%s", sub.ID, sub.Status)
	return nil
}

const submissionColumns = `id, content, category, evidence_urls, hot, cold, spicy,
	created_at, status, spiciness, chaos, relevance, ai_reaction, ai_rated,
	boost_score, visible, tweeted`

func scanSubmission(row pgx.Row) (types.Submission, error) {
	var sub types.Submission
	err := row.Scan(
		&sub.ID, &sub.Content, &sub.Category, &sub.EvidenceURLs,
		&sub.Reactions.Hot, &sub.Reactions.Cold, &sub.Reactions.Spicy,
		&sub.CreatedAt, &sub.Status, &sub.Spiciness, &sub.Chaos, &sub.Relevance,
		&sub.AIReaction, &sub.AIRated, &sub.BoostScore, &sub.Visible, &sub.Tweeted,
	)
	if err != nil {
		return types.Submission{}, err
	}
	sub.HasEvidence = len(sub.EvidenceURLs) > 0
	return sub, nil
}

// Get retrieves a submission by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*types.Submission, error) {
	sub, err := scanSubmission(s.Pool.QueryRow(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE id = $1", id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("submission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

// ListApproved returns the approved page in the requested order.
// "boosted" and "controversial" alias the default created_at-descending
// ordering, matching observed product behavior.
func (s *PostgresStore) ListApproved(ctx context.Context, sortMode types.SortMode, limit int) ([]types.RawSubmission, error) {
	orderBy := "created_at DESC"
	if sortMode == types.SortReactions {
		orderBy = "(hot + cold + spicy) DESC, created_at DESC"
	}

	rows, err := s.Pool.Query(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE status = $1 ORDER BY "+orderBy+" LIMIT $2",
		types.StatusApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved submissions: %w", err)
	}
	defer rows.Close()

	var raws []types.RawSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		raws = append(raws, sub.Raw())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	log.Printf("📰 Loaded %d approved submissions from Postgres", len(raws))
	return raws, nil
}

// UpdateStatus transitions a submission's moderation state and notifies
// an UPDATE event with the full record.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	tag, err := s.Pool.Exec(ctx, "UPDATE submissions SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s not found", id)
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.notify(ctx, feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	log.Printf("✅ Submission %s moved to %s", id, status)
	return nil
}

// SetRating records AI commentary ratings and notifies an UPDATE event.
func (s *PostgresStore) SetRating(ctx context.Context, id string, spiciness, chaos, relevance int, aiReaction string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE submissions SET spiciness = $2, chaos = $3, relevance = $4, ai_reaction = $5, ai_rated = TRUE
		 WHERE id = $1`,
		id, spiciness, chaos, relevance, aiReaction)
	if err != nil {
		return fmt.Errorf("failed to set submission rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s not found", id)
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.notify(ctx, feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
	return nil
}

// GetByToken returns the reaction row for a (submission, token) pair,
// or nil when none exists.
func (s *PostgresStore) GetByToken(ctx context.Context, submissionID, token string) (*types.ReactionRecord, error) {
	var rec types.ReactionRecord
	err := s.Pool.QueryRow(ctx,
		`SELECT submission_id, anonymous_token, reaction_type, created_at
		 FROM reactions WHERE submission_id = $1 AND anonymous_token = $2`,
		submissionID, token,
	).Scan(&rec.SubmissionID, &rec.AnonymousToken, &rec.ReactionType, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &rec, nil
}

// Insert stores a new reaction row and adds one to the matching counter
// on the submission record, in one transaction.
func (s *PostgresStore) Insert(ctx context.Context, rec types.ReactionRecord) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO reactions (submission_id, anonymous_token, reaction_type, created_at)
		 VALUES ($1, $2, $3, $4)`,
		rec.SubmissionID, rec.AnonymousToken, rec.ReactionType, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}

	if _, err := tx.Exec(ctx,
		fmt.Sprintf("UPDATE submissions SET %s = %s + 1 WHERE id = $1", countColumn(rec.ReactionType), countColumn(rec.ReactionType)),
		rec.SubmissionID); err != nil {
		return fmt.Errorf("failed to bump reaction counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reaction: %w", err)
	}

	s.notifySubmission(ctx, rec.SubmissionID)
	log.Printf("💾 Reaction saved: submission=%s type=%s", rec.SubmissionID, rec.ReactionType)
	return nil
}

// UpdateType changes the kind on an existing reaction row, moving one
// count from the old kind to the new. Same-kind updates leave the
// counters alone.
func (s *PostgresStore) UpdateType(ctx context.Context, submissionID, token string, rt types.ReactionType) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var old types.ReactionType
	err = tx.QueryRow(ctx,
		`SELECT reaction_type FROM reactions
		 WHERE submission_id = $1 AND anonymous_token = $2 FOR UPDATE`,
		submissionID, token,
	).Scan(&old)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("no reaction to update for submission %s", submissionID)
	}
	if err != nil {
		return fmt.Errorf("failed to load reaction: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reactions SET reaction_type = $3
		 WHERE submission_id = $1 AND anonymous_token = $2`,
		submissionID, token, rt); err != nil {
		return fmt.Errorf("failed to update reaction type: %w", err)
	}

	if old != rt {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf("UPDATE submissions SET %s = GREATEST(%s - 1, 0), %s = %s + 1 WHERE id = $1",
				countColumn(old), countColumn(old), countColumn(rt), countColumn(rt)),
			submissionID); err != nil {
			return fmt.Errorf("failed to move reaction counter: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reaction update: %w", err)
	}

	if old != rt {
		s.notifySubmission(ctx, submissionID)
	}
	return nil
}

// countColumn maps a reaction kind to its counter column. Kinds are
// validated upstream, so the fallthrough never builds SQL from user
// input.
func countColumn(rt types.ReactionType) string {
	switch rt {
	case types.ReactionCold:
		return "cold"
	case types.ReactionSpicy:
		return "spicy"
	default:
		return "hot"
	}
}

func (s *PostgresStore) notifySubmission(ctx context.Context, id string) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		log.Printf("⚠️  Failed to load submission %s for notify: %v", id, err)
		return
	}
	s.notify(ctx, feed.ChangeEvent{Type: feed.EventUpdate, Record: sub.Raw()})
}

// IncrementReactionsGiven adds one to the identity's progression counter.
func (s *PostgresStore) IncrementReactionsGiven(ctx context.Context, token string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO reaction_progress (anonymous_token, reactions_given) VALUES ($1, 1)
		 ON CONFLICT (anonymous_token) DO UPDATE SET reactions_given = reaction_progress.reactions_given + 1`,
		token)
	if err != nil {
		return fmt.Errorf("failed to increment reactions given: %w", err)
	}
	return nil
}

// ReactionsGiven returns the identity's progression counter.
func (s *PostgresStore) ReactionsGiven(ctx context.Context, token string) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx,
		"SELECT reactions_given FROM reaction_progress WHERE anonymous_token = $1", token).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get progression: %w", err)
	}
	return count, nil
}
