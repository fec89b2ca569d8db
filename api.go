package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ctea-newsroom/commentary"
	"ctea-newsroom/feed"
	"ctea-newsroom/identity"
	"ctea-newsroom/storage"
	"ctea-newsroom/types"
)

// anonTokenHeader carries the caller's anonymous identity. Absent or empty
// means first contact: the server mints a token and echoes it back for the
// client to keep.
const anonTokenHeader = "X-Anon-Token"

// server holds the wired dependencies behind the HTTP API.
type server struct {
	cfg             *Config
	submissions     storage.SubmissionRepository
	reactions       storage.ReactionRepository
	rewards         storage.RewardRepository
	store           *feed.Store
	notifier        feed.Notifier
	moderator       *ContentModerator
	limiter         *RateLimiter
	reactionLimiter *RateLimiter
	rater           commentary.Rater  // nil when no API key is configured
	identities      identity.Provider // nil unless an identity file is configured
}

// callerToken resolves the caller's anonymous identity: the header wins,
// then the persisted operator identity when one is configured, and a fresh
// token is minted only as the last resort.
func (s *server) callerToken(r *http.Request) (token string, minted bool) {
	if t := r.Header.Get(anonTokenHeader); t != "" {
		return t, false
	}
	if s.identities != nil {
		t, err := s.identities.GetOrCreate()
		if err == nil {
			return t, false
		}
		log.Printf("⚠️  Persisted identity unavailable, minting one-off token: %v", err)
	}
	return identity.NewToken(), true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

// handleSubmitTea handles POST /api/tea
// Rate limit, validate, moderate, persist. Approved submissions reach the
// feed through the change stream, not through this handler.
func (s *server) handleSubmitTea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token, _ := s.callerToken(r)

	allowed, _, resetTime := s.limiter.CheckAndRecordSubmission(token)
	if !allowed {
		w.Header().Set("Retry-After", resetTime.UTC().Format(http.TimeFormat))
		writeAPIError(w, http.StatusTooManyRequests, "submission rate limit reached, try again later")
		return
	}

	var req types.SubmitTeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := ValidateTeaContent(req.Content, types.MaxContentLength); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := ValidateCategory(req.Category)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	moderation, err := s.moderator.ModerateTea(req.Content)
	if err != nil {
		log.Printf("❌ Moderation failed: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "moderation failed")
		return
	}
	if moderation.Status == types.StatusRejected {
		writeAPIError(w, http.StatusUnprocessableEntity, moderation.Reason)
		return
	}

	sub := types.Submission{
		ID:           uuid.NewString(),
		Content:      moderation.ModeratedText,
		Category:     category,
		EvidenceURLs: req.EvidenceURLs,
		CreatedAt:    time.Now(),
		Status:       moderation.Status,
		Visible:      true,
		HasEvidence:  len(req.EvidenceURLs) > 0,
	}

	if err := s.submissions.Save(r.Context(), sub); err != nil {
		log.Printf("❌ Failed to save submission: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "failed to save submission")
		return
	}

	if s.rater != nil {
		go s.rateSubmission(sub)
	}

	writeJSON(w, http.StatusCreated, types.SubmitTeaResponse{
		ID:             sub.ID,
		Status:         sub.Status,
		AnonymousToken: token,
	})
}

// rateSubmission asks the AI editor for scores and a one-liner, off the
// request path. A failed rating leaves the submission unrated.
func (s *server) rateSubmission(sub types.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rating, err := s.rater.Rate(ctx, sub.Content)
	if err != nil {
		log.Printf("⚠️  AI rating failed for %s: %v", sub.ID, err)
		return
	}

	if err := s.submissions.SetRating(ctx, sub.ID, rating.Spiciness, rating.Chaos, rating.Relevance, rating.Reaction); err != nil {
		log.Printf("⚠️  Failed to store AI rating for %s: %v", sub.ID, err)
		return
	}
	log.Printf("🤖 AI rated %s: spiciness=%d chaos=%d relevance=%d", sub.ID, rating.Spiciness, rating.Chaos, rating.Relevance)
}

// handleReact handles POST /api/reactions
// The coordinator runs per request with the caller's identity fixed, so
// concurrent callers never share identity state.
func (s *server) handleReact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token, _ := s.callerToken(r)

	// Reactions share the sliding-window mechanism with submissions but
	// carry their own, larger quota.
	allowed, _, resetTime := s.reactionLimiter.CheckAndRecordSubmission(token)
	if !allowed {
		w.Header().Set("Retry-After", resetTime.UTC().Format(http.TimeFormat))
		writeAPIError(w, http.StatusTooManyRequests, "reaction rate limit reached, try again later")
		return
	}

	var req types.ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SubmissionID == "" {
		writeAPIError(w, http.StatusBadRequest, "submission_id is required")
		return
	}

	rt := types.ReactionType(req.ReactionType)
	if !rt.Valid() {
		writeAPIError(w, http.StatusBadRequest, "reaction_type must be hot, cold, or spicy")
		return
	}

	coordinator := feed.NewReactionCoordinator(s.reactions, identity.Fixed(token), s.rewards, s.store, s.notifier)

	ok := coordinator.SubmitReaction(r.Context(), req.SubmissionID, rt)
	status := http.StatusOK
	var given int
	if ok {
		n, err := s.rewards.ReactionsGiven(r.Context(), token)
		if err != nil {
			log.Printf("⚠️  Failed to read reaction progression for %s: %v", token, err)
		} else {
			given = n
		}
	} else {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, types.ReactionResponse{
		Success:        ok,
		AnonymousToken: token,
		ReactionsGiven: given,
	})
}

// handleAdminStatus handles POST /api/admin/status
// Token-gated moderation override; the resulting UPDATE event flows to
// every subscriber through the change stream.
func (s *server) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.cfg.AdminToken == "" || r.Header.Get("Authorization") != "Bearer "+s.cfg.AdminToken {
		writeAPIError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status := types.Status(req.Status)
	switch status {
	case types.StatusPending, types.StatusApproved, types.StatusRejected:
	default:
		writeAPIError(w, http.StatusBadRequest, "status must be pending, approved, or rejected")
		return
	}

	if err := s.submissions.UpdateStatus(r.Context(), req.SubmissionID, status); err != nil {
		log.Printf("❌ Failed to update status: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     req.SubmissionID,
		"status": string(status),
	})
}
