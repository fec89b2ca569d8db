package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ctea-newsroom/feed"
	"ctea-newsroom/identity"
	"ctea-newsroom/storage"
	"ctea-newsroom/types"
)

func newTestServer(maxReactionsPerHour int) (*server, *storage.MemoryStore) {
	mem := storage.NewMemoryStore(nil)
	cfg := &Config{
		MaxPerHour:          defaultMaxPerHour,
		MaxReactionsPerHour: maxReactionsPerHour,
	}
	srv := &server{
		cfg:             cfg,
		submissions:     mem,
		reactions:       mem,
		rewards:         mem,
		store:           feed.NewStore(),
		notifier:        feed.LogNotifier{},
		moderator:       NewContentModerator(""),
		limiter:         NewRateLimiter(cfg.MaxPerHour),
		reactionLimiter: NewRateLimiter(cfg.MaxReactionsPerHour),
	}
	return srv, mem
}

func seedSubmission(t *testing.T, mem *storage.MemoryStore, id string) {
	t.Helper()
	err := mem.Save(context.Background(), types.Submission{
		ID:        id,
		Content:   "tea",
		Category:  types.CategoryGossip,
		CreatedAt: time.Now(),
		Status:    types.StatusApproved,
		Visible:   true,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func postReaction(srv *server, token, submissionID, kind string) *httptest.ResponseRecorder {
	body := `{"submission_id":"` + submissionID + `","reaction_type":"` + kind + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reactions", strings.NewReader(body))
	if token != "" {
		req.Header.Set(anonTokenHeader, token)
	}
	w := httptest.NewRecorder()
	srv.handleReact(w, req)
	return w
}

func TestCallerTokenPrefersHeader(t *testing.T) {
	srv, _ := newTestServer(10)
	srv.identities = identity.Fixed("anon_stored")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(anonTokenHeader, "anon_header")

	token, minted := srv.callerToken(req)
	if token != "anon_header" || minted {
		t.Fatalf("header token must win: got %q minted=%v", token, minted)
	}
}

func TestCallerTokenUsesPersistedIdentity(t *testing.T) {
	srv, _ := newTestServer(10)
	store := identity.NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	srv.identities = identity.NewStoredProvider(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	first, minted := srv.callerToken(req)
	if minted {
		t.Fatalf("persisted identity should not count as minted")
	}
	second, _ := srv.callerToken(req)
	if first == "" || first != second {
		t.Fatalf("persisted identity must be stable: %q vs %q", first, second)
	}

	persisted, err := store.Load()
	if err != nil || persisted != first {
		t.Fatalf("token not persisted: %q err %v", persisted, err)
	}
}

func TestCallerTokenMintsWithoutProvider(t *testing.T) {
	srv, _ := newTestServer(10)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	first, minted := srv.callerToken(req)
	if !minted {
		t.Fatalf("token without a provider must be minted")
	}
	second, _ := srv.callerToken(req)
	if first == second {
		t.Fatalf("minted tokens must be unique per request")
	}
}

func TestHandleReactRateLimited(t *testing.T) {
	srv, mem := newTestServer(2)
	seedSubmission(t, mem, "tea-1")

	for i := 0; i < 2; i++ {
		if w := postReaction(srv, "anon_rl", "tea-1", "hot"); w.Code != http.StatusOK {
			t.Fatalf("reaction %d: status %d, body %s", i+1, w.Code, w.Body.String())
		}
	}

	w := postReaction(srv, "anon_rl", "tea-1", "hot")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third reaction should be limited, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("limited response should carry Retry-After")
	}

	// Other tokens keep their own window.
	if w := postReaction(srv, "anon_other", "tea-1", "cold"); w.Code != http.StatusOK {
		t.Fatalf("other token should not be limited, got %d", w.Code)
	}
}

func TestHandleReactEchoesProgress(t *testing.T) {
	srv, mem := newTestServer(10)
	seedSubmission(t, mem, "tea-1")
	seedSubmission(t, mem, "tea-2")

	var resp types.ReactionResponse
	w := postReaction(srv, "anon_p", "tea-1", "hot")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !resp.Success || resp.ReactionsGiven != 1 {
		t.Fatalf("first reaction: %+v", resp)
	}

	// Changing the kind on the same submission is not new progress.
	w = postReaction(srv, "anon_p", "tea-1", "cold")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ReactionsGiven != 1 {
		t.Fatalf("kind change should not add progress: %+v", resp)
	}

	w = postReaction(srv, "anon_p", "tea-2", "spicy")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ReactionsGiven != 2 {
		t.Fatalf("second submission should add progress: %+v", resp)
	}
}
