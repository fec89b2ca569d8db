package identity

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewTokenShape(t *testing.T) {
	a := NewToken()
	b := NewToken()

	if !strings.HasPrefix(a, "anon_") {
		t.Fatalf("token missing prefix: %q", a)
	}
	if a == b {
		t.Fatalf("tokens must be unique")
	}
}

func TestFixedProvider(t *testing.T) {
	token, err := Fixed("anon_abc").GetOrCreate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "anon_abc" {
		t.Fatalf("got %q", token)
	}

	if _, err := Fixed("").GetOrCreate(); err == nil {
		t.Fatalf("empty fixed token should error")
	}
}

func TestFileTokenStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	// Missing file means no token yet, not an error.
	token, err := store.Load()
	if err != nil {
		t.Fatalf("load on missing file: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := store.Save("anon_persisted"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	token, err = store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if token != "anon_persisted" {
		t.Fatalf("got %q", token)
	}
}

func TestStoredProviderCreatesOnce(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	p := NewStoredProvider(store)

	first, err := p.GetOrCreate()
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := p.GetOrCreate()
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if first != second {
		t.Fatalf("token changed between calls: %q vs %q", first, second)
	}

	// A fresh provider over the same store resolves the same identity.
	again, err := NewStoredProvider(store).GetOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again != first {
		t.Fatalf("persisted token not reused: %q vs %q", again, first)
	}
}
