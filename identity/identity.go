/*
# Module: identity/identity.go
Anonymous identity tokens: lazy creation and persistence.

## Linked Modules
(None - leaf package)

## Tags
identity, anonymous, tokens

## Exports
Provider, TokenStore, StoredProvider, NewStoredProvider, FileTokenStore, NewFileTokenStore, Fixed, NewToken

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "identity/identity.go" ;
    code:description "Anonymous identity tokens: lazy creation and persistence" ;
    code:exports :Provider, :TokenStore, :StoredProvider, :NewStoredProvider, :FileTokenStore, :NewFileTokenStore, :Fixed, :NewToken ;
    code:tags "identity", "anonymous", "tokens" .
<!-- End LinkedDoc RDF -->
*/
package identity

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Provider resolves an anonymous identity token, creating one lazily on
// first use. Tokens are pseudonymous actor identities for reactions,
// submissions, and rate limiting; they persist until their store is
// cleared and are never rotated automatically.
type Provider interface {
	GetOrCreate() (string, error)
}

// TokenStore persists a single token. Load returns "" with a nil error
// when no token has been stored yet.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
}

// NewToken mints a fresh high-entropy anonymous token.
func NewToken() string {
	return "anon_" + uuid.NewString()
}

// Fixed returns a Provider that always yields the given token. Used when
// the caller already carries its identity, e.g. from a request header.
func Fixed(token string) Provider {
	return fixedProvider(token)
}

type fixedProvider string

func (p fixedProvider) GetOrCreate() (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty identity token")
	}
	return string(p), nil
}

// StoredProvider backs a Provider with a TokenStore, creating and
// persisting a token on first use and caching it afterwards.
type StoredProvider struct {
	store TokenStore

	mu     sync.Mutex
	cached string
}

// NewStoredProvider creates a provider over the given store.
func NewStoredProvider(store TokenStore) *StoredProvider {
	return &StoredProvider{store: store}
}

// GetOrCreate implements Provider.
func (p *StoredProvider) GetOrCreate() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	token, err := p.store.Load()
	if err != nil {
		return "", fmt.Errorf("loading identity token: %w", err)
	}
	if token == "" {
		token = NewToken()
		if err := p.store.Save(token); err != nil {
			return "", fmt.Errorf("persisting identity token: %w", err)
		}
		log.Printf("🆔 Created anonymous identity %s…", token[:12])
	}
	p.cached = token
	return token, nil
}

// FileTokenStore persists the token in a plain file, the service-side
// analogue of the browser's persisted client storage key.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store at the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load implements TokenStore.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements TokenStore.
func (s *FileTokenStore) Save(token string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
