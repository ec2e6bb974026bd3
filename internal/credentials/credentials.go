// Package credentials supplies tokens and keys to the HTTP clients.
//
// OAuth platforms (Spotify, YouTube) use a [FileStore]: the token lives in one JSON file per
// platform and is refreshed lazily through the platform's [oauth2.Config]. Static services
// (Last.fm, OpenWeather) use an [APIKey].
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/songrec/internal/shared"
	"golang.org/x/oauth2"
)

// expiryDelta treats tokens that expire within this window as already expired.
const expiryDelta = 30 * time.Second

// Store is the credential provider contract used before every mutating request.
type Store interface {
	// Token returns the current token.
	Token(ctx context.Context) (*oauth2.Token, error)
	// Expired reports whether tok must be refreshed before use.
	Expired(tok *oauth2.Token) bool
	// Refresh exchanges tok's refresh token for a new token and persists it.
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

// Credential is a single service credential.
type Credential struct {
	Service string
	Key     string
	Expiry  time.Time
}

// APIKey returns a [Credential] for a static key, failing when the key is empty.
func APIKey(service, key string) (Credential, error) {
	if key == "" {
		return Credential{}, fmt.Errorf("%w: %s api key", shared.ErrMissingCredentials, service)
	}
	return Credential{Service: service, Key: key}, nil
}

// Fresh returns a usable token from s, refreshing it first when it has expired.
func Fresh(ctx context.Context, s Store) (*oauth2.Token, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Expired(tok) {
		return tok, nil
	}
	return s.Refresh(ctx, tok)
}

// FileStore persists a platform's OAuth token as JSON at a fixed path.
type FileStore struct {
	service string
	path    string
	config  *oauth2.Config
	now     func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewFileStore creates a store for service backed by the token file at path.
func NewFileStore(service, path string, config *oauth2.Config) *FileStore {
	return &FileStore{
		service: service,
		path:    shared.ExpandPath(path),
		config:  config,
		now:     time.Now,
	}
}

// Service returns the platform name this store serves.
func (s *FileStore) Service() string { return s.service }

// Path returns the expanded token file path.
func (s *FileStore) Path() string { return s.path }

// Config returns the OAuth client configuration.
func (s *FileStore) Config() *oauth2.Config { return s.config }

// Token loads the token from memory or from disk.
func (s *FileStore) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		return s.token, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s token at %s, run `songrec auth %s`", shared.ErrNotAuthenticated, s.service, s.path, s.service)
		}
		return nil, fmt.Errorf("failed to read %s token: %w", s.service, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", s.service, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s token file has no access token", shared.ErrNotAuthenticated, s.service)
	}

	s.token = &tok
	return s.token, nil
}

// Expired reports whether tok is missing, or past (or close to) its expiry.
// Tokens without an expiry never expire.
func (s *FileStore) Expired(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return true
	}
	if tok.Expiry.IsZero() {
		return false
	}
	return !tok.Expiry.After(s.now().Add(expiryDelta))
}

// Refresh obtains a new access token with tok's refresh token and saves it.
func (s *FileStore) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoRefreshToken, s.service)
	}

	stale := &oauth2.Token{RefreshToken: tok.RefreshToken, Expiry: time.Unix(1, 0)}
	fresh, err := s.config.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRefreshFailed, s.service, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}

	if err := s.Save(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Save writes tok to the token file with owner-only permissions and caches it.
func (s *FileStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s token: %w", s.service, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s token: %w", s.service, err)
	}

	s.token = tok
	return nil
}

// TokenSource adapts s to an [oauth2.TokenSource] so HTTP transports pick up refreshed tokens.
func TokenSource(ctx context.Context, s Store) oauth2.TokenSource {
	return storeSource{ctx: ctx, store: s}
}

type storeSource struct {
	ctx   context.Context
	store Store
}

func (ss storeSource) Token() (*oauth2.Token, error) {
	return Fresh(ss.ctx, ss.store)
}

// StaticStore serves a fixed token that never expires. Useful for tests and
// client-credential tokens obtained elsewhere.
type StaticStore struct {
	Tok *oauth2.Token
}

func (s StaticStore) Token(context.Context) (*oauth2.Token, error) {
	if s.Tok == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.Tok, nil
}

func (s StaticStore) Expired(*oauth2.Token) bool { return false }

func (s StaticStore) Refresh(_ context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	return tok, nil
}
