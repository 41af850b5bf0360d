// Package auth obtains and caches the OAuth2 token the Spotify Web API
// requires. Login runs the authorization-code grant once with a local
// callback listener; afterwards the cached token refreshes itself.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// ErrNoToken means no cached token exists yet and the login flow has to
// run first.
var ErrNoToken = errors.New("auth: no cached token, run login first")

// DefaultScopes covers everything the client touches: private playlists,
// the liked-songs library and the listening profile.
var DefaultScopes = []string{
	"playlist-read-private",
	"playlist-modify-private",
	"user-library-read",
	"user-library-modify",
	"user-top-read",
}

const (
	defaultRedirectPort = 8000
	defaultTokenFile    = ".mixtape-token.json"
)

// Config carries the application credentials and the local callback
// settings. Credentials come from the environment, never from files.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectPort int
	TokenFile    string
	Scopes       []string
}

// Authenticator wraps an oauth2.Config bound to the Spotify accounts
// service plus the on-disk token cache.
type Authenticator struct {
	conf      *oauth2.Config
	tokenFile string
	port      int
}

func New(cfg Config) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("auth: client id and secret are required")
	}

	port := cfg.RedirectPort
	if port == 0 {
		port = defaultRedirectPort
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = defaultTokenFile
	}

	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoints.Spotify,
			RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", port),
			Scopes:       scopes,
		},
		tokenFile: tokenFile,
		port:      port,
	}, nil
}

// Client returns an HTTP client that injects the cached token into every
// request and refreshes it when it expires. Refreshed tokens are written
// back to the cache file so the next run skips the refresh round trip.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.loadToken()
	if err != nil {
		return nil, err
	}
	src := &savingSource{
		inner: a.conf.TokenSource(ctx, tok),
		file:  a.tokenFile,
		last:  tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("auth: read token cache: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("auth: decode token cache: %w", err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: encode token: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("auth: create token dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("auth: write token cache: %w", err)
	}
	return nil
}

// savingSource persists refreshed tokens. The token endpoint rotates the
// access token on refresh, so a changed AccessToken is the write signal.
type savingSource struct {
	inner oauth2.TokenSource
	file  string

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, fmt.Errorf("auth: refresh token: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.file, tok); err != nil {
			slog.Warn("failed to persist refreshed token", "error", err)
		} else {
			slog.Debug("refreshed token cached", "file", s.file)
		}
	}
	return tok, nil
}
