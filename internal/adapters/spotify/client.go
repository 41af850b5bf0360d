// Package spotify implements the outbound adapter against the Spotify Web
// API: playlist fetching, the listening profile and library write-back. All
// calls are synchronous and sequential; the only throttling control is the
// retry/backoff layer in retry.go.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/ports"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

const (
	playlistPageLimit = 100 // playlist tracks endpoint ceiling
	likedPageLimit    = 50  // saved tracks endpoint ceiling
	libraryPageLimit  = 50  // current user's playlists ceiling
	artistBatchLimit  = 50  // several-artists endpoint ceiling
	featureBatchLimit = 100 // audio-features endpoint ceiling
	uriChunkLimit     = 100 // add/remove tracks body ceiling
)

// Config tunes the client. Zero values fall back to defaults, with the
// SPOTIFY_MAX_RETRIES / SPOTIFY_RETRY_BACKOFF_MS environment variables
// taking precedence over both.
type Config struct {
	BaseURL     string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Client is an HTTP client for the Spotify adapter. The http.Client is
// expected to carry authentication (an oauth2 transport).
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration

	// artist id -> genres, memoized for the lifetime of the client so a
	// playlist full of songs by the same artists costs one lookup each.
	artistGenres map[string][]string

	// current user id, fetched once
	userID string
}

// compile-time interface assertions
var (
	_ ports.SongProvider  = (*Client)(nil)
	_ ports.UserProfile   = (*Client)(nil)
	_ ports.LibraryWriter = (*Client)(nil)
)

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	maxRetries, baseBackoff := resolveRetryConfig(cfg.MaxRetries, cfg.BaseBackoff)

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:   maxRetries,
		baseBackoff:  baseBackoff,
		artistGenres: make(map[string][]string),
	}
}

// get issues a GET against path (relative to the base URL, query included)
// and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

// send issues a request with an optional JSON body. A nil out discards the
// response body after the status check. Errors come back unprefixed so the
// endpoint methods can wrap them with the operation once.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.StatusError{
			Code:     resp.StatusCode,
			Endpoint: req.Method + " " + req.URL.Path,
			Body:     readErrorBody(resp.Body),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorBody keeps a short prefix of an error response for diagnostics.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
