package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// UserID returns the current user's id, fetching it once and caching it for
// the lifetime of the client.
func (c *Client) UserID(ctx context.Context) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}

	var me userProfile
	if err := c.get(ctx, "/me", &me); err != nil {
		return "", fmt.Errorf("spotify adapter: fetch user profile: %w", err)
	}

	c.userID = me.ID
	return c.userID, nil
}

// TopTracks returns the user's most listened tracks for the term, hydrated
// like playlist songs.
func (c *Client) TopTracks(ctx context.Context, term domain.Term, limit int) ([]domain.Song, error) {
	var page topTracksPage
	path := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", term, limit)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch top tracks: %w", err)
	}
	return c.hydrateTracks(ctx, page.Items)
}

// TopArtists returns the user's most listened artists for the term.
func (c *Client) TopArtists(ctx context.Context, term domain.Term, limit int) ([]domain.Artist, error) {
	var page topArtistsPage
	path := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", term, limit)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch top artists: %w", err)
	}

	artists := make([]domain.Artist, len(page.Items))
	for i, a := range page.Items {
		artists[i] = artistToDomain(a)
	}
	return artists, nil
}

// SearchArtist resolves an artist name to its profile, taking the first
// search result.
func (c *Client) SearchArtist(ctx context.Context, name string) (domain.Artist, error) {
	var out searchResponse
	path := "/search?q=" + url.QueryEscape(name) + "&type=artist&limit=1"
	if err := c.get(ctx, path, &out); err != nil {
		return domain.Artist{}, fmt.Errorf("spotify adapter: search artist: %w", err)
	}

	if len(out.Artists.Items) == 0 {
		return domain.Artist{}, fmt.Errorf("spotify adapter: artist %q: %w", name, domain.ErrNotFound)
	}
	return artistToDomain(out.Artists.Items[0]), nil
}

// SearchTrack resolves a track name, optionally narrowed by artist, to the
// first search result. The returned song carries identity fields only; it is
// meant for seeding, not ranking.
func (c *Client) SearchTrack(ctx context.Context, name, artist string) (domain.Song, error) {
	query := strings.TrimSpace(name + " " + artist)

	var out searchResponse
	path := "/search?q=" + url.QueryEscape(query) + "&type=track&limit=1"
	if err := c.get(ctx, path, &out); err != nil {
		return domain.Song{}, fmt.Errorf("spotify adapter: search track: %w", err)
	}

	if len(out.Tracks.Items) == 0 {
		return domain.Song{}, fmt.Errorf("spotify adapter: track %q: %w", query, domain.ErrNotFound)
	}
	return songFromTrack(out.Tracks.Items[0], time.Time{}, nil, nil), nil
}

// Recommendations queries the service's recommendation engine with up to
// five seeds and optional tuneable windows derived from playlist statistics.
func (c *Client) Recommendations(ctx context.Context, seeds domain.Seeds, ranges *domain.TuneableRanges, limit int) ([]domain.Song, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if len(seeds.Artists) > 0 {
		q.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Genres) > 0 {
		q.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}
	if len(seeds.Tracks) > 0 {
		q.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}
	if ranges != nil {
		setTuneable(q, "danceability", ranges.Danceability)
		setTuneable(q, "energy", ranges.Energy)
		setTuneable(q, "instrumentalness", ranges.Instrumentalness)
		setTuneable(q, "tempo", ranges.Tempo)
		setTuneable(q, "valence", ranges.Valence)
	}

	var out recommendationsResponse
	if err := c.get(ctx, "/recommendations?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch recommendations: %w", err)
	}
	return c.hydrateTracks(ctx, out.Tracks)
}

func setTuneable(q url.Values, name string, w domain.FeatureWindow) {
	q.Set("min_"+name, formatFloat(w.Min))
	q.Set("max_"+name, formatFloat(w.Max))
	q.Set("target_"+name, formatFloat(w.Target))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
