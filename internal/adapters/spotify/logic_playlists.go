package spotify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/core/ports"
)

// PlaylistName fetches the display name of a playlist.
func (c *Client) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	var details playlistDetails
	if err := c.get(ctx, "/playlists/"+url.PathEscape(playlistID), &details); err != nil {
		return "", fmt.Errorf("spotify adapter: fetch playlist details: %w", err)
	}
	return details.Name, nil
}

// PlaylistSongs walks the playlist page by page, then hydrates every track
// with artist genres and audio features. Fetching is strictly sequential;
// progress, when non-nil, is invoked after each mapped page.
func (c *Client) PlaylistSongs(ctx context.Context, playlistID string, progress ports.ProgressFunc) ([]domain.Song, error) {
	base := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	items, err := c.collectPages(ctx, base, playlistPageLimit, progress)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch playlist songs: %w", err)
	}
	return c.hydrate(ctx, items)
}

// LikedSongs walks the user's saved tracks, which behave like a playlist
// with a smaller page ceiling.
func (c *Client) LikedSongs(ctx context.Context, progress ports.ProgressFunc) ([]domain.Song, error) {
	items, err := c.collectPages(ctx, "/me/tracks", likedPageLimit, progress)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch liked songs: %w", err)
	}
	return c.hydrate(ctx, items)
}

// collectPages drains an offset-paginated track collection. The reported
// total can drift while paginating (songs added or removed mid-fetch); a
// short page always terminates the walk.
func (c *Client) collectPages(ctx context.Context, basePath string, limit int, progress ports.ProgressFunc) ([]playlistItem, error) {
	var items []playlistItem
	total := -1

	for offset := 0; total < 0 || offset < total; offset += limit {
		var page playlistTracksPage
		path := fmt.Sprintf("%s?limit=%d&offset=%d", basePath, limit, offset)
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}

		total = page.Total
		items = append(items, page.Items...)

		slog.Info("songs mapped", "count", len(items), "total", total)
		if progress != nil {
			progress(len(items), total)
		}

		if len(page.Items) < limit {
			break
		}
	}

	return items, nil
}

// hydrate turns raw playlist items into domain songs: artist genres come
// from the memoized batch lookup, audio features from the batch analysis
// endpoint. Tracks without an id (local files) are skipped; tracks without
// an analysis keep a zeroed audio profile.
func (c *Client) hydrate(ctx context.Context, items []playlistItem) ([]domain.Song, error) {
	tracks := make([]trackObject, 0, len(items))
	addedAt := make([]time.Time, 0, len(items))
	for _, item := range items {
		if item.Track.ID == "" {
			slog.Debug("spotify adapter: skipping track without id", "name", item.Track.Name)
			continue
		}
		tracks = append(tracks, item.Track)
		addedAt = append(addedAt, parseAddedAt(item.AddedAt))
	}

	trackIDs := make([]string, len(tracks))
	var artistIDs []string
	for i, t := range tracks {
		trackIDs[i] = t.ID
		artistIDs = append(artistIDs, t.artistIDs()...)
	}

	genresByArtist, err := c.genresForArtists(ctx, artistIDs)
	if err != nil {
		return nil, err
	}
	featuresByTrack, err := c.featuresForTracks(ctx, trackIDs)
	if err != nil {
		return nil, err
	}

	songs := make([]domain.Song, 0, len(tracks))
	for i, t := range tracks {
		var features *audioFeaturesObject
		if f, ok := featuresByTrack[t.ID]; ok {
			features = &f
		} else {
			slog.Debug("spotify adapter: no audio features for track", "id", t.ID, "name", t.Name)
		}
		songs = append(songs, songFromTrack(t, addedAt[i], songGenres(t, genresByArtist), features))
	}
	return songs, nil
}

// hydrateTracks runs the same hydration over bare track objects, used by
// the endpoints that return tracks without playlist metadata.
func (c *Client) hydrateTracks(ctx context.Context, tracks []trackObject) ([]domain.Song, error) {
	items := make([]playlistItem, len(tracks))
	for i, t := range tracks {
		items[i] = playlistItem{Track: t}
	}
	return c.hydrate(ctx, items)
}
