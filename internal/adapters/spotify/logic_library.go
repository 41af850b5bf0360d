package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// UserPlaylists pages through every playlist in the user's library.
func (c *Client) UserPlaylists(ctx context.Context) ([]domain.PlaylistInfo, error) {
	var infos []domain.PlaylistInfo
	total := -1

	for offset := 0; total < 0 || offset < total; offset += libraryPageLimit {
		var page userPlaylistsPage
		path := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", libraryPageLimit, offset)
		if err := c.get(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("spotify adapter: list user playlists: %w", err)
		}

		total = page.Total
		for _, p := range page.Items {
			infos = append(infos, domain.PlaylistInfo{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
			})
		}

		if len(page.Items) < libraryPageLimit {
			break
		}
	}

	return infos, nil
}

// CreatePlaylist creates a private playlist in the user's library and
// returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string) (string, error) {
	body := createPlaylistRequest{Name: name, Description: description, Public: false}

	var created playlistCreated
	path := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := c.send(ctx, http.MethodPost, path, body, &created); err != nil {
		return "", fmt.Errorf("spotify adapter: create playlist: %w", err)
	}
	return created.ID, nil
}

// UpdatePlaylistDetails rewrites the name and description of a playlist.
func (c *Client) UpdatePlaylistDetails(ctx context.Context, playlistID, name, description string) error {
	body := createPlaylistRequest{Name: name, Description: description, Public: false}

	path := "/playlists/" + url.PathEscape(playlistID)
	if err := c.send(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("spotify adapter: update playlist details: %w", err)
	}
	return nil
}

// PlaylistTrackURIs collects the URIs currently in a playlist, paging the
// whole collection so oversized playlists empty completely.
func (c *Client) PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error) {
	base := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	items, err := c.collectPages(ctx, base, playlistPageLimit, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: fetch playlist uris: %w", err)
	}

	uris := make([]string, 0, len(items))
	for _, item := range items {
		if item.Track.URI != "" {
			uris = append(uris, item.Track.URI)
		}
	}
	return uris, nil
}

// RemoveTracks deletes the given URIs from a playlist in API-sized chunks.
func (c *Client) RemoveTracks(ctx context.Context, playlistID string, uris []string) error {
	path := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for _, chunk := range lo.Chunk(uris, uriChunkLimit) {
		body := removeTracksRequest{Tracks: make([]uriRef, len(chunk))}
		for i, uri := range chunk {
			body.Tracks[i] = uriRef{URI: uri}
		}
		if err := c.send(ctx, http.MethodDelete, path, body, nil); err != nil {
			return fmt.Errorf("spotify adapter: remove tracks: %w", err)
		}
	}
	return nil
}

// AddTracks appends the given URIs to a playlist in API-sized chunks,
// preserving order.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	path := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for _, chunk := range lo.Chunk(uris, uriChunkLimit) {
		if err := c.send(ctx, http.MethodPost, path, addTracksRequest{Uris: chunk}, nil); err != nil {
			return fmt.Errorf("spotify adapter: add tracks: %w", err)
		}
	}
	return nil
}
