package ports

import (
	"context"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// LibraryWriter mutates the user's library. Every method changes remote
// state, so callers gate these behind an explicit build flag.
type LibraryWriter interface {
	UserPlaylists(ctx context.Context) ([]domain.PlaylistInfo, error)
	CreatePlaylist(ctx context.Context, userID, name, description string) (string, error)
	UpdatePlaylistDetails(ctx context.Context, playlistID, name, description string) error
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)
	RemoveTracks(ctx context.Context, playlistID string, uris []string) error
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// SnapshotStore caches playlist loads locally so reruns skip the full
// paginated fetch.
type SnapshotStore interface {
	Save(ctx context.Context, p domain.Playlist) error
	// Latest returns the most recent snapshot of the playlist, or
	// domain.ErrNotFound when none was saved yet.
	Latest(ctx context.Context, playlistID string) (domain.Playlist, error)
	Close() error
}
