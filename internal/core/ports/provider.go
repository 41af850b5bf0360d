package ports

import (
	"context"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// ProgressFunc reports fetch progress as songs are mapped. Implementations
// must tolerate a nil function.
type ProgressFunc func(done, total int)

// SongProvider fetches playlist contents from the streaming service,
// returning fully hydrated songs (genres and audio features resolved).
type SongProvider interface {
	PlaylistName(ctx context.Context, playlistID string) (string, error)
	PlaylistSongs(ctx context.Context, playlistID string, progress ProgressFunc) ([]domain.Song, error)
	LikedSongs(ctx context.Context, progress ProgressFunc) ([]domain.Song, error)
}

// UserProfile exposes the user's listening profile and the service's own
// recommendation engine.
type UserProfile interface {
	UserID(ctx context.Context) (string, error)
	TopTracks(ctx context.Context, term domain.Term, limit int) ([]domain.Song, error)
	TopArtists(ctx context.Context, term domain.Term, limit int) ([]domain.Artist, error)
	SearchArtist(ctx context.Context, name string) (domain.Artist, error)
	// SearchTrack resolves a track by name and optional artist to its
	// identity fields only, for recommendation seeding.
	SearchTrack(ctx context.Context, name, artist string) (domain.Song, error)
	Recommendations(ctx context.Context, seeds domain.Seeds, ranges *domain.TuneableRanges, limit int) ([]domain.Song, error)
}
