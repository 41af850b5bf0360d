// Package services holds the core recommendation logic, wired to the
// streaming service and the snapshot cache through ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/core/ports"
	"github.com/harmoni-labs/mixtape/internal/knn"
)

// likedSongsName is the display name of the pseudo playlist backing the
// user's saved tracks.
const likedSongsName = "User's Liked Songs"

// Recommender coordinates playlist loading, neighbor search and the
// profile-based recommendation flows. All operations are synchronous; the
// only remote parallelism ever in play is none at all.
type Recommender struct {
	provider  ports.SongProvider
	profile   ports.UserProfile
	store     ports.SnapshotStore // nil disables the snapshot cache
	publisher *Publisher          // nil disables write-back

	weights knn.Weights
	now     func() time.Time
}

// NewRecommender constructs a Recommender. store and publisher may be nil,
// which disables the snapshot cache and library write-back respectively.
func NewRecommender(provider ports.SongProvider, profile ports.UserProfile, store ports.SnapshotStore, publisher *Publisher, weights knn.Weights) *Recommender {
	return &Recommender{
		provider:  provider,
		profile:   profile,
		store:     store,
		publisher: publisher,
		weights:   weights,
		now:       time.Now,
	}
}

// LoadPlaylist fetches a playlist from the streaming service, indexes it and
// persists a snapshot when a store is configured.
func (r *Recommender) LoadPlaylist(ctx context.Context, playlistID string, progress ports.ProgressFunc) (*domain.Playlist, error) {
	name, err := r.provider.PlaylistName(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch playlist name: %w", err)
	}
	songs, err := r.provider.PlaylistSongs(ctx, playlistID, progress)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch playlist songs: %w", err)
	}
	return r.assemble(ctx, playlistID, name, songs)
}

// LoadLikedSongs fetches the user's saved tracks as a pseudo playlist.
func (r *Recommender) LoadLikedSongs(ctx context.Context, progress ports.ProgressFunc) (*domain.Playlist, error) {
	songs, err := r.provider.LikedSongs(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch liked songs: %w", err)
	}
	return r.assemble(ctx, domain.LikedSongsID, likedSongsName, songs)
}

// OpenPlaylist returns the latest snapshot of the playlist, falling back to
// a fresh load when no snapshot exists.
func (r *Recommender) OpenPlaylist(ctx context.Context, playlistID string, progress ports.ProgressFunc) (*domain.Playlist, error) {
	if p, ok := r.fromStore(ctx, playlistID); ok {
		return p, nil
	}
	return r.LoadPlaylist(ctx, playlistID, progress)
}

// OpenLikedSongs is OpenPlaylist for the liked-songs pseudo playlist.
func (r *Recommender) OpenLikedSongs(ctx context.Context, progress ports.ProgressFunc) (*domain.Playlist, error) {
	if p, ok := r.fromStore(ctx, domain.LikedSongsID); ok {
		return p, nil
	}
	return r.LoadLikedSongs(ctx, progress)
}

func (r *Recommender) fromStore(ctx context.Context, playlistID string) (*domain.Playlist, bool) {
	if r.store == nil {
		return nil, false
	}
	p, err := r.store.Latest(ctx, playlistID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("snapshot load failed, fetching fresh", "playlist", playlistID, "error", err)
		}
		return nil, false
	}
	slog.Info("playlist loaded from snapshot", "playlist", playlistID, "name", p.Name, "songs", len(p.Songs))
	return &p, true
}

// assemble builds the indexed playlist out of fetched songs. Duplicate track
// ids are dropped; the snapshot save is best-effort.
func (r *Recommender) assemble(ctx context.Context, id, name string, songs []domain.Song) (*domain.Playlist, error) {
	p, err := domain.NewPlaylist(id, name)
	if err != nil {
		return nil, fmt.Errorf("service: invalid playlist: %w", err)
	}
	for _, s := range songs {
		if err := p.AddSong(s); err != nil {
			if errors.Is(err, domain.ErrDuplicateSong) {
				slog.Debug("skipping duplicate song", "id", s.ID, "name", s.Name)
				continue
			}
			return nil, fmt.Errorf("service: failed to add song %q: %w", s.Name, err)
		}
	}
	p.Reindex()

	if r.store != nil {
		if err := r.store.Save(ctx, *p); err != nil {
			slog.Warn("snapshot save failed", "playlist", id, "error", err)
		}
	}

	slog.Info("playlist ready", "name", name, "songs", len(p.Songs),
		"genres", p.Genres.Len(), "artists", p.Artists.Len())
	return p, nil
}

// SongRecommendationsRequest parameterizes a song-based neighbor search.
// An empty Artist matches the song by name alone and resolves the artist
// from whichever song matched first.
type SongRecommendationsRequest struct {
	Song    string
	Artist  string
	Count   int
	Build   bool
	LogBase bool
}

// SongRecommendations ranks the playlist against the base song and returns
// the Count nearest neighbors. The write-back playlist leads with the base
// song itself, so the generated playlist always opens with it.
func (r *Recommender) SongRecommendations(ctx context.Context, p *domain.Playlist, req SongRecommendationsRequest) ([]knn.Neighbor, error) {
	if req.Count < 1 || req.Count > 1500 {
		return nil, fmt.Errorf("service: count must be between 1 and 1500, got %d", req.Count)
	}

	base, err := findSong(p, req.Song, req.Artist)
	if err != nil {
		return nil, err
	}

	if req.LogBase {
		logBaseCharacteristics(base)
	}

	neighbors := knn.Neighbors(r.weights, p.Songs, base, req.Count, false)

	if req.Build {
		ids := append([]string{base.ID}, songIDs(knn.Songs(neighbors))...)
		if err := r.publish(ctx, SongPlaylist(base.Name, p.Name), ids); err != nil {
			return nil, err
		}
	}
	return neighbors, nil
}

// findSong locates the base song by exact name. When artist is non-empty the
// song must also credit that artist.
func findSong(p *domain.Playlist, name, artist string) (domain.Song, error) {
	for _, s := range p.Songs {
		if s.Name != name {
			continue
		}
		if artist != "" && !s.HasArtist(artist) {
			continue
		}
		return s, nil
	}
	return domain.Song{}, domain.SongNotFoundError{Name: name, Artist: artist}
}

func (r *Recommender) publish(ctx context.Context, bp Blueprint, ids []string) error {
	if r.publisher == nil {
		return fmt.Errorf("service: write-back requested but no publisher configured")
	}
	_, err := r.publisher.Publish(ctx, bp, ids)
	return err
}

func songIDs(songs []domain.Song) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}

// logBaseCharacteristics explains a neighbor ranking by showing what the
// base song (or pseudo song) looked like.
func logBaseCharacteristics(s domain.Song) {
	slog.Info("base characteristics",
		"id", s.ID,
		"name", s.Name,
		"artists", s.Artists,
		"genres", s.Genres,
		"popularity", s.Popularity,
		"danceability", s.Features.Danceability,
		"loudness", s.Features.Loudness,
		"energy", s.Features.Energy,
		"instrumentalness", s.Features.Instrumentalness,
		"tempo", s.Features.Tempo,
		"valence", s.Features.Valence,
	)
}
