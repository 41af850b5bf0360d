package services

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/knn"
)

// ArtistSongsRequest parameterizes the artist-only selection. EnsureAll
// keeps every song by the artist even when that exceeds Count.
type ArtistSongsRequest struct {
	Artist    string
	Count     int
	EnsureAll bool
	Build     bool
}

// ArtistSongs returns the playlist songs credited to the artist, in playlist
// order.
func (r *Recommender) ArtistSongs(ctx context.Context, p *domain.Playlist, req ArtistSongsRequest) ([]domain.Song, error) {
	if req.Count < 1 || req.Count > 1500 {
		return nil, fmt.Errorf("service: count must be between 1 and 1500, got %d", req.Count)
	}

	songs := p.SongsByArtist(req.Artist)
	if len(songs) == 0 {
		return nil, domain.ArtistNotFoundError{Artist: req.Artist}
	}
	if !req.EnsureAll && len(songs) >= req.Count {
		songs = songs[:req.Count]
	}

	if req.Build {
		bp := ArtistSongsPlaylist(req.Artist, p.Name, req.EnsureAll)
		if err := r.publish(ctx, bp, songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}

// ArtistRelatedRequest parameterizes the artist mix: the artist's own songs
// padded with the playlist songs closest to the artist's overall profile.
type ArtistRelatedRequest struct {
	Artist  string
	Count   int
	Build   bool
	LogBase bool
}

// ArtistRelated blends the artist's songs with their nearest non-artist
// neighbors. The neighbor search runs against a pseudo song averaging the
// artist's catalog inside the playlist, under the artist-profile popularity
// weight. When the artist alone already fills Count, a third of their song
// count is appended anyway so the mix stays a mix.
func (r *Recommender) ArtistRelated(ctx context.Context, p *domain.Playlist, req ArtistRelatedRequest) ([]domain.Song, error) {
	if req.Count < 1 || req.Count > 1500 {
		return nil, fmt.Errorf("service: count must be between 1 and 1500, got %d", req.Count)
	}

	artistSongs := p.SongsByArtist(req.Artist)
	if len(artistSongs) == 0 {
		return nil, domain.ArtistNotFoundError{Artist: req.Artist}
	}
	rest := lo.Filter(p.Songs, func(s domain.Song, _ int) bool {
		return !s.HasArtist(req.Artist)
	})

	center := centroid(req.Artist+" Mix", artistSongs, p)
	if req.LogBase {
		logBaseCharacteristics(center)
	}

	count := req.Count - len(artistSongs)
	if len(artistSongs) >= req.Count {
		count = len(artistSongs) / 3
	}
	mix := knn.Songs(knn.Neighbors(r.weights, rest, center, count, true))

	result := make([]domain.Song, 0, len(artistSongs)+len(mix))
	result = append(result, artistSongs...)
	result = append(result, mix...)

	if req.Build {
		bp := ArtistMixPlaylist(req.Artist, p.Name)
		if err := r.publish(ctx, bp, songIDs(result)); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// centroid collapses a set of songs into one pseudo song: first-seen union
// of genres and artists, mean audio features, rounded mean popularity. Its
// one-hot vectors are encoded against the playlist vocabularies so it can be
// ranked like a real member. The empty id keeps it from excluding anyone.
func centroid(name string, songs []domain.Song, p *domain.Playlist) domain.Song {
	genres := lo.Uniq(lo.FlatMap(songs, func(s domain.Song, _ int) []string {
		return s.Genres
	}))
	artists := lo.Uniq(lo.FlatMap(songs, func(s domain.Song, _ int) []string {
		return s.Artists
	}))

	n := float64(len(songs))
	var sum domain.AudioFeatures
	var popularity float64
	for _, s := range songs {
		sum = addFeatures(sum, s.Features)
		popularity += float64(s.Popularity)
	}

	return domain.Song{
		Name:       name,
		Genres:     genres,
		Artists:    artists,
		Popularity: int(math.Round(popularity / n)),
		Features: domain.AudioFeatures{
			Danceability:     sum.Danceability / n,
			Energy:           sum.Energy / n,
			Instrumentalness: sum.Instrumentalness / n,
			Tempo:            sum.Tempo / n,
			Valence:          sum.Valence / n,
			Loudness:         sum.Loudness / n,
		},
		GenresIndexed:  p.Genres.Encode(genres),
		ArtistsIndexed: p.Artists.Encode(artists),
	}
}
