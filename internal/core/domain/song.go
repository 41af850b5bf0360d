package domain

import (
	"slices"
	"time"
)

// Song is one row of the playlist table: identity, credits, genre tags and
// the audio profile used by the distance heuristic.
type Song struct {
	ID         string
	Name       string
	Artists    []string
	Genres     []string
	Popularity int // 0..100
	AddedAt    time.Time
	Features   AudioFeatures

	// One-hot membership vectors over the owning playlist's vocabularies.
	// Populated by Playlist.Reindex; zero-length until then.
	GenresIndexed  []bool
	ArtistsIndexed []bool
}

// AudioFeatures holds the numeric profile of a song. All fields except
// Tempo (BPM) live in [0,1]; Loudness is stored pre-normalized (raw dB
// divided by -60) so it shares that scale.
type AudioFeatures struct {
	Danceability     float64
	Energy           float64
	Instrumentalness float64
	Tempo            float64
	Valence          float64
	Loudness         float64
}

// URI returns the track URI understood by the playlist write endpoints.
func (s Song) URI() string {
	return "spotify:track:" + s.ID
}

// HasArtist reports whether name appears in the song's credited artists.
func (s Song) HasArtist(name string) bool {
	return slices.Contains(s.Artists, name)
}
