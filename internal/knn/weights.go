// Package knn implements the weighted nearest-neighbor distance used to rank
// songs against a base song inside one playlist.
package knn

import (
	"fmt"
	"log/slog"
)

// Weights holds the multipliers applied to each distance component. The
// components sit on very different scales (tempo is BPM, popularity is
// 0..100, the rest live in [0,1]), so the defaults bake the scale
// correction in.
type Weights struct {
	Genres           float64 `yaml:"genres"`
	Artists          float64 `yaml:"artists"`
	Popularity       float64 `yaml:"popularity"`
	ArtistPopularity float64 `yaml:"artist_popularity"`
	Danceability     float64 `yaml:"danceability"`
	Energy           float64 `yaml:"energy"`
	Instrumentalness float64 `yaml:"instrumentalness"`
	Tempo            float64 `yaml:"tempo"`
	Valence          float64 `yaml:"valence"`
	Loudness         float64 `yaml:"loudness"`
}

// DefaultWeights returns the calibration the recommendation quality was
// tuned against. ArtistPopularity replaces Popularity when ranking against
// an artist profile, where popularity spread matters far less.
func DefaultWeights() Weights {
	return Weights{
		Genres:           0.8,
		Artists:          0.38,
		Popularity:       0.015,
		ArtistPopularity: 0.003,
		Danceability:     0.25,
		Energy:           0.65,
		Instrumentalness: 0.4,
		Tempo:            0.0025,
		Valence:          0.93,
		Loudness:         0.15,
	}
}

// Merge overlays the non-zero fields of override onto base, so partial
// calibrations keep the remaining defaults. Overrides are logged to make a
// drifted config file visible.
func Merge(base, override Weights) Weights {
	merged := base
	var changed []string

	apply := func(name string, dst *float64, val float64) {
		if val == 0 || val == *dst {
			return
		}
		changed = append(changed, fmt.Sprintf("%s: %v -> %v", name, *dst, val))
		*dst = val
	}

	apply("genres", &merged.Genres, override.Genres)
	apply("artists", &merged.Artists, override.Artists)
	apply("popularity", &merged.Popularity, override.Popularity)
	apply("artist_popularity", &merged.ArtistPopularity, override.ArtistPopularity)
	apply("danceability", &merged.Danceability, override.Danceability)
	apply("energy", &merged.Energy, override.Energy)
	apply("instrumentalness", &merged.Instrumentalness, override.Instrumentalness)
	apply("tempo", &merged.Tempo, override.Tempo)
	apply("valence", &merged.Valence, override.Valence)
	apply("loudness", &merged.Loudness, override.Loudness)

	if len(changed) > 0 {
		slog.Info("distance weights overridden", "overrides", changed)
	}
	return merged
}
