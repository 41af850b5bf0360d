package knn

import (
	"math"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// listDistance scores two paired one-hot vectors. The scoring is asymmetric:
// a is the base song, b the candidate. A term the base has and the candidate
// lacks pushes the candidate away harder (+0.4) than a term only the
// candidate has (+0.2), and every shared term pulls it closer (-0.4).
func listDistance(a, b []bool) float64 {
	var distance float64
	for i := 0; i < min(len(a), len(b)); i++ {
		switch {
		case a[i] && !b[i]:
			distance += 0.4
		case !a[i] && b[i]:
			distance += 0.2
		case a[i] && b[i]:
			distance -= 0.4
		}
	}
	return distance
}

// Distance computes the weighted distance from base to other. Numeric
// components are absolute differences; instrumentalness is rounded to two
// decimals first because the upstream values carry meaningless noise digits.
// artistProfile switches popularity to its artist-profile weight.
//
// The result is a ranking heuristic, not a metric: shared genres and artists
// subtract from it, so a song can sit at a negative distance from the base.
func Distance(w Weights, base, other domain.Song, artistProfile bool) float64 {
	popularityWeight := w.Popularity
	if artistProfile {
		popularityWeight = w.ArtistPopularity
	}

	bf, of := base.Features, other.Features
	return listDistance(base.GenresIndexed, other.GenresIndexed)*w.Genres +
		math.Abs(bf.Energy-of.Energy)*w.Energy +
		math.Abs(bf.Valence-of.Valence)*w.Valence +
		listDistance(base.ArtistsIndexed, other.ArtistsIndexed)*w.Artists +
		math.Abs(bf.Tempo-of.Tempo)*w.Tempo +
		math.Abs(bf.Loudness-of.Loudness)*w.Loudness +
		math.Abs(bf.Danceability-of.Danceability)*w.Danceability +
		math.Abs(round2(bf.Instrumentalness)-round2(of.Instrumentalness))*w.Instrumentalness +
		math.Abs(float64(base.Popularity-other.Popularity))*popularityWeight
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
