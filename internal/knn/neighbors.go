package knn

import (
	"sort"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// Neighbor pairs a candidate song with its distance from the base song.
type Neighbor struct {
	Song     domain.Song
	Distance float64
}

// Neighbors ranks every song against base and returns the k closest, in
// ascending distance. The base song itself is excluded by id. The scan is a
// deliberate brute force over the full playlist; ties keep playlist order.
func Neighbors(w Weights, songs []domain.Song, base domain.Song, k int, artistProfile bool) []Neighbor {
	if k <= 0 {
		return nil
	}

	candidates := make([]Neighbor, 0, len(songs))
	for _, s := range songs {
		if s.ID == base.ID {
			continue
		}
		candidates = append(candidates, Neighbor{
			Song:     s,
			Distance: Distance(w, base, s, artistProfile),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// Songs strips the distances off a neighbor ranking.
func Songs(neighbors []Neighbor) []domain.Song {
	out := make([]domain.Song, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Song
	}
	return out
}
