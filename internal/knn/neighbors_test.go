package knn

import (
	"testing"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// popSong builds songs that differ only in popularity so expected distances
// are easy to reason about (distance = |pop delta| * 0.015).
func popSong(id string, popularity int) domain.Song {
	return domain.Song{ID: id, Popularity: popularity}
}

func TestNeighbors_RankingAndSelfExclusion(t *testing.T) {
	w := DefaultWeights()
	base := popSong("base", 50)
	songs := []domain.Song{
		popSong("far", 70),
		base,
		popSong("near", 51),
		popSong("exact", 50),
	}

	got := Neighbors(w, songs, base, 10, false)

	wantOrder := []string{"exact", "near", "far"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d neighbors, got %d", len(wantOrder), len(got))
	}
	for i, id := range wantOrder {
		if got[i].Song.ID != id {
			t.Fatalf("neighbor %d: got %q, want %q", i, got[i].Song.ID, id)
		}
	}
	if got[0].Distance != 0 {
		t.Fatalf("identical song should be at distance 0, got %v", got[0].Distance)
	}
}

func TestNeighbors_TiesKeepPlaylistOrder(t *testing.T) {
	w := DefaultWeights()
	base := popSong("base", 50)
	songs := []domain.Song{
		popSong("tie-first", 51),
		popSong("tie-second", 49),
		popSong("tie-third", 51),
	}

	got := Neighbors(w, songs, base, 3, false)

	wantOrder := []string{"tie-first", "tie-second", "tie-third"}
	for i, id := range wantOrder {
		if got[i].Song.ID != id {
			t.Fatalf("neighbor %d: got %q, want %q", i, got[i].Song.ID, id)
		}
	}
}

func TestNeighbors_TruncatesToK(t *testing.T) {
	w := DefaultWeights()
	base := popSong("base", 50)
	songs := []domain.Song{
		popSong("a", 55),
		popSong("b", 52),
		popSong("c", 58),
	}

	got := Neighbors(w, songs, base, 2, false)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	if got[0].Song.ID != "b" || got[1].Song.ID != "a" {
		t.Fatalf("unexpected top-2: %q, %q", got[0].Song.ID, got[1].Song.ID)
	}

	if got := Neighbors(w, songs, base, 0, false); got != nil {
		t.Fatalf("expected nil for k=0, got %+v", got)
	}
}

func TestSongs(t *testing.T) {
	neighbors := []Neighbor{
		{Song: popSong("a", 1), Distance: 0.1},
		{Song: popSong("b", 2), Distance: 0.2},
	}
	songs := Songs(neighbors)
	if len(songs) != 2 || songs[0].ID != "a" || songs[1].ID != "b" {
		t.Fatalf("unexpected songs: %+v", songs)
	}
}

func TestMerge(t *testing.T) {
	merged := Merge(DefaultWeights(), Weights{Valence: 0.5, Tempo: 0.01})

	if merged.Valence != 0.5 || merged.Tempo != 0.01 {
		t.Fatalf("overrides not applied: %+v", merged)
	}
	if merged.Genres != 0.8 || merged.Popularity != 0.015 {
		t.Fatalf("zero-valued overrides must keep defaults: %+v", merged)
	}
}
