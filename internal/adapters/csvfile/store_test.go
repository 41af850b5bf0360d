package csvfile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

func samplePlaylist() domain.Playlist {
	return domain.Playlist{
		ID:   "pl-1",
		Name: "Road Trip, Vol. 2",
		Songs: []domain.Song{
			{
				ID:         "t1",
				Name:       "Song One",
				Artists:    []string{"Tyler, The Creator"},
				Genres:     []string{"rap", "hip hop"},
				Popularity: 81,
				AddedAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
				Features: domain.AudioFeatures{
					Danceability:     0.25,
					Energy:           0.5,
					Instrumentalness: 0.1,
					Tempo:            120.5,
					Valence:          0.75,
					Loudness:         0.3,
				},
			},
			{
				ID:      "t2",
				Name:    "Song Two",
				Artists: []string{"Artist B"},
				Genres:  []string{"pop"},
			},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlaylist(&buf, samplePlaylist()); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadPlaylist(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got.ID != "pl-1" || got.Name != "Road Trip, Vol. 2" {
		t.Fatalf("identity not restored: %q %q", got.ID, got.Name)
	}
	if len(got.Songs) != 2 {
		t.Fatalf("songs: got %d, want 2", len(got.Songs))
	}

	first := got.Songs[0]
	if first.Artists[0] != "Tyler, The Creator" {
		t.Fatalf("comma in artist cell did not survive: %v", first.Artists)
	}
	if len(first.Genres) != 2 || first.Genres[1] != "hip hop" {
		t.Fatalf("genres not restored: %v", first.Genres)
	}
	if first.Popularity != 81 || first.Features.Tempo != 120.5 {
		t.Fatalf("numeric cells not restored: %+v", first)
	}
	if want := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC); !first.AddedAt.Equal(want) {
		t.Fatalf("added_at: got %v, want %v", first.AddedAt, want)
	}
	if !got.Songs[1].AddedAt.IsZero() {
		t.Fatalf("empty added_at should restore as zero, got %v", got.Songs[1].AddedAt)
	}

	if got.Genres.Len() != 3 || got.Artists.Len() != 2 {
		t.Fatalf("vocabularies not rebuilt: genres=%d artists=%d", got.Genres.Len(), got.Artists.Len())
	}
}

func TestReadPlaylist_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "missing meta record",
			input: "id,name,artists\n",
		},
		{
			name:  "unexpected header",
			input: "#meta,pl-1,Name,2024-01-01T00:00:00Z\nid,title,artist\n",
		},
		{
			name: "bad popularity cell",
			input: "#meta,pl-1,Name,2024-01-01T00:00:00Z\n" +
				strings.Join(header, ",") + "\n" +
				`t1,Song,"[""A""]","[""rock""]",NaN,,0.1,0.2,0.3,120,0.4,0.5` + "\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPlaylist(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStore_SaveAndLatest(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	if _, err := s.Latest(context.Background(), "pl-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	p := samplePlaylist()
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Latest(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got.Songs) != 2 {
		t.Fatalf("songs: got %d, want 2", len(got.Songs))
	}

	// a later save replaces the snapshot
	p.Songs = p.Songs[:1]
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = s.Latest(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("latest after second save: %v", err)
	}
	if len(got.Songs) != 1 {
		t.Fatalf("snapshot not replaced: got %d songs", len(got.Songs))
	}
}
