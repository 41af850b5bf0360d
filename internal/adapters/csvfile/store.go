// Package csvfile stores playlist snapshots as flat CSV files, one file
// per playlist holding the newest snapshot only. The same format backs the
// export command.
package csvfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// metaTag marks the first record, which carries the playlist identity.
const metaTag = "#meta"

const (
	colID = iota
	colName
	colArtists
	colGenres
	colPopularity
	colAddedAt
	colDanceability
	colEnergy
	colInstrumentalness
	colTempo
	colValence
	colLoudness
	colCount
)

var header = []string{
	"id", "name", "artists", "genres", "popularity", "added_at",
	"danceability", "energy", "instrumentalness", "tempo", "valence", "loudness",
}

// Store implements the snapshot store port on flat files.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("csvfile: cache dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvfile: create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Save(ctx context.Context, p domain.Playlist) error {
	f, err := os.Create(s.path(p.ID))
	if err != nil {
		return fmt.Errorf("csvfile: create snapshot file: %w", err)
	}
	if err := WritePlaylist(f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvfile: close snapshot file: %w", err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, playlistID string) (domain.Playlist, error) {
	f, err := os.Open(s.path(playlistID))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Playlist{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("csvfile: open snapshot file: %w", err)
	}
	defer f.Close()

	return ReadPlaylist(f)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) path(playlistID string) string {
	return filepath.Join(s.dir, playlistID+".csv")
}

// WritePlaylist renders the playlist as CSV: a meta record carrying the
// playlist identity, the fixed header, then one record per song in
// playlist order. Artists and genres cells hold JSON arrays so each list
// stays in a single cell.
func WritePlaylist(w io.Writer, p domain.Playlist) error {
	cw := csv.NewWriter(w)

	meta := []string{metaTag, p.ID, p.Name, time.Now().UTC().Format(time.RFC3339)}
	if err := cw.Write(meta); err != nil {
		return fmt.Errorf("csvfile: write meta record: %w", err)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csvfile: write header: %w", err)
	}

	for _, song := range p.Songs {
		rec, err := songRecord(song)
		if err != nil {
			return err
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csvfile: write song %s: %w", song.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadPlaylist parses a CSV produced by WritePlaylist and rebuilds the
// playlist, vocabularies included.
func ReadPlaylist(r io.Reader) (domain.Playlist, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // meta and song records differ in width

	meta, err := cr.Read()
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("csvfile: read meta record: %w", err)
	}
	if len(meta) < 3 || meta[0] != metaTag {
		return domain.Playlist{}, errors.New("csvfile: missing meta record")
	}

	playlist, err := domain.NewPlaylist(meta[1], meta[2])
	if err != nil {
		return domain.Playlist{}, err
	}

	head, err := cr.Read()
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("csvfile: read header: %w", err)
	}
	if !slices.Equal(head, header) {
		return domain.Playlist{}, errors.New("csvfile: unexpected header")
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Playlist{}, fmt.Errorf("csvfile: read song record: %w", err)
		}
		song, err := parseRecord(rec)
		if err != nil {
			return domain.Playlist{}, err
		}
		if err := playlist.AddSong(song); err != nil {
			return domain.Playlist{}, fmt.Errorf("csvfile: restore song %s: %w", song.ID, err)
		}
	}

	playlist.Reindex()
	return *playlist, nil
}

func songRecord(song domain.Song) ([]string, error) {
	artists, err := json.Marshal(song.Artists)
	if err != nil {
		return nil, fmt.Errorf("csvfile: encode artists for %s: %w", song.ID, err)
	}
	genres, err := json.Marshal(song.Genres)
	if err != nil {
		return nil, fmt.Errorf("csvfile: encode genres for %s: %w", song.ID, err)
	}

	addedAt := ""
	if !song.AddedAt.IsZero() {
		addedAt = song.AddedAt.UTC().Format(time.RFC3339)
	}

	rec := make([]string, colCount)
	rec[colID] = song.ID
	rec[colName] = song.Name
	rec[colArtists] = string(artists)
	rec[colGenres] = string(genres)
	rec[colPopularity] = strconv.Itoa(song.Popularity)
	rec[colAddedAt] = addedAt
	rec[colDanceability] = formatFloat(song.Features.Danceability)
	rec[colEnergy] = formatFloat(song.Features.Energy)
	rec[colInstrumentalness] = formatFloat(song.Features.Instrumentalness)
	rec[colTempo] = formatFloat(song.Features.Tempo)
	rec[colValence] = formatFloat(song.Features.Valence)
	rec[colLoudness] = formatFloat(song.Features.Loudness)
	return rec, nil
}

func parseRecord(rec []string) (domain.Song, error) {
	if len(rec) != colCount {
		return domain.Song{}, fmt.Errorf("csvfile: song record has %d fields, want %d", len(rec), colCount)
	}

	song := domain.Song{
		ID:   rec[colID],
		Name: rec[colName],
	}

	if err := json.Unmarshal([]byte(rec[colArtists]), &song.Artists); err != nil {
		return domain.Song{}, fmt.Errorf("csvfile: decode artists for %s: %w", song.ID, err)
	}
	if err := json.Unmarshal([]byte(rec[colGenres]), &song.Genres); err != nil {
		return domain.Song{}, fmt.Errorf("csvfile: decode genres for %s: %w", song.ID, err)
	}

	popularity, err := strconv.Atoi(rec[colPopularity])
	if err != nil {
		return domain.Song{}, fmt.Errorf("csvfile: parse popularity for %s: %w", song.ID, err)
	}
	song.Popularity = popularity

	if rec[colAddedAt] != "" {
		addedAt, err := time.Parse(time.RFC3339, rec[colAddedAt])
		if err != nil {
			return domain.Song{}, fmt.Errorf("csvfile: parse added_at for %s: %w", song.ID, err)
		}
		song.AddedAt = addedAt
	}

	fields := []struct {
		col int
		dst *float64
	}{
		{colDanceability, &song.Features.Danceability},
		{colEnergy, &song.Features.Energy},
		{colInstrumentalness, &song.Features.Instrumentalness},
		{colTempo, &song.Features.Tempo},
		{colValence, &song.Features.Valence},
		{colLoudness, &song.Features.Loudness},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(rec[f.col], 64)
		if err != nil {
			return domain.Song{}, fmt.Errorf("csvfile: parse %s for %s: %w", header[f.col], song.ID, err)
		}
		*f.dst = v
	}

	return song, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
