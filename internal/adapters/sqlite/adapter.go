// Package sqlite provides a SQLite-backed implementation of the snapshot
// store port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// keepSnapshots bounds the per-playlist history retained by Save.
const keepSnapshots = 5

// Store implements the snapshot store port for SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a connection and runs the schema migration.
func NewStore(storagePath string) (*Store, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close ensures the DB connection is closed gracefully.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a new snapshot of the playlist and prunes history past the
// retention bound. Songs keep their playlist position so a restored
// snapshot reproduces the original order.
func (s *Store) Save(ctx context.Context, p domain.Playlist) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error before commit

	snapshotID := uuid.NewString()
	loadedAt := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, playlist_id, name, loaded_at) VALUES (?, ?, ?, ?)",
		snapshotID, p.ID, p.Name, loadedAt,
	); err != nil {
		return fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_songs (
			snapshot_id, position, song_id, name, artists, genres, popularity, added_at,
			danceability, energy, instrumentalness, tempo, valence, loudness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, song := range p.Songs {
		artists, err := json.Marshal(song.Artists)
		if err != nil {
			return fmt.Errorf("failed to encode artists for %s: %w", song.ID, err)
		}
		genres, err := json.Marshal(song.Genres)
		if err != nil {
			return fmt.Errorf("failed to encode genres for %s: %w", song.ID, err)
		}

		var addedAt sql.NullTime
		if !song.AddedAt.IsZero() {
			addedAt = sql.NullTime{Time: song.AddedAt.UTC(), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			snapshotID,
			i,
			song.ID,
			song.Name,
			string(artists),
			string(genres),
			song.Popularity,
			addedAt,
			song.Features.Danceability,
			song.Features.Energy,
			song.Features.Instrumentalness,
			song.Features.Tempo,
			song.Features.Valence,
			song.Features.Loudness,
		); err != nil {
			return fmt.Errorf("failed to save song %s: %w", song.ID, err)
		}
	}

	if err := s.prune(ctx, tx, p.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// Latest restores the most recent snapshot of the playlist, rebuilding the
// vocabularies and one-hot vectors that are not persisted.
func (s *Store) Latest(ctx context.Context, playlistID string) (domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, loaded_at FROM snapshots
		WHERE playlist_id = ?
		ORDER BY loaded_at DESC, rowid DESC
		LIMIT 1
	`, playlistID)

	var snapshotID, name string
	var loadedAt time.Time
	if err := row.Scan(&snapshotID, &name, &loadedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	playlist, err := domain.NewPlaylist(playlistID, name)
	if err != nil {
		return domain.Playlist{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, name, artists, genres, popularity, added_at,
			danceability, energy, instrumentalness, tempo, valence, loudness
		FROM snapshot_songs
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to load snapshot songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var song domain.Song
		var artists, genres string
		var addedAt sql.NullTime
		if err := rows.Scan(
			&song.ID,
			&song.Name,
			&artists,
			&genres,
			&song.Popularity,
			&addedAt,
			&song.Features.Danceability,
			&song.Features.Energy,
			&song.Features.Instrumentalness,
			&song.Features.Tempo,
			&song.Features.Valence,
			&song.Features.Loudness,
		); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to scan snapshot song: %w", err)
		}

		if err := json.Unmarshal([]byte(artists), &song.Artists); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to decode artists for %s: %w", song.ID, err)
		}
		if err := json.Unmarshal([]byte(genres), &song.Genres); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to decode genres for %s: %w", song.ID, err)
		}
		if addedAt.Valid {
			song.AddedAt = addedAt.Time.UTC()
		}

		if err := playlist.AddSong(song); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to restore song %s: %w", song.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to iterate snapshot songs: %w", err)
	}

	playlist.Reindex()

	slog.Debug("snapshot restored",
		"playlist", playlistID, "songs", len(playlist.Songs), "loaded_at", loadedAt)

	return *playlist, nil
}

// prune drops everything past the newest keepSnapshots entries for the
// playlist, songs first since the cascade is not enforced.
func (s *Store) prune(ctx context.Context, tx *sql.Tx, playlistID string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM snapshots
		WHERE playlist_id = ?
		ORDER BY loaded_at DESC, rowid DESC
		LIMIT -1 OFFSET ?
	`, playlistID, keepSnapshots)
	if err != nil {
		return fmt.Errorf("failed to list stale snapshots: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan stale snapshot: %w", err)
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate stale snapshots: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_songs WHERE snapshot_id = ?", id); err != nil {
			return fmt.Errorf("failed to prune snapshot songs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to prune snapshot: %w", err)
		}
	}
	if len(stale) > 0 {
		slog.Debug("pruned playlist snapshots", "playlist", playlistID, "count", len(stale))
	}

	return nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		playlist_id TEXT NOT NULL,
		name TEXT NOT NULL,
		loaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_playlist
		ON snapshots(playlist_id, loaded_at);

	CREATE TABLE IF NOT EXISTS snapshot_songs (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		song_id TEXT NOT NULL,
		name TEXT NOT NULL,
		artists TEXT NOT NULL,
		genres TEXT NOT NULL,
		popularity INTEGER NOT NULL,
		added_at DATETIME,
		danceability REAL,
		energy REAL,
		instrumentalness REAL,
		tempo REAL,
		valence REAL,
		loudness REAL,
		PRIMARY KEY (snapshot_id, position),
		FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}

	return nil
}
