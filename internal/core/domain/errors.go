package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrDuplicateSong   = errors.New("domain: duplicate song id")
	ErrEmptyPlaylist   = errors.New("domain: playlist has no songs")
	ErrEmptyTimeWindow = errors.New("domain: no songs inside the requested time window")

	// ErrSongNotFound and ErrArtistNotFound are matched via errors.Is
	// against their carrier types below.
	ErrSongNotFound   = errors.New("song not found in playlist")
	ErrArtistNotFound = errors.New("artist not found in playlist")
)

// SongNotFoundError reports a failed base-song lookup with the search terms
// that produced it.
type SongNotFoundError struct {
	Name   string
	Artist string
}

func (e SongNotFoundError) Error() string {
	if e.Artist == "" {
		return fmt.Sprintf("song %q not found in playlist", e.Name)
	}
	return fmt.Sprintf("song %q by %q not found in playlist", e.Name, e.Artist)
}

func (e SongNotFoundError) Is(target error) bool {
	return target == ErrSongNotFound
}

// ArtistNotFoundError reports that no playlist song credits the artist.
type ArtistNotFoundError struct {
	Artist string
}

func (e ArtistNotFoundError) Error() string {
	return fmt.Sprintf("artist %q not found in playlist", e.Artist)
}

func (e ArtistNotFoundError) Is(target error) bool {
	return target == ErrArtistNotFound
}
