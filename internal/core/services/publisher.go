package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/core/ports"
)

// Blueprint describes one generated playlist: the name and description to
// publish under, plus the predicate that recognizes an earlier edition of the
// same playlist in the user's library so it is refreshed instead of
// duplicated.
type Blueprint struct {
	Name        string
	Description string
	matches     func(domain.PlaylistInfo) bool
}

// scopedTo matches by exact name plus the ", within the playlist X"
// description marker, so identically named playlists generated from a
// different base playlist are left alone.
func scopedTo(name, base string) func(domain.PlaylistInfo) bool {
	marker := ", within the playlist " + base
	return func(p domain.PlaylistInfo) bool {
		return p.Name == name && strings.Contains(p.Description, marker)
	}
}

// possessive renders the artist name as an owner: a bare apostrophe when the
// name already ends in s, 's otherwise.
func possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

// SongPlaylist names the playlist built from a song's nearest neighbors.
func SongPlaylist(song, base string) Blueprint {
	name := fmt.Sprintf("'%s' Related", song)
	return Blueprint{
		Name:        name,
		Description: fmt.Sprintf("Songs related to '%s', within the playlist %s", song, base),
		matches:     scopedTo(name, base),
	}
}

// ArtistMixPlaylist names the playlist mixing an artist's songs with related
// ones.
func ArtistMixPlaylist(artist, base string) Blueprint {
	name := fmt.Sprintf("'%s' Mix", artist)
	return Blueprint{
		Name:        name,
		Description: fmt.Sprintf("Songs related to '%s', within the playlist %s", artist, base),
		matches:     scopedTo(name, base),
	}
}

// ArtistSongsPlaylist names the playlist holding an artist's own songs. The
// description differs depending on whether every song made it in.
func ArtistSongsPlaylist(artist, base string, all bool) Blueprint {
	name := fmt.Sprintf("This once was '%s'", artist)
	desc := fmt.Sprintf("%s songs, within the playlist %s", possessive(artist), base)
	if all {
		desc = "All " + desc
	}
	return Blueprint{
		Name:        name,
		Description: desc,
		matches:     scopedTo(name, base),
	}
}

// MoodPlaylist names a threshold-based mood selection.
func MoodPlaylist(mood domain.Mood, excludeMostlyInstrumental bool, base string) Blueprint {
	name := mood.Title()
	desc := fmt.Sprintf("Songs related to the mood %q", string(mood))
	if excludeMostlyInstrumental {
		desc += ", excluding the mostly instrumental songs"
	}
	desc += ", within the playlist " + base
	return Blueprint{
		Name:        name,
		Description: desc,
		matches:     scopedTo(name, base),
	}
}

// MostListenedPlaylist names the top-tracks playlist for one term.
func MostListenedPlaylist(term domain.Term) Blueprint {
	name := term.Title() + " Most-listened Tracks"
	return Blueprint{
		Name:        name,
		Description: fmt.Sprintf("The most listened tracks in a %s period", term.Label()),
		matches: func(p domain.PlaylistInfo) bool {
			return p.Name == name && strings.HasPrefix(p.Description, "The most listened tracks")
		},
	}
}

// MostListenedMixPlaylist names the playlist of base-playlist songs closest
// to the user's most listened tracks.
func MostListenedMixPlaylist(term domain.Term, base string) Blueprint {
	name := capitalizeFirst(term.Label() + " most listened recommendations")
	return Blueprint{
		Name:        name,
		Description: fmt.Sprintf("Songs related to the %s most listened tracks, within the playlist %s", term.Label(), base),
		matches:     scopedTo(name, base),
	}
}

// ProfileRecPlaylist names a profile-based recommendation playlist. Dated
// blueprints carry a snapshot date so each day's run is kept instead of
// overwritten.
func ProfileRecPlaylist(term domain.Term, criteria domain.Criteria, dated bool, now time.Time) Blueprint {
	name := term.Title() + " Profile Recommendation"
	desc := fmt.Sprintf("%s profile-based recommendations based on favorite %s", term.Title(), criteria.Label())
	if dated {
		name += fmt.Sprintf(" (%s - %s)", criteria.Label(), now.Format("2006-01-02"))
		desc += fmt.Sprintf(" - %s snapshot", now.Format("2006-01-02"))
	} else {
		name += fmt.Sprintf(" (%s)", criteria.Label())
	}
	return Blueprint{
		Name:        name,
		Description: desc,
		matches: func(p domain.PlaylistInfo) bool {
			return p.Name == name
		},
	}
}

// GeneralRecPlaylist names a recommendation playlist seeded from
// caller-chosen names. The description spells every seed out.
func GeneralRecPlaylist(artists, genres, tracks []string) Blueprint {
	var types []string
	desc := "General Recommendation based on "

	if len(artists) > 0 {
		types = append(types, "artists")
		desc += "the " + pluralize("artist", len(artists)) + " " + joinAnd(artists)
	}
	if len(genres) > 0 {
		if len(types) > 0 {
			desc += " and "
		}
		types = append(types, "genres")
		desc += "the " + pluralize("genre", len(genres)) + " " + joinAnd(genres)
	}
	if len(tracks) > 0 {
		if len(types) > 0 {
			desc += " and "
		}
		types = append(types, "tracks")
		desc += "the " + pluralize("track", len(tracks)) + " " + joinAnd(tracks)
	}

	name := "General Recommendation based on " + joinAnd(types)
	return Blueprint{
		Name:        name,
		Description: desc,
		matches: func(p domain.PlaylistInfo) bool {
			return p.Name == name
		},
	}
}

// PlaylistRecPlaylist names a playlist-based recommendation playlist.
func PlaylistRecPlaylist(window domain.TimeWindow, criteria domain.Criteria, dated bool, now time.Time, base string) Blueprint {
	name := "Playlist Recommendation " + window.Label()
	desc := fmt.Sprintf("Playlist-based recommendations based on favorite %s, within the playlist %s %s", criteria.Label(), base, window.Label())
	if dated {
		name += fmt.Sprintf(" (%s - %s)", criteria.Label(), now.Format("2006-01-02"))
		desc += fmt.Sprintf(" - %s snapshot", now.Format("2006-01-02"))
	} else {
		name += fmt.Sprintf(" (%s)", criteria.Label())
	}
	return Blueprint{
		Name:        name,
		Description: desc,
		matches:     scopedTo(name, base),
	}
}

// Publisher writes generated playlists back to the user's library.
type Publisher struct {
	library ports.LibraryWriter
	profile ports.UserProfile
}

// NewPublisher constructs a Publisher.
func NewPublisher(library ports.LibraryWriter, profile ports.UserProfile) *Publisher {
	return &Publisher{
		library: library,
		profile: profile,
	}
}

// Publish creates or refreshes the playlist described by the blueprint and
// fills it with the given tracks. Refreshing empties the found playlist and
// re-pushes, so the track order always matches the latest run. Returns the
// playlist id.
func (p *Publisher) Publish(ctx context.Context, bp Blueprint, songIDs []string) (string, error) {
	if len(songIDs) == 0 {
		return "", fmt.Errorf("service: refusing to publish %q with no songs", bp.Name)
	}
	uris := lo.Map(songIDs, func(id string, _ int) string {
		return "spotify:track:" + id
	})

	// 1. Look for an earlier edition among the user's playlists
	existing, err := p.library.UserPlaylists(ctx)
	if err != nil {
		return "", fmt.Errorf("service: failed to list playlists: %w", err)
	}
	found, ok := lo.Find(existing, func(info domain.PlaylistInfo) bool {
		return bp.matches(info)
	})

	var playlistID string
	if ok {
		// 2a. Empty it and refresh stale details
		playlistID = found.ID
		current, err := p.library.PlaylistTrackURIs(ctx, playlistID)
		if err != nil {
			return "", fmt.Errorf("service: failed to read current tracks: %w", err)
		}
		if len(current) > 0 {
			if err := p.library.RemoveTracks(ctx, playlistID, current); err != nil {
				return "", fmt.Errorf("service: failed to empty playlist: %w", err)
			}
		}
		if found.Description != bp.Description {
			if err := p.library.UpdatePlaylistDetails(ctx, playlistID, bp.Name, bp.Description); err != nil {
				return "", fmt.Errorf("service: failed to update playlist details: %w", err)
			}
		}
	} else {
		// 2b. Create a fresh private playlist
		userID, err := p.profile.UserID(ctx)
		if err != nil {
			return "", fmt.Errorf("service: failed to resolve user: %w", err)
		}
		playlistID, err = p.library.CreatePlaylist(ctx, userID, bp.Name, bp.Description)
		if err != nil {
			return "", fmt.Errorf("service: failed to create playlist: %w", err)
		}
	}

	// 3. Push the new tracks
	if err := p.library.AddTracks(ctx, playlistID, uris); err != nil {
		return "", fmt.Errorf("service: failed to add tracks: %w", err)
	}

	slog.Info("playlist published",
		"name", bp.Name,
		"tracks", len(uris),
		"created", !ok,
	)
	return playlistID, nil
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// joinAnd renders a list the way a sentence would: "a", "a and b",
// "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
