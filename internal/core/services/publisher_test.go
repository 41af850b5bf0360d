package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

var blueprintDate = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestBlueprintNames(t *testing.T) {
	tests := []struct {
		name     string
		bp       Blueprint
		wantName string
		wantDesc string
	}{
		{
			name:     "song related",
			bp:       SongPlaylist("Karma Police", "Road Trip"),
			wantName: "'Karma Police' Related",
			wantDesc: "Songs related to 'Karma Police', within the playlist Road Trip",
		},
		{
			name:     "artist mix",
			bp:       ArtistMixPlaylist("Radiohead", "Road Trip"),
			wantName: "'Radiohead' Mix",
			wantDesc: "Songs related to 'Radiohead', within the playlist Road Trip",
		},
		{
			name:     "artist songs trimmed",
			bp:       ArtistSongsPlaylist("Radiohead", "Road Trip", false),
			wantName: "This once was 'Radiohead'",
			wantDesc: "Radiohead's songs, within the playlist Road Trip",
		},
		{
			name:     "artist songs complete keeps the bare apostrophe",
			bp:       ArtistSongsPlaylist("Dire Straits", "Road Trip", true),
			wantName: "This once was 'Dire Straits'",
			wantDesc: "All Dire Straits' songs, within the playlist Road Trip",
		},
		{
			name:     "mood",
			bp:       MoodPlaylist(domain.MoodHappy, false, "Road Trip"),
			wantName: "Happy songs",
			wantDesc: `Songs related to the mood "happy", within the playlist Road Trip`,
		},
		{
			name:     "mood excluding instrumental",
			bp:       MoodPlaylist(domain.MoodSad, true, "Road Trip"),
			wantName: "Sad songs",
			wantDesc: `Songs related to the mood "sad", excluding the mostly instrumental songs, within the playlist Road Trip`,
		},
		{
			name:     "most listened",
			bp:       MostListenedPlaylist(domain.TermLong),
			wantName: "Long term Most-listened Tracks",
			wantDesc: "The most listened tracks in a long term period",
		},
		{
			name:     "most listened mix",
			bp:       MostListenedMixPlaylist(domain.TermShort, "Road Trip"),
			wantName: "Short term most listened recommendations",
			wantDesc: "Songs related to the short term most listened tracks, within the playlist Road Trip",
		},
		{
			name:     "profile recommendation",
			bp:       ProfileRecPlaylist(domain.TermShort, domain.CriteriaGenres, false, blueprintDate),
			wantName: "Short term Profile Recommendation (genres)",
			wantDesc: "Short term profile-based recommendations based on favorite genres",
		},
		{
			name:     "profile recommendation dated",
			bp:       ProfileRecPlaylist(domain.TermShort, domain.CriteriaGenres, true, blueprintDate),
			wantName: "Short term Profile Recommendation (genres - 2025-03-01)",
			wantDesc: "Short term profile-based recommendations based on favorite genres - 2025-03-01 snapshot",
		},
		{
			name:     "general recommendation",
			bp:       GeneralRecPlaylist([]string{"Foo"}, []string{"rock"}, []string{"Bar"}),
			wantName: "General Recommendation based on artists, genres and tracks",
			wantDesc: "General Recommendation based on the artist Foo and the genre rock and the track Bar",
		},
		{
			name:     "general recommendation artists only",
			bp:       GeneralRecPlaylist([]string{"Foo", "Baz"}, nil, nil),
			wantName: "General Recommendation based on artists",
			wantDesc: "General Recommendation based on the artists Foo and Baz",
		},
		{
			name:     "playlist recommendation",
			bp:       PlaylistRecPlaylist(domain.WindowMonth, domain.CriteriaArtists, false, blueprintDate, "Road Trip"),
			wantName: "Playlist Recommendation for the last month (artists)",
			wantDesc: "Playlist-based recommendations based on favorite artists, within the playlist Road Trip for the last month",
		},
		{
			name:     "playlist recommendation dated mixed",
			bp:       PlaylistRecPlaylist(domain.WindowAllTime, domain.CriteriaMixed, true, blueprintDate, "Road Trip"),
			wantName: "Playlist Recommendation for all_time (genres, tracks and artists - 2025-03-01)",
			wantDesc: "Playlist-based recommendations based on favorite genres, tracks and artists, within the playlist Road Trip for all_time - 2025-03-01 snapshot",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.bp.Name != tc.wantName {
				t.Fatalf("name = %q, want %q", tc.bp.Name, tc.wantName)
			}
			if tc.bp.Description != tc.wantDesc {
				t.Fatalf("description = %q, want %q", tc.bp.Description, tc.wantDesc)
			}
		})
	}
}

func TestBlueprintMatchers(t *testing.T) {
	tests := []struct {
		name string
		bp   Blueprint
		info domain.PlaylistInfo
		want bool
	}{
		{
			name: "scoped matcher accepts the same name and base",
			bp:   SongPlaylist("Karma Police", "Road Trip"),
			info: domain.PlaylistInfo{Name: "'Karma Police' Related", Description: "Songs related to 'Karma Police', within the playlist Road Trip"},
			want: true,
		},
		{
			name: "scoped matcher rejects another base playlist",
			bp:   SongPlaylist("Karma Police", "Road Trip"),
			info: domain.PlaylistInfo{Name: "'Karma Police' Related", Description: "Songs related to 'Karma Police', within the playlist Gym"},
			want: false,
		},
		{
			name: "scoped matcher rejects another name",
			bp:   SongPlaylist("Karma Police", "Road Trip"),
			info: domain.PlaylistInfo{Name: "'Creep' Related", Description: "Songs related to 'Creep', within the playlist Road Trip"},
			want: false,
		},
		{
			name: "most listened matches on the description prefix",
			bp:   MostListenedPlaylist(domain.TermLong),
			info: domain.PlaylistInfo{Name: "Long term Most-listened Tracks", Description: "The most listened tracks in a long term period"},
			want: true,
		},
		{
			name: "most listened rejects a hand-written description",
			bp:   MostListenedPlaylist(domain.TermLong),
			info: domain.PlaylistInfo{Name: "Long term Most-listened Tracks", Description: "Hand-curated favorites"},
			want: false,
		},
		{
			name: "profile recommendation matches by name alone",
			bp:   ProfileRecPlaylist(domain.TermShort, domain.CriteriaTracks, false, blueprintDate),
			info: domain.PlaylistInfo{Name: "Short term Profile Recommendation (tracks)", Description: "edited by hand"},
			want: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bp.matches(tc.info); got != tc.want {
				t.Fatalf("matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPublish_CreatesWhenMissing(t *testing.T) {
	library := &fakeLibrary{createdID: "new-pl"}
	pub := NewPublisher(library, &fakeProfile{userID: "user-42"})

	id, err := pub.Publish(context.Background(), SongPlaylist("Karma Police", "Road Trip"), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "new-pl" {
		t.Fatalf("id = %q, want %q", id, "new-pl")
	}
	if library.createdName != "'Karma Police' Related" {
		t.Fatalf("created name = %q", library.createdName)
	}
	if !equalStrings(library.added["new-pl"], []string{"spotify:track:a", "spotify:track:b"}) {
		t.Fatalf("added = %v", library.added["new-pl"])
	}
	if len(library.removed) != 0 {
		t.Fatalf("removed = %v on the create path", library.removed)
	}
}

func TestPublish_RefreshesExisting(t *testing.T) {
	bp := SongPlaylist("Karma Police", "Road Trip")
	library := &fakeLibrary{
		playlists: []domain.PlaylistInfo{{ID: "old-pl", Name: bp.Name, Description: bp.Description}},
		uris:      map[string][]string{"old-pl": {"spotify:track:z"}},
	}
	// The refresh path never needs the user id.
	pub := NewPublisher(library, &fakeProfile{userErr: errors.New("boom")})

	id, err := pub.Publish(context.Background(), bp, []string{"a"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "old-pl" {
		t.Fatalf("id = %q, want %q", id, "old-pl")
	}
	if !equalStrings(library.removed["old-pl"], []string{"spotify:track:z"}) {
		t.Fatalf("removed = %v", library.removed["old-pl"])
	}
	if !equalStrings(library.added["old-pl"], []string{"spotify:track:a"}) {
		t.Fatalf("added = %v", library.added["old-pl"])
	}
	if library.updatedID != "" {
		t.Fatalf("details updated although the description matches")
	}
	if library.createdName != "" {
		t.Fatalf("created %q instead of refreshing", library.createdName)
	}
}

func TestPublish_RefreshUpdatesStaleDescription(t *testing.T) {
	bp := ArtistSongsPlaylist("Radiohead", "Road Trip", true)
	stale := ArtistSongsPlaylist("Radiohead", "Road Trip", false)
	library := &fakeLibrary{
		playlists: []domain.PlaylistInfo{{ID: "old-pl", Name: stale.Name, Description: stale.Description}},
	}
	pub := NewPublisher(library, &fakeProfile{})

	if _, err := pub.Publish(context.Background(), bp, []string{"a"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if library.updatedID != "old-pl" || library.updatedDesc != bp.Description {
		t.Fatalf("details not refreshed: id=%q desc=%q", library.updatedID, library.updatedDesc)
	}
	if len(library.removed) != 0 {
		t.Fatalf("removed = %v from an already empty playlist", library.removed)
	}
}

func TestPublish_RefusesEmptySongList(t *testing.T) {
	pub := NewPublisher(&fakeLibrary{}, &fakeProfile{})

	if _, err := pub.Publish(context.Background(), SongPlaylist("Karma Police", "Road Trip"), nil); err == nil {
		t.Fatalf("expected error for an empty song list")
	}
}

func TestPublish_ListError(t *testing.T) {
	pub := NewPublisher(&fakeLibrary{listErr: errors.New("boom")}, &fakeProfile{})

	if _, err := pub.Publish(context.Background(), SongPlaylist("Karma Police", "Road Trip"), []string{"a"}); err == nil {
		t.Fatalf("expected the listing error to propagate")
	}
}
