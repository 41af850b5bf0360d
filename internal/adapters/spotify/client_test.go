package spotify_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harmoni-labs/mixtape/internal/adapters/spotify"
	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/core/ports"
)

// fixtureServer simulates the slices of the Web API the adapter touches.
// Playlist p1 holds 103 tracks so pagination crosses a page boundary.
type fixtureServer struct {
	*httptest.Server

	artistCalls   int
	featuresCalls int
	addBodies     [][]string
	removeBodies  [][]string
}

func newFixtureServer(t *testing.T) *fixtureServer {
	t.Helper()
	fs := &fixtureServer{}

	trackJSON := func(i int) map[string]any {
		artists := []map[string]any{{"id": "a1", "name": "Artist One"}}
		if i%2 == 1 {
			artists = append(artists, map[string]any{"id": "a2", "name": "Artist Two"})
		}
		return map[string]any{
			"id":         fmt.Sprintf("t%03d", i),
			"uri":        fmt.Sprintf("spotify:track:t%03d", i),
			"name":       fmt.Sprintf("Track %03d", i),
			"popularity": 40 + i%20,
			"artists":    artists,
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/playlists/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "p1", "name": "Road Trip"})
	})

	// Go 1.21's ServeMux has no method or wildcard patterns, so the three
	// playlist-tracks routes (GET p1, POST {id}, DELETE {id}) are defined as
	// plain handlers and dispatched by hand under one subtree registration
	// further down.
	getPlaylistTracks := func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		const total = 103

		var items []map[string]any
		for i := offset; i < total && i < offset+limit; i++ {
			items = append(items, map[string]any{
				"added_at": "2023-05-01T10:00:00Z",
				"track":    trackJSON(i),
			})
		}
		writeJSON(t, w, map[string]any{"items": items, "total": total})
	}

	mux.HandleFunc("/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"added_at": "2024-01-15T08:30:00Z", "track": trackJSON(0)},
				{"added_at": "invalid-timestamp", "track": trackJSON(1)},
			},
			"total": 2,
		})
	})

	mux.HandleFunc("/artists", func(w http.ResponseWriter, r *http.Request) {
		fs.artistCalls++
		genres := map[string][]string{
			"a1": {"rock", "indie"},
			"a2": {"pop"},
		}
		var out []map[string]any
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if g, ok := genres[id]; ok {
				out = append(out, map[string]any{"id": id, "name": "Artist " + id, "genres": g})
			} else {
				out = append(out, nil)
			}
		}
		writeJSON(t, w, map[string]any{"artists": out})
	})

	mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		fs.featuresCalls++
		var out []map[string]any
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			out = append(out, map[string]any{
				"id":               id,
				"danceability":     0.7,
				"energy":           0.8,
				"instrumentalness": 0.2,
				"tempo":            120.0,
				"valence":          0.6,
				"loudness":         -30.0,
			})
		}
		writeJSON(t, w, map[string]any{"audio_features": out})
	})

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "user-1", "display_name": "Tester"})
	})

	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		const total = 51

		var items []map[string]any
		for i := offset; i < total && i < offset+limit; i++ {
			items = append(items, map[string]any{
				"id":          fmt.Sprintf("pl%02d", i),
				"name":        fmt.Sprintf("Playlist %02d", i),
				"description": fmt.Sprintf("description %02d", i),
			})
		}
		writeJSON(t, w, map[string]any{"items": items, "total": total})
	})

	mux.HandleFunc("/users/user-1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Public      bool   `json:"public"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode create body: %v", err)
		}
		if body.Public {
			t.Error("created playlist must be private")
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": "new-playlist"})
	})

	addPlaylistTracks := func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Uris []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode add body: %v", err)
		}
		fs.addBodies = append(fs.addBodies, body.Uris)
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"snapshot_id": "snap"})
	}

	removePlaylistTracks := func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tracks []struct {
				URI string `json:"uri"`
			} `json:"tracks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode remove body: %v", err)
		}
		uris := make([]string, len(body.Tracks))
		for i, tr := range body.Tracks {
			uris[i] = tr.URI
		}
		fs.removeBodies = append(fs.removeBodies, uris)
		writeJSON(t, w, map[string]any{"snapshot_id": "snap"})
	}

	mux.HandleFunc("/playlists/", func(w http.ResponseWriter, r *http.Request) {
		id, rest, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/playlists/"), "/")
		if rest != "tracks" {
			http.NotFound(w, r)
			return
		}
		switch {
		case r.Method == http.MethodGet && id == "p1":
			getPlaylistTracks(w, r)
		case r.Method == http.MethodPost:
			addPlaylistTracks(w, r)
		case r.Method == http.MethodDelete:
			removePlaylistTracks(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Nowhere Band" {
			writeJSON(t, w, map[string]any{"artists": map[string]any{"items": []any{}}})
			return
		}
		writeJSON(t, w, map[string]any{
			"artists": map[string]any{
				"items": []map[string]any{
					{"id": "art-9", "name": "Found Artist", "genres": []string{"shoegaze"}},
				},
			},
		})
	})

	mux.HandleFunc("/me/top/tracks", func(w http.ResponseWriter, r *http.Request) {
		if tr := r.URL.Query().Get("time_range"); tr != "short_term" {
			t.Errorf("unexpected time_range %q", tr)
		}
		writeJSON(t, w, map[string]any{"items": []map[string]any{trackJSON(0), trackJSON(1)}})
	})

	mux.HandleFunc("/me/top/artists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "a1", "name": "Artist One", "genres": []string{"rock", "indie"}},
			},
		})
	})

	mux.HandleFunc("/recommendations", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("seed_artists") != "a1,a2" {
			t.Errorf("unexpected seed_artists %q", q.Get("seed_artists"))
		}
		if q.Get("min_energy") != "0.4" || q.Get("max_energy") != "0.96" || q.Get("target_energy") != "0.7" {
			t.Errorf("unexpected energy window: min=%q max=%q target=%q",
				q.Get("min_energy"), q.Get("max_energy"), q.Get("target_energy"))
		}
		writeJSON(t, w, map[string]any{"tracks": []map[string]any{trackJSON(5)}})
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func newTestClient(url string) *spotify.Client {
	return spotify.NewClient(http.DefaultClient, spotify.Config{
		BaseURL:     url,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})
}

func TestPlaylistSongs_PaginatesAndHydrates(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	var progress []string
	songs, err := client.PlaylistSongs(context.Background(), "p1", func(done, total int) {
		progress = append(progress, fmt.Sprintf("%d/%d", done, total))
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(songs) != 103 {
		t.Fatalf("expected 103 songs, got %d", len(songs))
	}

	first := songs[0]
	if first.ID != "t000" || first.Name != "Track 000" {
		t.Fatalf("unexpected first song: %+v", first)
	}
	if len(first.Artists) != 1 || first.Artists[0] != "Artist One" {
		t.Fatalf("unexpected artists: %v", first.Artists)
	}
	if want := []string{"rock", "indie"}; !equalStrings(first.Genres, want) {
		t.Fatalf("genres: got %v, want %v", first.Genres, want)
	}

	second := songs[1]
	if want := []string{"rock", "indie", "pop"}; !equalStrings(second.Genres, want) {
		t.Fatalf("two-artist genres: got %v, want %v", second.Genres, want)
	}

	if first.Features.Loudness != 0.5 {
		t.Fatalf("loudness not normalized: got %v, want 0.5", first.Features.Loudness)
	}
	if first.Features.Energy != 0.8 || first.Features.Tempo != 120 {
		t.Fatalf("unexpected features: %+v", first.Features)
	}
	if want := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC); !first.AddedAt.Equal(want) {
		t.Fatalf("added_at: got %v, want %v", first.AddedAt, want)
	}

	if want := []string{"100/103", "103/103"}; !equalStrings(progress, want) {
		t.Fatalf("progress: got %v, want %v", progress, want)
	}

	// two unique artists resolve in one batch; 103 track ids need two
	if fs.artistCalls != 1 {
		t.Fatalf("artist batch calls: got %d, want 1", fs.artistCalls)
	}
	if fs.featuresCalls != 2 {
		t.Fatalf("features batch calls: got %d, want 2", fs.featuresCalls)
	}
}

func TestLikedSongs_ParsesItems(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	songs, err := client.LikedSongs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	if !songs[1].AddedAt.IsZero() {
		t.Fatalf("malformed added_at should map to zero time, got %v", songs[1].AddedAt)
	}
}

func TestUserPlaylists_Paginates(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	playlists, err := client.UserPlaylists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(playlists) != 51 {
		t.Fatalf("expected 51 playlists, got %d", len(playlists))
	}
	if playlists[50].ID != "pl50" || playlists[50].Description != "description 50" {
		t.Fatalf("unexpected last playlist: %+v", playlists[50])
	}
}

func TestCreatePlaylist(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	id, err := client.CreatePlaylist(context.Background(), "user-1", "'Song' Related", "Songs related to 'Song', within the playlist Road Trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "new-playlist" {
		t.Fatalf("expected new-playlist, got %q", id)
	}
}

func TestAddTracks_ChunksURIs(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	uris := make([]string, 250)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:t%03d", i)
	}

	if err := client.AddTracks(context.Background(), "pl00", uris); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fs.addBodies) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(fs.addBodies))
	}
	if len(fs.addBodies[0]) != 100 || len(fs.addBodies[1]) != 100 || len(fs.addBodies[2]) != 50 {
		t.Fatalf("unexpected chunk sizes: %d/%d/%d",
			len(fs.addBodies[0]), len(fs.addBodies[1]), len(fs.addBodies[2]))
	}
	if fs.addBodies[0][0] != "spotify:track:t000" {
		t.Fatalf("order not preserved: %q", fs.addBodies[0][0])
	}
}

func TestRemoveTracks_SendsURIRefs(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	err := client.RemoveTracks(context.Background(), "pl00", []string{"spotify:track:x", "spotify:track:y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.removeBodies) != 1 || len(fs.removeBodies[0]) != 2 {
		t.Fatalf("unexpected remove bodies: %+v", fs.removeBodies)
	}
	if fs.removeBodies[0][0] != "spotify:track:x" {
		t.Fatalf("unexpected uri: %q", fs.removeBodies[0][0])
	}
}

func TestSearchArtist(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	artist, err := client.SearchArtist(context.Background(), "Found Artist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artist.ID != "art-9" || len(artist.Genres) != 1 {
		t.Fatalf("unexpected artist: %+v", artist)
	}

	_, err = client.SearchArtist(context.Background(), "Nowhere Band")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTopTracksAndArtists(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	tracks, err := client.TopTracks(context.Background(), domain.TermShort, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 || tracks[0].Genres == nil {
		t.Fatalf("top tracks not hydrated: %+v", tracks)
	}

	artists, err := client.TopArtists(context.Background(), domain.TermShort, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artists) != 1 || artists[0].Name != "Artist One" {
		t.Fatalf("unexpected artists: %+v", artists)
	}
}

func TestRecommendations_SendsTuneables(t *testing.T) {
	fs := newFixtureServer(t)
	client := newTestClient(fs.URL)

	ranges := &domain.TuneableRanges{
		Danceability:     domain.FeatureWindow{Min: 0.1, Max: 0.9, Target: 0.5},
		Energy:           domain.FeatureWindow{Min: 0.4, Max: 0.96, Target: 0.7},
		Instrumentalness: domain.FeatureWindow{Min: 0, Max: 0.5, Target: 0.2},
		Tempo:            domain.FeatureWindow{Min: 80, Max: 160, Target: 120},
		Valence:          domain.FeatureWindow{Min: 0.2, Max: 0.8, Target: 0.5},
	}

	songs, err := client.Recommendations(context.Background(), domain.Seeds{Artists: []string{"a1", "a2"}}, ranges, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != "t005" {
		t.Fatalf("unexpected recommendations: %+v", songs)
	}
}

func TestStatusErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "secret") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)

	_, err := client.PlaylistName(context.Background(), "missing")
	var statusErr ports.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if errors.Is(err, ports.ErrUnauthorized) {
		t.Fatalf("404 must not match ErrUnauthorized")
	}

	_, err = client.PlaylistName(context.Background(), "secret")
	if !errors.Is(err, ports.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for 401, got %v", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
