package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/knn"
)

// topTrackSeedLimit bounds how many favorites feed a recommendation seed.
const topTrackSeedLimit = 5

// MostListened returns the user's top tracks for the term. The top-tracks
// endpoint caps its page at 50, which bounds Count.
func (r *Recommender) MostListened(ctx context.Context, term domain.Term, count int, build bool) ([]domain.Song, error) {
	if !term.Valid() {
		return nil, fmt.Errorf("service: invalid time range %q", term)
	}
	if count < 1 || count > 50 {
		return nil, fmt.Errorf("service: count must be between 1 and 50, got %d", count)
	}

	songs, err := r.profile.TopTracks(ctx, term, count)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch top tracks: %w", err)
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("service: no listening history for the %s range", term.Label())
	}

	if build {
		if err := r.publish(ctx, MostListenedPlaylist(term), songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}

// MostListenedBasedRequest parameterizes the search for playlist songs
// closest to the user's listening history.
type MostListenedBasedRequest struct {
	Term    domain.Term
	Count   int
	Build   bool
	LogBase bool
}

// MostListenedBased averages the user's 50 most listened tracks for the term
// into a pseudo song and returns the playlist songs nearest to it.
func (r *Recommender) MostListenedBased(ctx context.Context, p *domain.Playlist, req MostListenedBasedRequest) ([]knn.Neighbor, error) {
	if !req.Term.Valid() {
		return nil, fmt.Errorf("service: invalid time range %q", req.Term)
	}
	if req.Count < 1 || req.Count > 1500 {
		return nil, fmt.Errorf("service: count must be between 1 and 1500, got %d", req.Count)
	}

	top, err := r.profile.TopTracks(ctx, req.Term, 50)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch top tracks: %w", err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("service: no listening history for the %s range", req.Term.Label())
	}

	center := centroid("Most listened songs", top, p)
	if req.LogBase {
		logBaseCharacteristics(center)
	}

	neighbors := knn.Neighbors(r.weights, p.Songs, center, req.Count, false)

	if req.Build {
		bp := MostListenedMixPlaylist(req.Term, p.Name)
		if err := r.publish(ctx, bp, songIDs(knn.Songs(neighbors))); err != nil {
			return nil, err
		}
	}
	return neighbors, nil
}

// ProfileRecommendationRequest parameterizes a recommendation seeded from
// the user's profile favorites alone.
type ProfileRecommendationRequest struct {
	Criteria domain.Criteria
	Term     domain.Term
	Count    int
	Dated    bool
	Build    bool
}

// ProfileRecommendation seeds the recommendation engine with the user's top
// artists, their genres and top tracks, sliced per the criteria.
func (r *Recommender) ProfileRecommendation(ctx context.Context, req ProfileRecommendationRequest) ([]domain.Song, error) {
	if req.Count < 1 || req.Count > 100 {
		return nil, fmt.Errorf("service: count must be between 1 and 100, got %d", req.Count)
	}
	if !req.Criteria.Valid() {
		return nil, fmt.Errorf("service: invalid criteria %q", req.Criteria)
	}
	if !req.Term.Valid() {
		return nil, fmt.Errorf("service: invalid time range %q", req.Term)
	}

	var artistIDs, genres, trackIDs []string

	if req.Criteria != domain.CriteriaTracks {
		artists, err := r.profile.TopArtists(ctx, req.Term, topTrackSeedLimit)
		if err != nil {
			return nil, fmt.Errorf("service: failed to fetch top artists: %w", err)
		}
		artistIDs = lo.Map(artists, func(a domain.Artist, _ int) string { return a.ID })
		genres = lo.Uniq(lo.FlatMap(artists, func(a domain.Artist, _ int) []string {
			return a.Genres
		}))
		genres = genres[:min(topTrackSeedLimit, len(genres))]
	}
	if req.Criteria != domain.CriteriaArtists {
		tracks, err := r.profile.TopTracks(ctx, req.Term, topTrackSeedLimit)
		if err != nil {
			return nil, fmt.Errorf("service: failed to fetch top tracks: %w", err)
		}
		trackIDs = songIDs(tracks)
	}

	var seeds domain.Seeds
	switch req.Criteria {
	case domain.CriteriaArtists:
		seeds = domain.Seeds{Artists: artistIDs}
	case domain.CriteriaGenres:
		seeds = domain.Seeds{
			Genres: genres[:min(4, len(genres))],
			Tracks: trackIDs[:min(1, len(trackIDs))],
		}
	case domain.CriteriaMixed:
		seeds = domain.Seeds{
			Tracks:  trackIDs[:min(2, len(trackIDs))],
			Artists: artistIDs[:min(1, len(artistIDs))],
			Genres:  genres[:min(2, len(genres))],
		}
	case domain.CriteriaTracks:
		seeds = domain.Seeds{Tracks: trackIDs}
	}

	songs, err := r.profile.Recommendations(ctx, seeds, nil, req.Count)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch recommendations: %w", err)
	}

	if req.Build {
		bp := ProfileRecPlaylist(req.Term, req.Criteria, req.Dated, r.now())
		if err := r.publish(ctx, bp, songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}

// TrackSeed identifies a track by name, optionally narrowed by artist, for
// seed resolution through search.
type TrackSeed struct {
	Name   string
	Artist string
}

// GeneralRecommendationRequest parameterizes a recommendation seeded from
// caller-chosen names instead of profile favorites. Stats, when non-nil,
// derives tuneable windows the same way the playlist recommendation does.
type GeneralRecommendationRequest struct {
	Genres  []string
	Artists []string
	Tracks  []TrackSeed
	Stats   *domain.FeatureStats
	Count   int
	Build   bool
}

// GeneralRecommendation resolves the named artists and tracks through
// search, then queries the recommendation engine with the resulting seeds.
// The engine accepts at most five seeds across all kinds.
func (r *Recommender) GeneralRecommendation(ctx context.Context, req GeneralRecommendationRequest) ([]domain.Song, error) {
	if req.Count < 1 || req.Count > 100 {
		return nil, fmt.Errorf("service: count must be between 1 and 100, got %d", req.Count)
	}
	total := len(req.Genres) + len(req.Artists) + len(req.Tracks)
	if total == 0 {
		return nil, fmt.Errorf("service: at least one seed genre, artist or track is required")
	}
	if total > 5 {
		return nil, fmt.Errorf("service: at most 5 seeds are accepted, got %d", total)
	}

	seeds := domain.Seeds{Genres: req.Genres}
	for _, name := range req.Artists {
		artist, err := r.profile.SearchArtist(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("service: failed to resolve artist %q: %w", name, err)
		}
		seeds.Artists = append(seeds.Artists, artist.ID)
	}
	for _, seed := range req.Tracks {
		track, err := r.profile.SearchTrack(ctx, seed.Name, seed.Artist)
		if err != nil {
			return nil, fmt.Errorf("service: failed to resolve track %q: %w", seed.Name, err)
		}
		seeds.Tracks = append(seeds.Tracks, track.ID)
	}

	var ranges *domain.TuneableRanges
	if req.Stats != nil {
		tuned := tuneablesFromStats(*req.Stats)
		ranges = &tuned
	}

	songs, err := r.profile.Recommendations(ctx, seeds, ranges, req.Count)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch recommendations: %w", err)
	}

	if req.Build {
		trackNames := lo.Map(req.Tracks, func(s TrackSeed, _ int) string { return s.Name })
		bp := GeneralRecPlaylist(req.Artists, req.Genres, trackNames)
		if err := r.publish(ctx, bp, songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}
