package services

import (
	"context"
	"fmt"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// PlaylistRecommendationRequest parameterizes a recommendation seeded from
// the playlist's own trends instead of the profile.
type PlaylistRecommendationRequest struct {
	Criteria domain.Criteria
	Window   domain.TimeWindow
	Count    int
	Dated    bool
	Build    bool
}

// PlaylistRecommendation seeds the recommendation engine with the playlist's
// trending artists and genres inside the time window, plus the user's
// short-term top tracks, and tunes the result toward the playlist's audio
// statistics.
func (r *Recommender) PlaylistRecommendation(ctx context.Context, p *domain.Playlist, req PlaylistRecommendationRequest) ([]domain.Song, error) {
	// The single-song floor is excluded here: a one-song recommendation
	// carries no playlist signal worth tuning toward.
	if req.Count <= 1 || req.Count > 100 {
		return nil, fmt.Errorf("service: count must be between 2 and 100, got %d", req.Count)
	}
	if !req.Criteria.Valid() {
		return nil, fmt.Errorf("service: invalid criteria %q", req.Criteria)
	}
	if !req.Window.Valid() {
		return nil, fmt.Errorf("service: invalid time window %q", req.Window)
	}

	var trackIDs, genres, artistIDs []string

	if req.Criteria != domain.CriteriaArtists {
		tracks, err := r.profile.TopTracks(ctx, domain.TermShort, topTrackSeedLimit)
		if err != nil {
			return nil, fmt.Errorf("service: failed to fetch top tracks: %w", err)
		}
		trackIDs = songIDs(tracks)

		trending, err := r.TrendingGenres(p, req.Window)
		if err != nil {
			return nil, err
		}
		genres = trendNames(trending, topTrackSeedLimit)
	}
	if req.Criteria != domain.CriteriaGenres && req.Criteria != domain.CriteriaTracks {
		trending, err := r.TrendingArtists(p, req.Window)
		if err != nil {
			return nil, err
		}
		for _, name := range trendNames(trending, topTrackSeedLimit) {
			artist, err := r.profile.SearchArtist(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("service: failed to resolve artist %q: %w", name, err)
			}
			artistIDs = append(artistIDs, artist.ID)
		}
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
			Tracks:  trackIDs[:min(1, len(trackIDs))],
			Artists: artistIDs[:min(2, len(artistIDs))],
			Genres:  genres[:min(2, len(genres))],
		}
	case domain.CriteriaTracks:
		seeds = domain.Seeds{
			Tracks: trackIDs[:min(2, len(trackIDs))],
			Genres: genres[:min(3, len(genres))],
		}
	}

	stats, err := r.AudioFeatureStatistics(p)
	if err != nil {
		return nil, err
	}
	ranges := tuneablesFromStats(stats)

	songs, err := r.profile.Recommendations(ctx, seeds, &ranges, req.Count)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch recommendations: %w", err)
	}

	if req.Build {
		bp := PlaylistRecPlaylist(req.Window, req.Criteria, req.Dated, r.now(), p.Name)
		if err := r.publish(ctx, bp, songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}

// tuneablesFromStats widens the playlist's observed feature ranges into
// recommendation windows: min loosened by 20%, max by 20%, mean as target.
func tuneablesFromStats(stats domain.FeatureStats) domain.TuneableRanges {
	window := func(low, high, mean float64) domain.FeatureWindow {
		return domain.FeatureWindow{Min: low * 0.8, Max: high * 1.2, Target: mean}
	}
	return domain.TuneableRanges{
		Danceability:     window(stats.Min.Danceability, stats.Max.Danceability, stats.Mean.Danceability),
		Energy:           window(stats.Min.Energy, stats.Max.Energy, stats.Mean.Energy),
		Instrumentalness: window(stats.Min.Instrumentalness, stats.Max.Instrumentalness, stats.Mean.Instrumentalness),
		Tempo:            window(stats.Min.Tempo, stats.Max.Tempo, stats.Mean.Tempo),
		Valence:          window(stats.Min.Valence, stats.Max.Valence, stats.Mean.Valence),
	}
}

func trendNames(entries []domain.TrendEntry, limit int) []string {
	names := make([]string, 0, limit)
	for _, e := range entries[:min(limit, len(entries))] {
		names = append(names, e.Name)
	}
	return names
}
