package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// Mood thresholds. Loudness compares against its normalized value, not raw
// dB.
const (
	energyThreshold           = 0.6
	valenceThreshold          = 0.5
	loudnessThreshold         = 0.5
	instrumentalnessThreshold = 0.8
)

// TrendingGenres counts genre occurrences over the songs added within the
// window, most frequent first.
func (r *Recommender) TrendingGenres(p *domain.Playlist, window domain.TimeWindow) ([]domain.TrendEntry, error) {
	songs, err := r.songsInWindow(p, window)
	if err != nil {
		return nil, err
	}
	return trendEntries(lo.FlatMap(songs, func(s domain.Song, _ int) []string {
		return s.Genres
	})), nil
}

// TrendingArtists counts artist credits over the songs added within the
// window, most frequent first.
func (r *Recommender) TrendingArtists(p *domain.Playlist, window domain.TimeWindow) ([]domain.TrendEntry, error) {
	songs, err := r.songsInWindow(p, window)
	if err != nil {
		return nil, err
	}
	return trendEntries(lo.FlatMap(songs, func(s domain.Song, _ int) []string {
		return s.Artists
	})), nil
}

func (r *Recommender) songsInWindow(p *domain.Playlist, window domain.TimeWindow) ([]domain.Song, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("service: invalid time window %q", window)
	}
	songs := p.Songs
	if cutoff, ok := window.Cutoff(r.now()); ok {
		songs = lo.Filter(songs, func(s domain.Song, _ int) bool {
			return !s.AddedAt.Before(cutoff)
		})
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("service: %s window: %w", window, domain.ErrEmptyTimeWindow)
	}
	return songs, nil
}

// trendEntries tallies occurrences and ranks them by count. Ties keep
// first-seen order, which follows playlist order. Share is each count's
// fraction of all occurrences, rounded to five decimals.
func trendEntries(values []string) []domain.TrendEntry {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	entries := make([]domain.TrendEntry, len(order))
	for i, name := range order {
		entries[i] = domain.TrendEntry{Name: name, Count: counts[name]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	total := float64(len(values))
	for i := range entries {
		entries[i].Share = round5(float64(entries[i].Count) / total)
	}
	return entries
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// MoodRequest parameterizes a threshold-based mood selection.
type MoodRequest struct {
	Mood                      domain.Mood
	Count                     int
	ExcludeMostlyInstrumental bool
	Build                     bool
}

// SongsByMood filters the playlist by the mood's feature thresholds and
// orders it by the mood index, most pronounced first for the high-energy
// moods and least for the low ones. A short result is returned as-is with a
// warning.
func (r *Recommender) SongsByMood(ctx context.Context, p *domain.Playlist, req MoodRequest) ([]domain.Song, error) {
	if !req.Mood.Valid() {
		return nil, fmt.Errorf("service: invalid mood %q", req.Mood)
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("service: count must be positive, got %d", req.Count)
	}

	match, index, ascending := moodRules(req.Mood)
	songs := lo.Filter(p.Songs, func(s domain.Song, _ int) bool {
		if req.ExcludeMostlyInstrumental && s.Features.Instrumentalness > instrumentalnessThreshold {
			return false
		}
		return match(s.Features)
	})

	sort.SliceStable(songs, func(i, j int) bool {
		if ascending {
			return index(songs[i].Features) < index(songs[j].Features)
		}
		return index(songs[i].Features) > index(songs[j].Features)
	})

	if len(songs) >= req.Count {
		songs = songs[:req.Count]
	} else {
		slog.Warn("playlist holds fewer mood songs than requested",
			"mood", req.Mood, "requested", req.Count, "available", len(songs))
	}

	if req.Build {
		if len(songs) == 0 {
			return nil, fmt.Errorf("service: no %s songs to publish", req.Mood)
		}
		bp := MoodPlaylist(req.Mood, req.ExcludeMostlyInstrumental, p.Name)
		if err := r.publish(ctx, bp, songIDs(songs)); err != nil {
			return nil, err
		}
	}
	return songs, nil
}

// moodRules returns the membership predicate, the sort index and its
// direction for one mood. The index mixes energy with valence for the moods
// defined by positivity and with loudness for the ones defined by intensity.
func moodRules(mood domain.Mood) (match func(domain.AudioFeatures) bool, index func(domain.AudioFeatures) float64, ascending bool) {
	energyValence := func(f domain.AudioFeatures) float64 { return f.Energy + 3*f.Valence }
	energyLoudness := func(f domain.AudioFeatures) float64 { return f.Energy + 3*f.Loudness }

	switch mood {
	case domain.MoodSad:
		return func(f domain.AudioFeatures) bool {
			return f.Valence < valenceThreshold && f.Energy < energyThreshold
		}, energyValence, true
	case domain.MoodCalm:
		return func(f domain.AudioFeatures) bool {
			return f.Valence >= valenceThreshold && f.Energy < energyThreshold && f.Loudness < loudnessThreshold
		}, energyLoudness, true
	case domain.MoodAngry:
		return func(f domain.AudioFeatures) bool {
			return f.Valence < valenceThreshold && f.Energy >= energyThreshold && f.Loudness >= loudnessThreshold
		}, energyLoudness, false
	default: // happy
		return func(f domain.AudioFeatures) bool {
			return f.Valence >= valenceThreshold && f.Energy >= energyThreshold
		}, energyValence, false
	}
}

// AudioFeatureStatistics aggregates the playlist's audio profile: the min,
// max and mean of every feature.
func (r *Recommender) AudioFeatureStatistics(p *domain.Playlist) (domain.FeatureStats, error) {
	if len(p.Songs) == 0 {
		return domain.FeatureStats{}, domain.ErrEmptyPlaylist
	}

	stats := domain.FeatureStats{
		Min: p.Songs[0].Features,
		Max: p.Songs[0].Features,
	}
	sum := p.Songs[0].Features
	for _, s := range p.Songs[1:] {
		stats.Min = minFeatures(stats.Min, s.Features)
		stats.Max = maxFeatures(stats.Max, s.Features)
		sum = addFeatures(sum, s.Features)
	}
	stats.Mean = scaleFeatures(sum, 1/float64(len(p.Songs)))
	return stats, nil
}

// ExtraordinarySongs names the songs sitting at both extremes of each audio
// feature. Ties keep the earliest playlist position.
func (r *Recommender) ExtraordinarySongs(p *domain.Playlist) ([]domain.SongExtremes, error) {
	if len(p.Songs) == 0 {
		return nil, domain.ErrEmptyPlaylist
	}

	features := []struct {
		name string
		get  func(domain.AudioFeatures) float64
	}{
		{"loudness", func(f domain.AudioFeatures) float64 { return f.Loudness }},
		{"danceability", func(f domain.AudioFeatures) float64 { return f.Danceability }},
		{"energy", func(f domain.AudioFeatures) float64 { return f.Energy }},
		{"instrumentalness", func(f domain.AudioFeatures) float64 { return f.Instrumentalness }},
		{"tempo", func(f domain.AudioFeatures) float64 { return f.Tempo }},
		{"valence", func(f domain.AudioFeatures) float64 { return f.Valence }},
	}

	out := make([]domain.SongExtremes, len(features))
	for i, ft := range features {
		lowest, highest := p.Songs[0], p.Songs[0]
		for _, s := range p.Songs[1:] {
			if ft.get(s.Features) < ft.get(lowest.Features) {
				lowest = s
			}
			if ft.get(s.Features) > ft.get(highest.Features) {
				highest = s
			}
		}
		out[i] = domain.SongExtremes{Feature: ft.name, Lowest: lowest, Highest: highest}
	}
	return out, nil
}

func minFeatures(a, b domain.AudioFeatures) domain.AudioFeatures {
	return domain.AudioFeatures{
		Danceability:     math.Min(a.Danceability, b.Danceability),
		Energy:           math.Min(a.Energy, b.Energy),
		Instrumentalness: math.Min(a.Instrumentalness, b.Instrumentalness),
		Tempo:            math.Min(a.Tempo, b.Tempo),
		Valence:          math.Min(a.Valence, b.Valence),
		Loudness:         math.Min(a.Loudness, b.Loudness),
	}
}

func maxFeatures(a, b domain.AudioFeatures) domain.AudioFeatures {
	return domain.AudioFeatures{
		Danceability:     math.Max(a.Danceability, b.Danceability),
		Energy:           math.Max(a.Energy, b.Energy),
		Instrumentalness: math.Max(a.Instrumentalness, b.Instrumentalness),
		Tempo:            math.Max(a.Tempo, b.Tempo),
		Valence:          math.Max(a.Valence, b.Valence),
		Loudness:         math.Max(a.Loudness, b.Loudness),
	}
}

func addFeatures(a, b domain.AudioFeatures) domain.AudioFeatures {
	return domain.AudioFeatures{
		Danceability:     a.Danceability + b.Danceability,
		Energy:           a.Energy + b.Energy,
		Instrumentalness: a.Instrumentalness + b.Instrumentalness,
		Tempo:            a.Tempo + b.Tempo,
		Valence:          a.Valence + b.Valence,
		Loudness:         a.Loudness + b.Loudness,
	}
}

func scaleFeatures(a domain.AudioFeatures, factor float64) domain.AudioFeatures {
	return domain.AudioFeatures{
		Danceability:     a.Danceability * factor,
		Energy:           a.Energy * factor,
		Instrumentalness: a.Instrumentalness * factor,
		Tempo:            a.Tempo * factor,
		Valence:          a.Valence * factor,
		Loudness:         a.Loudness * factor,
	}
}
