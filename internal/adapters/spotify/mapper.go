package spotify

import (
	"log/slog"
	"time"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
)

// loudnessFloor is the bottom of the dB range the API reports. Dividing by
// it folds loudness into roughly [0,1] so one weight fits all features.
const loudnessFloor = -60.0

// songFromTrack converts a raw track plus its hydration data (genres from
// the artist lookup, features from the batch endpoint) into a domain.Song.
// A nil features leaves the audio profile zeroed.
func songFromTrack(t trackObject, addedAt time.Time, genres []string, features *audioFeaturesObject) domain.Song {
	song := domain.Song{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    t.artistNames(),
		Genres:     genres,
		Popularity: t.Popularity,
		AddedAt:    addedAt,
	}
	if features != nil {
		song.Features = domain.AudioFeatures{
			Danceability:     features.Danceability,
			Energy:           features.Energy,
			Instrumentalness: features.Instrumentalness,
			Tempo:            features.Tempo,
			Valence:          features.Valence,
			Loudness:         features.Loudness / loudnessFloor,
		}
	}
	return song
}

// artistToDomain converts a full artist profile.
func artistToDomain(a artistObject) domain.Artist {
	return domain.Artist{
		ID:     a.ID,
		Name:   a.Name,
		Genres: a.Genres,
	}
}

// parseAddedAt parses the playlist-membership timestamp. A malformed or
// absent value maps to the zero time, which the trend filters treat as
// outside every window.
func parseAddedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		slog.Debug("spotify adapter: unparseable added_at", "value", raw, "error", err)
		return time.Time{}
	}
	return ts
}
