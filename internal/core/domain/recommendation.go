package domain

// Criteria selects which favorites feed a recommendation's seeds.
type Criteria string

const (
	CriteriaMixed   Criteria = "mixed"
	CriteriaArtists Criteria = "artists"
	CriteriaTracks  Criteria = "tracks"
	CriteriaGenres  Criteria = "genres"
)

func (c Criteria) Valid() bool {
	switch c {
	case CriteriaMixed, CriteriaArtists, CriteriaTracks, CriteriaGenres:
		return true
	}
	return false
}

// Label spells the criteria out for playlist names and descriptions.
func (c Criteria) Label() string {
	if c == CriteriaMixed {
		return "genres, tracks and artists"
	}
	return string(c)
}

// Seeds carries the ids handed to the recommendation endpoint. The API
// accepts at most five seeds across all three kinds.
type Seeds struct {
	Artists []string
	Genres  []string
	Tracks  []string
}

func (s Seeds) Count() int {
	return len(s.Artists) + len(s.Genres) + len(s.Tracks)
}

// FeatureWindow bounds one tuneable audio attribute.
type FeatureWindow struct {
	Min    float64
	Max    float64
	Target float64
}

// TuneableRanges carries the per-feature windows derived from a playlist's
// audio statistics. Loudness is not tuneable on the endpoint and is absent.
type TuneableRanges struct {
	Danceability     FeatureWindow
	Energy           FeatureWindow
	Instrumentalness FeatureWindow
	Tempo            FeatureWindow
	Valence          FeatureWindow
}

// TrendEntry is one row of a trending-genres or trending-artists table.
type TrendEntry struct {
	Name  string
	Count int
	Share float64 // fraction of all occurrences, rounded to 5 decimals
}

// FeatureStats aggregates a playlist's audio profile feature by feature.
type FeatureStats struct {
	Min  AudioFeatures
	Max  AudioFeatures
	Mean AudioFeatures
}

// SongExtremes names the songs sitting at both ends of one audio feature.
type SongExtremes struct {
	Feature string
	Lowest  Song
	Highest Song
}
