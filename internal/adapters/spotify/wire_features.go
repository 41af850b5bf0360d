package spotify

// audioFeaturesObject is the per-track audio analysis summary. Loudness
// arrives in dB (-60..0) and is normalized during mapping.
type audioFeaturesObject struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Loudness         float64 `json:"loudness"`
}

// audioFeaturesBatch is the GET /audio-features?ids= response. Tracks
// without an analysis come back as null entries.
type audioFeaturesBatch struct {
	AudioFeatures []*audioFeaturesObject `json:"audio_features"`
}
