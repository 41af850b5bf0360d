package domain

// Artist is the slice of an artist profile the recommender cares about:
// identity for seeding and genres for tagging songs.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}

// PlaylistInfo is the library-listing view of a playlist, enough to decide
// whether a generated playlist already exists.
type PlaylistInfo struct {
	ID          string
	Name        string
	Description string
}
