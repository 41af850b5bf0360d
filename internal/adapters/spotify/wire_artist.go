package spotify

// artistObject is the full artist profile, carrying the genre tags songs
// inherit from their artists.
type artistObject struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// severalArtists is the GET /artists?ids= batch response. Unknown ids come
// back as null entries.
type severalArtists struct {
	Artists []*artistObject `json:"artists"`
}

// topArtistsPage is the /me/top/artists response.
type topArtistsPage struct {
	Items []artistObject `json:"items"`
}
