package spotify

// playlistDetails is the slice of GET /playlists/{id} the adapter reads.
type playlistDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// playlistTracksPage is one page of GET /playlists/{id}/tracks.
type playlistTracksPage struct {
	Items []playlistItem `json:"items"`
	Total int            `json:"total"`
	Next  string         `json:"next"`
}

// playlistItem wraps a track with playlist-membership metadata.
type playlistItem struct {
	AddedAt string      `json:"added_at"`
	Track   trackObject `json:"track"`
}

// userPlaylistsPage is one page of GET /me/playlists.
type userPlaylistsPage struct {
	Items []playlistSummary `json:"items"`
	Total int               `json:"total"`
	Next  string            `json:"next"`
}

type playlistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// createPlaylistRequest doubles as the update-details body; generated
// playlists are always private.
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type playlistCreated struct {
	ID string `json:"id"`
}

// addTracksRequest represents the request body for adding tracks to a playlist.
type addTracksRequest struct {
	Uris []string `json:"uris"`
}

// removeTracksRequest represents the request body for deleting tracks.
type removeTracksRequest struct {
	Tracks []uriRef `json:"tracks"`
}

type uriRef struct {
	URI string `json:"uri"`
}
