package spotify

// trackObject represents the Spotify API response for a track.
type trackObject struct {
	ID         string      `json:"id"`
	URI        string      `json:"uri"`
	Name       string      `json:"name"`
	Popularity int         `json:"popularity"`
	Artists    []artistRef `json:"artists"`
}

// artistRef is the compact artist object embedded in tracks.
type artistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t trackObject) artistIDs() []string {
	ids := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (t trackObject) artistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// topTracksPage is the /me/top/tracks response.
type topTracksPage struct {
	Items []trackObject `json:"items"`
}
