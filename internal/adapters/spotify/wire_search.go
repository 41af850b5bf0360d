package spotify

// searchResponse covers the artist and track search types; the service
// populates only the section matching the requested type.
type searchResponse struct {
	Artists struct {
		Items []artistObject `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Items []trackObject `json:"items"`
	} `json:"tracks"`
}

// recommendationsResponse is the GET /recommendations payload.
type recommendationsResponse struct {
	Tracks []trackObject `json:"tracks"`
}
