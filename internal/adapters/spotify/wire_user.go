package spotify

// userProfile is the slice of GET /me the adapter reads.
type userProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
