package dab

import "github.com/soundroom/soundroom/internal/provider"

// searchResponse is the provider's search payload.
type searchResponse struct {
	Tracks     []provider.Track    `json:"tracks"`
	Pagination provider.Pagination `json:"pagination"`
}

// streamResponse is the provider's stream resolution payload.
type streamResponse struct {
	URL string `json:"url"`
}
