// Package provider defines the catalog provider abstraction: the track
// model returned by the external music catalog and the capability
// interfaces the rest of the server consumes. Concrete clients live in
// subpackages (currently only dab).
package provider

import "context"

// Track is a provider-supplied catalog record. It is owned by the
// provider and never mutated by this server.
type Track struct {
	ID         int         `json:"id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	AlbumTitle string      `json:"albumTitle"`
	Duration   int         `json:"duration"` // seconds
	Version    *string     `json:"version"`
	Images     TrackImages `json:"images"`
}

// TrackImages holds artwork URLs at the sizes the provider exposes.
type TrackImages struct {
	Small     string `json:"small"`
	Thumbnail string `json:"thumbnail"`
	Large     string `json:"large"`
}

// Pagination describes offset-based paging over search results.
// Offset is always a non-negative multiple of the page size.
type Pagination struct {
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// SearchResult is one page of tracks plus its paging state.
type SearchResult struct {
	Tracks     []Track    `json:"tracks"`
	Pagination Pagination `json:"pagination"`
}

// Searcher searches the provider catalog. Implementations perform a
// single upstream call per invocation; retry policy belongs to callers.
type Searcher interface {
	Search(ctx context.Context, query string, offset int) (*SearchResult, error)
}

// Resolver resolves a catalog track to a streamable audio URL.
type Resolver interface {
	ResolveStreamURL(ctx context.Context, trackID int) (string, error)
}
