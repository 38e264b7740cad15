// Package search wraps a catalog provider with fixed-size offset
// pagination.
package search

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/provider"
)

// PageSize is the fixed number of tracks per result page. Page index p
// maps to offset p*PageSize.
const PageSize = 10

// Service provides track search over an injected provider.
type Service struct {
	searcher provider.Searcher
	logger   zerolog.Logger
}

// NewService creates a new search service.
func NewService(searcher provider.Searcher, logger zerolog.Logger) *Service {
	return &Service{
		searcher: searcher,
		logger:   logger.With().Str("component", "search").Logger(),
	}
}

// Search runs a catalog search. Inputs are trusted: the HTTP boundary
// rejects empty queries and negative offsets before they reach here.
func (s *Service) Search(ctx context.Context, query string, offset int) (*provider.SearchResult, error) {
	result, err := s.searcher.Search(ctx, query, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Int("offset", offset).Msg("provider search failed")
		return nil, err
	}

	s.logger.Debug().
		Str("query", query).
		Int("offset", offset).
		Int("tracks", len(result.Tracks)).
		Msg("search completed")

	return result, nil
}

// MaxPage, SafePage, and OffsetForPage are contract helpers for page
// navigation. The server does not paginate on its own; clients driving
// next/previous controls use these to keep requested offsets valid.

// MaxPage returns the largest valid page index for a known total.
// Totals of one page or less clamp to page 0.
func MaxPage(total int) int {
	max := total/PageSize - 1
	if max < 0 {
		return 0
	}
	return max
}

// SafePage clamps a requested page index into [0, MaxPage(total)].
// Applied before issuing a follow-up search so out-of-range navigation
// never reaches the provider with an invalid offset.
func SafePage(requested, total int) int {
	max := MaxPage(total)
	if requested > max {
		requested = max
	}
	if requested < 0 {
		requested = 0
	}
	return requested
}

// OffsetForPage maps a page index to its provider offset.
func OffsetForPage(page int) int {
	return page * PageSize
}
