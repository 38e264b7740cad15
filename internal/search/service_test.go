package search

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/provider"
)

// stubSearcher returns a canned result or error.
type stubSearcher struct {
	result *provider.SearchResult
	err    error

	gotQuery  string
	gotOffset int
}

func (s *stubSearcher) Search(_ context.Context, query string, offset int) (*provider.SearchResult, error) {
	s.gotQuery = query
	s.gotOffset = offset
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestMaxPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  int
	}{
		{"empty", 0, 0},
		{"under one page", 7, 0},
		{"exactly one page", 10, 0},
		{"just over one page", 11, 0},
		{"two full pages", 20, 1},
		{"twenty five", 25, 1},
		{"three pages", 30, 2},
		{"large", 1000, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxPage(tt.total); got != tt.want {
				t.Errorf("MaxPage(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestSafePage(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		total     int
		want      int
	}{
		{"in range", 1, 25, 1},
		{"first page", 0, 25, 0},
		{"clamped high", 5, 25, 1},
		{"clamped negative", -3, 25, 0},
		{"small total stays on page zero", 7, 10, 0},
		{"empty total", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafePage(tt.requested, tt.total); got != tt.want {
				t.Errorf("SafePage(%d, %d) = %d, want %d", tt.requested, tt.total, got, tt.want)
			}
		})
	}
}

func TestSafePage_OffsetsStayValid(t *testing.T) {
	// Every clamped page must land within [0, MaxPage] for any offset
	// that is a non-negative multiple of the page size.
	for total := 0; total <= 120; total += 5 {
		for offset := 0; offset <= 200; offset += PageSize {
			page := SafePage(offset/PageSize, total)
			if page < 0 || page > MaxPage(total) {
				t.Fatalf("SafePage(%d, %d) = %d, outside [0, %d]", offset/PageSize, total, page, MaxPage(total))
			}
		}
	}
}

func TestOffsetForPage(t *testing.T) {
	if got := OffsetForPage(0); got != 0 {
		t.Errorf("OffsetForPage(0) = %d, want 0", got)
	}
	if got := OffsetForPage(3); got != 30 {
		t.Errorf("OffsetForPage(3) = %d, want 30", got)
	}
}

func TestService_Search(t *testing.T) {
	stub := &stubSearcher{
		result: &provider.SearchResult{
			Tracks: []provider.Track{{ID: 1, Title: "Song"}},
			Pagination: provider.Pagination{
				Offset:  0,
				Total:   25,
				HasMore: true,
			},
		},
	}

	service := NewService(stub, zerolog.Nop())
	result, err := service.Search(context.Background(), "murubutu", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if stub.gotQuery != "murubutu" {
		t.Errorf("provider received query %q, want %q", stub.gotQuery, "murubutu")
	}
	if stub.gotOffset != 0 {
		t.Errorf("provider received offset %d, want 0", stub.gotOffset)
	}
	if result.Pagination.Total != 25 {
		t.Errorf("Pagination.Total = %d, want 25", result.Pagination.Total)
	}
	if got := MaxPage(result.Pagination.Total); got != 1 {
		t.Errorf("MaxPage(25) = %d, want 1", got)
	}
}

func TestService_Search_ProviderError(t *testing.T) {
	wantErr := errors.New("upstream broke")
	service := NewService(&stubSearcher{err: wantErr}, zerolog.Nop())

	_, err := service.Search(context.Background(), "murubutu", 0)
	if !errors.Is(err, wantErr) {
		t.Errorf("Search() error = %v, want %v", err, wantErr)
	}
}
