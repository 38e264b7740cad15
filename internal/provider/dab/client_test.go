package dab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/provider"
)

func newTestClient(server *httptest.Server) *Client {
	cfg := config.ProviderConfig{
		BaseURL:   server.URL,
		UserAgent: "test-agent",
		Timeout:   5,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestClient_Name(t *testing.T) {
	client := NewClient(config.ProviderConfig{}, zerolog.Nop())
	if client.Name() != "dab" {
		t.Errorf("Name() = %q, want %q", client.Name(), "dab")
	}
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "murubutu" {
			t.Errorf("unexpected query: %s", got)
		}
		if got := r.URL.Query().Get("offset"); got != "10" {
			t.Errorf("unexpected offset: %s", got)
		}
		if got := r.URL.Query().Get("type"); got != "track" {
			t.Errorf("unexpected type: %s", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("unexpected user agent: %s", got)
		}

		json.NewEncoder(w).Encode(searchResponse{
			Tracks: []provider.Track{
				{ID: 451, Title: "La collina dei ciliegi", Artist: "Murubutu", Duration: 251},
				{ID: 452, Title: "Wordsworth", Artist: "Murubutu", Duration: 233},
			},
			Pagination: provider.Pagination{Offset: 10, Total: 25, HasMore: true},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	result, err := client.Search(context.Background(), "murubutu", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Tracks) != 2 {
		t.Fatalf("Search() returned %d tracks, want 2", len(result.Tracks))
	}
	if result.Tracks[0].ID != 451 {
		t.Errorf("Tracks[0].ID = %d, want 451", result.Tracks[0].ID)
	}
	if result.Tracks[0].Artist != "Murubutu" {
		t.Errorf("Tracks[0].Artist = %q, want %q", result.Tracks[0].Artist, "Murubutu")
	}
	if result.Pagination.Total != 25 {
		t.Errorf("Pagination.Total = %d, want 25", result.Pagination.Total)
	}
	if !result.Pagination.HasMore {
		t.Error("Pagination.HasMore = false, want true")
	}
}

func TestClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Search(context.Background(), "murubutu", 0)
	if !errors.Is(err, ErrAPIError) {
		t.Errorf("Search() error = %v, want ErrAPIError", err)
	}
}

func TestClient_Search_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Search(context.Background(), "murubutu", 0)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("Search() error = %v, want ErrBadResponse", err)
	}
}

func TestClient_Search_MissingTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pagination":{"offset":0,"total":0,"hasMore":false}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Search(context.Background(), "murubutu", 0)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("Search() error = %v, want ErrBadResponse", err)
	}
}

func TestClient_ResolveStreamURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("trackId"); got != "42" {
			t.Errorf("unexpected trackId: %s", got)
		}
		json.NewEncoder(w).Encode(streamResponse{URL: "https://cdn.example.com/42.flac"})
	}))
	defer server.Close()

	client := newTestClient(server)
	url, err := client.ResolveStreamURL(context.Background(), 42)
	if err != nil {
		t.Fatalf("ResolveStreamURL() error = %v", err)
	}
	if url != "https://cdn.example.com/42.flac" {
		t.Errorf("ResolveStreamURL() = %q, want %q", url, "https://cdn.example.com/42.flac")
	}
}

func TestClient_ResolveStreamURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.ResolveStreamURL(context.Background(), 42)
	if !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("ResolveStreamURL() error = %v, want ErrTrackNotFound", err)
	}
}

func TestClient_ResolveStreamURL_EmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.ResolveStreamURL(context.Background(), 42)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("ResolveStreamURL() error = %v, want ErrBadResponse", err)
	}
}
