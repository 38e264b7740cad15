// Package dab implements the provider interfaces against the DAB music
// catalog HTTP API.
package dab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/provider"
)

var (
	ErrAPIError      = errors.New("DAB API error")
	ErrTrackNotFound = errors.New("track not found")
	ErrBadResponse   = errors.New("malformed DAB response")
)

// Client is a DAB catalog API client. It implements provider.Searcher
// and provider.Resolver.
type Client struct {
	httpClient *http.Client
	config     config.ProviderConfig
	logger     zerolog.Logger
}

// NewClient creates a new DAB client.
func NewClient(cfg config.ProviderConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "dab").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "dab"
}

// Search searches the catalog for tracks matching query at the given
// offset. One upstream call per invocation, no retries.
func (c *Client) Search(ctx context.Context, query string, offset int) (*provider.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search", c.config.BaseURL)
	params := url.Values{}
	params.Set("q", query)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("type", "track")

	var response searchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	if response.Tracks == nil {
		return nil, fmt.Errorf("%w: missing tracks field", ErrBadResponse)
	}

	c.logger.Debug().
		Str("query", query).
		Int("offset", offset).
		Int("results", len(response.Tracks)).
		Int("total", response.Pagination.Total).
		Msg("Search completed")

	return &provider.SearchResult{
		Tracks:     response.Tracks,
		Pagination: response.Pagination,
	}, nil
}

// ResolveStreamURL resolves a track ID to a streamable audio URL.
func (c *Client) ResolveStreamURL(ctx context.Context, trackID int) (string, error) {
	endpoint := fmt.Sprintf("%s/stream", c.config.BaseURL)
	params := url.Values{}
	params.Set("trackId", strconv.Itoa(trackID))

	var response streamResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return "", err
	}

	if response.URL == "" {
		return "", fmt.Errorf("%w: missing stream url", ErrBadResponse)
	}

	c.logger.Debug().
		Int("trackID", trackID).
		Msg("Resolved stream URL")

	return response.URL, nil
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("url", endpoint).
			Msg("DAB API error")

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrTrackNotFound
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return nil
}

// setHeaders applies the browser-profile headers the DAB API expects.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Sec-GPC", "1")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Referer", c.config.BaseURL+"/")
}
