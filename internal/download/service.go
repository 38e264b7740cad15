// Package download orchestrates resolving a catalog track to a stream
// URL, fetching the audio, persisting it under the room namespace, and
// announcing the new source to the room.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/history"
	"github.com/soundroom/soundroom/internal/provider"
	"github.com/soundroom/soundroom/internal/room"
)

var (
	ErrFetchFailed = errors.New("audio fetch failed")
	ErrTooLarge    = errors.New("audio payload exceeds size limit")
)

// Service handles the download pipeline for a room.
type Service struct {
	resolver   provider.Resolver
	store      *room.Store
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	notifier   room.Notifier
	history    *history.Service
	logger     zerolog.Logger
}

// NewService creates a new download service.
func NewService(resolver provider.Resolver, store *room.Store, cfg config.Config, logger zerolog.Logger) *Service {
	maxBytes := int64(cfg.Audio.MaxDownloadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 200 * 1024 * 1024
	}

	return &Service{
		resolver: resolver,
		store:    store,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Provider.Timeout) * time.Second,
		},
		userAgent: cfg.Provider.UserAgent,
		maxBytes:  maxBytes,
		logger:    logger.With().Str("component", "download").Logger(),
	}
}

// SetNotifier sets the notifier used to announce new audio sources.
func (s *Service) SetNotifier(notifier room.Notifier) {
	s.notifier = notifier
}

// SetHistory sets the history service used to record downloads.
func (s *Service) SetHistory(historyService *history.Service) {
	s.history = historyService
}

// Download resolves trackID to a stream URL, fetches the audio into
// memory, persists it under the room namespace, and publishes a
// NEW_AUDIO_SOURCE event. Any failure before persistence aborts the
// whole operation; the room directory, once created, is left in place
// since an empty directory is inert. Returns the fileID.
func (s *Service) Download(ctx context.Context, trackID int, name, roomID string) (string, error) {
	streamURL, err := s.resolver.ResolveStreamURL(ctx, trackID)
	if err != nil {
		s.logger.Error().Err(err).Int("trackID", trackID).Msg("failed to resolve stream URL")
		return "", err
	}

	if err := s.store.EnsureRoom(roomID); err != nil {
		return "", err
	}

	// The full payload is buffered before the write so an interrupted
	// transfer never leaves a truncated file visible to readers.
	data, err := s.fetch(ctx, streamURL)
	if err != nil {
		s.logger.Error().Err(err).Int("trackID", trackID).Msg("failed to fetch audio")
		return "", err
	}

	fileID, err := s.store.Persist(roomID, data, room.ExtFromName(name))
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("roomID", roomID).
		Str("fileID", fileID).
		Int("trackID", trackID).
		Int("bytes", len(data)).
		Msg("track downloaded")

	// History and broadcast are post-persistence concerns: neither may
	// turn an already-durable download into a failure.
	if s.history != nil {
		if _, err := s.history.Record(ctx, history.RecordInput{
			RoomID:  roomID,
			FileID:  fileID,
			Title:   name,
			TrackID: trackID,
		}); err != nil {
			s.logger.Warn().Err(err).Str("fileID", fileID).Msg("failed to record download history")
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Publish(roomID, room.NewAudioSourceEvent(fileID, name, roomID)); err != nil {
			s.logger.Warn().Err(err).Str("roomID", roomID).Msg("failed to publish room event")
		}
	}

	return fileID, nil
}

// fetch downloads the full binary payload from url.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxBytes)
	}

	return data, nil
}
