// Package janitor prunes audio from rooms whose files have all aged
// past the configured retention. Rooms are ephemeral; their audio does
// not need to outlive the session by much.
package janitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/history"
	"github.com/soundroom/soundroom/internal/room"
)

// Service runs the scheduled retention sweep.
type Service struct {
	store     *room.Store
	history   *history.Service
	retention time.Duration
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

// NewService creates a janitor. A retention of zero disables sweeping.
func NewService(store *room.Store, historyService *history.Service, retention time.Duration, logger zerolog.Logger) (*Service, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Service{
		store:     store,
		history:   historyService,
		retention: retention,
		scheduler: gs,
		logger:    logger.With().Str("component", "janitor").Logger(),
	}, nil
}

// Start schedules the hourly sweep and starts the scheduler.
func (s *Service) Start() error {
	if s.retention <= 0 {
		s.logger.Info().Msg("retention disabled, janitor idle")
		return nil
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			if err := s.Sweep(context.Background()); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}),
		gocron.WithName("room-retention-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info().Dur("retention", s.retention).Msg("janitor started")
	return nil
}

// Stop shuts the scheduler down.
func (s *Service) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep removes room directories whose newest file is older than the
// retention window, along with the rooms' history rows. Rooms with any
// recent file are left untouched.
func (s *Service) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(s.store.Root())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read audio root: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	swept := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "room-") {
			continue
		}

		roomID := strings.TrimPrefix(entry.Name(), "room-")
		dir := filepath.Join(s.store.Root(), entry.Name())

		stale, err := s.roomStale(dir, cutoff)
		if err != nil {
			s.logger.Warn().Err(err).Str("roomID", roomID).Msg("skipping room")
			continue
		}
		if !stale {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn().Err(err).Str("roomID", roomID).Msg("failed to prune room directory")
			continue
		}
		if s.history != nil {
			if _, err := s.history.DeleteByRoom(ctx, roomID); err != nil {
				s.logger.Warn().Err(err).Str("roomID", roomID).Msg("failed to prune room history")
			}
		}

		swept++
		s.logger.Info().Str("roomID", roomID).Msg("pruned room audio")
	}

	if swept > 0 {
		s.logger.Info().Int("rooms", swept).Msg("sweep completed")
	}
	return nil
}

// roomStale reports whether every file in dir is older than cutoff.
// An empty directory is stale only once the directory itself has aged
// past the cutoff; a freshly created namespace may belong to a
// download that has not persisted its file yet.
func (s *Service) roomStale(dir string, cutoff time.Time) (bool, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	if len(files) == 0 {
		info, err := os.Stat(dir)
		if err != nil {
			return false, err
		}
		return !info.ModTime().After(cutoff), nil
	}

	for _, f := range files {
		info, err := f.Info()
		if err != nil {
			return false, err
		}
		if info.ModTime().After(cutoff) {
			return false, nil
		}
	}
	return true, nil
}
