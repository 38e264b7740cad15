// Package history records successful downloads per room.
package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Service provides download history management.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Record inserts a history entry for a persisted download.
func (s *Service) Record(ctx context.Context, input RecordInput) (*Entry, error) {
	provider := input.Provider
	if provider == "" {
		provider = "dab"
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO downloads (room_id, file_id, title, track_id, provider)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, room_id, file_id, title, track_id, provider, created_at`,
		input.RoomID, input.FileID, input.Title, input.TrackID, provider,
	)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}
	return entry, nil
}

// ListByRoom lists a room's downloads, newest first, with pagination.
func (s *Service) ListByRoom(ctx context.Context, roomID string, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM downloads WHERE room_id = ?`, roomID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, file_id, title, track_id, provider, created_at
		FROM downloads
		WHERE room_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		roomID, opts.PageSize, (opts.Page-1)*opts.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: total,
	}, nil
}

// DeleteByRoom removes all history rows for a room. Used by the janitor
// when a room's audio is pruned.
func (s *Service) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM downloads WHERE room_id = ?`, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete room history: %w", err)
	}
	return res.RowsAffected()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	if err := s.Scan(&e.ID, &e.RoomID, &e.FileID, &e.Title, &e.TrackID, &e.Provider, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
