// Package room owns the per-room storage namespace and the fan-out of
// room events to connected members.
package room

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultExt is used when a track name carries no extension.
const DefaultExt = ".mp3"

// Store owns the on-disk layout under a single audio root:
// {root}/room-{roomId}/{unixMillis}{ext}.
type Store struct {
	root   string
	logger zerolog.Logger

	// Millisecond timestamps alone can collide when two downloads land
	// in the same tick, so stamps are issued monotonically.
	mu        sync.Mutex
	lastStamp int64
}

// NewStore creates a file store rooted at root.
func NewStore(root string, logger zerolog.Logger) *Store {
	return &Store{
		root:   root,
		logger: logger.With().Str("component", "roomstore").Logger(),
	}
}

// Root returns the audio root directory.
func (s *Store) Root() string {
	return s.root
}

// RoomDir returns the absolute directory for a room namespace.
func (s *Store) RoomDir(roomID string) string {
	return filepath.Join(s.root, "room-"+roomID)
}

// EnsureRoom creates the room namespace if it does not exist. Creating
// an already-existing namespace is not an error, and concurrent calls
// for the same room are safe.
func (s *Store) EnsureRoom(roomID string) error {
	if err := os.MkdirAll(s.RoomDir(roomID), 0o755); err != nil {
		return fmt.Errorf("failed to create room directory: %w", err)
	}
	return nil
}

// Persist writes data into the room namespace and returns the fileID,
// a relative path of the form room-{roomId}/{unixMillis}{ext}. The file
// is written to a temp name and renamed, so readers never observe a
// partial file.
func (s *Store) Persist(roomID string, data []byte, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExt
	}

	filename := strconv.FormatInt(s.nextStamp(), 10) + ext
	fileID := path.Join("room-"+roomID, filename)
	target := filepath.Join(s.RoomDir(roomID), filename)

	tmp, err := os.CreateTemp(s.RoomDir(roomID), filename+".tmp*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to sync audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize audio file: %w", err)
	}

	s.logger.Debug().
		Str("roomID", roomID).
		Str("fileID", fileID).
		Int("bytes", len(data)).
		Msg("Persisted audio file")

	return fileID, nil
}

// nextStamp returns a strictly increasing millisecond timestamp.
func (s *Store) nextStamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= s.lastStamp {
		now = s.lastStamp + 1
	}
	s.lastStamp = now
	return now
}

// ExtFromName returns the extension of a display name, or DefaultExt
// when the name carries none. Extensions are lowercased so fileIDs on
// disk stay uniform regardless of how the upstream name is cased.
func ExtFromName(name string) string {
	if ext := filepath.Ext(name); ext != "" && ext != "." {
		return strings.ToLower(ext)
	}
	return DefaultExt
}
