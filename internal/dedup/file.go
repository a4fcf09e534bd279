package dedup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
)

// FileStore implements Store over an append-only line-delimited log.
// Each Record is a single write of "id\n" followed by fsync; a record
// either fully lands or not at all. A partial trailing line left by a
// crash is discarded at load time.
type FileStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	file *os.File
	path string
}

// NewFileStore opens (or creates) the log at path and loads all prior
// identifiers into memory.
func NewFileStore(path string) (*FileStore, error) {
	seen, err := loadLog(path)
	if err != nil {
		return nil, fmt.Errorf("load dedup log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dedup log: %w", err)
	}

	logger.Info("Dedup log loaded", "path", path, "identifiers", len(seen))

	return &FileStore{seen: seen, file: f, path: path}, nil
}

// loadLog reads the full log, tolerating a torn final line
func loadLog(path string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return seen, nil
		}
		return nil, err
	}

	lines := bytes.Split(data, []byte("\n"))
	// Anything after the last newline is a torn write; drop it.
	if len(lines) > 0 && len(lines[len(lines)-1]) > 0 {
		logger.Warn("Discarding partial trailing record in dedup log", "path", path)
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		id := strings.TrimSpace(string(line))
		if id != "" {
			seen[id] = struct{}{}
		}
	}

	return seen, nil
}

// Contains answers a membership query
func (s *FileStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Record durably appends the identifier. The in-memory set is updated only
// after the write and sync both succeed, so a failed Record leaves the
// identifier eligible for retry.
func (s *FileStore) Record(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return nil
	}

	// The log is line-delimited; an id carrying a line break would load
	// back as two different identifiers after a restart.
	if strings.ContainsAny(id, "\n\r") {
		return apperrors.PersistenceError{
			Operation: "encode",
			Err:       fmt.Errorf("identifier contains a line break"),
		}
	}

	if _, err := s.file.Write([]byte(id + "\n")); err != nil {
		return apperrors.PersistenceError{Operation: "append", Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return apperrors.PersistenceError{Operation: "sync", Err: err}
	}

	s.seen[id] = struct{}{}
	return nil
}

// Len returns the number of known identifiers
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Close closes the underlying log file
func (s *FileStore) Close() error {
	return s.file.Close()
}
