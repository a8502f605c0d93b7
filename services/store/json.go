package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
)

// JSONStore persists the ledger as a single JSON object on disk
type JSONStore struct {
	mu     sync.Mutex
	path   string
	record Record
	log    *logger.Logger
}

// NewJSONStore creates a store backed by path and loads it
func NewJSONStore(path string, log *logger.Logger) *JSONStore {
	s := &JSONStore{
		path:   path,
		record: Record{},
		log:    log,
	}
	s.Load()
	return s
}

// Load reads the file into memory
func (s *JSONStore) Load() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.record = Record{}
		return s.record.Clone()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to read seen store, starting empty")
		s.record = Record{}
		return s.record.Clone()
	}

	record := Record{}
	if err := json.Unmarshal(data, &record); err != nil || record == nil {
		perr := scerrors.NewParse("store", "corrupted seen store", err)
		s.log.Warn().Err(perr).Str("path", s.path).Msg("Seen store unreadable, resetting to empty")
		s.record = Record{}
		if werr := s.writeLocked(); werr != nil {
			s.log.Error().Err(werr).Str("path", s.path).Msg("Failed to reset seen store")
		}
		return s.record.Clone()
	}

	s.record = record
	s.log.Debug().Int("entries", len(record)).Str("path", s.path).Msg("Seen store loaded")
	return s.record.Clone()
}

// Contains reports whether id was seen
func (s *JSONStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.record[id]
	return ok
}

// MarkSeen records id in memory
func (s *JSONStore) MarkSeen(id, timestamp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record[id] = timestamp
}

// Snapshot returns a copy of the in-memory mapping
func (s *JSONStore) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Persist atomically replaces the file with the in-memory mapping
func (s *JSONStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(); err != nil {
		return scerrors.NewStore("store", "failed to persist seen store", err)
	}
	s.log.Debug().Int("entries", len(s.record)).Str("path", s.path).Msg("Seen store persisted")
	return nil
}

// Close is a no-op for the file store
func (s *JSONStore) Close() error {
	return nil
}

// writeLocked writes to a temp file in the same directory and renames it over the target
func (s *JSONStore) writeLocked() error {
	data, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("encode seen store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace seen store: %w", err)
	}
	return nil
}
