package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Store exposes the user configuration record for handlers and the turn
// coordinator. Reads return a copy; updates merge a sparse Partial.
type Store interface {
	Get() Record
	Update(Partial) (Record, error)
}

// MemoryStore implements Store with an in-process record, suitable for tests
// and for running without a settings file.
type MemoryStore struct {
	mu     sync.RWMutex
	record Record
}

// NewMemoryStore returns a MemoryStore seeded with the supplied record.
func NewMemoryStore(initial Record) *MemoryStore {
	return &MemoryStore{record: initial}
}

// Get returns the current record.
func (s *MemoryStore) Get() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Update merges the partial into the stored record and returns the result.
func (s *MemoryStore) Update(p Partial) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = s.record.merged(p)
	return s.record, nil
}

// FileStore persists the record as a JSON file, loading it at startup and
// rewriting it after every update.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	record Record
}

// NewFileStore loads the record from path, writing the defaults there first
// when no file exists yet.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path, record: Defaults()}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &store.record); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		if err := store.persist(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	return store, nil
}

// Get returns the current record.
func (s *FileStore) Get() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Update merges the partial, persists the result and returns it.
func (s *FileStore) Update(p Partial) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = s.record.merged(p)
	if err := s.persist(); err != nil {
		return Record{}, err
	}
	return s.record, nil
}

func (s *FileStore) persist() error {
	raw, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write settings file %s: %w", s.path, err)
	}
	return nil
}
