// Package storage persists geocode lookups between runs as a flat JSON file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parkrec/campdata/internal/models"
)

// GeocodeStore maps "location|community" keys to coordinates. A nil coordinate
// is the "no physical address" sentinel and is never replaced once stored.
type GeocodeStore struct {
	path    string
	entries map[string]*models.Coordinate
	dirty   bool
	mu      sync.RWMutex
}

// New returns an empty in-memory store that is never written to disk.
func New() *GeocodeStore {
	return &GeocodeStore{
		entries: make(map[string]*models.Coordinate),
	}
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*GeocodeStore, error) {
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("failed to parse geocode cache %s: %w", path, err)
	}
	if s.entries == nil {
		s.entries = make(map[string]*models.Coordinate)
	}
	return s, nil
}

// Get returns the cached coordinate for key. ok is true for sentinels too.
func (s *GeocodeStore) Get(key string) (*models.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coord, ok := s.entries[key]
	if coord != nil {
		c := *coord
		coord = &c
	}
	return coord, ok
}

// Set stores coord under key and reports whether it was stored. Writing over
// a sentinel is refused.
func (s *GeocodeStore) Set(key string, coord *models.Coordinate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok && existing == nil {
		return false
	}
	if coord != nil {
		c := *coord
		coord = &c
	}
	s.entries[key] = coord
	s.dirty = true
	return true
}

// GetAll returns a copy of every entry, sentinels included.
func (s *GeocodeStore) GetAll() map[string]*models.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.Coordinate, len(s.entries))
	for k, v := range s.entries {
		if v != nil {
			c := *v
			v = &c
		}
		result[k] = v
	}
	return result
}

// Len returns the number of cached keys.
func (s *GeocodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Flush writes the store back to its file when it has unsaved entries.
func (s *GeocodeStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal geocode cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace geocode cache: %w", err)
	}
	s.dirty = false
	return nil
}
