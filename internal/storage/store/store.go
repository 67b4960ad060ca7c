// Package store provides the durable key-value persistence backing profiles
// and settings: one JSON document on disk, read and written whole.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a JSON-file-backed key-value store. Values are opaque JSON;
// callers read-modify-write whole collections under a key. Save rewrites the
// entire document, so the last saver wins across concurrent writers.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// Load opens the store at path, reading the existing document if present.
// A missing file yields an empty store; the file is created on first Save.
func Load(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string]json.RawMessage)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory document with the persisted one.
func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.data = make(map[string]json.RawMessage)
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading store: %w", err)
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing store: %w", err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Get unmarshals the value under key into out. The second return is false
// when the key is absent, in which case out is left untouched.
func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decoding store key %q: %w", key, err)
	}
	return true, nil
}

// Set replaces the value under key in memory. Call Save to persist.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding store key %q: %w", key, err)
	}

	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes key from the in-memory document.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Save writes the whole document to disk atomically (temp file + rename).
func (s *Store) Save() error {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing store: %w", err)
	}

	return nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}
