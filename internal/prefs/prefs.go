// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prefs is a small persistent key-value store for mutable state
// that outlives a run, such as the processed-item set. Read-side
// configuration stays in the config file; this store holds only values
// the program itself writes.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"
)

// Store is the key-value surface the sync layer depends on. Values are
// strings; callers serialize richer state themselves.
type Store interface {
	Get(key string) string
	Set(key, value string) error
}

// FileStore persists preferences as a YAML map in a single file. A
// missing or unparseable file is treated as an empty store, never an
// error, so first runs and corrupted state both start clean.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFileStore opens (or implicitly creates) the store at path.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil || values == nil {
		return s
	}
	s.values = values
	return s
}

// Get returns the stored value for key, or "" when absent.
func (s *FileStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores a value and writes the file through immediately.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating preferences directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the stored value for key, or "" when absent.
func (s *MemStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores a value.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
