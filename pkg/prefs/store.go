// Package prefs is a small persisted key/value store for client-side state.
package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	// ThemeKey holds the theme preference.
	ThemeKey = "themeColor"
	// SavedChatsKey marks a saved conversation; only its presence matters here.
	SavedChatsKey = "saved-chats"
)

// Store is a string key/value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore keeps all entries in one JSON object on disk.
// Every write rewrites the file so the state survives restarts.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// OpenFileStore loads path, starting empty when the file does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	return s, nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores value under key and persists the store.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return s.flushLocked()
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.flushLocked()
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	slog.Debug("prefs_flushed", "path", s.path, "keys", len(s.entries))
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore returns a store seeded with entries.
func NewMemoryStore(entries map[string]string) *MemoryStore {
	m := &MemoryStore{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
