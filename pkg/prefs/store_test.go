package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore() error: %v", err)
	}
	if _, ok := s.Get(ThemeKey); ok {
		t.Error("Expected empty store")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no file to be written until the first Set")
	}
}

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore() error: %v", err)
	}
	if err := s.Set(ThemeKey, "light_mode"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(SavedChatsKey, "1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Remove(SavedChatsKey); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore() reopen error: %v", err)
	}
	if v, ok := reopened.Get(ThemeKey); !ok || v != "light_mode" {
		t.Errorf("Expected themeColor=light_mode, got %q (present=%v)", v, ok)
	}
	if _, ok := reopened.Get(SavedChatsKey); ok {
		t.Error("Expected saved-chats to be removed")
	}
}

func TestFileStore_RemoveMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore() error: %v", err)
	}
	if err := s.Remove("nope"); err != nil {
		t.Errorf("Expected removing a missing key to succeed, got %v", err)
	}
}

func TestFileStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := OpenFileStore(path); err == nil {
		t.Error("Expected error for corrupted state file, got nil")
	}
}

func TestMemoryStore_CopiesSeed(t *testing.T) {
	seed := map[string]string{ThemeKey: "dark_mode"}
	m := NewMemoryStore(seed)
	seed[ThemeKey] = "light_mode"

	if v, _ := m.Get(ThemeKey); v != "dark_mode" {
		t.Errorf("Expected seed to be copied, got %q", v)
	}
}
