// Package state persists per-view browsing state to the data directory so a
// returning session resumes its prior search context. Each view gets one JSON
// record under a view-scoped key, e.g. views/receipts.json.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes view records under a base directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Join(dir, "views")}
}

// path maps a view key to its record file. Keys are restricted to a safe
// character set so a malformed key cannot escape the views directory.
func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("invalid view key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Save marshals v and writes it under the given view key. The write goes
// through a temp file and rename so a crash never leaves a torn record.
func (s *Store) Save(key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create views dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write view record: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod view record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close view record: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace view record: %w", err)
	}
	return nil
}

// Load unmarshals the record for the given view key into v. Reports false
// with a nil error when no record exists yet. A corrupt record is treated as
// absent rather than fatal: stale browsing state is never worth failing
// startup over.
func (s *Store) Load(key string, v any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read view record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// Clear removes the record for the given view key, if any.
func (s *Store) Clear(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove view record: %w", err)
	}
	return nil
}
