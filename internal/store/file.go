// Package store provides string-keyed durable blob storage backed by
// files in a single directory. One key maps to one JSON file; writes go
// through a temp file and rename so a crash never leaves a half-written
// value behind.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore implements ports.KeyValueStore on top of a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Read(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *FileStore) Write(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to flush %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
