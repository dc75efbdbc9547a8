package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the log as a JSON array in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load treats a missing file as an empty history. A file that does not decode
// is reported so the caller can log it; the caller starts empty either way.
func (s *FileStore) Load(context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return []Entry{}, fmt.Errorf("read history %s: %w", s.path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}, fmt.Errorf("decode history %s: %w", s.path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Save writes through a temporary file and renames it over the target, so a
// crash mid-write leaves the previous history intact.
func (s *FileStore) Save(_ context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
