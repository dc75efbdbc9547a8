package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	ErrNotFound       = errors.New("history entry not found")
	ErrUnknownBackend = errors.New("unknown history backend")
)

// Store persists the whole log. Load returns entries newest first and an
// empty slice when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the store named by backend. path is ignored for memory.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// MemoryStore keeps the saved log in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry{}, s.entries...), nil
}

func (s *MemoryStore) Save(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = slices.Clone(entries)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
