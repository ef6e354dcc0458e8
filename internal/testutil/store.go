package testutil

import (
	"fmt"
	"io/fs"
	"sync"

	"lockbox-go/internal/lockbox"
)

// MemFileStore is an in-memory lockbox.FileStore for testing. Safe for
// concurrent use.
type MemFileStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	perms map[string]fs.FileMode
}

var _ lockbox.FileStore = (*MemFileStore)(nil)

// NewMemFileStore creates an empty in-memory file store.
func NewMemFileStore() *MemFileStore {
	return &MemFileStore{
		files: make(map[string][]byte),
		perms: make(map[string]fs.FileMode),
	}
}

// Read returns the stored bytes for path.
func (m *MemFileStore) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: file not found: %s", lockbox.ErrIO, path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy of data under path.
func (m *MemFileStore) Write(path string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	m.perms[path] = perm
	return nil
}

// Perm returns the mode a path was written with, or 0 if it does not exist.
func (m *MemFileStore) Perm(path string) fs.FileMode {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.perms[path]
}
