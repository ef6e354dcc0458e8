// Package fs provides whole-file storage for the lockbox service. Reads
// load the entire file into memory; writes are atomic (temp file + rename)
// so a failed operation never leaves a partial destination file.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"lockbox-go/internal/lockbox"
)

// OSFileStore implements lockbox.FileStore on the local filesystem.
type OSFileStore struct{}

var _ lockbox.FileStore = (*OSFileStore)(nil)

// NewOSFileStore creates an OSFileStore.
func NewOSFileStore() *OSFileStore {
	return &OSFileStore{}
}

// Read loads the entire file at path into memory.
func (*OSFileStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", lockbox.ErrIO, path, err)
	}
	return data, nil
}

// Write writes data to path atomically: the bytes go to a temp file in the
// destination directory, which is renamed into place once fully written.
func (*OSFileStore) Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %v", lockbox.ErrIO, dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".lockbox-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", lockbox.ErrIO, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: writing %s: %v", lockbox.ErrIO, path, err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: setting mode on %s: %v", lockbox.ErrIO, path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", lockbox.ErrIO, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming into %s: %v", lockbox.ErrIO, path, err)
	}
	success = true
	return nil
}
