package errorlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileStore persists the snapshot as a JSON file. Writes go to a temporary
// file in the same directory which is then renamed over the target, so a
// reader never observes a partially written document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the snapshot file.
func (f *FileStore) Load(_ context.Context) (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Decode(data)
}

// Save atomically replaces the snapshot file.
func (f *FileStore) Save(_ context.Context, state *State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
