package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes audio files into a directory on local disk.
// The returned reference is the file path.
type LocalStore struct {
	dir string
}

var _ AudioStore = (*LocalStore)(nil)

// NewLocalStore creates the directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the upload directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save copies r into <dir>/<name>. size is not enforced here; callers
// limit the reader.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes a saved file; a missing file is not an error
func (s *LocalStore) Remove(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", ref, err)
	}
	return nil
}
