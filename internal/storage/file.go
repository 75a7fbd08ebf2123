package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore writes avatars under a local directory.
type FileStore struct {
	root string
}

var _ AvatarStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The directory is created on
// first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (s *FileStore) Put(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	name, err := ObjectName(userID, contentType)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("storage: creating avatar dir: %w", err)
	}

	// write to a temp file first so a failed upload never leaves half an image
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("storage: writing avatar: %w", err)
	}
	if size >= 0 && n != size {
		return "", fmt.Errorf("storage: wrote %d bytes, expected %d", n, size)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storage: saving avatar: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("storage: resolving avatar path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
