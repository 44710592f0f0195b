package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// diskStorage writes uploads to the local filesystem under a fixed root.
// This matches the service's ephemeral-storage model: files live only until
// the cleanup scheduler removes them (or the process dies).
type diskStorage struct {
	root string
}

// NewDisk creates a filesystem-backed Storage rooted at dir, creating the
// directory if needed.
func NewDisk(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &diskStorage{root: dir}, nil
}

// Write stores data at root/name and returns the absolute path.
func (d *diskStorage) Write(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Stat returns the file size. A missing file surfaces as an os.IsNotExist
// error so callers can tell "already gone" from real failures.
func (d *diskStorage) Stat(_ context.Context, location string) (int64, error) {
	fi, err := os.Stat(location)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Remove deletes the file at location.
func (d *diskStorage) Remove(_ context.Context, location string) error {
	return os.Remove(location)
}
