package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileBackend stores each document as <dir>/<name>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Load reads the document file.
func (f *FileBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Save replaces the document file atomically: temp file, fsync, rename.
func (f *FileBackend) Save(ctx context.Context, name string, data []byte) error {
	target := f.path(name)
	tempFile := target + ".tmp"

	file, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	logrus.Debugf("saved document %s to %s (%d bytes)", name, target, len(data))
	return nil
}

// Ping checks the data directory is still there.
func (f *FileBackend) Ping(ctx context.Context) error {
	_, err := os.Stat(f.dir)
	return err
}

func (f *FileBackend) Close() error {
	return nil
}
