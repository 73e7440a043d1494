package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded identity documents and returns an opaque reference
// for the verification gate. The disk implementation serves single-instance
// deployments; a bucket-backed implementation can replace it without
// touching the gate.
type Store interface {
	Save(name string, r io.Reader) (string, error)
}

// DiskStore writes uploads beneath a local directory with random names.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the upload directory exists.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save streams the upload to disk and returns its reference. The original
// name contributes only its extension.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	ref := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return ref, nil
}
