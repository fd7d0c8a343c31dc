// Package filestorage implements the file storage collaborator: uploaded
// images are written to a local directory and addressed by a wire path
// like "images/<name>" that the static file route serves back.
package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// ErrInvalidPath is returned by Remove for paths that do not point at a
// file inside the storage directory.
var ErrInvalidPath = errors.New("invalid stored path")

// FileStorage stores files in a single local directory.
type FileStorage struct {
	root string
}

// New creates a FileStorage rooted at the given directory,
// creating it if necessary.
func New(root string) (*FileStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %q: %w", root, err)
	}

	return &FileStorage{root: root}, nil
}

// Root returns the storage directory.
func (s *FileStorage) Root() string {
	return s.root
}

// Save writes src to a new file with the given name and returns the wire
// path of the stored file. The name must be unique; an existing file with
// the same name is an error.
func (s *FileStorage) Save(name string, src io.Reader) (string, error) {
	name = filepath.Base(filepath.FromSlash(name))
	if name == "." || name == string(filepath.Separator) {
		return "", ErrInvalidPath
	}

	destination, err := os.OpenFile(
		filepath.Join(s.root, name),
		os.O_WRONLY|os.O_CREATE|os.O_EXCL,
		0o644,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create file %q: %w", name, err)
	}

	_, err = io.Copy(destination, src)
	if err != nil {
		destination.Close()
		return "", fmt.Errorf("failed to write file %q: %w", name, err)
	}

	if err := destination.Close(); err != nil {
		return "", fmt.Errorf("failed to close file %q: %w", name, err)
	}

	return path.Join(filepath.ToSlash(filepath.Base(s.root)), name), nil
}

// Remove deletes the file referenced by a wire path previously returned
// by Save. Only the base name is honored, so a path cannot escape the
// storage directory.
func (s *FileStorage) Remove(storedPath string) error {
	name := path.Base(filepath.ToSlash(storedPath))
	if name == "." || name == "/" || name == ".." {
		return ErrInvalidPath
	}

	return os.Remove(filepath.Join(s.root, name))
}
