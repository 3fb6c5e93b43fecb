package resource

import (
	"io"
	"os"
	"path/filepath"

	"github.com/c360/manifest/errors"
)

// FileResource is a Resource backed by a local filesystem path.
type FileResource struct {
	path string
}

// NewFileResource creates a resource for the given path. The path is
// cleaned but not checked for existence.
func NewFileResource(path string) *FileResource {
	return &FileResource{path: filepath.Clean(path)}
}

// Exists reports whether the file is present and is not a directory.
func (r *FileResource) Exists() bool {
	info, err := os.Stat(r.path)
	return err == nil && !info.IsDir()
}

// Location returns the cleaned filesystem path.
func (r *FileResource) Location() string {
	return filepath.ToSlash(r.path)
}

// Open opens the file for reading.
func (r *FileResource) Open() (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapInvalid(errors.ErrResourceNotFound, "FileResource", "Open", "open "+r.path)
		}
		return nil, errors.WrapTransient(err, "FileResource", "Open", "open "+r.path)
	}
	return f, nil
}

// CreateRelative resolves path against this file's directory.
func (r *FileResource) CreateRelative(path string) (Resource, error) {
	return NewFileResource(filepath.Join(filepath.Dir(r.path), filepath.FromSlash(path))), nil
}
