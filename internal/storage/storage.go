// Package storage writes and removes selection artifacts.
//
// FSStore encodes images by filename extension onto a billy.Filesystem, so
// the same code serves the real output directory (osfs) and in-memory test
// filesystems (memfs).
package storage

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/hashicorp/go-multierror"
)

// Store persists and deletes named images.
type Store interface {
	Persist(name string, img image.Image) error
	Delete(name string) error
}

// PersistenceError reports a failed write or delete. Err may be a
// *multierror.Error when several files were involved.
type PersistenceError struct {
	Op   string // "persist" or "delete"
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceError reports whether err is or wraps a *PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Option configures an FSStore.
type Option func(*FSStore)

// WithJPEGQuality sets the quality used for .jpg and .jpeg files (1-100).
func WithJPEGQuality(q int) Option {
	return func(s *FSStore) {
		if q >= 1 && q <= 100 {
			s.jpegQuality = q
		}
	}
}

// FSStore is a Store backed by a billy.Filesystem.
type FSStore struct {
	fs          billy.Filesystem
	jpegQuality int
}

// New returns an FSStore writing to fs.
func New(fs billy.Filesystem, opts ...Option) *FSStore {
	s := &FSStore{fs: fs, jpegQuality: 95}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDir returns an FSStore rooted at dir on the local disk, creating dir if
// needed.
func NewDir(dir string, opts ...Option) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return New(osfs.New(dir), opts...), nil
}

// Persist encodes img in the format implied by name's extension and writes
// it, replacing any existing file.
func (s *FSStore) Persist(name string, img image.Image) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return &PersistenceError{Op: "persist", Name: name, Err: err}
	}

	f, err := s.fs.Create(name)
	if err != nil {
		return &PersistenceError{Op: "persist", Name: name, Err: err}
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		f.Close()
		_ = s.fs.Remove(name)
		return &PersistenceError{Op: "persist", Name: name, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return &PersistenceError{Op: "persist", Name: name, Err: err}
	}
	return nil
}

// Delete removes name. Deleting a file that does not exist is not an error.
func (s *FSStore) Delete(name string) error {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// DeleteAll removes every name, attempting all of them even after a
// failure. Failures are combined into one *PersistenceError.
func DeleteAll(s Store, names ...string) error {
	var result *multierror.Error
	for _, name := range names {
		if err := s.Delete(name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}
