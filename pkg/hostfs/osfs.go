package hostfs

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// OSFS uses the real filesystem.
type OSFS struct{}

// Open opens the file for reading.
func (OSFS) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

// Create creates or truncates the file.
func (OSFS) Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

// Stat returns file info.
func (OSFS) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return info, nil
}
