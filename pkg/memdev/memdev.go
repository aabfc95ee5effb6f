package memdev

import (
	"io"

	"github.com/pkg/errors"
)

var (
	_ io.ReaderAt = &MemDev{}
	_ io.WriterAt = &MemDev{}
)

// MemDev simulates device io operations in memory.
type MemDev struct {
	data []byte
}

// New returns new memdev.
func New(size int64) *MemDev {
	return &MemDev{
		data: make([]byte, size),
	}
}

// ReadAt reads data from the memdev starting at offset.
func (md *MemDev) ReadAt(p []byte, offset int64) (int, error) {
	if err := md.validateOffset(offset); err != nil {
		return 0, err
	}
	n := copy(p, md.data[offset:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt writes data to the memdev starting at offset.
func (md *MemDev) WriteAt(p []byte, offset int64) (int, error) {
	if err := md.validateOffset(offset); err != nil {
		return 0, err
	}
	n := copy(md.data[offset:], p)
	if n < len(p) {
		return n, errors.WithStack(io.ErrShortWrite)
	}
	return n, nil
}

// Sync does nothing because there is nothing to flush.
func (md *MemDev) Sync() error {
	return nil
}

// Size returns the byte size of the memdev.
func (md *MemDev) Size() int64 {
	return int64(len(md.data))
}

func (md *MemDev) validateOffset(offset int64) error {
	if offset < 0 || offset > int64(len(md.data)) {
		return errors.Errorf("invalid offset: %d", offset)
	}
	return nil
}
