package hostfs

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryFS is a pure in-memory filesystem for tests.
type MemoryFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemoryFS returns empty in-memory filesystem.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{".": {}, "/": {}},
	}
}

func clean(p string) string {
	if p == "" {
		return "."
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// Open opens the file for reading.
func (f *MemoryFS) Open(p string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[clean(p)]
	if !ok {
		return nil, errors.WithStack(&fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist})
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create creates or truncates the file. Content becomes visible when writer is closed.
func (f *MemoryFS) Create(p string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if _, ok := f.dirs[p]; ok {
		return nil, errors.WithStack(&fs.PathError{Op: "create", Path: p, Err: fs.ErrExist})
	}
	if _, ok := f.dirs[path.Dir(p)]; !ok {
		return nil, errors.WithStack(&fs.PathError{Op: "create", Path: p, Err: fs.ErrNotExist})
	}
	f.files[p] = nil
	return &memWriteCloser{fs: f, path: p}, nil
}

// Stat returns file info.
func (f *MemoryFS) Stat(p string) (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if data, ok := f.files[p]; ok {
		return &fakeInfo{name: path.Base(p), size: int64(len(data))}, nil
	}
	if _, ok := f.dirs[p]; ok {
		return &fakeInfo{name: path.Base(p), dir: true}, nil
	}
	return nil, errors.WithStack(&fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist})
}

// Mkdir creates the directory.
func (f *MemoryFS) Mkdir(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dirs[clean(p)] = struct{}{}
}

// WriteFile stores the file content.
func (f *MemoryFS) WriteFile(p string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.files[clean(p)] = append([]byte(nil), data...)
}

// ReadFile returns the file content.
func (f *MemoryFS) ReadFile(p string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[clean(p)]
	return append([]byte(nil), data...), ok
}

type memWriteCloser struct {
	fs   *MemoryFS
	path string
	buf  bytes.Buffer
}

func (m *memWriteCloser) Write(p []byte) (int, error) {
	return m.buf.Write(p)
}

func (m *memWriteCloser) Close() error {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()

	m.fs.files[m.path] = m.buf.Bytes()
	return nil
}

type fakeInfo struct {
	name string
	size int64
	dir  bool
}

func (f *fakeInfo) Name() string       { return f.name }
func (f *fakeInfo) Size() int64        { return f.size }
func (f *fakeInfo) ModTime() time.Time { return time.Time{} }
func (f *fakeInfo) IsDir() bool        { return f.dir }
func (f *fakeInfo) Sys() interface{}   { return nil }

func (f *fakeInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
