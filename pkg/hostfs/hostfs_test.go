package hostfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryFS(t *testing.T) {
	testFS(t, NewMemoryFS(), "")
}

func TestOSFS(t *testing.T) {
	testFS(t, OSFS{}, t.TempDir())
}

func TestMemoryFSHelpers(t *testing.T) {
	requireT := require.New(t)

	f := NewMemoryFS()
	_, ok := f.ReadFile("a")
	requireT.False(ok)

	f.WriteFile("a", []byte("abc"))
	data, ok := f.ReadFile("a")
	requireT.True(ok)
	requireT.Equal([]byte("abc"), data)

	_, err := f.Create("dir/a")
	requireT.ErrorIs(err, fs.ErrNotExist)

	f.Mkdir("dir")
	info, err := f.Stat("dir")
	requireT.NoError(err)
	requireT.True(info.IsDir())

	_, err = f.Create("dir")
	requireT.Error(err)
}

func testFS(t *testing.T, f FS, root string) {
	requireT := require.New(t)

	p := filepath.Join(root, "file.bin")

	_, err := f.Stat(p)
	requireT.ErrorIs(err, os.ErrNotExist)
	_, err = f.Open(p)
	requireT.ErrorIs(err, os.ErrNotExist)

	w, err := f.Create(p)
	requireT.NoError(err)
	_, err = w.Write([]byte("hello"))
	requireT.NoError(err)
	requireT.NoError(w.Close())

	info, err := f.Stat(p)
	requireT.NoError(err)
	requireT.EqualValues(5, info.Size())
	requireT.False(info.IsDir())

	r, err := f.Open(p)
	requireT.NoError(err)
	data, err := io.ReadAll(r)
	requireT.NoError(err)
	requireT.NoError(r.Close())
	requireT.Equal([]byte("hello"), data)
}
