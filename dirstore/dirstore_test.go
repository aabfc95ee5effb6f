package dirstore

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/mfs/arena"
	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/directory"
	"github.com/outofforest/mfs/blocks/singularity"
	"github.com/outofforest/mfs/pkg/memdev"
)

const (
	blockSize = 128
	nBlocks   = 16
	// Spans several blocks because only two entries fit into one.
	nEntries = 5
)

func TestBlocksRequired(t *testing.T) {
	requireT := require.New(t)

	requireT.EqualValues(3, BlocksRequired(blockSize, nEntries))
	requireT.EqualValues(1, BlocksRequired(8192, 128))
	requireT.EqualValues(2, BlocksRequired(8192, 147))
	requireT.Zero(BlocksRequired(8, 1))
}

func TestSetGetFind(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)

	_, _, exists, err := st.Find("a.txt")
	requireT.NoError(err)
	requireT.False(exists)

	for i := blocks.EntryIndex(0); i < nEntries; i++ {
		requireT.NoError(st.Set(i, Entry{
			Name:  fmt.Sprintf("file-%d", i),
			Inode: blocks.InodeIndex(10 + i),
			State: directory.UsedState,
		}))
	}

	for i := blocks.EntryIndex(0); i < nEntries; i++ {
		index, entry, exists, err := st.Find(fmt.Sprintf("file-%d", i))
		requireT.NoError(err)
		requireT.True(exists)
		requireT.Equal(i, index)
		requireT.EqualValues(10+i, entry.Inode)

		entry, err = st.Get(i)
		requireT.NoError(err)
		requireT.Equal(fmt.Sprintf("file-%d", i), entry.Name)
	}

	// Names are compared exactly.
	_, _, exists, err = st.Find("FILE-1")
	requireT.NoError(err)
	requireT.False(exists)
}

func TestFindSkipsHiddenEntries(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)
	requireT.NoError(st.Set(0, Entry{Name: "a", Inode: 1, State: directory.UsedState}))
	requireT.NoError(st.SetState(0, directory.PendingState))

	_, _, exists, err := st.Find("a")
	requireT.NoError(err)
	requireT.False(exists)

	// Binding is retained while pending.
	entry, err := st.Get(0)
	requireT.NoError(err)
	requireT.Equal(Entry{Name: "a", Inode: 1, State: directory.PendingState}, entry)

	// Pending entry is not free.
	index, err := st.FindFree()
	requireT.NoError(err)
	requireT.EqualValues(1, index)

	requireT.NoError(st.SetState(0, directory.UsedState))
	index, _, exists, err = st.Find("a")
	requireT.NoError(err)
	requireT.True(exists)
	requireT.EqualValues(0, index)
}

func TestFindFirstMatchWins(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)
	requireT.NoError(st.Set(3, Entry{Name: "dup", Inode: 3, State: directory.UsedState}))
	requireT.NoError(st.Set(1, Entry{Name: "dup", Inode: 1, State: directory.UsedState}))

	index, entry, exists, err := st.Find("dup")
	requireT.NoError(err)
	requireT.True(exists)
	requireT.EqualValues(1, index)
	requireT.EqualValues(1, entry.Inode)
}

func TestFindFree(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)

	for i := 0; i < nEntries; i++ {
		index, err := st.FindFree()
		requireT.NoError(err)
		requireT.EqualValues(i, index)
		requireT.NoError(st.Set(index, Entry{Name: fmt.Sprintf("%d", i), State: directory.UsedState}))
	}

	_, err := st.FindFree()
	requireT.ErrorIs(err, ErrNoFreeEntry)

	requireT.NoError(st.SetState(4, directory.FreeState))
	index, err := st.FindFree()
	requireT.NoError(err)
	requireT.EqualValues(4, index)
}

func TestWalk(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)
	requireT.NoError(st.Set(4, Entry{Name: "d", State: directory.UsedState}))
	requireT.NoError(st.Set(0, Entry{Name: "c", State: directory.UsedState}))
	requireT.NoError(st.Set(2, Entry{Name: "x", State: directory.PendingState}))
	requireT.NoError(st.Set(3, Entry{Name: "a", State: directory.UsedState}))

	var names []string
	requireT.NoError(st.Walk(func(_ blocks.EntryIndex, entry Entry) error {
		names = append(names, entry.Name)
		return nil
	}))
	requireT.Equal([]string{"c", "a", "d"}, names)

	errStop := errors.New("stop")
	names = nil
	requireT.ErrorIs(st.Walk(func(_ blocks.EntryIndex, entry Entry) error {
		names = append(names, entry.Name)
		return errStop
	}), errStop)
	requireT.Equal([]string{"c"}, names)
}

func TestLimits(t *testing.T) {
	requireT := require.New(t)

	st := newStore(t)
	requireT.Error(st.Set(0, Entry{Name: "123456789012345678901234567890123"}))
	requireT.NoError(st.Set(0, Entry{Name: "12345678901234567890123456789012"}))
	requireT.Error(st.Set(nEntries, Entry{}))
	_, err := st.Get(nEntries)
	requireT.Error(err)
}

func newStore(t *testing.T) *Store {
	requireT := require.New(t)

	dev := memdev.New(nBlocks * blockSize)
	requireT.NoError(arena.Initialize(dev, singularity.Block{
		BlockSize:         blockSize,
		NBlocks:           nBlocks,
		DirectoryOrigin:   1,
		NDirectoryEntries: nEntries,
		NReserved:         1 + BlocksRequired(blockSize, nEntries),
	}, false))

	s, err := arena.Open(dev)
	requireT.NoError(err)

	st, err := New(s)
	requireT.NoError(err)
	return st
}
