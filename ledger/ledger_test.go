package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushRemove(t *testing.T) {
	requireT := require.New(t)

	l := New[uint64]()
	requireT.Zero(l.Len())
	requireT.Empty(l.Entries())

	requireT.True(l.Push(5))
	requireT.True(l.Push(2))
	requireT.True(l.Push(9))
	requireT.False(l.Push(2))

	requireT.Equal(3, l.Len())
	requireT.Equal([]uint64{5, 2, 9}, l.Entries())
	requireT.True(l.Contains(9))
	requireT.False(l.Contains(1))

	requireT.True(l.Remove(2))
	requireT.False(l.Remove(2))
	requireT.Equal([]uint64{5, 9}, l.Entries())

	// Removed handle may be pushed again and lands at the end.
	requireT.True(l.Push(2))
	requireT.Equal([]uint64{5, 9, 2}, l.Entries())
}

func TestEntriesAreCopied(t *testing.T) {
	requireT := require.New(t)

	l := New[uint64]()
	l.Push(1)
	l.Push(2)

	entries := l.Entries()
	entries[0] = 100
	requireT.Equal([]uint64{1, 2}, l.Entries())
}

func TestUnbounded(t *testing.T) {
	requireT := require.New(t)

	const n = 1000

	l := New[int]()
	for i := 0; i < n; i++ {
		requireT.True(l.Push(i))
	}
	requireT.Equal(n, l.Len())

	l.Clear()
	requireT.Zero(l.Len())
	requireT.False(l.Contains(0))
	requireT.True(l.Push(0))
}
