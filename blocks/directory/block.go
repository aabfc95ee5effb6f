package directory

import (
	"unsafe"

	"github.com/outofforest/mfs/blocks"
)

// NameCapacity is the maximum number of bytes of the file name the entry can store.
const NameCapacity = 32

// RecordSize is the number of bytes occupied by one entry inside the block.
const RecordSize = int64(unsafe.Sizeof(Block{}))

// State defines the state of the directory entry.
type State byte

// Entry states.
const (
	FreeState State = iota
	UsedState
	PendingState
)

// Block is the directory entry binding the name to the inode. Many of them are packed into one block.
type Block struct {
	NameHash   blocks.Hash
	Inode      blocks.InodeIndex
	NameLength uint8
	Name       [NameCapacity]byte
	State      State
}
