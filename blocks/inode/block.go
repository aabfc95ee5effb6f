package inode

import (
	"unsafe"

	"github.com/outofforest/mfs/blocks"
)

const (
	// alignment specifies the alignment requirements of the architecture.
	alignment = 8

	// HeaderSize is the size of the inode header rounded up, so block pointers following it are aligned.
	HeaderSize = (int64(unsafe.Sizeof(Block{})-1)/alignment + 1) * alignment

	// PointerSize is the size of one block pointer slot.
	PointerSize = int64(unsafe.Sizeof(blocks.Address(0)))
)

// State defines the state of the inode.
type State byte

// Inode states.
const (
	FreeState State = iota
	UsedState
)

// Block is the header of the inode stored at the beginning of the inode's block.
// It is followed by block pointer slots.
type Block struct {
	Size    uint64
	Created int64 // unix nanoseconds
	NBlocks uint64
	State   State
}

// Size returns the number of bytes occupied by the inode having nPointers pointer slots.
func Size(nPointers uint64) int64 {
	return HeaderSize + int64(nPointers)*PointerSize
}
