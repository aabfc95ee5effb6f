package blocks

import "math"

// Address is the index of the block in the arena.
type Address uint64

// InvalidAddress marks unused block pointer slots.
const InvalidAddress Address = math.MaxUint64

// InodeIndex is the index of the inode in the inode table.
type InodeIndex uint64

// EntryIndex is the index of the entry in the directory table.
type EntryIndex uint64

// Hash represents hash.
type Hash uint64

// Record defines the constraint for generics using records stored inside arena blocks.
type Record interface {
	comparable
}
