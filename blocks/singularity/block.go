package singularity

import (
	"github.com/outofforest/mfs/blocks"
)

// Magic identifies the arena formatted by mfs.
const Magic uint64 = 0b0110110101100110011100110010000001100001011100100110010101101110

// Block is the first block of the arena. It describes where everything else lives.
type Block struct {
	Magic     uint64
	BlockSize uint64
	NBlocks   uint64

	DirectoryOrigin   blocks.Address
	NDirectoryEntries uint64

	InodeOrigin      blocks.Address
	NInodes          uint64
	MaxBlocksPerFile uint64

	// NReserved is the number of leading blocks never handed out to files.
	NReserved uint64
}
