package mfs

import (
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/directory"
	"github.com/outofforest/mfs/blocks/inode"
	"github.com/outofforest/mfs/blocks/singularity"
	"github.com/outofforest/mfs/dirstore"
)

// Config defines the geometry of the file system.
type Config struct {
	// BlockSize is the size of each block in bytes.
	BlockSize int64

	// NumBlocks is the total number of blocks in the arena, including reserved ones.
	NumBlocks uint64

	// MaxFiles is the number of directory entries.
	MaxFiles uint64

	// MaxInodes is the number of inodes.
	MaxInodes uint64

	// MaxBlocksPerFile is the number of block pointers each inode has.
	MaxBlocksPerFile uint64

	// MaxNameLength is the maximum length of the stored file name.
	MaxNameLength int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BlockSize:        8192,
		NumBlocks:        4226,
		MaxFiles:         128,
		MaxInodes:        128,
		MaxBlocksPerFile: 32,
		MaxNameLength:    32,
	}
}

// Layout describes where tables are placed in the arena.
type Layout struct {
	DirectoryOrigin blocks.Address
	DirectoryBlocks uint64
	InodeOrigin     blocks.Address
	NReserved       uint64
}

// Validate verifies that configuration is correct.
func (c Config) Validate() error {
	switch {
	case c.BlockSize <= 0:
		return errors.Errorf("block size must be positive, provided: %d", c.BlockSize)
	case c.NumBlocks == 0:
		return errors.New("number of blocks must be positive")
	case c.MaxFiles == 0:
		return errors.New("maximum number of files must be positive")
	case c.MaxInodes == 0:
		return errors.New("maximum number of inodes must be positive")
	case c.MaxBlocksPerFile == 0:
		return errors.New("maximum number of blocks per file must be positive")
	case c.MaxNameLength <= 0 || c.MaxNameLength > directory.NameCapacity:
		return errors.Errorf("maximum name length must be in range [1, %d], provided: %d", directory.NameCapacity,
			c.MaxNameLength)
	case inode.Size(c.MaxBlocksPerFile) > c.BlockSize:
		return errors.Errorf("inode with %d block pointers does not fit into block of %d bytes",
			c.MaxBlocksPerFile, c.BlockSize)
	case directory.RecordSize > c.BlockSize:
		return errors.Errorf("directory entry does not fit into block of %d bytes", c.BlockSize)
	}

	if layout := c.Layout(); layout.NReserved >= c.NumBlocks {
		return errors.Errorf("%d blocks are reserved for metadata, no data block is left out of %d",
			layout.NReserved, c.NumBlocks)
	}
	return nil
}

// Layout computes the placement of the tables. Block 0 holds the singularity block.
func (c Config) Layout() Layout {
	directoryBlocks := dirstore.BlocksRequired(c.BlockSize, c.MaxFiles)
	inodeOrigin := 1 + directoryBlocks
	return Layout{
		DirectoryOrigin: 1,
		DirectoryBlocks: directoryBlocks,
		InodeOrigin:     blocks.Address(inodeOrigin),
		NReserved:       inodeOrigin + c.MaxInodes,
	}
}

// MaxFileSize returns the size of the largest file which may be stored.
func (c Config) MaxFileSize() int64 {
	return int64(c.MaxBlocksPerFile) * c.BlockSize
}

// DevSize returns the number of bytes required to hold the arena.
func (c Config) DevSize() int64 {
	return int64(c.NumBlocks) * c.BlockSize
}

func (c Config) singularityBlock() singularity.Block {
	layout := c.Layout()
	return singularity.Block{
		BlockSize:         uint64(c.BlockSize),
		NBlocks:           c.NumBlocks,
		DirectoryOrigin:   layout.DirectoryOrigin,
		NDirectoryEntries: c.MaxFiles,
		InodeOrigin:       layout.InodeOrigin,
		NInodes:           c.MaxInodes,
		MaxBlocksPerFile:  c.MaxBlocksPerFile,
		NReserved:         layout.NReserved,
	}
}
