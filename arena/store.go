package arena

import (
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/singularity"
)

// ErrNoFreeBlock is returned when all the data blocks are in use.
var ErrNoFreeBlock = errors.New("no free block available")

// Store gives access to the blocks of the arena and keeps track of the used ones.
// Usage bitmap lives in memory only, it is not stored on the device.
type Store struct {
	dev       Dev
	sBlock    singularity.Block
	blockSize int64
	used      []bool
	nUsed     uint64
}

// Open opens the arena initialized on the device.
func Open(dev Dev) (*Store, error) {
	sBlock, err := loadSingularityBlock(dev)
	if err != nil {
		return nil, err
	}
	if sBlock.Magic != singularity.Magic {
		return nil, errors.New("device does not contain arena")
	}
	if err := validateGeometry(dev, sBlock); err != nil {
		return nil, err
	}

	used := make([]bool, sBlock.NBlocks)
	for i := uint64(0); i < sBlock.NReserved; i++ {
		used[i] = true
	}

	return &Store{
		dev:       dev,
		sBlock:    sBlock,
		blockSize: int64(sBlock.BlockSize),
		used:      used,
		nUsed:     sBlock.NReserved,
	}, nil
}

// SingularityBlock returns the geometry of the arena.
func (s *Store) SingularityBlock() singularity.Block {
	return s.sBlock
}

// BlockSize returns the size of the block.
func (s *Store) BlockSize() int64 {
	return s.blockSize
}

// ReadBlock reads len(p) bytes stored in the block starting at offset.
func (s *Store) ReadBlock(address blocks.Address, offset int64, p []byte) error {
	if err := s.validateRange(address, offset, len(p)); err != nil {
		return err
	}
	if _, err := s.dev.ReadAt(p, int64(address)*s.blockSize+offset); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// WriteBlock writes p to the block starting at offset.
func (s *Store) WriteBlock(address blocks.Address, offset int64, p []byte) error {
	if err := s.validateRange(address, offset, len(p)); err != nil {
		return err
	}
	if _, err := s.dev.WriteAt(p, int64(address)*s.blockSize+offset); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Allocate marks the first free data block as used and returns its address.
func (s *Store) Allocate() (blocks.Address, error) {
	for i := s.sBlock.NReserved; i < s.sBlock.NBlocks; i++ {
		if !s.used[i] {
			s.used[i] = true
			s.nUsed++
			return blocks.Address(i), nil
		}
	}
	return 0, errors.WithStack(ErrNoFreeBlock)
}

// Release returns the data block to the free pool.
func (s *Store) Release(address blocks.Address) error {
	if uint64(address) < s.sBlock.NReserved || uint64(address) >= s.sBlock.NBlocks {
		return errors.Errorf("block %d is not a data block", address)
	}
	if !s.IsUsed(address) {
		return errors.Errorf("block %d is not allocated", address)
	}
	s.used[address] = false
	s.nUsed--
	return nil
}

// IsUsed tells if block is in use.
func (s *Store) IsUsed(address blocks.Address) bool {
	return uint64(address) < s.sBlock.NBlocks && s.used[address]
}

// UsedBlocks returns the number of data blocks in use.
func (s *Store) UsedBlocks() uint64 {
	return s.nUsed - s.sBlock.NReserved
}

// FreeBlocks returns the number of free data blocks.
func (s *Store) FreeBlocks() uint64 {
	var count uint64
	for i := s.sBlock.NReserved; i < s.sBlock.NBlocks; i++ {
		if !s.used[i] {
			count++
		}
	}
	return count
}

// FreeBytes returns the number of bytes available in free data blocks.
func (s *Store) FreeBytes() int64 {
	return int64(s.FreeBlocks()) * s.blockSize
}

func (s *Store) validateRange(address blocks.Address, offset int64, size int) error {
	if uint64(address) >= s.sBlock.NBlocks {
		return errors.Errorf("block %d does not exist", address)
	}
	if offset < 0 || offset+int64(size) > s.blockSize {
		return errors.Errorf("invalid range [%d, %d) in block %d", offset, offset+int64(size), address)
	}
	return nil
}
