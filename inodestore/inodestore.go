package inodestore

import (
	"encoding/binary"
	"time"
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/arena"
	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/inode"
)

// ErrNoFreeInode is returned when all the inodes are in use.
var ErrNoFreeInode = errors.New("no free inode")

// Inode describes the layout of the stored file.
type Inode struct {
	Size    int64
	Created time.Time
	Blocks  []blocks.Address
}

// Store represents the inode table. Each inode occupies its own block in the reserved area of the arena.
type Store struct {
	s                *arena.Store
	origin           blocks.Address
	nInodes          uint64
	maxBlocksPerFile uint64
}

// New returns new inode store.
func New(s *arena.Store) (*Store, error) {
	sBlock := s.SingularityBlock()
	if inode.Size(sBlock.MaxBlocksPerFile) > s.BlockSize() {
		return nil, errors.Errorf("inode with %d block pointers does not fit into block of %d bytes",
			sBlock.MaxBlocksPerFile, s.BlockSize())
	}

	return &Store{
		s:                s,
		origin:           sBlock.InodeOrigin,
		nInodes:          sBlock.NInodes,
		maxBlocksPerFile: sBlock.MaxBlocksPerFile,
	}, nil
}

// FindFree returns the first unused inode. Inode stays free until Set is called.
func (st *Store) FindFree() (blocks.InodeIndex, error) {
	for i := blocks.InodeIndex(0); uint64(i) < st.nInodes; i++ {
		header, err := st.loadHeader(i)
		if err != nil {
			return 0, err
		}
		if header.State == inode.FreeState {
			return i, nil
		}
	}
	return 0, errors.WithStack(ErrNoFreeInode)
}

// Get returns the inode. False is returned if inode is not in use.
func (st *Store) Get(index blocks.InodeIndex) (Inode, bool, error) {
	header, err := st.loadHeader(index)
	if err != nil || header.State != inode.UsedState {
		return Inode{}, false, err
	}

	pointers := make([]byte, int64(header.NBlocks)*inode.PointerSize)
	if err := st.s.ReadBlock(st.address(index), inode.HeaderSize, pointers); err != nil {
		return Inode{}, false, err
	}

	addresses := make([]blocks.Address, 0, header.NBlocks)
	for i := int64(0); i < int64(len(pointers)); i += inode.PointerSize {
		addresses = append(addresses, blocks.Address(binary.LittleEndian.Uint64(pointers[i:])))
	}

	return Inode{
		Size:    int64(header.Size),
		Created: time.Unix(0, header.Created),
		Blocks:  addresses,
	}, true, nil
}

// Set stores the inode and marks it as used.
func (st *Store) Set(index blocks.InodeIndex, in Inode) error {
	if uint64(len(in.Blocks)) > st.maxBlocksPerFile {
		return errors.Errorf("inode may reference at most %d blocks, requested: %d", st.maxBlocksPerFile,
			len(in.Blocks))
	}
	return st.store(index, inode.Block{
		Size:    uint64(in.Size),
		Created: in.Created.UnixNano(),
		NBlocks: uint64(len(in.Blocks)),
		State:   inode.UsedState,
	}, in.Blocks)
}

// Clear marks the inode as free and resets its block pointers.
func (st *Store) Clear(index blocks.InodeIndex) error {
	return st.store(index, inode.Block{State: inode.FreeState}, nil)
}

func (st *Store) store(index blocks.InodeIndex, header inode.Block, addresses []blocks.Address) error {
	if uint64(index) >= st.nInodes {
		return errors.Errorf("inode %d does not exist", index)
	}

	pointers := make([]byte, int64(st.maxBlocksPerFile)*inode.PointerSize)
	for i := range st.maxBlocksPerFile {
		address := blocks.InvalidAddress
		if i < uint64(len(addresses)) {
			address = addresses[i]
		}
		binary.LittleEndian.PutUint64(pointers[int64(i)*inode.PointerSize:], uint64(address))
	}

	if err := st.s.WriteBlock(st.address(index), inode.HeaderSize, pointers); err != nil {
		return err
	}
	return st.s.WriteBlock(st.address(index), 0, photon.NewFromValue(&header).B)
}

func (st *Store) loadHeader(index blocks.InodeIndex) (inode.Block, error) {
	if uint64(index) >= st.nInodes {
		return inode.Block{}, errors.Errorf("inode %d does not exist", index)
	}

	header := photon.NewFromBytes[inode.Block](make([]byte, unsafe.Sizeof(inode.Block{})))
	if err := st.s.ReadBlock(st.address(index), 0, header.B); err != nil {
		return inode.Block{}, err
	}
	return *header.V, nil
}

func (st *Store) address(index blocks.InodeIndex) blocks.Address {
	return st.origin + blocks.Address(index)
}
