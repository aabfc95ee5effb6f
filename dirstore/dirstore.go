package dirstore

import (
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/arena"
	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/directory"
)

// ErrNoFreeEntry is returned when all the directory entries are in use.
var ErrNoFreeEntry = errors.New("no free directory entry")

// Entry binds the name to the inode.
type Entry struct {
	Name  string
	Inode blocks.InodeIndex
	State directory.State
}

// Store represents the directory table. Entries are packed into consecutive blocks of the reserved area.
type Store struct {
	s               *arena.Store
	origin          blocks.Address
	nEntries        uint64
	entriesPerBlock uint64
}

// New returns new directory store.
func New(s *arena.Store) (*Store, error) {
	entriesPerBlock := uint64(s.BlockSize() / directory.RecordSize)
	if entriesPerBlock == 0 {
		return nil, errors.Errorf("directory entry does not fit into block of %d bytes", s.BlockSize())
	}

	sBlock := s.SingularityBlock()
	return &Store{
		s:               s,
		origin:          sBlock.DirectoryOrigin,
		nEntries:        sBlock.NDirectoryEntries,
		entriesPerBlock: entriesPerBlock,
	}, nil
}

// BlocksRequired returns the number of blocks needed to store nEntries entries.
func BlocksRequired(blockSize int64, nEntries uint64) uint64 {
	entriesPerBlock := uint64(blockSize / directory.RecordSize)
	if entriesPerBlock == 0 {
		return 0
	}
	return (nEntries + entriesPerBlock - 1) / entriesPerBlock
}

// FindFree returns the first free entry. Entry stays free until Set is called.
func (st *Store) FindFree() (blocks.EntryIndex, error) {
	var found bool
	var index blocks.EntryIndex
	err := st.walk(func(i blocks.EntryIndex, record *directory.Block) bool {
		if record.State == directory.FreeState {
			found = true
			index = i
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.WithStack(ErrNoFreeEntry)
	}
	return index, nil
}

// Find returns the used entry having the name. First match wins.
func (st *Store) Find(name string) (blocks.EntryIndex, Entry, bool, error) {
	hash := blocks.HashName(name)

	var found bool
	var index blocks.EntryIndex
	var entry Entry
	err := st.walk(func(i blocks.EntryIndex, record *directory.Block) bool {
		if record.State != directory.UsedState || record.NameHash != hash {
			return true
		}
		if e := toEntry(record); e.Name == name {
			found = true
			index = i
			entry = e
			return false
		}
		return true
	})
	if err != nil || !found {
		return 0, Entry{}, false, err
	}
	return index, entry, true, nil
}

// Get returns the entry.
func (st *Store) Get(index blocks.EntryIndex) (Entry, error) {
	record, err := st.load(index)
	if err != nil {
		return Entry{}, err
	}
	return toEntry(&record), nil
}

// Set stores the entry.
func (st *Store) Set(index blocks.EntryIndex, entry Entry) error {
	if len(entry.Name) > directory.NameCapacity {
		return errors.Errorf("name %q exceeds %d bytes", entry.Name, directory.NameCapacity)
	}

	record := directory.Block{
		NameHash:   blocks.HashName(entry.Name),
		Inode:      entry.Inode,
		NameLength: uint8(len(entry.Name)),
		State:      entry.State,
	}
	copy(record.Name[:], entry.Name)

	return st.store(index, record)
}

// SetState changes the state of the entry keeping the binding untouched.
func (st *Store) SetState(index blocks.EntryIndex, state directory.State) error {
	record, err := st.load(index)
	if err != nil {
		return err
	}
	record.State = state
	return st.store(index, record)
}

// Walk calls fn for every used entry in table order.
func (st *Store) Walk(fn func(index blocks.EntryIndex, entry Entry) error) error {
	var fnErr error
	err := st.walk(func(i blocks.EntryIndex, record *directory.Block) bool {
		if record.State != directory.UsedState {
			return true
		}
		fnErr = fn(i, toEntry(record))
		return fnErr == nil
	})
	if err != nil {
		return err
	}
	return fnErr
}

func (st *Store) walk(fn func(index blocks.EntryIndex, record *directory.Block) bool) error {
	buf := make([]byte, st.s.BlockSize())
	for i := uint64(0); i < st.nEntries; i++ {
		offset := int64(i%st.entriesPerBlock) * directory.RecordSize
		if offset == 0 {
			if err := st.s.ReadBlock(st.origin+blocks.Address(i/st.entriesPerBlock), 0, buf); err != nil {
				return err
			}
		}

		record := photon.NewFromBytes[directory.Block](buf[offset : offset+directory.RecordSize])
		if !fn(blocks.EntryIndex(i), record.V) {
			return nil
		}
	}
	return nil
}

func (st *Store) load(index blocks.EntryIndex) (directory.Block, error) {
	address, offset, err := st.locate(index)
	if err != nil {
		return directory.Block{}, err
	}

	record := photon.NewFromBytes[directory.Block](make([]byte, unsafe.Sizeof(directory.Block{})))
	if err := st.s.ReadBlock(address, offset, record.B); err != nil {
		return directory.Block{}, err
	}
	return *record.V, nil
}

func (st *Store) store(index blocks.EntryIndex, record directory.Block) error {
	address, offset, err := st.locate(index)
	if err != nil {
		return err
	}
	return st.s.WriteBlock(address, offset, photon.NewFromValue(&record).B)
}

func (st *Store) locate(index blocks.EntryIndex) (blocks.Address, int64, error) {
	if uint64(index) >= st.nEntries {
		return 0, 0, errors.Errorf("directory entry %d does not exist", index)
	}
	return st.origin + blocks.Address(uint64(index)/st.entriesPerBlock),
		int64(uint64(index)%st.entriesPerBlock) * directory.RecordSize, nil
}

func toEntry(record *directory.Block) Entry {
	return Entry{
		Name:  string(record.Name[:record.NameLength]),
		Inode: record.Inode,
		State: record.State,
	}
}
