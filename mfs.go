package mfs

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/mfs/arena"
	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/directory"
	"github.com/outofforest/mfs/dirstore"
	"github.com/outofforest/mfs/inodestore"
	"github.com/outofforest/mfs/ledger"
	"github.com/outofforest/mfs/pkg/hostfs"
	"github.com/outofforest/mfs/pkg/memdev"
)

// FileInfo describes the stored file.
type FileInfo struct {
	Size    int64
	Created time.Time
	Name    string
}

// Stats is the snapshot of file system usage and activity.
type Stats struct {
	Files            uint64
	PendingDeletions uint64
	UsedBlocks       uint64
	FreeBlocks       uint64
	FreeBytes        int64

	Puts        uint64
	Gets        uint64
	Deletes     uint64
	SoftDeletes uint64
	Undeletes   uint64
	Reclaimed   uint64
	Failures    uint64
}

// FileSystem stores files in the block arena kept in memory.
// Operations are serialized by a single mutex.
type FileSystem struct {
	mu     sync.Mutex
	config Config
	host   hostfs.FS
	log    *zap.Logger
	now    func() time.Time

	store   *arena.Store
	inodes  *inodestore.Store
	dirs    *dirstore.Store
	pending *ledger.Ledger[blocks.EntryIndex]
	stats   Stats
}

// New creates new empty file system.
func New(config Config, host hostfs.FS, log *zap.Logger) (*FileSystem, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	dev := memdev.New(config.DevSize())
	if err := arena.Initialize(dev, config.singularityBlock(), false); err != nil {
		return nil, err
	}
	store, err := arena.Open(dev)
	if err != nil {
		return nil, err
	}
	inodes, err := inodestore.New(store)
	if err != nil {
		return nil, err
	}
	dirs, err := dirstore.New(store)
	if err != nil {
		return nil, err
	}

	return &FileSystem{
		config:  config,
		host:    host,
		log:     log,
		now:     time.Now,
		store:   store,
		inodes:  inodes,
		dirs:    dirs,
		pending: ledger.New[blocks.EntryIndex](),
	}, nil
}

// Config returns the configuration of the file system.
func (fs *FileSystem) Config() Config {
	return fs.config
}

// Put copies the source file from the host into the file system under the name.
// Pending deletions are reclaimed first.
func (fs *FileSystem) Put(source, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, err := fs.flush()
	if err == nil {
		err = fs.put(source, name)
	}
	fs.count(&fs.stats.Puts, err)
	return err
}

// Get copies the stored file to the destination on the host. Name is used if destination is empty.
func (fs *FileSystem) Get(name, destination string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := fs.get(name, destination)
	fs.count(&fs.stats.Gets, err)
	return err
}

// Delete removes the file and releases its blocks immediately.
func (fs *FileSystem) Delete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := fs.delete(name)
	fs.count(&fs.stats.Deletes, err)
	return err
}

// SoftDelete hides the file. Its blocks are reclaimed on next flush unless it is undeleted before.
func (fs *FileSystem) SoftDelete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := fs.softDelete(name)
	fs.count(&fs.stats.SoftDeletes, err)
	return err
}

// Undelete restores soft-deleted file.
func (fs *FileSystem) Undelete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := fs.undelete(name)
	fs.count(&fs.stats.Undeletes, err)
	return err
}

// Flush reclaims all soft-deleted files and returns their number.
func (fs *FileSystem) Flush() (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.flush()
}

// List returns stored files in table order.
func (fs *FileSystem) List() ([]FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	files := []FileInfo{}
	err := fs.dirs.Walk(func(_ blocks.EntryIndex, entry dirstore.Entry) error {
		in, err := fs.loadInode(entry)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Size:    in.Size,
			Created: in.Created,
			Name:    entry.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FreeSpace returns the number of bytes available for new files.
func (fs *FileSystem) FreeSpace() int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.store.FreeBytes()
}

// Stats returns usage statistics.
func (fs *FileSystem) Stats() (Stats, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stats := fs.stats
	err := fs.dirs.Walk(func(_ blocks.EntryIndex, _ dirstore.Entry) error {
		stats.Files++
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	stats.PendingDeletions = uint64(fs.pending.Len())
	stats.UsedBlocks = fs.store.UsedBlocks()
	stats.FreeBlocks = fs.store.FreeBlocks()
	stats.FreeBytes = fs.store.FreeBytes()
	return stats, nil
}

func (fs *FileSystem) put(source, name string) error {
	if err := fs.validateName(name); err != nil {
		return err
	}
	if source == "" {
		return errors.Wrap(ErrInvalidArgument, "source path is empty")
	}

	_, _, exists, err := fs.dirs.Find(name)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrAlreadyExists, "name %q", name)
	}

	info, err := fs.host.Stat(source)
	if err != nil {
		return errors.Wrapf(ErrSourceNotFound, "%s", err)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrSourceNotFound, "%q is a directory", source)
	}

	size := info.Size()
	if free := fs.store.FreeBytes(); size > free {
		return errors.Wrapf(ErrInsufficientSpace, "file size: %d, free space: %d", size, free)
	}
	if maxSize := fs.config.MaxFileSize(); size > maxSize {
		return errors.Wrapf(ErrFileTooLarge, "file size: %d, maximum: %d", size, maxSize)
	}

	entryIndex, err := fs.dirs.FindFree()
	if err != nil {
		return err
	}
	inodeIndex, err := fs.inodes.FindFree()
	if err != nil {
		return err
	}

	addresses, err := fs.copyIn(source, size)
	if err != nil {
		return err
	}

	if err := fs.inodes.Set(inodeIndex, inodestore.Inode{
		Size:    size,
		Created: fs.now(),
		Blocks:  addresses,
	}); err != nil {
		fs.release(addresses)
		return err
	}
	if err := fs.dirs.Set(entryIndex, dirstore.Entry{
		Name:  name,
		Inode: inodeIndex,
		State: directory.UsedState,
	}); err != nil {
		if err := fs.inodes.Clear(inodeIndex); err != nil {
			fs.log.Error("Rolling back inode failed", zap.Uint64("inode", uint64(inodeIndex)), zap.Error(err))
		}
		fs.release(addresses)
		return err
	}

	fs.log.Debug("File stored",
		zap.String("name", name),
		zap.String("source", source),
		zap.Int64("size", size),
		zap.Int("blocks", len(addresses)),
		zap.Uint64("entry", uint64(entryIndex)),
		zap.Uint64("inode", uint64(inodeIndex)))
	return nil
}

// copyIn allocates blocks and fills them with the content of the source. Nothing stays allocated on failure.
func (fs *FileSystem) copyIn(source string, size int64) ([]blocks.Address, error) {
	r, err := fs.host.Open(source)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceNotFound, "%s", err)
	}
	defer r.Close()

	blockSize := fs.config.BlockSize
	addresses := make([]blocks.Address, 0, (size+blockSize-1)/blockSize)
	buf := make([]byte, blockSize)
	for remaining := size; remaining > 0; remaining -= blockSize {
		n := min(remaining, blockSize)

		address, err := fs.store.Allocate()
		if err != nil {
			fs.release(addresses)
			return nil, err
		}
		addresses = append(addresses, address)

		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			fs.release(addresses)
			return nil, errors.Wrapf(err, "reading %q failed", source)
		}
		if err := fs.store.WriteBlock(address, 0, buf[:n]); err != nil {
			fs.release(addresses)
			return nil, err
		}
	}
	return addresses, nil
}

func (fs *FileSystem) get(name, destination string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidArgument, "name is empty")
	}
	if destination == "" {
		destination = name
	}
	if len(destination) > fs.config.MaxNameLength {
		return errors.Wrapf(ErrInvalidArgument, "destination name %q is longer than %d characters", destination,
			fs.config.MaxNameLength)
	}

	_, entry, exists, err := fs.dirs.Find(name)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(ErrNotFound, "name %q", name)
	}
	in, err := fs.loadInode(entry)
	if err != nil {
		return err
	}

	w, err := fs.host.Create(destination)
	if err != nil {
		return errors.Wrapf(ErrDestinationUnwritable, "%s", err)
	}
	if err := fs.copyOut(w, in); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(ErrDestinationUnwritable, "%s", err)
	}

	fs.log.Debug("File retrieved",
		zap.String("name", name),
		zap.String("destination", destination),
		zap.Int64("size", in.Size))
	return nil
}

func (fs *FileSystem) copyOut(w io.Writer, in inodestore.Inode) error {
	blockSize := fs.config.BlockSize
	buf := make([]byte, blockSize)
	remaining := in.Size
	for _, address := range in.Blocks {
		n := min(remaining, blockSize)
		if err := fs.store.ReadBlock(address, 0, buf[:n]); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return errors.Wrapf(ErrDestinationUnwritable, "%s", err)
		}
		remaining -= n
	}
	return nil
}

func (fs *FileSystem) delete(name string) error {
	index, entry, err := fs.find(name)
	if err != nil {
		return err
	}
	if err := fs.reclaim(index, entry); err != nil {
		return err
	}

	fs.log.Debug("File deleted", zap.String("name", name), zap.Uint64("entry", uint64(index)))
	return nil
}

func (fs *FileSystem) softDelete(name string) error {
	index, _, err := fs.find(name)
	if err != nil {
		return err
	}
	if !fs.pending.Push(index) {
		return errors.Errorf("directory entry %d is already pending deletion", index)
	}
	if err := fs.dirs.SetState(index, directory.PendingState); err != nil {
		fs.pending.Remove(index)
		return err
	}

	fs.log.Debug("File marked as deleted", zap.String("name", name), zap.Uint64("entry", uint64(index)))
	return nil
}

func (fs *FileSystem) undelete(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidArgument, "name is empty")
	}

	entries := fs.pending.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		entry, err := fs.dirs.Get(entries[i])
		if err != nil {
			return err
		}
		if entry.Name != name {
			continue
		}

		if err := fs.dirs.SetState(entries[i], directory.UsedState); err != nil {
			return err
		}
		fs.pending.Remove(entries[i])

		fs.log.Debug("File restored", zap.String("name", name), zap.Uint64("entry", uint64(entries[i])))
		return nil
	}
	return errors.Wrapf(ErrNotFound, "name %q is not pending deletion", name)
}

func (fs *FileSystem) flush() (int, error) {
	entries := fs.pending.Entries()
	for i, index := range entries {
		entry, err := fs.dirs.Get(index)
		if err == nil {
			err = fs.reclaim(index, entry)
		}
		if err != nil {
			for _, done := range entries[:i] {
				fs.pending.Remove(done)
			}
			fs.stats.Reclaimed += uint64(i)
			return i, err
		}
	}
	fs.pending.Clear()

	reclaimed := len(entries)
	if reclaimed > 0 {
		fs.stats.Reclaimed += uint64(reclaimed)
		fs.log.Info("Pending deletions reclaimed", zap.Int("files", reclaimed))
	}
	return reclaimed, nil
}

// reclaim frees the entry, its inode and blocks.
func (fs *FileSystem) reclaim(index blocks.EntryIndex, entry dirstore.Entry) error {
	in, err := fs.loadInode(entry)
	if err != nil {
		return err
	}
	if err := fs.dirs.SetState(index, directory.FreeState); err != nil {
		return err
	}
	if err := fs.inodes.Clear(entry.Inode); err != nil {
		return err
	}
	for _, address := range in.Blocks {
		if err := fs.store.Release(address); err != nil {
			return err
		}
	}
	return nil
}

func (fs *FileSystem) find(name string) (blocks.EntryIndex, dirstore.Entry, error) {
	if name == "" {
		return 0, dirstore.Entry{}, errors.Wrap(ErrInvalidArgument, "name is empty")
	}

	index, entry, exists, err := fs.dirs.Find(name)
	if err != nil {
		return 0, dirstore.Entry{}, err
	}
	if !exists {
		return 0, dirstore.Entry{}, errors.Wrapf(ErrNotFound, "name %q", name)
	}
	return index, entry, nil
}

func (fs *FileSystem) loadInode(entry dirstore.Entry) (inodestore.Inode, error) {
	in, exists, err := fs.inodes.Get(entry.Inode)
	if err != nil {
		return inodestore.Inode{}, err
	}
	if !exists {
		return inodestore.Inode{}, errors.Errorf("inode %d of file %q is not in use", entry.Inode, entry.Name)
	}
	return in, nil
}

func (fs *FileSystem) validateName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidArgument, "name is empty")
	}
	if len(name) > fs.config.MaxNameLength {
		return errors.Wrapf(ErrInvalidArgument, "name %q is longer than %d characters", name, fs.config.MaxNameLength)
	}
	return nil
}

func (fs *FileSystem) release(addresses []blocks.Address) {
	for _, address := range addresses {
		if err := fs.store.Release(address); err != nil {
			fs.log.Error("Releasing block failed", zap.Uint64("block", uint64(address)), zap.Error(err))
		}
	}
}

func (fs *FileSystem) count(counter *uint64, err error) {
	if err != nil {
		fs.stats.Failures++
		fs.log.Debug("Operation failed", zap.Error(err))
		return
	}
	*counter++
}
