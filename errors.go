package mfs

import (
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/arena"
	"github.com/outofforest/mfs/dirstore"
	"github.com/outofforest/mfs/inodestore"
)

// Errors returned by file operations. None of them leaves the file system in a modified state.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("file not found")
	ErrAlreadyExists         = errors.New("file already exists")
	ErrInsufficientSpace     = errors.New("not enough disk space")
	ErrFileTooLarge          = errors.New("file is too large")
	ErrSourceNotFound        = errors.New("source file not found")
	ErrDestinationUnwritable = errors.New("destination file is not writable")

	ErrNoFreeDirectoryEntry = dirstore.ErrNoFreeEntry
	ErrNoFreeInode          = inodestore.ErrNoFreeInode
	ErrNoFreeBlock          = arena.ErrNoFreeBlock
)
