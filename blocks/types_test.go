package blocks_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/outofforest/mfs/blocks"
	"github.com/outofforest/mfs/blocks/directory"
	"github.com/outofforest/mfs/blocks/inode"
	"github.com/outofforest/mfs/blocks/singularity"
)

const minBlockSize = 128

func TestRecordSizes(t *testing.T) {
	assertFits[singularity.Block](t)
	assertFits[inode.Block](t)
	assertFits[directory.Block](t)
}

func TestInodeHeaderIsAligned(t *testing.T) {
	assert.EqualValues(t, 0, inode.HeaderSize%8)
	assert.GreaterOrEqual(t, inode.HeaderSize, int64(unsafe.Sizeof(inode.Block{})))
	assert.EqualValues(t, inode.HeaderSize+4*inode.PointerSize, inode.Size(4))
}

func TestHashName(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(blocks.HashName("file.txt"), blocks.HashName("file.txt"))
	assertT.NotEqual(blocks.HashName("file.txt"), blocks.HashName("File.txt"))
}

func assertFits[T blocks.Record](t *testing.T) {
	var b T
	assert.LessOrEqualf(t, uint64(unsafe.Sizeof(b)), uint64(minBlockSize), "Type: %T", b)
}
