package arena

import (
	"testing"
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/mfs/blocks/singularity"
	"github.com/outofforest/mfs/pkg/memdev"
)

const (
	blockSize = 128
	nBlocks   = 16
	nReserved = 4
)

func TestInit(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(nBlocks * blockSize)
	requireT.NoError(Initialize(dev, testGeometry(), false))

	sBlock := photon.NewFromBytes[singularity.Block](make([]byte, unsafe.Sizeof(singularity.Block{})))
	_, err := dev.ReadAt(sBlock.B, 0)
	requireT.NoError(err)

	requireT.Equal(singularity.Magic, sBlock.V.Magic)
	requireT.EqualValues(blockSize, sBlock.V.BlockSize)
	requireT.EqualValues(nBlocks, sBlock.V.NBlocks)
	requireT.EqualValues(nReserved, sBlock.V.NReserved)
}

func TestOverwrite(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(nBlocks * blockSize)
	requireT.NoError(Initialize(dev, testGeometry(), false))
	requireT.ErrorIs(Initialize(dev, testGeometry(), false), ErrAlreadyInitialized)

	geometry := testGeometry()
	geometry.NReserved++
	requireT.NoError(Initialize(dev, geometry, true))

	s, err := Open(dev)
	requireT.NoError(err)
	requireT.EqualValues(nReserved+1, s.SingularityBlock().NReserved)
}

func TestTooSmall(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(nBlocks*blockSize - 1)
	requireT.Error(Initialize(dev, testGeometry(), true))
}

func TestInvalidGeometry(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(nBlocks * blockSize)

	geometry := testGeometry()
	geometry.NReserved = 0
	requireT.Error(Initialize(dev, geometry, false))

	geometry = testGeometry()
	geometry.NReserved = nBlocks
	requireT.Error(Initialize(dev, geometry, false))

	geometry = testGeometry()
	geometry.BlockSize = 8
	requireT.Error(Initialize(dev, geometry, false))
}

func testGeometry() singularity.Block {
	return singularity.Block{
		BlockSize: blockSize,
		NBlocks:   nBlocks,
		NReserved: nReserved,
	}
}
