package arena

import (
	"io"
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/mfs/blocks/singularity"
)

// Dev is the interface required from the device.
type Dev interface {
	io.ReaderAt
	io.WriterAt
	Sync() error
	Size() int64
}

// ErrAlreadyInitialized is returned if during initialization, another arena is detected on the device.
var ErrAlreadyInitialized = errors.New("arena has been already initialized on the provided device")

// Initialize formats the device as a new arena described by sBlock.
func Initialize(dev Dev, sBlock singularity.Block, overwrite bool) error {
	if err := validateGeometry(dev, sBlock); err != nil {
		return err
	}

	current, err := loadSingularityBlock(dev)
	if err != nil {
		return err
	}
	if current.Magic == singularity.Magic && !overwrite {
		return errors.WithStack(ErrAlreadyInitialized)
	}

	sBlock.Magic = singularity.Magic
	if _, err := dev.WriteAt(photon.NewFromValue(&sBlock).B, 0); err != nil {
		return errors.WithStack(err)
	}

	return dev.Sync()
}

func validateGeometry(dev Dev, sBlock singularity.Block) error {
	if sBlock.BlockSize < uint64(unsafe.Sizeof(singularity.Block{})) {
		return errors.Errorf("block size %d is too small to hold the singularity block", sBlock.BlockSize)
	}
	if sBlock.NReserved == 0 {
		return errors.New("singularity block must be reserved")
	}
	if sBlock.NBlocks <= sBlock.NReserved {
		return errors.Errorf("arena of %d blocks has no space left after %d reserved ones", sBlock.NBlocks,
			sBlock.NReserved)
	}
	if size := int64(sBlock.NBlocks * sBlock.BlockSize); dev.Size() < size {
		return errors.Errorf("device is too small, required size is: %d bytes, provided: %d", size, dev.Size())
	}
	return nil
}

func loadSingularityBlock(dev Dev) (singularity.Block, error) {
	sBlock := photon.NewFromBytes[singularity.Block](make([]byte, unsafe.Sizeof(singularity.Block{})))
	if _, err := dev.ReadAt(sBlock.B, 0); err != nil {
		return singularity.Block{}, errors.WithStack(err)
	}
	return *sBlock.V, nil
}
