package memdev

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAt(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()

	n, err := dev.ReadAt(nil, 0)
	assertT.NoError(err)
	assertT.EqualValues(0, n)

	buf := make([]byte, 3)
	n, err = dev.ReadAt(buf, 0)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x00, 0x01, 0x02}, buf)

	n, err = dev.ReadAt(buf, 1)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x01, 0x02, 0x03}, buf)

	n, err = dev.ReadAt(buf, 9)
	assertT.ErrorIs(err, io.EOF)
	assertT.EqualValues(1, n)
	assertT.EqualValues([]byte{0x09, 0x02, 0x03}, buf)

	n, err = dev.ReadAt(buf, 10)
	assertT.ErrorIs(err, io.EOF)
	assertT.EqualValues(0, n)

	n, err = dev.ReadAt(buf, 11)
	assertT.Error(err)
	assertT.EqualValues(0, n)

	n, err = dev.ReadAt(buf, -1)
	assertT.Error(err)
	assertT.EqualValues(0, n)
}

func TestWriteAt(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()

	n, err := dev.WriteAt(nil, 0)
	assertT.NoError(err)
	assertT.EqualValues(0, n)

	buf := []byte{0x10, 0x11, 0x12}
	n, err = dev.WriteAt(buf, 0)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x10, 0x11, 0x12, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, dev.data)

	n, err = dev.WriteAt(buf, 1)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x10, 0x10, 0x11, 0x12, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, dev.data)

	n, err = dev.WriteAt(buf, 9)
	assertT.ErrorIs(err, io.ErrShortWrite)
	assertT.EqualValues(1, n)
	assertT.EqualValues([]byte{0x10, 0x10, 0x11, 0x12, 0x04, 0x05, 0x06, 0x07, 0x08, 0x10}, dev.data)

	n, err = dev.WriteAt(buf, 11)
	assertT.Error(err)
	assertT.EqualValues(0, n)
}

func TestSizeAndSync(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()
	assertT.EqualValues(10, dev.Size())
	assertT.NoError(dev.Sync())
}

func newDev() *MemDev {
	const size = 10

	dev := New(size)
	for i := 0; i < size; i++ {
		dev.data[i] = byte(i)
	}

	return dev
}
