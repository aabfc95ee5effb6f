// Package hostfs abstracts the host file system files are copied from and to.
package hostfs

import (
	"io"
	"os"
)

// FS abstracts host filesystem operations.
type FS interface {
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	Stat(path string) (os.FileInfo, error)
}
