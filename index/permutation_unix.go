//go:build unix

package index

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapReadOnly maps f's entire contents read-only. Used by
// OpenMappedIndexMetaData to avoid copying a whole permutation file
// into the Go heap just to binary-search its pair table.
func mmapReadOnly(f *os.File) ([]byte, func() error, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	closer := func() error { return unix.Munmap(data) }
	return data, closer, nil
}
