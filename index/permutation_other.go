//go:build !unix

package index

import "os"

// mmapReadOnly falls back to a plain read on platforms without a POSIX
// mmap (see permutation_unix.go for the mapped fast path).
func mmapReadOnly(f *os.File) ([]byte, func() error, error) {
	data, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
