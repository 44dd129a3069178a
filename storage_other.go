//go:build !unix

package ktx

import (
	"fmt"
	"os"
)

// MapFile reads the whole file into an owned buffer on platforms without
// mmap support.
func MapFile(path string) (Storage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}

	return NewStorage(data), nil
}
