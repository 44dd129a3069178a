//go:build unix

package ktx

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// mappedStorage is a read-only file mapping.
type mappedStorage struct {
	mu   sync.Mutex
	data []byte
}

// MapFile maps the file at path read-only. The mapping is released with
// Release. Empty files map to an empty storage.
func MapFile(path string) (Storage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMapFile, path, err)
	}
	size := fi.Size()
	if size == 0 {
		return &mappedStorage{}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("%w: %q: %d bytes", ErrSizeOverflow, path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMapFile, path, err)
	}
	// the container walks header, key-values and levels front to back
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return &mappedStorage{data: data}, nil
}

func (s *mappedStorage) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *mappedStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *mappedStorage) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("%w: munmap: %v", ErrMapFile, err)
	}

	return nil
}
