package ktx

import "fmt"

// Storage is one contiguous, immutable byte region backing a container.
//
// Implementations differ only in what Release frees: an owned buffer drops
// its memory, a view leaves the memory to whoever manages it, a mapping is
// unmapped. Bytes must not be used after Release.
type Storage interface {
	Bytes() []byte
	Len() int
	Release() error
}

// memoryStorage is a heap buffer, owned or viewed. Like the container that
// holds it, it is not synchronized.
type memoryStorage struct {
	data     []byte
	owned    bool
	released bool
}

// NewStorage takes ownership of b. The caller must not modify b afterwards.
func NewStorage(b []byte) Storage {
	return &memoryStorage{data: b, owned: true}
}

// NewStorageView wraps memory managed elsewhere, for example a mapping owned
// by the caller. Release forgets the slice but frees nothing.
func NewStorageView(b []byte) Storage {
	return &memoryStorage{data: b}
}

func (s *memoryStorage) Bytes() []byte { return s.data }

func (s *memoryStorage) Len() int { return len(s.data) }

func (s *memoryStorage) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.data = nil

	return nil
}

// IsOwned reports whether s is a heap buffer owned by the storage itself, as
// opposed to a view or a file mapping.
func IsOwned(s Storage) bool {
	m, ok := s.(*memoryStorage)
	return ok && m.owned
}

// slice returns a non-owning view of n bytes at off.
func slice(s Storage, off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > s.Len() || n > s.Len()-off {
		return nil, fmt.Errorf("%w: %d bytes at %d, storage is %d bytes", ErrTruncatedBuffer, n, off, s.Len())
	}
	end := off + n

	return s.Bytes()[off:end:end], nil
}
