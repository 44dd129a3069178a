package ktx

import (
	"fmt"
	"io"
	"slices"
)

// cubemapFaces is the face count of a cubemap level.
const cubemapFaces = 6

// KTX is a texture container bound to at most one Storage.
//
// An Unbound container (zero value or after Close) exposes nothing. A Bound
// container holds a storage together with the header, key-values and level
// descriptors decoded from it. All returned byte slices are views into the
// storage and become invalid once the storage is released.
//
// ResetStorage is not synchronized. A bound container may be read from many
// goroutines as long as nobody replaces its storage concurrently.
type KTX struct {
	storage   Storage
	header    Header
	keyValues KeyValues
	images    []ImageDescriptor
}

// New returns an unbound container.
func New() *KTX {
	return &KTX{}
}

// Parse decodes s into a new container that owns s. On failure s is
// released and no container is returned.
func Parse(s Storage) (*KTX, error) {
	if s == nil {
		return nil, ErrNilStorage
	}

	k := New()
	if err := k.ResetStorage(s); err != nil {
		return nil, err
	}

	return k, nil
}

// ResetStorage releases the current storage, if any, and adopts s. A nil s
// leaves the container unbound. When s fails to parse it is released too and
// the container stays unbound.
func (k *KTX) ResetStorage(s Storage) error {
	prev := k.storage
	k.unbind()

	var releaseErr error
	if prev != nil && prev != s {
		if err := prev.Release(); err != nil {
			releaseErr = fmt.Errorf("release previous storage: %w", err)
		}
	}
	if s == nil {
		return releaseErr
	}

	header, keyValues, images, err := decode(s)
	if err != nil {
		_ = s.Release()
		if releaseErr != nil {
			return fmt.Errorf("%w (%v)", err, releaseErr)
		}
		return err
	}

	k.storage = s
	k.header = header
	k.keyValues = keyValues
	k.images = images

	return releaseErr
}

// Close releases the storage and leaves the container unbound.
func (k *KTX) Close() error {
	return k.ResetStorage(nil)
}

func (k *KTX) unbind() {
	k.storage = nil
	k.header = Header{}
	k.keyValues = nil
	k.images = nil
}

// decode walks header, key-value block and image region of s.
func decode(s Storage) (Header, KeyValues, []ImageDescriptor, error) {
	var header Header
	if err := header.UnmarshalBytes(s.Bytes()); err != nil {
		return Header{}, nil, nil, err
	}

	kvLen, err := intFromU64(uint64(header.BytesOfKeyValueData))
	if err != nil {
		return Header{}, nil, nil, err
	}
	block, err := slice(s, HeaderSize, kvLen)
	if err != nil {
		return Header{}, nil, nil, fmt.Errorf("key-value block: %w", err)
	}

	keyValues, err := parseKeyValues(block, header.ByteOrder())
	if err != nil {
		return Header{}, nil, nil, err
	}

	images, err := scanImages(s.Bytes(), HeaderSize+kvLen, &header)
	if err != nil {
		return Header{}, nil, nil, err
	}

	return header, keyValues, images, nil
}

// Bound reports whether the container holds a storage.
func (k *KTX) Bound() bool {
	return k.storage != nil
}

// Storage returns the bound storage, or nil. The container keeps ownership.
func (k *KTX) Storage() Storage {
	return k.storage
}

// Header returns the decoded header. ok is false when unbound.
func (k *KTX) Header() (h Header, ok bool) {
	if k.storage == nil {
		return Header{}, false
	}

	return k.header, true
}

// HeaderBytes returns the raw header bytes, or nil when unbound.
func (k *KTX) HeaderBytes() []byte {
	if k.storage == nil {
		return nil
	}
	b, _ := slice(k.storage, 0, HeaderSize)

	return b
}

// KeyValueData returns the raw key-value block, or nil when unbound.
func (k *KTX) KeyValueData() []byte {
	if k.storage == nil {
		return nil
	}
	b, _ := slice(k.storage, HeaderSize, int(k.header.BytesOfKeyValueData))

	return b
}

// KeyValues returns the metadata entries in file order. Values are views.
func (k *KTX) KeyValues() KeyValues {
	return slices.Clone(k.keyValues)
}

// NumLevels returns the number of mip levels, 0 when unbound.
func (k *KTX) NumLevels() int {
	return len(k.images)
}

// Images returns the level descriptors.
func (k *KTX) Images() []ImageDescriptor {
	return slices.Clone(k.images)
}

// MipData returns the payload of level, or nil when unbound or out of range.
func (k *KTX) MipData(level int) []byte {
	if level < 0 || level >= len(k.images) {
		return nil
	}
	d := k.images[level]
	b, _ := slice(k.storage, d.Offset, d.Length)

	return b
}

// FaceData returns one face of a non-array cubemap level by splitting
// MipData(level) into six equal parts. Any other texture has only face 0,
// which equals MipData(level). nil is returned when the level does not split
// evenly.
func (k *KTX) FaceData(level, face int) []byte {
	data := k.MipData(level)
	if data == nil {
		return nil
	}
	if !k.header.IsCubemap() || k.header.IsArray() {
		if face != 0 {
			return nil
		}
		return data
	}
	if face < 0 || face >= cubemapFaces || len(data)%cubemapFaces != 0 {
		return nil
	}
	n := len(data) / cubemapFaces

	return data[face*n : (face+1)*n : (face+1)*n]
}

// WriteTo writes the bound container bytes to w.
func (k *KTX) WriteTo(w io.Writer) (int64, error) {
	if k.storage == nil {
		return 0, ErrNotBound
	}
	n, err := w.Write(k.storage.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	return int64(n), nil
}
