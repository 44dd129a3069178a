package ktx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Well-known metadata keys.
const (
	KeyOrientation = "KTXorientation"
	KeyWriter      = "KTXwriter"
)

// KeyValue is one metadata entry.
type KeyValue struct {
	Key   string
	Value []byte
}

// KeyValues is the ordered metadata table of a container. Order is kept on
// serialization so that files round-trip byte for byte.
type KeyValues []KeyValue

// Get returns the value stored for key.
func (kvs KeyValues) Get(key string) ([]byte, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return nil, false
}

// Set replaces the value of an existing key or appends a new entry.
func (kvs *KeyValues) Set(key string, value []byte) {
	for i := range *kvs {
		if (*kvs)[i].Key == key {
			(*kvs)[i].Value = value
			return
		}
	}
	*kvs = append(*kvs, KeyValue{Key: key, Value: value})
}

// Keys returns the keys in stored order.
func (kvs KeyValues) Keys() []string {
	keys := make([]string, len(kvs))
	for i, kv := range kvs {
		keys[i] = kv.Key
	}

	return keys
}

// EncodedSize returns the number of bytes the table occupies on disk.
func (kvs KeyValues) EncodedSize() uint64 {
	var total uint64
	for _, kv := range kvs {
		total += 4 + align4(entrySize(kv))
	}

	return total
}

// entrySize is the keyAndValueByteSize field of an entry.
func entrySize(kv KeyValue) uint64 {
	return uint64(len(kv.Key)) + 1 + uint64(len(kv.Value))
}

func (kvs KeyValues) validate() error {
	seen := make(map[string]struct{}, len(kvs))
	for i, kv := range kvs {
		if kv.Key == "" || strings.IndexByte(kv.Key, 0) >= 0 || !utf8.ValidString(kv.Key) {
			return fmt.Errorf("%w: entry %d: %q", ErrInvalidKey, i, kv.Key)
		}
		if _, ok := seen[kv.Key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, kv.Key)
		}
		seen[kv.Key] = struct{}{}
		if entrySize(kv) > maxUint32 {
			return fmt.Errorf("%w: entry %q is %d bytes", ErrSizeOverflow, kv.Key, entrySize(kv))
		}
	}

	return nil
}

// encodeTo writes the table into b, which must hold EncodedSize() bytes,
// and returns the number of bytes written. Padding bytes are left untouched
// and must already be zero.
func (kvs KeyValues) encodeTo(b []byte, order binary.ByteOrder) int {
	off := 0
	for _, kv := range kvs {
		size := entrySize(kv)
		// #nosec G115 -- checked by validate.
		order.PutUint32(b[off:], uint32(size))
		off += 4
		off += copy(b[off:], kv.Key)
		b[off] = 0
		off++
		off += copy(b[off:], kv.Value)
		// #nosec G115 -- at most 3.
		off += int(pad4(size))
	}

	return off
}

// parseKeyValues decodes a key-value block. Values are views into block.
func parseKeyValues(block []byte, order binary.ByteOrder) (KeyValues, error) {
	var kvs KeyValues
	seen := make(map[string]struct{})

	for off := 0; off < len(block); {
		entry := len(kvs)
		if len(block)-off < 4 {
			return nil, fmt.Errorf("%w: entry %d: need 4 bytes length, have %d", ErrKeyValueCorrupt, entry, len(block)-off)
		}
		size := uint64(order.Uint32(block[off:]))
		off += 4

		remaining := uint64(len(block) - off)
		if size > remaining {
			return nil, fmt.Errorf("%w: entry %d: length %d exceeds remaining %d", ErrKeyValueCorrupt, entry, size, remaining)
		}
		if align4(size) > remaining {
			return nil, fmt.Errorf("%w: entry %d: padding exceeds block", ErrKeyValueCorrupt, entry)
		}

		// #nosec G115 -- size <= remaining.
		n := int(size)
		data := block[off : off+n : off+n]
		nul := bytes.IndexByte(data, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: entry %d: key not NUL terminated", ErrKeyValueCorrupt, entry)
		}
		if nul == 0 || !utf8.Valid(data[:nul]) {
			return nil, fmt.Errorf("%w: entry %d: invalid key", ErrKeyValueCorrupt, entry)
		}

		key := string(data[:nul])
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: entry %d: duplicate key %q", ErrKeyValueCorrupt, entry, key)
		}
		seen[key] = struct{}{}

		kvs = append(kvs, KeyValue{Key: key, Value: data[nul+1:]})
		// #nosec G115 -- align4(size) <= remaining.
		off += int(align4(size))
	}

	return kvs, nil
}
