package ktx

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ReadOptions configures container decoding.
type ReadOptions struct {
	// MaxSize caps both the input and the decoded container size in bytes.
	// 0 means unlimited.
	MaxSize int64
}

// ReadFile reads a KTX file, optionally LZ4 or zstd wrapped, into an owned
// storage and parses it.
func ReadFile(path string) (*KTX, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}

	return decodeBytes(data)
}

// Decode reads r fully and parses the container.
func Decode(r io.Reader) (*KTX, error) {
	return DecodeWithOptions(r, nil)
}

// DecodeWithOptions reads r fully and parses the container.
// Nil options use defaults (no size limit).
func DecodeWithOptions(r io.Reader, opts *ReadOptions) (*KTX, error) {
	var limit int64
	if opts != nil {
		limit = opts.MaxSize
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrTooLarge, limit)
	}

	return decodeBytesLimit(data, limit)
}

func decodeBytes(data []byte) (*KTX, error) {
	return decodeBytesLimit(data, 0)
}

func decodeBytesLimit(data []byte, limit int64) (*KTX, error) {
	data, err := inflate(data, limit)
	if err != nil {
		return nil, err
	}

	return Parse(NewStorage(data))
}

// OpenMapped memory-maps a KTX file and parses it without copying. Wrapped
// files cannot be used in place; they are inflated into an owned storage and
// the mapping is released.
func OpenMapped(path string) (*KTX, error) {
	s, err := MapFile(path)
	if err != nil {
		return nil, err
	}

	if c := DetectCompression(s.Bytes()); c != CompressionNone {
		data, err := inflate(s.Bytes(), 0)
		_ = s.Release()
		if err != nil {
			return nil, err
		}
		return Parse(NewStorage(data))
	}

	return Parse(s)
}

// ReadHeader reads only the fixed header of a KTX file.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	prefix, _ := br.Peek(len(lz4FrameMagic))

	r, closeFn, err := decompressReader(br, DetectCompression(prefix), 0)
	if err != nil {
		return Header{}, err
	}
	defer closeFn()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}

	var h Header
	if err := h.UnmarshalBytes(buf[:n]); err != nil {
		return Header{}, err
	}

	return h, nil
}
