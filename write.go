package ktx

import (
	"fmt"
	"image"
	"io"
	"os"
)

// WriteOptions configures container writing.
type WriteOptions struct {
	// Compression wraps the whole container into an LZ4 or zstd frame.
	Compression Compression
}

// Serialize encodes header, key-values and per-level payloads into a new
// owned Storage.
//
// The identifier and BytesOfKeyValueData are computed; a zero Endianness
// means little-endian. levels must hold NumLevels() payloads, largest first.
// A cubemap or array level is its faces and elements flattened back to back.
// Everything is validated before any output is produced.
func Serialize(h Header, kvs KeyValues, levels [][]byte) (Storage, error) {
	data, err := encode(h, kvs, levels)
	if err != nil {
		return nil, err
	}

	return NewStorage(data), nil
}

// Encode writes the serialized container to w.
func Encode(w io.Writer, h Header, kvs KeyValues, levels [][]byte) error {
	data, err := encode(h, kvs, levels)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	return nil
}

// Build serializes and parses the result into a bound container.
func Build(h Header, kvs KeyValues, levels [][]byte) (*KTX, error) {
	s, err := Serialize(h, kvs, levels)
	if err != nil {
		return nil, err
	}

	return Parse(s)
}

func encode(h Header, kvs KeyValues, levels [][]byte) ([]byte, error) {
	if h.Endianness == 0 {
		h.Endianness = EndianLittle
	}
	if h.Endianness != EndianLittle && h.Endianness != EndianBig {
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadEndianness, h.Endianness)
	}
	h.Identifier = Identifier

	if err := h.validateGeometry(); err != nil {
		return nil, err
	}
	if err := kvs.validate(); err != nil {
		return nil, err
	}

	kvSize := kvs.EncodedSize()
	if kvSize > maxUint32 {
		return nil, fmt.Errorf("%w: key-value block is %d bytes", ErrSizeOverflow, kvSize)
	}
	// #nosec G115 -- bounds checked above.
	h.BytesOfKeyValueData = uint32(kvSize)

	imageSize, err := imageRegionSize(&h, levels)
	if err != nil {
		return nil, err
	}
	total, err := intFromU64(HeaderSize + kvSize + imageSize)
	if err != nil {
		return nil, err
	}

	order := h.ByteOrder()
	buf := make([]byte, total)
	if err := h.MarshalTo(buf); err != nil {
		return nil, err
	}
	off := HeaderSize
	off += kvs.encodeTo(buf[off:], order)
	off += encodeImages(buf[off:], levels, order)
	if off != total {
		return nil, fmt.Errorf("%w: wrote %d of %d bytes", ErrSizeOverflow, off, total)
	}

	return buf, nil
}

// Write encodes img as an RGBA8 KTX file with a full mip chain.
func Write(img image.Image, path string) error {
	return WriteWithOptions(img, path, nil, nil)
}

// WriteWithOptions encodes img as an RGBA8 KTX file.
// Nil options use defaults (full chain, no compression).
func WriteWithOptions(img image.Image, path string, imgOpts *ImageOptions, opts *WriteOptions) error {
	k, err := FromImage(img, imgOpts)
	if err != nil {
		return err
	}
	defer func() { _ = k.Close() }()

	return WriteContainer(k, path, opts)
}

// WriteFile serializes a container directly to path.
func WriteFile(path string, h Header, kvs KeyValues, levels [][]byte, opts *WriteOptions) error {
	data, err := encode(h, kvs, levels)
	if err != nil {
		return err
	}

	return writeBytes(path, data, opts)
}

// WriteContainer writes the bytes of a bound container to path.
func WriteContainer(k *KTX, path string, opts *WriteOptions) error {
	if !k.Bound() {
		return ErrNotBound
	}

	return writeBytes(path, k.Storage().Bytes(), opts)
}

func writeBytes(path string, data []byte, opts *WriteOptions) error {
	c := CompressionNone
	if opts != nil {
		c = opts.Compression
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}

	if err := compressTo(f, data, c); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}

	return nil
}
