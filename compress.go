package ktx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects an optional stream wrapper around a whole container.
// The KTX format itself has no supercompression; wrapped files are inflated
// into an owned Storage before parsing.
type Compression uint8

const (
	// CompressionNone stores the container as is.
	CompressionNone Compression = iota
	// CompressionLZ4 wraps the container into an LZ4 frame.
	CompressionLZ4
	// CompressionZstd wraps the container into a zstd frame.
	CompressionZstd
)

// zstdMinMemory is the smallest decoder memory limit applied to zstd frames,
// large enough for the window our own writer uses.
const zstdMinMemory = 8 << 20

var (
	lz4FrameMagic = []byte{0x04, 0x22, 0x4D, 0x18}
	zstdMagic     = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Ext returns the file name suffix conventionally appended for c.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "raw":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// DetectCompression inspects the leading bytes of a file.
func DetectCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, lz4FrameMagic):
		return CompressionLZ4
	case bytes.HasPrefix(prefix, zstdMagic):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// compressTo writes data to w wrapped with c.
func compressTo(w io.Writer, data []byte, c Compression) error {
	switch c {
	case CompressionNone:
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteFile, err)
		}
		return nil

	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.ChecksumOption(true), lz4.CompressionLevelOption(lz4.Level9)); err != nil {
			return fmt.Errorf("%w: lz4 options: %v", ErrCompress, err)
		}
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("%w: lz4: %v", ErrCompress, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("%w: lz4 close: %v", ErrCompress, err)
		}
		return nil

	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("%w: zstd: %v", ErrCompress, err)
		}
		if _, err := enc.Write(data); err != nil {
			_ = enc.Close()
			return fmt.Errorf("%w: zstd: %v", ErrCompress, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("%w: zstd close: %v", ErrCompress, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}
}

// decompressReader returns a reader inflating r according to c. A positive
// maxMemory bounds the zstd decoder. The returned close function must be
// called when done.
func decompressReader(r io.Reader, c Compression, maxMemory int64) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CompressionZstd:
		var opts []zstd.DOption
		if maxMemory > 0 {
			// #nosec G115 -- positive.
			opts = append(opts, zstd.WithDecoderMaxMemory(uint64(max(maxMemory, zstdMinMemory))))
		}
		dec, err := zstd.NewReader(r, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
		}
		return dec, dec.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}
}

// inflate returns data with any detected wrapper removed. A positive limit
// caps the size of the result, compressed or not.
func inflate(data []byte, limit int64) ([]byte, error) {
	c := DetectCompression(data)
	if c == CompressionNone {
		if limit > 0 && int64(len(data)) > limit {
			return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), limit)
		}
		return data, nil
	}

	r, closeFn, err := decompressReader(bytes.NewReader(data), c, limit)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %s: %v", ErrTooLarge, c, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompress, c, err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: %s stream inflates past %d bytes", ErrTooLarge, c, limit)
	}

	return out, nil
}
