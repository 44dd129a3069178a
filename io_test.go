package ktx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadFileCompression(t *testing.T) {
	t.Parallel()

	h := testHeader(4, 4, 3)
	kvs := KeyValues{{Key: KeyOrientation, Value: cString(DefaultOrientation)}}
	levels := testLevels(64, 16, 4)
	raw := serializeBytes(t, h, kvs, levels)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "tex.ktx"+c.Ext())
			if err := WriteFile(path, h, kvs, levels, &WriteOptions{Compression: c}); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			onDisk, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if got := DetectCompression(onDisk); got != c {
				t.Fatalf("DetectCompression = %s, want %s", got, c)
			}
			if c == CompressionNone && !bytes.Equal(onDisk, raw) {
				t.Fatalf("uncompressed file differs from Serialize output")
			}

			k, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !bytes.Equal(k.Storage().Bytes(), raw) {
				t.Fatalf("ReadFile storage differs from Serialize output")
			}
			_ = k.Close()

			mapped, err := OpenMapped(path)
			if err != nil {
				t.Fatalf("OpenMapped: %v", err)
			}
			for i, level := range levels {
				if !bytes.Equal(mapped.MipData(i), level) {
					t.Fatalf("mapped level %d mismatch", i)
				}
			}
			_ = mapped.Close()

			header, err := ReadHeader(path)
			if err != nil {
				t.Fatalf("ReadHeader: %v", err)
			}
			if header.PixelWidth != 4 || header.NumberOfMipmapLevels != 3 || header.BytesOfKeyValueData != uint32(kvs.EncodedSize()) {
				t.Fatalf("ReadHeader = %s", header)
			}
		})
	}
}

func TestDecodeReader(t *testing.T) {
	t.Parallel()

	raw := serializeBytes(t, testHeader(2, 2, 1), nil, testLevels(16))
	k, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !IsOwned(k.Storage()) {
		t.Fatalf("Decode storage not owned")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, testHeader(2, 2, 1), nil, testLevels(16)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		t.Fatalf("Encode output differs from Serialize")
	}
}

func TestWriteContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "image.ktx")
	if err := WriteWithOptions(testImage(4, 4), path, &ImageOptions{MaxLevels: 1}, nil); err != nil {
		t.Fatalf("WriteWithOptions: %v", err)
	}

	k, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if k.NumLevels() != 1 {
		t.Fatalf("NumLevels() = %d, want 1", k.NumLevels())
	}

	out := filepath.Join(dir, "copy.ktx.zst")
	if err := WriteContainer(k, out, &WriteOptions{Compression: CompressionZstd}); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	again, err := ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(again.Storage().Bytes(), k.Storage().Bytes()) {
		t.Fatalf("repacked container differs")
	}

	if err := WriteContainer(New(), out, nil); !errors.Is(err, ErrNotBound) {
		t.Fatalf("expected ErrNotBound, got %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.ktx")); !errors.Is(err, ErrReadFile) {
		t.Fatalf("expected ErrReadFile, got %v", err)
	}
	if _, err := ReadHeader(filepath.Join(dir, "missing.ktx")); !errors.Is(err, ErrOpenFile) {
		t.Fatalf("expected ErrOpenFile, got %v", err)
	}

	short := filepath.Join(dir, "short.ktx")
	if err := os.WriteFile(short, Identifier[:], 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadHeader(short); !errors.Is(err, ErrTruncatedBuffer) {
		t.Fatalf("expected ErrTruncatedBuffer, got %v", err)
	}

	// a zstd magic followed by garbage
	broken := filepath.Join(dir, "broken.ktx.zst")
	if err := os.WriteFile(broken, append(bytes.Clone(zstdMagic), 1, 2, 3, 4, 5, 6, 7, 8), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(broken); !errors.Is(err, ErrDecompress) {
		t.Fatalf("expected ErrDecompress, got %v", err)
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{in: "", want: CompressionNone},
		{in: "none", want: CompressionNone},
		{in: " LZ4 ", want: CompressionLZ4},
		{in: "zst", want: CompressionZstd},
		{in: "zstd", want: CompressionZstd},
		{in: "gzip", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCompression(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownCompression) {
					t.Fatalf("expected ErrUnknownCompression, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParseCompression(%q) = %s, %v", tc.in, got, err)
			}
		})
	}
}

func TestDetectCompression(t *testing.T) {
	t.Parallel()

	if got := DetectCompression(Identifier[:]); got != CompressionNone {
		t.Fatalf("KTX identifier detected as %s", got)
	}
	if got := DetectCompression([]byte{0x04, 0x22}); got != CompressionNone {
		t.Fatalf("short prefix detected as %s", got)
	}
	if got := DetectCompression(lz4FrameMagic); got != CompressionLZ4 {
		t.Fatalf("lz4 magic detected as %s", got)
	}
}

func TestDecodeWithOptionsMaxSize(t *testing.T) {
	t.Parallel()

	// a zero level compresses far below its decoded size
	h := testHeader(64, 64, 1)
	raw := serializeBytes(t, h, nil, [][]byte{make([]byte, 64*64*4)})
	size := int64(len(raw))

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := compressTo(&buf, raw, c); err != nil {
				t.Fatalf("compressTo: %v", err)
			}
			wrapped := buf.Bytes()

			k, err := DecodeWithOptions(bytes.NewReader(wrapped), &ReadOptions{MaxSize: size})
			if err != nil {
				t.Fatalf("DecodeWithOptions at exact limit: %v", err)
			}
			if !bytes.Equal(k.Storage().Bytes(), raw) {
				t.Fatalf("decoded container differs")
			}
			_ = k.Close()

			if _, err := DecodeWithOptions(bytes.NewReader(wrapped), &ReadOptions{MaxSize: size - 1}); !errors.Is(err, ErrTooLarge) {
				t.Fatalf("expected ErrTooLarge, got %v", err)
			}
		})
	}
}

func TestDecodeWithOptionsInflateBomb(t *testing.T) {
	t.Parallel()

	raw := serializeBytes(t, testHeader(1024, 1024, 1), nil, [][]byte{make([]byte, 4<<20)})

	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := compressTo(&buf, raw, c); err != nil {
				t.Fatalf("compressTo: %v", err)
			}
			if buf.Len() >= 1<<20 {
				t.Fatalf("%s output is %d bytes, expected a small stream", c, buf.Len())
			}

			_, err := DecodeWithOptions(bytes.NewReader(buf.Bytes()), &ReadOptions{MaxSize: 1 << 20})
			if !errors.Is(err, ErrTooLarge) {
				t.Fatalf("expected ErrTooLarge, got %v", err)
			}
		})
	}
}
