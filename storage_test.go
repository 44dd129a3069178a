package ktx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStorageRelease(t *testing.T) {
	t.Parallel()

	s := NewStorage([]byte{1, 2, 3})
	if !IsOwned(s) {
		t.Fatalf("NewStorage not owned")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d", s.Len())
	}
	for i := 0; i < 2; i++ {
		if err := s.Release(); err != nil {
			t.Fatalf("Release #%d: %v", i+1, err)
		}
	}
	if s.Bytes() != nil || s.Len() != 0 {
		t.Fatalf("data retained after Release")
	}

	backing := []byte{4, 5}
	view := NewStorageView(backing)
	if IsOwned(view) {
		t.Fatalf("NewStorageView reported owned")
	}
	if err := view.Release(); err != nil {
		t.Fatalf("Release view: %v", err)
	}
	if backing[0] != 4 {
		t.Fatalf("view release touched backing memory")
	}
}

func TestSliceBounds(t *testing.T) {
	t.Parallel()

	s := NewStorage([]byte{0, 1, 2, 3, 4, 5})
	b, err := slice(s, 2, 3)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if !bytes.Equal(b, []byte{2, 3, 4}) || cap(b) != 3 {
		t.Fatalf("slice = %v cap %d", b, cap(b))
	}
	if _, err := slice(s, 6, 0); err != nil {
		t.Fatalf("empty slice at end: %v", err)
	}

	for _, r := range [][2]int{{5, 2}, {7, 0}, {-1, 1}, {0, -1}} {
		if _, err := slice(s, r[0], r[1]); !errors.Is(err, ErrTruncatedBuffer) {
			t.Fatalf("slice(%d, %d): expected ErrTruncatedBuffer, got %v", r[0], r[1], err)
		}
	}
}

func TestMapFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.ktx")
	data := serializeBytes(t, testHeader(4, 4, 3), KeyValues{{Key: "a", Value: []byte("b")}}, testLevels(64, 16, 4))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := MapFile(path)
	if err != nil {
		t.Fatalf("MapFile: %v", err)
	}
	if !bytes.Equal(s.Bytes(), data) {
		t.Fatalf("mapped bytes differ")
	}

	k, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(k.MipData(1), testLevels(64, 16, 4)[1]) {
		t.Fatalf("level 1 mismatch")
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}

	empty := filepath.Join(dir, "empty.ktx")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err = MapFile(empty)
	if err != nil {
		t.Fatalf("MapFile(empty): %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("empty file mapped to %d bytes", s.Len())
	}
	if _, err := Parse(s); !errors.Is(err, ErrTruncatedBuffer) {
		t.Fatalf("expected ErrTruncatedBuffer, got %v", err)
	}

	if _, err := MapFile(filepath.Join(dir, "missing.ktx")); err == nil {
		t.Fatalf("MapFile on missing file succeeded")
	}
}
