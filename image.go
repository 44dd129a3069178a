package ktx

import (
	"encoding/binary"
	"fmt"
)

// ImageDescriptor locates one mip level inside the storage. It is computed by
// the image region scan and is not stored in the file.
type ImageDescriptor struct {
	// Offset is the storage offset of the first payload byte, just past the
	// imageSize field.
	Offset int
	// Length is the byte length of the level payload.
	Length int
	// ImageSize is the imageSize value stored in the file.
	ImageSize uint32
}

// scanImages walks the image region starting at start and builds one
// descriptor per level. Every level depends on the size of the previous one,
// so there is no way around the sequential scan.
func scanImages(b []byte, start int, h *Header) ([]ImageDescriptor, error) {
	order := h.ByteOrder()
	levels := h.NumLevels()
	total := uint64(len(b))
	off := uint64(start)

	images := make([]ImageDescriptor, 0, min(levels, 32))
	for level := uint32(0); level < levels; level++ {
		if off+4 > total {
			return nil, fmt.Errorf("%w: level %d: imageSize at %d, storage is %d bytes", ErrTruncatedBuffer, level, off, total)
		}
		size := uint64(order.Uint32(b[off:]))
		payload := off + 4
		end := payload + align4(size)
		if end > total {
			return nil, fmt.Errorf("%w: level %d: %d bytes at %d, storage is %d bytes", ErrLevelSizeMismatch, level, size, payload, total)
		}

		// #nosec G115 -- every value below is bounded by len(b).
		images = append(images, ImageDescriptor{
			Offset:    int(payload),
			Length:    int(size),
			ImageSize: uint32(size),
		})
		off = end
	}

	return images, nil
}

// imageRegionSize validates level payloads against the header and returns
// the encoded size of the image region.
func imageRegionSize(h *Header, levels [][]byte) (uint64, error) {
	if want := h.NumLevels(); uint64(len(levels)) != uint64(want) {
		return 0, fmt.Errorf("%w: header declares %d levels, got %d payloads", ErrLevelCountMismatch, want, len(levels))
	}

	var total uint64
	for i, level := range levels {
		n := uint64(len(level))
		if n > maxUint32 {
			return 0, fmt.Errorf("%w: level %d: imageSize %d", ErrSizeOverflow, i, n)
		}
		total += 4 + align4(n)
	}

	return total, nil
}

// encodeImages writes the image region into b, which must be zeroed and hold
// imageRegionSize bytes.
func encodeImages(b []byte, levels [][]byte, order binary.ByteOrder) int {
	off := 0
	for _, level := range levels {
		// #nosec G115 -- checked by imageRegionSize.
		order.PutUint32(b[off:], uint32(len(level)))
		off += 4
		off += copy(b[off:], level)
		// #nosec G115 -- at most 3.
		off += int(pad4(uint64(len(level))))
	}

	return off
}
