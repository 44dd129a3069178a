package ktx

import (
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
)

// DefaultOrientation is the KTXorientation value written for images: rows
// run right, columns run down.
const DefaultOrientation = "S=r,T=d"

// writerName is stored under KTXwriter.
const writerName = "woozymasta/ktx"

// ImageOptions configures FromImage.
type ImageOptions struct {
	// MaxLevels caps the mip chain. 0 means full chain.
	MaxLevels int
	// Orientation overrides DefaultOrientation.
	Orientation string
	// KeyValues are appended after KTXorientation and KTXwriter.
	KeyValues KeyValues
}

// FromImage builds an RGBA8 container from img with a generated mip chain.
func FromImage(img image.Image, opts *ImageOptions) (*KTX, error) {
	if opts == nil {
		opts = &ImageOptions{}
	}

	bounds := img.Bounds()
	width, err := u32FromInt(bounds.Dx())
	if err != nil {
		return nil, err
	}
	height, err := u32FromInt(bounds.Dy())
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidGeometry, width, height)
	}

	levelCount := int(maxLevelCount(max(width, height)))
	if opts.MaxLevels > 0 && opts.MaxLevels < levelCount {
		levelCount = opts.MaxLevels
	}

	mips := bcn.GenerateMipmaps(img, false)
	if len(mips) < levelCount {
		return nil, fmt.Errorf("%w: generated %d mipmaps, need %d", ErrEncodeImage, len(mips), levelCount)
	}

	payloads := make([][]byte, levelCount)
	for i := 0; i < levelCount; i++ {
		data, _, _, err := bcn.EncodeImageWithOptions(mips[i], bcn.FormatRGBA8, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: mipmap %d: %v", ErrEncodeImage, i, err)
		}

		// #nosec G115 -- level < 32.
		mipW := int(mipDimension(width, uint32(i)))
		// #nosec G115 -- level < 32.
		mipH := int(mipDimension(height, uint32(i)))
		if expected := expectedDataLength(bcn.FormatRGBA8, mipW, mipH); len(data) != expected {
			return nil, fmt.Errorf("%w: mipmap %d: expected %d bytes, got %d", ErrEncodeImage, i, expected, len(data))
		}
		payloads[i] = data
	}

	orientation := opts.Orientation
	if orientation == "" {
		orientation = DefaultOrientation
	}

	header := NewHeader()
	header.GLType = GLUnsignedByte
	header.GLTypeSize = 1
	header.GLFormat = GLRGBA
	header.GLInternalFormat = GLRGBA8
	header.GLBaseInternalFormat = GLRGBA
	header.PixelWidth = width
	header.PixelHeight = height
	// #nosec G115 -- at most 32 levels.
	header.NumberOfMipmapLevels = uint32(levelCount)

	kvs := KeyValues{
		{Key: KeyOrientation, Value: cString(orientation)},
		{Key: KeyWriter, Value: cString(writerName)},
	}
	for _, kv := range opts.KeyValues {
		kvs.Set(kv.Key, kv.Value)
	}

	return Build(header, kvs, payloads)
}

// Image decodes an uncompressed RGBA8 or BGRA8 level of a 2D texture.
func (k *KTX) Image(level int) (image.Image, error) {
	if !k.Bound() {
		return nil, ErrNotBound
	}

	h := k.header
	format, err := bcnFormat(&h)
	if err != nil {
		return nil, err
	}
	if h.PixelDepth > 1 || h.IsArray() || h.IsCubemap() {
		return nil, fmt.Errorf("%w: only 2D textures are decoded", ErrUnsupportedFormat)
	}

	data := k.MipData(level)
	if data == nil {
		return nil, fmt.Errorf("%w: level %d of %d", ErrLevelOutOfRange, level, k.NumLevels())
	}

	// #nosec G115 -- level < NumLevels.
	w := int(h.PixelWidthAt(uint32(level)))
	// #nosec G115 -- level < NumLevels.
	ht := int(h.PixelHeightAt(uint32(level)))
	if expected := expectedDataLength(format, w, ht); len(data) != expected {
		return nil, fmt.Errorf("%w: level %d: expected %d bytes, got %d", ErrDecodeImage, level, expected, len(data))
	}

	img, err := bcn.DecodeImageWithOptions(data, w, ht, format, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: level %d: %v", ErrDecodeImage, level, err)
	}

	return img, nil
}

// cString returns s as a NUL-terminated byte string, the convention for
// textual KTX metadata values.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)

	return b
}

// CString trims the trailing NUL of a textual metadata value.
func CString(value []byte) string {
	if n := len(value); n > 0 && value[n-1] == 0 {
		value = value[:n-1]
	}

	return string(value)
}
