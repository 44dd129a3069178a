package ktx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size in bytes of the fixed KTX header.
const HeaderSize = 64

const (
	// EndianLittle is the Endianness value of a little-endian container.
	EndianLittle uint32 = 0x04030201
	// EndianBig is the Endianness value of a big-endian container, i.e. the
	// reference marker as seen through a little-endian decode.
	EndianBig uint32 = 0x01020304

	// endianReference is written with the container byte order.
	endianReference uint32 = 0x04030201
)

// Byte offsets of the header fields.
const (
	offEndianness           = 12
	offGLType               = 16
	offGLTypeSize           = 20
	offGLFormat             = 24
	offGLInternalFormat     = 28
	offGLBaseInternalFormat = 32
	offPixelWidth           = 36
	offPixelHeight          = 40
	offPixelDepth           = 44
	offArrayElements        = 48
	offFaces                = 52
	offMipmapLevels         = 56
	offKeyValueBytes        = 60
)

// Identifier is the 12-byte magic every KTX 1.1 container starts with.
var Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '1', '1', 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

// Header is the fixed 64-byte record at offset 0 of a container.
//
// The gl* fields are OpenGL enumerants and are carried through unmodified.
type Header struct {
	Identifier [12]byte
	Endianness uint32

	GLType               uint32
	GLTypeSize           uint32
	GLFormat             uint32
	GLInternalFormat     uint32
	GLBaseInternalFormat uint32

	PixelWidth  uint32
	PixelHeight uint32
	PixelDepth  uint32

	NumberOfArrayElements uint32
	NumberOfFaces         uint32
	NumberOfMipmapLevels  uint32
	BytesOfKeyValueData   uint32
}

// NewHeader returns a little-endian header with the identifier filled in and
// a single face.
func NewHeader() Header {
	return Header{
		Identifier:    Identifier,
		Endianness:    EndianLittle,
		NumberOfFaces: 1,
	}
}

func (h Header) String() string {
	return fmt.Sprintf("KTX %dx%dx%d faces=%d array=%d levels=%d internalFormat=0x%04X",
		h.PixelWidth, h.PixelHeight, h.PixelDepth,
		h.NumberOfFaces, h.NumberOfArrayElements, h.NumberOfMipmapLevels, h.GLInternalFormat)
}

// Validate reports whether the identifier matches the KTX magic.
func (h *Header) Validate() bool {
	return h.Identifier == Identifier
}

// ByteOrder returns the byte order declared by the endianness marker.
func (h *Header) ByteOrder() binary.ByteOrder {
	if h.Endianness == EndianBig {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsCubemap reports whether the texture has six faces.
func (h *Header) IsCubemap() bool {
	return h.NumberOfFaces == 6
}

// IsArray reports whether the texture is an array texture.
func (h *Header) IsArray() bool {
	return h.NumberOfArrayElements > 0
}

// MaxDimension returns the largest of width, height and depth.
func (h *Header) MaxDimension() uint32 {
	return max(h.PixelWidth, h.PixelHeight, h.PixelDepth)
}

// MaxLevel returns 1 + floor(log2(MaxDimension())), the full mip chain length.
func (h *Header) MaxLevel() uint32 {
	return maxLevelCount(h.MaxDimension())
}

// NumLevels returns the number of levels stored in the image region:
// NumberOfMipmapLevels, or MaxLevel() when that is 0.
func (h *Header) NumLevels() uint32 {
	if h.NumberOfMipmapLevels == 0 {
		return h.MaxLevel()
	}

	return h.NumberOfMipmapLevels
}

// PixelWidthAt returns the width of a mip level, never less than 1.
func (h *Header) PixelWidthAt(level uint32) uint32 {
	return mipDimension(h.PixelWidth, level)
}

// PixelHeightAt returns the height of a mip level, never less than 1.
func (h *Header) PixelHeightAt(level uint32) uint32 {
	return mipDimension(h.PixelHeight, level)
}

// PixelDepthAt returns the depth of a mip level, never less than 1.
func (h *Header) PixelDepthAt(level uint32) uint32 {
	return mipDimension(h.PixelDepth, level)
}

// PixelSize returns the texel size in bytes. It is glTypeSize alone and
// ignores the channel count of the format.
func (h *Header) PixelSize() uint64 {
	return uint64(h.GLTypeSize)
}

// RowSize returns the byte size of one row at level, padded to 4 bytes.
func (h *Header) RowSize(level uint32) uint64 {
	netSize := uint64(h.PixelWidthAt(level)) * h.PixelSize()
	if packing := netSize % 4; packing != 0 {
		return netSize + 4 - packing
	}

	return netSize
}

// FaceSize returns the byte size of one face at level.
func (h *Header) FaceSize(level uint32) uint64 {
	return h.RowSize(level) * uint64(h.PixelHeightAt(level)) * uint64(h.PixelDepthAt(level))
}

// ImageSize returns the imageSize value expected for level. A non-array
// cubemap stores the size of a single face. Otherwise the size covers every
// array element and face, with zero array elements counted as one.
func (h *Header) ImageSize(level uint32) uint64 {
	faceSize := h.FaceSize(level)
	if h.IsCubemap() && !h.IsArray() {
		return faceSize
	}

	elements := uint64(h.NumberOfArrayElements)
	if elements == 0 {
		elements = 1
	}

	return elements * uint64(h.NumberOfFaces) * faceSize
}

// UnmarshalBytes decodes the header from the first HeaderSize bytes of b.
func (h *Header) UnmarshalBytes(b []byte) error {
	if len(b) < len(Identifier) {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedBuffer, HeaderSize, len(b))
	}
	if !bytes.Equal(b[:len(Identifier)], Identifier[:]) {
		return fmt.Errorf("%w: % x", ErrMagicMismatch, b[:len(Identifier)])
	}
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedBuffer, HeaderSize, len(b))
	}

	b = b[:HeaderSize]

	var order binary.ByteOrder
	switch marker := binary.LittleEndian.Uint32(b[offEndianness:]); marker {
	case EndianLittle:
		order = binary.LittleEndian
	case EndianBig:
		order = binary.BigEndian
	default:
		return fmt.Errorf("%w: 0x%08X", ErrBadEndianness, marker)
	}

	var out Header
	copy(out.Identifier[:], b[:len(Identifier)])
	out.Endianness = binary.LittleEndian.Uint32(b[offEndianness:])
	out.GLType = order.Uint32(b[offGLType:])
	out.GLTypeSize = order.Uint32(b[offGLTypeSize:])
	out.GLFormat = order.Uint32(b[offGLFormat:])
	out.GLInternalFormat = order.Uint32(b[offGLInternalFormat:])
	out.GLBaseInternalFormat = order.Uint32(b[offGLBaseInternalFormat:])
	out.PixelWidth = order.Uint32(b[offPixelWidth:])
	out.PixelHeight = order.Uint32(b[offPixelHeight:])
	out.PixelDepth = order.Uint32(b[offPixelDepth:])
	out.NumberOfArrayElements = order.Uint32(b[offArrayElements:])
	out.NumberOfFaces = order.Uint32(b[offFaces:])
	out.NumberOfMipmapLevels = order.Uint32(b[offMipmapLevels:])
	out.BytesOfKeyValueData = order.Uint32(b[offKeyValueBytes:])

	*h = out
	return nil
}

// MarshalTo encodes the header into the first HeaderSize bytes of b. The
// identifier is always written from the constant.
func (h *Header) MarshalTo(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrSizeOverflow, HeaderSize, len(b))
	}
	if h.Endianness != EndianLittle && h.Endianness != EndianBig {
		return fmt.Errorf("%w: 0x%08X", ErrBadEndianness, h.Endianness)
	}

	order := h.ByteOrder()
	copy(b[:len(Identifier)], Identifier[:])
	order.PutUint32(b[offEndianness:], endianReference)
	order.PutUint32(b[offGLType:], h.GLType)
	order.PutUint32(b[offGLTypeSize:], h.GLTypeSize)
	order.PutUint32(b[offGLFormat:], h.GLFormat)
	order.PutUint32(b[offGLInternalFormat:], h.GLInternalFormat)
	order.PutUint32(b[offGLBaseInternalFormat:], h.GLBaseInternalFormat)
	order.PutUint32(b[offPixelWidth:], h.PixelWidth)
	order.PutUint32(b[offPixelHeight:], h.PixelHeight)
	order.PutUint32(b[offPixelDepth:], h.PixelDepth)
	order.PutUint32(b[offArrayElements:], h.NumberOfArrayElements)
	order.PutUint32(b[offFaces:], h.NumberOfFaces)
	order.PutUint32(b[offMipmapLevels:], h.NumberOfMipmapLevels)
	order.PutUint32(b[offKeyValueBytes:], h.BytesOfKeyValueData)

	return nil
}

// validateGeometry checks the counts a writer must get right before any
// bytes are produced.
func (h *Header) validateGeometry() error {
	if h.PixelWidth == 0 {
		return fmt.Errorf("%w: pixelWidth is 0", ErrInvalidGeometry)
	}
	if h.PixelDepth > 0 && h.PixelHeight == 0 {
		return fmt.Errorf("%w: pixelDepth %d with pixelHeight 0", ErrInvalidGeometry, h.PixelDepth)
	}
	if h.NumberOfFaces != 1 && h.NumberOfFaces != 6 {
		return fmt.Errorf("%w: numberOfFaces %d", ErrInvalidGeometry, h.NumberOfFaces)
	}
	if h.IsCubemap() && (h.PixelDepth > 1 || h.PixelWidth != h.PixelHeight) {
		return fmt.Errorf("%w: cubemap faces must be square and 2D", ErrInvalidGeometry)
	}
	if h.NumberOfMipmapLevels > h.MaxLevel() {
		return fmt.Errorf("%w: %d levels, at most %d", ErrInvalidGeometry, h.NumberOfMipmapLevels, h.MaxLevel())
	}

	return nil
}
