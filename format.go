package ktx

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// OpenGL enumerants commonly found in KTX headers. The container carries
// them opaquely; these exist for writers and for display.
const (
	GLUnsignedByte = 0x1401
	GLRed          = 0x1903
	GLRGB          = 0x1907
	GLRGBA         = 0x1908
	GLBGRA         = 0x80E1
	GLRG           = 0x8227

	GLR8          = 0x8229
	GLRG8         = 0x822B
	GLRGB8        = 0x8051
	GLRGBA8       = 0x8058
	GLSRGB8       = 0x8C41
	GLSRGB8Alpha8 = 0x8C43

	GLCompressedRGBS3TCDXT1  = 0x83F0
	GLCompressedRGBAS3TCDXT1 = 0x83F1
	GLCompressedRGBAS3TCDXT3 = 0x83F2
	GLCompressedRGBAS3TCDXT5 = 0x83F3
	GLCompressedRedRGTC1     = 0x8DBB
	GLCompressedRGRGTC2      = 0x8DBD
	GLCompressedRGBABPTC     = 0x8E8C
	GLETC1RGB8               = 0x8D64
	GLCompressedRGB8ETC2     = 0x9274
	GLCompressedRGBA8ETC2EAC = 0x9278
	GLCompressedRGBAASTC4x4  = 0x93B0
)

var formatNames = map[uint32]string{
	GLRed:                    "RED",
	GLRGB:                    "RGB",
	GLRGBA:                   "RGBA",
	GLBGRA:                   "BGRA",
	GLRG:                     "RG",
	GLR8:                     "R8",
	GLRG8:                    "RG8",
	GLRGB8:                   "RGB8",
	GLRGBA8:                  "RGBA8",
	GLSRGB8:                  "SRGB8",
	GLSRGB8Alpha8:            "SRGB8_ALPHA8",
	GLCompressedRGBS3TCDXT1:  "COMPRESSED_RGB_S3TC_DXT1",
	GLCompressedRGBAS3TCDXT1: "COMPRESSED_RGBA_S3TC_DXT1",
	GLCompressedRGBAS3TCDXT3: "COMPRESSED_RGBA_S3TC_DXT3",
	GLCompressedRGBAS3TCDXT5: "COMPRESSED_RGBA_S3TC_DXT5",
	GLCompressedRedRGTC1:     "COMPRESSED_RED_RGTC1",
	GLCompressedRGRGTC2:      "COMPRESSED_RG_RGTC2",
	GLCompressedRGBABPTC:     "COMPRESSED_RGBA_BPTC_UNORM",
	GLETC1RGB8:               "ETC1_RGB8",
	GLCompressedRGB8ETC2:     "COMPRESSED_RGB8_ETC2",
	GLCompressedRGBA8ETC2EAC: "COMPRESSED_RGBA8_ETC2_EAC",
	GLCompressedRGBAASTC4x4:  "COMPRESSED_RGBA_ASTC_4x4",
}

// FormatName returns a display name for a GL format enumerant.
func FormatName(format uint32) string {
	if name, ok := formatNames[format]; ok {
		return name
	}

	return fmt.Sprintf("0x%04X", format)
}

// IsCompressed reports whether the header describes a block-compressed
// format. KTX marks those with glType and glFormat equal to 0.
func (h *Header) IsCompressed() bool {
	return h.GLType == 0 && h.GLFormat == 0
}

// bcnFormat maps the uncompressed 8-bit formats the image helpers handle.
func bcnFormat(h *Header) (bcn.Format, error) {
	if h.GLType != GLUnsignedByte {
		return bcn.FormatUnknown, fmt.Errorf("%w: glType 0x%04X", ErrUnsupportedFormat, h.GLType)
	}

	switch h.GLFormat {
	case GLRGBA:
		return bcn.FormatRGBA8, nil
	case GLBGRA:
		return bcn.FormatBGRA8, nil
	default:
		return bcn.FormatUnknown, fmt.Errorf("%w: glFormat %s", ErrUnsupportedFormat, FormatName(h.GLFormat))
	}
}

func expectedDataLength(format bcn.Format, width, height int) int {
	switch format {
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return width * height * 4
	default:
		return -1
	}
}
