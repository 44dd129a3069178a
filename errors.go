package ktx

import "errors"

var (
	// ErrMagicMismatch indicates the first 12 bytes are not the KTX identifier.
	ErrMagicMismatch = errors.New("KTX identifier mismatch")
	// ErrBadEndianness indicates an unknown endianness marker.
	ErrBadEndianness = errors.New("invalid endianness marker")
	// ErrTruncatedBuffer indicates a declared block extends beyond the storage.
	ErrTruncatedBuffer = errors.New("truncated buffer")
	// ErrKeyValueCorrupt indicates a malformed key-value entry.
	ErrKeyValueCorrupt = errors.New("key-value data corrupt")
	// ErrLevelSizeMismatch indicates image region offsets exceed the storage.
	ErrLevelSizeMismatch = errors.New("level size mismatch")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrInvalidGeometry indicates inconsistent header dimensions or counts.
	ErrInvalidGeometry = errors.New("invalid texture geometry")
	// ErrLevelCountMismatch indicates the number of level payloads does not match the header.
	ErrLevelCountMismatch = errors.New("level count mismatch")
	// ErrInvalidKey indicates an empty, non UTF-8 or NUL containing key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrDuplicateKey indicates a key occurs more than once.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNilStorage indicates a nil storage was passed to Parse.
	ErrNilStorage = errors.New("nil storage")
	// ErrNotBound indicates the container has no storage.
	ErrNotBound = errors.New("container not bound")
	// ErrLevelOutOfRange indicates a level or face index outside the container.
	ErrLevelOutOfRange = errors.New("level out of range")
	// ErrUnsupportedFormat indicates a pixel format the image helpers cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnknownCompression indicates an unknown container compression name.
	ErrUnknownCompression = errors.New("unknown compression")
	// ErrCompress indicates wrapping the container into a compressed stream failed.
	ErrCompress = errors.New("compress container failed")
	// ErrDecompress indicates inflating a compressed container failed.
	ErrDecompress = errors.New("decompress container failed")
	// ErrTooLarge indicates a container exceeds the configured maximum size.
	ErrTooLarge = errors.New("container too large")
	// ErrOpenFile indicates KTX file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrReadFile indicates reading KTX data failed.
	ErrReadFile = errors.New("read file failed")
	// ErrMapFile indicates memory-mapping a KTX file failed.
	ErrMapFile = errors.New("map file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteFile indicates writing KTX data failed.
	ErrWriteFile = errors.New("write file failed")
	// ErrEncodeImage indicates encoding a mip level from an image failed.
	ErrEncodeImage = errors.New("encode image failed")
	// ErrDecodeImage indicates decoding a mip level into an image failed.
	ErrDecodeImage = errors.New("decode image failed")
)
