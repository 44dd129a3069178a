/*
Package ktx implements the KTX 1.1 texture container: parsing and
serialization of the fixed header, the key-value metadata block and the
length-prefixed mipmap level payloads.

A container is bound to exactly one Storage, a contiguous immutable byte
buffer that is either owned (heap) or an unowned view (for example a
memory-mapped file). Parsing never copies texel bytes: header, key-value and
level accessors return sub-slices of the bound storage.

Level payloads are opaque. The package computes per-level byte ranges from
the header and the self-describing image region, and leaves pixel format
interpretation to the caller (a GPU uploader, usually). Small helpers convert
uncompressed RGBA8 textures to and from image.Image, and the loader accepts
LZ4 frame or zstd wrapped containers transparently.
*/
package ktx
