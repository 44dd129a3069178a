// Package report summarizes a parsed KTX container for display and for the
// texture server JSON API.
package report

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"github.com/dgryski/go-farm"
	"github.com/goccy/go-json"

	"github.com/woozymasta/ktx"
)

// ErrNotBound is returned for containers without storage.
var ErrNotBound = errors.New("report: container not bound")

// Storage kinds reported in Report.Storage.
const (
	StorageOwned    = "owned"
	StorageExternal = "external"
)

// Report is a self-contained snapshot of a container. It holds no views into
// the container storage and stays valid after the container is closed.
type Report struct {
	Name       string `json:"name,omitempty"`
	Size       int    `json:"size"`
	Storage    string `json:"storage"`
	Endianness string `json:"endianness"`

	GLType               uint32 `json:"gl_type"`
	GLTypeSize           uint32 `json:"gl_type_size"`
	GLFormat             uint32 `json:"gl_format"`
	GLInternalFormat     uint32 `json:"gl_internal_format"`
	GLBaseInternalFormat uint32 `json:"gl_base_internal_format"`
	InternalFormat       string `json:"internal_format"`
	Compressed           bool   `json:"compressed"`

	Width         uint32 `json:"width"`
	Height        uint32 `json:"height"`
	Depth         uint32 `json:"depth"`
	ArrayElements uint32 `json:"array_elements"`
	Faces         uint32 `json:"faces"`
	MipmapLevels  uint32 `json:"mipmap_levels"`
	KeyValueBytes uint32 `json:"key_value_bytes"`

	KeyValues []KeyValue `json:"key_values"`
	Levels    []Level    `json:"levels"`
}

// KeyValue is one metadata entry. Textual values are shown without their
// trailing NUL; anything else is hex encoded.
type KeyValue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Binary bool   `json:"binary,omitempty"`
	Size   int    `json:"size"`
}

// Level describes one mip level.
type Level struct {
	Index       int    `json:"index"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	Depth       uint32 `json:"depth"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	ImageSize   uint32 `json:"image_size"`
	Fingerprint string `json:"fingerprint"`
}

// New builds a report for a bound container. name is free form, usually the
// source path.
func New(k *ktx.KTX, name string) (*Report, error) {
	h, ok := k.Header()
	if !ok {
		return nil, ErrNotBound
	}

	r := &Report{
		Name:                 name,
		Size:                 k.Storage().Len(),
		Storage:              StorageExternal,
		Endianness:           "little",
		GLType:               h.GLType,
		GLTypeSize:           h.GLTypeSize,
		GLFormat:             h.GLFormat,
		GLInternalFormat:     h.GLInternalFormat,
		GLBaseInternalFormat: h.GLBaseInternalFormat,
		InternalFormat:       ktx.FormatName(h.GLInternalFormat),
		Compressed:           h.IsCompressed(),
		Width:                h.PixelWidth,
		Height:               h.PixelHeight,
		Depth:                h.PixelDepth,
		ArrayElements:        h.NumberOfArrayElements,
		Faces:                h.NumberOfFaces,
		MipmapLevels:         h.NumberOfMipmapLevels,
		KeyValueBytes:        h.BytesOfKeyValueData,
		KeyValues:            []KeyValue{},
		Levels:               make([]Level, 0, k.NumLevels()),
	}
	if ktx.IsOwned(k.Storage()) {
		r.Storage = StorageOwned
	}
	if h.Endianness == ktx.EndianBig {
		r.Endianness = "big"
	}

	for _, kv := range k.KeyValues() {
		r.KeyValues = append(r.KeyValues, keyValue(kv))
	}

	for i, d := range k.Images() {
		// #nosec G115 -- at most 32 levels.
		level := uint32(i)
		r.Levels = append(r.Levels, Level{
			Index:       i,
			Width:       h.PixelWidthAt(level),
			Height:      h.PixelHeightAt(level),
			Depth:       h.PixelDepthAt(level),
			Offset:      d.Offset,
			Length:      d.Length,
			ImageSize:   d.ImageSize,
			Fingerprint: Fingerprint(k.MipData(i)),
		})
	}

	return r, nil
}

// Fingerprint returns the farmhash fingerprint of b as 16 hex digits.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", farm.Fingerprint64(b))
}

func keyValue(kv ktx.KeyValue) KeyValue {
	out := KeyValue{Key: kv.Key, Size: len(kv.Value)}
	if text, ok := printable(kv.Value); ok {
		out.Value = text
		return out
	}
	out.Value = hex.EncodeToString(kv.Value)
	out.Binary = true
	return out
}

// printable reports whether value is UTF-8 text without control characters,
// optionally NUL terminated.
func printable(value []byte) (string, bool) {
	s := ktx.CString(value)
	if !utf8.ValidString(s) {
		return "", false
	}
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return "", false
		}
	}
	return s, true
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r in the aligned human readable form used by ktxtool info.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if r.Name != "" {
		fmt.Fprintf(tw, "File:\t%s\n", r.Name)
	}
	fmt.Fprintf(tw, "Size:\t%d bytes (%s storage)\n", r.Size, r.Storage)
	fmt.Fprintf(tw, "Endianness:\t%s\n", r.Endianness)
	fmt.Fprintf(tw, "Dimensions:\t%dx%dx%d\n", r.Width, r.Height, r.Depth)
	fmt.Fprintf(tw, "Array elements:\t%d\n", r.ArrayElements)
	fmt.Fprintf(tw, "Faces:\t%d\n", r.Faces)
	fmt.Fprintf(tw, "Mipmap levels:\t%d (%d stored)\n", r.MipmapLevels, len(r.Levels))
	fmt.Fprintf(tw, "glType:\t0x%04X (size %d)\n", r.GLType, r.GLTypeSize)
	fmt.Fprintf(tw, "glFormat:\t%s\n", ktx.FormatName(r.GLFormat))
	fmt.Fprintf(tw, "glInternalFormat:\t%s\n", r.InternalFormat)
	fmt.Fprintf(tw, "glBaseInternalFormat:\t%s\n", ktx.FormatName(r.GLBaseInternalFormat))
	fmt.Fprintf(tw, "Block compressed:\t%t\n", r.Compressed)

	fmt.Fprintf(tw, "\nKey-values (%d bytes):\n", r.KeyValueBytes)
	for _, kv := range r.KeyValues {
		value := strconv.Quote(kv.Value)
		if kv.Binary {
			value = "0x" + kv.Value
		}
		fmt.Fprintf(tw, "  %s\t%s\n", kv.Key, value)
	}

	fmt.Fprintf(tw, "\nLevel\tSize\tOffset\tLength\tFingerprint\n")
	for _, l := range r.Levels {
		fmt.Fprintf(tw, "%d\t%dx%dx%d\t%d\t%d\t%s\n",
			l.Index, l.Width, l.Height, l.Depth, l.Offset, l.Length, l.Fingerprint)
	}

	return tw.Flush()
}
