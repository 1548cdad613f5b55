package loader

import (
	"bytes"
	"path/filepath"
	"strings"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ModelFormat represents the container of a model file.
type ModelFormat int

// Supported model formats.
const (
	FormatUnknown ModelFormat = iota
	FormatJSON
	FormatZstd // zstd-compressed JSON
)

// String returns the string representation of the format.
func (f ModelFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatZstd:
		return "json+zstd"
	default:
		return "unknown"
	}
}

// DetectFormat inspects the first bytes of a model file.
func DetectFormat(header []byte) ModelFormat {
	if bytes.HasPrefix(header, zstdMagic) {
		return FormatZstd
	}
	trimmed := bytes.TrimLeft(header, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatUnknown
}

// FormatForPath picks the format to write for path by extension.
func FormatForPath(path string) ModelFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return FormatZstd
	default:
		return FormatJSON
	}
}
