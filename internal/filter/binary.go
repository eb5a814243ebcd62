package filter

import (
	"bytes"
	"path/filepath"
	"strings"
)

// sniffLen is how much of a file is inspected for binary signatures
const sniffLen = 512

var binaryExtensions = map[string]bool{
	// Images and fonts
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true,

	// Archives and compiled artifacts
	".zip": true, ".gz": true, ".tar": true, ".jar": true, ".a": true, ".o": true,
	".so": true, ".dylib": true, ".dll": true, ".exe": true, ".class": true, ".pyc": true,

	// Swift and Xcode build products
	".swiftmodule": true, ".swiftdoc": true, ".swiftsourceinfo": true, ".car": true, ".nib": true,
}

var binarySignatures = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x47, 0x49, 0x46, 0x38}, // gif
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o universal / java class
	{0xCF, 0xFA, 0xED, 0xFE}, // mach-o 64
	[]byte("bplist00"),       // binary plist
}

// BinaryContentFilter rejects files that are binary by extension or by content.
type BinaryContentFilter struct{}

func (BinaryContentFilter) Name() string { return "binary" }

// AcceptPath implements PathFilter using the extension table only
func (BinaryContentFilter) AcceptPath(path string) bool {
	return !binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// AcceptContent implements ContentFilter
func (BinaryContentFilter) AcceptContent(_ string, content []byte) bool {
	return !IsBinary(content)
}

// IsBinary checks the leading bytes of content for a known binary signature, a NUL byte,
// or a high share of control characters.
func IsBinary(content []byte) bool {
	sample := content[:min(len(content), sniffLen)]
	if len(sample) == 0 {
		return false
	}
	for _, sig := range binarySignatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control > len(sample)*30/100
}
