package content

import "bytes"

// sniffLen matches the window git scans for NUL bytes.
const sniffLen = 8000

// Wide-encoding byte order marks legitimately contain NUL bytes.
var textBOMs = [][]byte{
	{0xFF, 0xFE},
	{0xFE, 0xFF},
	{0x00, 0x00, 0xFE, 0xFF},
}

// IsBinaryContent reports whether data looks like binary rather than text:
// a NUL byte in the first sniffLen bytes, unless data opens with a UTF-16
// or UTF-32 byte order mark.
func IsBinaryContent(data []byte) bool {
	for _, bom := range textBOMs {
		if bytes.HasPrefix(data, bom) {
			return false
		}
	}
	return bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0
}
