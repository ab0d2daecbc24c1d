package dex

import (
	"bytes"
	"unicode/utf16"
)

// decodeMUTF8 decodes a NUL-terminated modified UTF-8 string starting at the
// beginning of b and returns the string and the number of bytes consumed,
// including the terminator. size is the utf16_size recorded before the string
// data and only sizes the decode buffer. Surrogate pairs encoded as two 3-byte
// sequences are joined.
func decodeMUTF8(b []byte, size uint32) (string, int) {
	// MUTF-8 encodes U+0000 as two bytes, so the first zero byte ends the string.
	end := bytes.IndexByte(b, 0)
	consumed := end + 1
	if end < 0 {
		end = len(b)
		consumed = len(b)
	}
	b = b[:end]

	ascii := true
	for _, c := range b {
		if c&0x80 != 0 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), consumed
	}

	units := make([]uint16, 0, min(int(size), len(b)))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) {
				return string(utf16.Decode(units)), consumed
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) {
				return string(utf16.Decode(units)), consumed
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, uint16(c))
			i++
		}
	}
	return string(utf16.Decode(units)), consumed
}
