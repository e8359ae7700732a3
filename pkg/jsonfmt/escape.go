package jsonfmt

import (
	"unicode/utf16"

	"github.com/templexxx/xhex"
)

// AppendEscaped appends the JSON-escaped form of s to dst. Quotes, backslashes
// and the usual control characters get their short escapes; every other byte
// outside printable ASCII becomes \uXXXX (a surrogate pair above U+FFFF), so
// the output is plain 7-bit ASCII. Invalid UTF-8 is written as U+FFFD.
func AppendEscaped(dst []byte, s string) []byte {
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				dst = append(dst, byte(r))
			case r <= 0xffff:
				dst = appendUnicodeEscape(dst, uint16(r))
			default:
				hi, lo := utf16.EncodeRune(r)
				dst = appendUnicodeEscape(dst, uint16(hi))
				dst = appendUnicodeEscape(dst, uint16(lo))
			}
		}
	}
	return dst
}

func appendUnicodeEscape(dst []byte, c uint16) []byte {
	var hex [4]byte
	xhex.Encode(hex[:], []byte{byte(c >> 8), byte(c)})
	return append(append(dst, '\\', 'u'), hex[:]...)
}

// AppendHex appends the lowercase hex form of b.
func AppendHex(dst, b []byte) []byte {
	l := len(dst)
	dst = append(dst, make([]byte, len(b)*2)...)
	xhex.Encode(dst[l:], b)
	return dst
}
