// Package engine holds the byte-level primitives shared by the reader, the
// writer and the built-in converters: string escaping, number scanning and
// member-name hashing. Nothing in here allocates unless it appends to a
// caller-provided buffer.
package engine

const hexDigits = "0123456789abcdef"

// needsEscape marks bytes that cannot appear verbatim inside a JSON string.
var needsEscape [256]bool

func init() {
	for c := 0; c < 0x20; c++ {
		needsEscape[c] = true
	}
	needsEscape['"'] = true
	needsEscape['\\'] = true
}

// NeedsEscape reports whether s contains a byte that must be escaped.
func NeedsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if needsEscape[s[i]] {
			return true
		}
	}
	return false
}

// AppendQuoted appends s to dst as a quoted JSON string. Bytes >= 0x80 pass
// through untouched.
func AppendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !needsEscape[c] {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
