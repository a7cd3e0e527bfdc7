package bindjson

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/reoring/bindjson/i18n"
	"github.com/reoring/bindjson/internal/engine"
)

// Reader scans a JSON document held in memory. It is not safe for concurrent
// use; keep one per goroutine and Reset it between documents.
//
// Byte slices returned by ReadKey, ReadStringBytes, ReadNumber and ReadRaw
// alias either the input or an internal scratch buffer and are only valid
// until the next read.
type Reader struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
	scratch  []byte
}

// Position is a resumable scan position captured by Reader.Position.
type Position struct {
	off   int
	depth int
}

// NewReader returns a Reader over data with DefaultMaxDepth.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, maxDepth: DefaultMaxDepth}
}

// Reset points the reader at a new document, keeping its scratch buffer.
func (r *Reader) Reset(data []byte) {
	r.data = data
	r.pos = 0
	r.depth = 0
}

// SetMaxDepth bounds container nesting; zero or negative disables the check.
func (r *Reader) SetMaxDepth(n int) { r.maxDepth = n }

// Offset returns the current byte offset.
func (r *Reader) Offset() int { return r.pos }

// Position captures the current scan position for a later Rewind.
func (r *Reader) Position() Position { return Position{off: r.pos, depth: r.depth} }

// Rewind restores a position captured by Position.
func (r *Reader) Rewind(p Position) {
	r.pos = p.off
	r.depth = p.depth
}

func (r *Reader) skipSpace() bool {
	for r.pos < len(r.data) {
		if !isSpace(r.data[r.pos]) {
			return true
		}
		r.pos++
	}
	return false
}

// Peek classifies the next significant token without consuming it.
func (r *Reader) Peek() (Kind, error) {
	if !r.skipSpace() {
		return KindInvalid, r.truncated("value")
	}
	k := kindOf(r.data[r.pos])
	if k == KindInvalid {
		return k, r.unexpected("value")
	}
	return k, nil
}

// Next consumes and returns the next significant byte.
func (r *Reader) Next() (byte, error) {
	if !r.skipSpace() {
		return 0, r.truncated("token")
	}
	c := r.data[r.pos]
	r.pos++
	return c, nil
}

// Expect consumes the structural byte c.
func (r *Reader) Expect(c byte) error {
	if !r.skipSpace() {
		return r.truncated(quoteByte(c))
	}
	if r.data[r.pos] != c {
		return r.unexpected(quoteByte(c))
	}
	r.pos++
	return nil
}

// BeginObject consumes '{' and enters one nesting level.
func (r *Reader) BeginObject() error { return r.begin('{') }

// BeginArray consumes '[' and enters one nesting level.
func (r *Reader) BeginArray() error { return r.begin('[') }

func (r *Reader) begin(c byte) error {
	if err := r.Expect(c); err != nil {
		return err
	}
	r.depth++
	if r.maxDepth > 0 && r.depth > r.maxDepth {
		return r.errAt(CodeParseError, r.pos-1, fmt.Sprintf("nesting depth at most %d", r.maxDepth))
	}
	return nil
}

// More reports whether another element or member follows inside the
// container closed by closing. first is true before the first element. When
// the closing byte is consumed More returns false and leaves the nesting
// level.
//
//	for first := true; ; first = false {
//		more, err := r.More('}', first)
//		if err != nil || !more { ... }
//		key, hash, err := r.ReadKey()
//		...
//	}
func (r *Reader) More(closing byte, first bool) (bool, error) {
	if !r.skipSpace() {
		return false, r.truncated(quoteByte(closing))
	}
	c := r.data[r.pos]
	if c == closing {
		r.pos++
		if r.depth > 0 {
			r.depth--
		}
		return false, nil
	}
	if !first {
		if c != ',' {
			return false, r.unexpected("',' or " + quoteByte(closing))
		}
		r.pos++
		if r.skipSpace() && r.data[r.pos] == closing {
			if closing == '}' {
				return false, r.unexpected("object key")
			}
			return false, r.unexpected("value")
		}
	}
	return true, nil
}

// End verifies that only whitespace remains after the top-level value.
func (r *Reader) End() error {
	if r.skipSpace() {
		return r.unexpected("end of input")
	}
	return nil
}

// scanString consumes a string token starting at the opening quote. It
// returns the raw body, its FNV-1a hash and whether it contains escapes.
func (r *Reader) scanString() (raw []byte, hash uint32, escaped bool, err error) {
	start := r.pos + 1
	h := engine.HashOffset
	for i := start; i < len(r.data); i++ {
		c := r.data[i]
		switch {
		case c == '"':
			r.pos = i + 1
			return r.data[start:i], h, escaped, nil
		case c == '\\':
			escaped = true
			h = engine.HashByte(h, c)
			i++
			if i < len(r.data) {
				h = engine.HashByte(h, r.data[i])
			}
		case c < 0x20:
			r.pos = i
			return nil, 0, false, r.unexpected("string character")
		default:
			h = engine.HashByte(h, c)
		}
	}
	r.pos = len(r.data)
	return nil, 0, false, r.truncated("closing '\"'")
}

// unescape decodes raw into the scratch buffer. rawStart is the offset of raw
// within the input, used for error reporting.
func (r *Reader) unescape(raw []byte, rawStart int) ([]byte, error) {
	out, bad := engine.Unescape(r.scratch[:0], raw)
	r.scratch = out
	if bad >= 0 {
		return nil, r.errAt(CodeInvalidEscape, rawStart+bad, "valid escape sequence")
	}
	return out, nil
}

// ReadKey reads an object member name and the following ':'. The hash is
// computed while scanning; names with escapes are rehashed after decoding.
func (r *Reader) ReadKey() (name []byte, hash uint32, err error) {
	if !r.skipSpace() {
		return nil, 0, r.truncated("object key")
	}
	if r.data[r.pos] != '"' {
		return nil, 0, r.unexpected("object key")
	}
	rawStart := r.pos + 1
	raw, h, escaped, err := r.scanString()
	if err != nil {
		return nil, 0, err
	}
	name = raw
	if escaped {
		if name, err = r.unescape(raw, rawStart); err != nil {
			return nil, 0, err
		}
		h = engine.HashBytes(name)
	}
	if err := r.Expect(':'); err != nil {
		return nil, 0, err
	}
	return name, h, nil
}

// ReadStringBytes reads a string token and returns its decoded bytes without
// allocating.
func (r *Reader) ReadStringBytes() ([]byte, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k != KindString {
		return nil, r.Mismatch("string", k)
	}
	rawStart := r.pos + 1
	raw, _, escaped, err := r.scanString()
	if err != nil {
		return nil, err
	}
	if !escaped {
		return raw, nil
	}
	return r.unescape(raw, rawStart)
}

// ReadString reads a string token.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadStringBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadNull consumes a null literal if one is next and reports whether it did.
func (r *Reader) ReadNull() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	if k != KindNull {
		return false, nil
	}
	return true, r.literal("null")
}

// ReadBool reads true or false.
func (r *Reader) ReadBool() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	if k != KindBool {
		return false, r.Mismatch("boolean", k)
	}
	if r.data[r.pos] == 't' {
		return true, r.literal("true")
	}
	return false, r.literal("false")
}

func (r *Reader) literal(lit string) error {
	end := r.pos + len(lit)
	if end > len(r.data) {
		if string(r.data[r.pos:]) == lit[:len(r.data)-r.pos] {
			return r.truncated(lit)
		}
		return r.unexpected(lit)
	}
	if string(r.data[r.pos:end]) != lit {
		return r.unexpected(lit)
	}
	r.pos = end
	return nil
}

// ReadNumber returns the raw literal of the next number token after checking
// the JSON number grammar.
func (r *Reader) ReadNumber() ([]byte, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k != KindNumber {
		return nil, r.Mismatch("number", k)
	}
	end, bad := engine.ScanNumber(r.data, r.pos)
	if bad >= 0 {
		if bad >= len(r.data) {
			r.pos = bad
			return nil, r.truncated("digit")
		}
		return nil, r.errAt(CodeParseError, bad, "digit")
	}
	lit := r.data[r.pos:end]
	r.pos = end
	return lit, nil
}

// ReadInt reads an integer that must fit in bitSize bits.
func (r *Reader) ReadInt(bitSize int) (int64, error) {
	lit, err := r.ReadNumber()
	if err != nil {
		return 0, err
	}
	v, res := engine.ParseInt(lit, bitSize)
	return v, r.numResult(res, lit, fmt.Sprintf("int%d", bitSize))
}

// ReadUint reads a non-negative integer that must fit in bitSize bits.
func (r *Reader) ReadUint(bitSize int) (uint64, error) {
	lit, err := r.ReadNumber()
	if err != nil {
		return 0, err
	}
	v, res := engine.ParseUint(lit, bitSize)
	return v, r.numResult(res, lit, fmt.Sprintf("uint%d", bitSize))
}

func (r *Reader) numResult(res engine.NumResult, lit []byte, typ string) error {
	start := r.pos - len(lit)
	switch res {
	case engine.NumOverflow:
		return Issues{{Code: CodeOverflow, Message: i18n.T(CodeOverflow, nil), Hint: string(lit) + " does not fit " + typ, Offset: int64(start), Params: map[string]any{"type": typ}}}
	case engine.NumNotInteger:
		return Issues{{Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "expected integer, found " + string(lit), Offset: int64(start)}}
	}
	return nil
}

// ReadFloat reads a number as a float of the given bit size.
func (r *Reader) ReadFloat(bitSize int) (float64, error) {
	lit, err := r.ReadNumber()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(lit), bitSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, Issues{{Code: CodeOverflow, Message: i18n.T(CodeOverflow, nil), Hint: string(lit) + fmt.Sprintf(" does not fit float%d", bitSize), Offset: int64(r.pos - len(lit)), Cause: err}}
		}
		return 0, r.errAt(CodeParseError, r.pos-len(lit), "number")
	}
	return f, nil
}

// Skip consumes the next value, whatever its shape. String escapes are not
// validated.
func (r *Reader) Skip() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	switch k {
	case KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return err
		}
		for first := true; ; first = false {
			more, err := r.More('}', first)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			if !r.skipSpace() {
				return r.truncated("object key")
			}
			if r.data[r.pos] != '"' {
				return r.unexpected("object key")
			}
			if _, _, _, err := r.scanString(); err != nil {
				return err
			}
			if err := r.Expect(':'); err != nil {
				return err
			}
			if err := r.Skip(); err != nil {
				return err
			}
		}
	case KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return err
		}
		for first := true; ; first = false {
			more, err := r.More(']', first)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			if err := r.Skip(); err != nil {
				return err
			}
		}
	case KindString:
		_, _, _, err := r.scanString()
		return err
	case KindNumber:
		_, err := r.ReadNumber()
		return err
	case KindBool:
		_, err := r.ReadBool()
		return err
	case KindNull:
		_, err := r.ReadNull()
		return err
	}
	return r.unexpected("value")
}

// ReadRaw consumes the next value and returns its bytes verbatim.
func (r *Reader) ReadRaw() ([]byte, error) {
	if !r.skipSpace() {
		return nil, r.truncated("value")
	}
	start := r.pos
	if err := r.Skip(); err != nil {
		return nil, err
	}
	return r.data[start:r.pos], nil
}

// Mismatch builds an invalid_type issue at the current offset.
func (r *Reader) Mismatch(expected string, found Kind) error {
	return Issues{{
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Hint:    "expected " + expected + ", found " + found.String(),
		Offset:  int64(r.pos),
		Params:  map[string]any{"expected": expected, "found": found.String()},
	}}
}

// Errorf builds an issue with the given code at the current offset.
func (r *Reader) Errorf(code string, format string, args ...any) error {
	return Issues{{Code: code, Message: i18n.T(code, nil), Hint: fmt.Sprintf(format, args...), Offset: int64(r.pos)}}
}

func (r *Reader) errAt(code string, off int, expected string) error {
	return Issues{{Code: code, Message: i18n.T(code, nil), Hint: "expected " + expected, Offset: int64(off)}}
}

func (r *Reader) truncated(expected string) error {
	return r.errAt(CodeTruncated, len(r.data), expected)
}

func (r *Reader) unexpected(expected string) error {
	return Issues{{
		Code:    CodeParseError,
		Message: i18n.T(CodeParseError, nil),
		Hint:    fmt.Sprintf("unexpected %q, expected %s", r.data[r.pos], expected),
		Offset:  int64(r.pos),
	}}
}

func quoteByte(c byte) string { return "'" + string(c) + "'" }
