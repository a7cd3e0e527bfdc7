package bindjson

import (
	"io"
	"math"
	"strconv"

	"github.com/reoring/bindjson/i18n"
	"github.com/reoring/bindjson/internal/engine"
)

// Writer accumulates encoded JSON in a growable buffer. It is not safe for
// concurrent use; Reset it to reuse the buffer for the next document.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Reset empties the buffer, keeping its capacity.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// Len returns the number of buffered bytes.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the buffered output. The slice is invalidated by the next
// write or Reset.
func (w *Writer) Bytes() []byte { return w.buf }

// Truncate discards everything after the first n bytes.
func (w *Writer) Truncate(n int) { w.buf = w.buf[:n] }

// WriteTo flushes the buffer to dst and resets it.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf)
	w.buf = w.buf[:0]
	return int64(n), err
}

// WriteToken appends one structural byte ('{', '}', '[', ']', ',' or ':').
func (w *Writer) WriteToken(c byte) { w.buf = append(w.buf, c) }

// WriteNull appends the null literal.
func (w *Writer) WriteNull() { w.buf = append(w.buf, "null"...) }

// WriteBool appends true or false.
func (w *Writer) WriteBool(b bool) { w.buf = strconv.AppendBool(w.buf, b) }

// WriteInt appends a signed integer.
func (w *Writer) WriteInt(v int64) { w.buf = strconv.AppendInt(w.buf, v, 10) }

// WriteUint appends an unsigned integer.
func (w *Writer) WriteUint(v uint64) { w.buf = strconv.AppendUint(w.buf, v, 10) }

// WriteFloat appends the shortest round-trip form of f. NaN and infinities
// have no JSON representation and are rejected.
func (w *Writer) WriteFloat(f float64, bitSize int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Issues{{Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "unsupported float value " + strconv.FormatFloat(f, 'g', -1, bitSize), Offset: -1}}
	}
	w.buf = engine.AppendFloat(w.buf, f, bitSize)
	return nil
}

// WriteString appends s as a quoted, escaped JSON string.
func (w *Writer) WriteString(s string) { w.buf = engine.AppendQuoted(w.buf, s) }

// WriteRaw appends pre-encoded bytes verbatim.
func (w *Writer) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }

// QuotedName returns the pre-encoded `"name":` prefix for an object member.
func QuotedName(name string) []byte {
	return append(engine.AppendQuoted(nil, name), ':')
}
