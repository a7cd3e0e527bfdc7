package bindjson

import (
	"fmt"
	"reflect"

	"github.com/reoring/bindjson/i18n"
)

// Converter encodes and decodes values of one Go type. Decode returns a value
// whose dynamic type is exactly that type (or nil for null where the type
// admits it). Converters must be safe for concurrent use.
type Converter interface {
	Encode(w *Writer, v any) error
	Decode(r *Reader) (any, error)
}

// Object is implemented by self-describing values that encode themselves.
// The output must be a JSON object.
type Object interface {
	MarshalBindJSON(w *Writer) error
}

// ObjectDecoder is implemented by pointers to self-describing values. The
// decoder is positioned at the opening '{'.
type ObjectDecoder interface {
	UnmarshalBindJSON(r *Reader) error
}

// Func adapts typed encode and decode functions into a Converter.
func Func[T any](enc func(w *Writer, v T) error, dec func(r *Reader) (T, error)) Converter {
	return funcConverter[T]{enc: enc, dec: dec}
}

type funcConverter[T any] struct {
	enc func(*Writer, T) error
	dec func(*Reader) (T, error)
}

func (c funcConverter[T]) Encode(w *Writer, v any) error {
	if v == nil {
		w.WriteNull()
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return EncodeMismatch(reflect.TypeFor[T](), v)
	}
	return c.enc(w, t)
}

func (c funcConverter[T]) Decode(r *Reader) (any, error) {
	v, err := c.dec(r)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeMismatch reports a value handed to a converter of another type.
func EncodeMismatch(want reflect.Type, got any) error {
	return Issues{{
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Hint:    fmt.Sprintf("expected %v, got %T", want, got),
		Offset:  -1,
	}}
}
