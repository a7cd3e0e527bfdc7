package codec

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"reflect"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/internal/engine"
)

// UUID encodes uuid.UUID in its canonical 36-character form.
var UUID = bindjson.Func(
	func(w *bindjson.Writer, u uuid.UUID) error {
		w.WriteString(u.String())
		return nil
	},
	func(r *bindjson.Reader) (uuid.UUID, error) {
		off := r.Offset()
		b, err := r.ReadStringBytes()
		if err != nil {
			return uuid.Nil, err
		}
		u, err := uuid.ParseBytes(b)
		if err != nil {
			return uuid.Nil, invalidFormat(off, "invalid UUID", err)
		}
		return u, nil
	},
)

// Number passes json.Number literals through unchanged. An empty Number
// encodes as 0.
var Number = bindjson.Func(
	func(w *bindjson.Writer, n json.Number) error {
		if n == "" {
			w.WriteRaw([]byte{'0'})
			return nil
		}
		lit := []byte(n)
		if end, bad := engine.ScanNumber(lit, 0); bad >= 0 || end != len(lit) {
			return invalidFormat(-1, "invalid number literal "+string(n), nil)
		}
		w.WriteRaw(lit)
		return nil
	},
	func(r *bindjson.Reader) (json.Number, error) {
		lit, err := r.ReadNumber()
		if err != nil {
			return "", err
		}
		return json.Number(lit), nil
	},
)

// Raw embeds pre-encoded JSON. An empty message encodes as null; decoding
// copies the value's bytes verbatim.
var Raw bindjson.Converter = rawConverter{}

type rawConverter struct{}

func (rawConverter) Encode(w *bindjson.Writer, v any) error {
	raw, ok := v.(json.RawMessage)
	if !ok && v != nil {
		return bindjson.EncodeMismatch(rawType, v)
	}
	if len(raw) == 0 {
		w.WriteNull()
		return nil
	}
	if !json.Valid(raw) {
		return invalidFormat(-1, "raw message is not valid JSON", nil)
	}
	w.WriteRaw(raw)
	return nil
}

func (rawConverter) Decode(r *bindjson.Reader) (any, error) {
	b, err := r.ReadRaw()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.Clone(b)), nil
}

type bytesConverter struct{ t reflect.Type }

// Bytes encodes byte slices (of type t) as standard base64 strings.
func Bytes(t reflect.Type) bindjson.Converter { return bytesConverter{t: t} }

func (c bytesConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		w.WriteNull()
		return nil
	}
	w.WriteString(base64.StdEncoding.EncodeToString(rv.Bytes()))
	return nil
}

func (c bytesConverter) Decode(r *bindjson.Reader) (any, error) {
	if null, err := r.ReadNull(); err != nil || null {
		return reflect.Zero(c.t).Interface(), err
	}
	off := r.Offset()
	b, err := r.ReadStringBytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(out, b)
	if err != nil {
		return nil, invalidFormat(off, "invalid base64", err)
	}
	return reflect.ValueOf(out[:n]).Convert(c.t).Interface(), nil
}

type textConverter struct{ t reflect.Type }

// Text encodes a type implementing encoding.TextMarshaler (with a pointer
// implementing encoding.TextUnmarshaler) as a JSON string.
func Text(t reflect.Type) bindjson.Converter { return textConverter{t: t} }

func (c textConverter) Encode(w *bindjson.Writer, v any) error {
	if _, err := checkType(c.t, v); err != nil {
		return err
	}
	b, err := v.(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return invalidFormat(-1, "MarshalText failed", err)
	}
	w.WriteString(string(b))
	return nil
}

func (c textConverter) Decode(r *bindjson.Reader) (any, error) {
	off := r.Offset()
	b, err := r.ReadStringBytes()
	if err != nil {
		return nil, err
	}
	p := reflect.New(c.t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText(b); err != nil {
		return nil, invalidFormat(off, "UnmarshalText failed for "+c.t.String(), err)
	}
	return p.Elem().Interface(), nil
}
