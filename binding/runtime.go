package binding

import (
	"reflect"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/codec"
)

var (
	anyType           = reflect.TypeFor[any]()
	objectType        = reflect.TypeFor[bindjson.Object]()
	objectDecoderType = reflect.TypeFor[bindjson.ObjectDecoder]()
)

// dynamicConverter handles attributes declared as any: encoding resolves the
// runtime type, decoding produces the untyped representation.
type dynamicConverter struct{ t *Table }

func (c dynamicConverter) Encode(w *bindjson.Writer, v any) error {
	if v == nil {
		w.WriteNull()
		return nil
	}
	conv, err := c.t.converterFor(reflect.TypeOf(v))
	if err != nil {
		return err
	}
	return conv.Encode(w, v)
}

func (c dynamicConverter) Decode(r *bindjson.Reader) (any, error) {
	return codec.DecodeDynamic(r, c.t.settings.NumberMode)
}

func isSelfDescribing(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false
	}
	pt := reflect.PointerTo(t)
	return (t.Implements(objectType) || pt.Implements(objectType)) && pt.Implements(objectDecoderType)
}

// selfConverter delegates to bindjson.Object implementations and checks that
// they produce and consume objects.
type selfConverter struct{ t reflect.Type }

func (c selfConverter) Encode(w *bindjson.Writer, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.t {
		return bindjson.EncodeMismatch(c.t, v)
	}
	obj, ok := v.(bindjson.Object)
	if !ok {
		p := reflect.New(c.t)
		p.Elem().Set(rv)
		obj = p.Interface().(bindjson.Object)
	}
	mark := w.Len()
	if err := obj.MarshalBindJSON(w); err != nil {
		w.Truncate(mark)
		return err
	}
	out := w.Bytes()[mark:]
	if len(out) == 0 || out[0] != '{' {
		w.Truncate(mark)
		return bindjson.Issues{{
			Code:    bindjson.CodeInvalidType,
			Message: "self-describing value must encode a JSON object",
			Hint:    c.t.String() + " did not start its output with '{'",
			Offset:  -1,
		}}
	}
	return nil
}

func (c selfConverter) Decode(r *bindjson.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == bindjson.KindNull {
		_, err := r.ReadNull()
		return nil, err
	}
	if k != bindjson.KindBeginObject {
		return nil, r.Mismatch("object", k)
	}
	p := reflect.New(c.t)
	if err := p.Interface().(bindjson.ObjectDecoder).UnmarshalBindJSON(r); err != nil {
		return nil, err
	}
	return p.Elem().Interface(), nil
}
