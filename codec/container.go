package codec

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/reoring/bindjson"
)

type sliceConverter struct {
	t    reflect.Type
	elem bindjson.Converter
}

// Slice encodes a slice of type t as a JSON array. A nil slice encodes as
// null; null decodes to a nil slice and [] to an empty one.
func Slice(t reflect.Type, elem bindjson.Converter) bindjson.Converter {
	return sliceConverter{t: t, elem: elem}
}

func (c sliceConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		w.WriteNull()
		return nil
	}
	return encodeElements(w, rv, c.elem)
}

func encodeElements(w *bindjson.Writer, rv reflect.Value, elem bindjson.Converter) error {
	w.WriteToken('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			w.WriteToken(',')
		}
		if err := elem.Encode(w, rv.Index(i).Interface()); err != nil {
			return bindjson.Rebase(err, strconv.Itoa(i))
		}
	}
	w.WriteToken(']')
	return nil
}

func (c sliceConverter) Decode(r *bindjson.Reader) (any, error) {
	if null, err := r.ReadNull(); err != nil || null {
		return reflect.Zero(c.t).Interface(), err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(c.t, 0, 4)
	for i := 0; ; i++ {
		more, err := r.More(']', i == 0)
		if err != nil {
			return nil, err
		}
		if !more {
			return out.Interface(), nil
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
		out = reflect.Append(out, reflect.Zero(c.t.Elem()))
		if err := Assign(out.Index(i), v); err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
	}
}

type arrayConverter struct {
	t    reflect.Type
	elem bindjson.Converter
}

// Array encodes a fixed-length array. Decoding accepts at most Len elements;
// missing trailing elements keep their zero value.
func Array(t reflect.Type, elem bindjson.Converter) bindjson.Converter {
	return arrayConverter{t: t, elem: elem}
}

func (c arrayConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	return encodeElements(w, rv, c.elem)
}

func (c arrayConverter) Decode(r *bindjson.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k != bindjson.KindBeginArray {
		return nil, r.Mismatch("array", k)
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.New(c.t).Elem()
	for i := 0; ; i++ {
		more, err := r.More(']', i == 0)
		if err != nil {
			return nil, err
		}
		if !more {
			return out.Interface(), nil
		}
		if i >= c.t.Len() {
			return nil, r.Errorf(bindjson.CodeInvalidType, "array of at most %d elements", c.t.Len())
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
		if err := Assign(out.Index(i), v); err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
	}
}

type setConverter struct {
	t    reflect.Type
	elem bindjson.Converter
}

// Set encodes map[K]struct{} as a JSON array of its members, sorted by their
// encoded form so output is deterministic.
func Set(t reflect.Type, elem bindjson.Converter) bindjson.Converter {
	return setConverter{t: t, elem: elem}
}

func (c setConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		w.WriteNull()
		return nil
	}
	members := make([][]byte, 0, rv.Len())
	tmp := bindjson.NewWriter(32)
	for it := rv.MapRange(); it.Next(); {
		tmp.Reset()
		if err := c.elem.Encode(tmp, it.Key().Interface()); err != nil {
			return err
		}
		members = append(members, bytes.Clone(tmp.Bytes()))
	}
	slices.SortFunc(members, bytes.Compare)
	w.WriteToken('[')
	for i, m := range members {
		if i > 0 {
			w.WriteToken(',')
		}
		w.WriteRaw(m)
	}
	w.WriteToken(']')
	return nil
}

func (c setConverter) Decode(r *bindjson.Reader) (any, error) {
	if null, err := r.ReadNull(); err != nil || null {
		return reflect.Zero(c.t).Interface(), err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(c.t)
	present := reflect.Zero(c.t.Elem())
	for i := 0; ; i++ {
		more, err := r.More(']', i == 0)
		if err != nil {
			return nil, err
		}
		if !more {
			return out.Interface(), nil
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
		key := reflect.New(c.t.Key()).Elem()
		if err := Assign(key, v); err != nil {
			return nil, bindjson.Rebase(err, strconv.Itoa(i))
		}
		out.SetMapIndex(key, present)
	}
}

// keyCodec converts map keys to and from member names.
type keyCodec struct {
	t    reflect.Type
	text bool
}

func newKeyCodec(t reflect.Type) (keyCodec, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) && t.Implements(textMarshalerType) {
		return keyCodec{t: t, text: true}, nil
	}
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return keyCodec{t: t}, nil
	}
	return keyCodec{}, Unresolved(t, "map keys must be strings, integers or text marshalers")
}

func (k keyCodec) format(v reflect.Value) (string, error) {
	if k.text {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	default:
		return strconv.FormatInt(v.Int(), 10), nil
	}
}

func (k keyCodec) parse(s []byte) (reflect.Value, error) {
	out := reflect.New(k.t).Elem()
	if k.text {
		err := out.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText(s)
		return out, err
	}
	switch k.t.Kind() {
	case reflect.String:
		out.SetString(string(s))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(string(s), 10, k.t.Bits())
		if err != nil {
			return out, err
		}
		out.SetUint(u)
	default:
		n, err := strconv.ParseInt(string(s), 10, k.t.Bits())
		if err != nil {
			return out, err
		}
		out.SetInt(n)
	}
	return out, nil
}

type mapConverter struct {
	t    reflect.Type
	key  keyCodec
	elem bindjson.Converter
}

// Map returns the converter for a map type whose keys are strings, integers
// or text marshalers. Members are encoded in sorted key order.
func Map(t reflect.Type, elem bindjson.Converter) (bindjson.Converter, error) {
	key, err := newKeyCodec(t.Key())
	if err != nil {
		return nil, err
	}
	return mapConverter{t: t, key: key, elem: elem}, nil
}

func (c mapConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		w.WriteNull()
		return nil
	}
	type member struct {
		name string
		val  reflect.Value
	}
	members := make([]member, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		name, err := c.key.format(it.Key())
		if err != nil {
			return invalidFormat(-1, fmt.Sprintf("map key %v", it.Key()), err)
		}
		members = append(members, member{name: name, val: it.Value()})
	}
	slices.SortFunc(members, func(a, b member) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	w.WriteToken('{')
	for i, m := range members {
		if i > 0 {
			w.WriteToken(',')
		}
		w.WriteString(m.name)
		w.WriteToken(':')
		if err := c.elem.Encode(w, m.val.Interface()); err != nil {
			return bindjson.Rebase(err, m.name)
		}
	}
	w.WriteToken('}')
	return nil
}

func (c mapConverter) Decode(r *bindjson.Reader) (any, error) {
	if null, err := r.ReadNull(); err != nil || null {
		return reflect.Zero(c.t).Interface(), err
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(c.t)
	for first := true; ; first = false {
		more, err := r.More('}', first)
		if err != nil {
			return nil, err
		}
		if !more {
			return out.Interface(), nil
		}
		off := r.Offset()
		name, _, err := r.ReadKey()
		if err != nil {
			return nil, err
		}
		key, err := c.key.parse(name)
		if err != nil {
			return nil, invalidFormat(off, fmt.Sprintf("map key %q for %v", name, c.t.Key()), err)
		}
		segment := string(name)
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, bindjson.Rebase(err, segment)
		}
		ev := reflect.New(c.t.Elem()).Elem()
		if err := Assign(ev, v); err != nil {
			return nil, bindjson.Rebase(err, segment)
		}
		out.SetMapIndex(key, ev)
	}
}

type ptrConverter struct {
	t    reflect.Type
	elem bindjson.Converter
}

// Ptr encodes *T through the converter of T. A nil pointer encodes as null
// and null decodes to a nil pointer.
func Ptr(t reflect.Type, elem bindjson.Converter) bindjson.Converter {
	return ptrConverter{t: t, elem: elem}
}

func (c ptrConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		w.WriteNull()
		return nil
	}
	return c.elem.Encode(w, rv.Elem().Interface())
}

func (c ptrConverter) Decode(r *bindjson.Reader) (any, error) {
	if null, err := r.ReadNull(); err != nil || null {
		return reflect.Zero(c.t).Interface(), err
	}
	v, err := c.elem.Decode(r)
	if err != nil {
		return nil, err
	}
	p := reflect.New(c.t.Elem())
	if err := Assign(p.Elem(), v); err != nil {
		return nil, err
	}
	return p.Interface(), nil
}
