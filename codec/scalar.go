package codec

import (
	"reflect"

	"github.com/reoring/bindjson"
)

// Converters for the predeclared scalar types.
var (
	Bool    = Primitive(reflect.TypeFor[bool]())
	String  = Primitive(reflect.TypeFor[string]())
	Int     = Primitive(reflect.TypeFor[int]())
	Int32   = Primitive(reflect.TypeFor[int32]())
	Int64   = Primitive(reflect.TypeFor[int64]())
	Uint64  = Primitive(reflect.TypeFor[uint64]())
	Float32 = Primitive(reflect.TypeFor[float32]())
	Float64 = Primitive(reflect.TypeFor[float64]())
)

var predeclared = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.String:  reflect.TypeFor[string](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
}

type primitive struct {
	t     reflect.Type
	kind  reflect.Kind
	bits  int
	named bool
}

// Primitive returns the converter for a bool, string, integer or float kind,
// including named types such as `type Celsius float64`. Integers are range
// checked against the exact width of t.
func Primitive(t reflect.Type) bindjson.Converter {
	p := primitive{t: t, kind: t.Kind(), named: predeclared[t.Kind()] != t}
	switch p.kind {
	case reflect.Bool, reflect.String:
	default:
		p.bits = t.Bits()
	}
	return p
}

func (p primitive) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(p.t, v)
	if err != nil {
		return err
	}
	switch p.kind {
	case reflect.Bool:
		w.WriteBool(rv.Bool())
	case reflect.String:
		w.WriteString(rv.String())
	case reflect.Float32, reflect.Float64:
		return w.WriteFloat(rv.Float(), p.bits)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		w.WriteUint(rv.Uint())
	default:
		w.WriteInt(rv.Int())
	}
	return nil
}

func (p primitive) Decode(r *bindjson.Reader) (any, error) {
	switch p.kind {
	case reflect.Bool:
		b, err := r.ReadBool()
		if err != nil || !p.named {
			return b, err
		}
		return reflect.ValueOf(b).Convert(p.t).Interface(), nil
	case reflect.String:
		s, err := r.ReadString()
		if err != nil || !p.named {
			return s, err
		}
		return reflect.ValueOf(s).Convert(p.t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := r.ReadFloat(p.bits)
		if err != nil {
			return nil, err
		}
		if p.kind == reflect.Float64 && !p.named {
			return f, nil
		}
		rv := reflect.New(p.t).Elem()
		rv.SetFloat(f)
		return rv.Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := r.ReadUint(p.bits)
		if err != nil {
			return nil, err
		}
		rv := reflect.New(p.t).Elem()
		rv.SetUint(u)
		return rv.Interface(), nil
	default:
		n, err := r.ReadInt(p.bits)
		if err != nil {
			return nil, err
		}
		if !p.named {
			switch p.kind {
			case reflect.Int:
				return int(n), nil
			case reflect.Int64:
				return n, nil
			}
		}
		rv := reflect.New(p.t).Elem()
		rv.SetInt(n)
		return rv.Interface(), nil
	}
}
