// Package codec provides the built-in converters: primitives, well-known
// types (time, duration, UUID, decimal, json.Number, raw JSON, byte
// slices, text-marshaling types and enums) and the generic containers
// (slices, arrays, sets, maps, ordered maps and pointers).
package codec

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/i18n"
)

// Resolver returns the converter for an element type. Containers call it for
// their element and key types so the caller's full resolution order applies.
type Resolver func(reflect.Type) (bindjson.Converter, error)

var (
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	uuidType            = reflect.TypeFor[uuid.UUID]()
	decimalType         = reflect.TypeFor[Decimal]()
	numberType          = reflect.TypeFor[json.Number]()
	rawType             = reflect.TypeFor[json.RawMessage]()
	emptyStructType     = reflect.TypeFor[struct{}]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	orderedMapType      = reflect.TypeFor[orderedMap]()
)

// Builtin returns the built-in converter for t. ok is false when t is not a
// built-in shape (structs, interfaces and unsupported kinds); err reports a
// built-in shape whose element types cannot be resolved.
func Builtin(t reflect.Type, resolve Resolver) (c bindjson.Converter, ok bool, err error) {
	switch t {
	case timeType:
		return Time, true, nil
	case durationType:
		return Duration, true, nil
	case uuidType:
		return UUID, true, nil
	case decimalType:
		return DecimalNumber, true, nil
	case numberType:
		return Number, true, nil
	case rawType:
		return Raw, true, nil
	}
	if t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(orderedMapType) {
		om := reflect.New(t).Interface().(orderedMap)
		elem, err := resolve(om.valueType())
		if err != nil {
			return nil, false, err
		}
		return orderedMapConverter{t: t, elem: elem}, true, nil
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface &&
		t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return Text(t), true, nil
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Primitive(t), true, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !reflect.PointerTo(t.Elem()).Implements(textUnmarshalerType) {
			return Bytes(t), true, nil
		}
		elem, err := resolve(t.Elem())
		if err != nil {
			return nil, false, err
		}
		return Slice(t, elem), true, nil
	case reflect.Array:
		elem, err := resolve(t.Elem())
		if err != nil {
			return nil, false, err
		}
		return Array(t, elem), true, nil
	case reflect.Map:
		if t.Elem() == emptyStructType {
			elem, err := resolve(t.Key())
			if err != nil {
				return nil, false, err
			}
			return Set(t, elem), true, nil
		}
		key, err := newKeyCodec(t.Key())
		if err != nil {
			return nil, false, err
		}
		elem, err := resolve(t.Elem())
		if err != nil {
			return nil, false, err
		}
		return mapConverter{t: t, key: key, elem: elem}, true, nil
	case reflect.Pointer:
		elem, err := resolve(t.Elem())
		if err != nil {
			return nil, false, err
		}
		return Ptr(t, elem), true, nil
	}
	return nil, false, nil
}

// Assign stores a decoded value into dst. nil stores the zero value; values
// of a different named type with the same kind are converted.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	st := src.Type()
	switch {
	case st.AssignableTo(dst.Type()):
		dst.Set(src)
	case st.Kind() == dst.Kind() && st.ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return bindjson.Issues{{
			Code:    bindjson.CodeInvalidType,
			Message: i18n.T(bindjson.CodeInvalidType, nil),
			Hint:    fmt.Sprintf("cannot assign %v to %v", st, dst.Type()),
			Offset:  -1,
		}}
	}
	return nil
}

// Unresolved reports a type no converter exists for.
func Unresolved(t reflect.Type, why string) error {
	return bindjson.Issues{{
		Code:    bindjson.CodeUnresolvedConverter,
		Message: i18n.T(bindjson.CodeUnresolvedConverter, nil),
		Hint:    fmt.Sprintf("%v: %s", t, why),
		Offset:  -1,
		Params:  map[string]any{"type": t.String()},
	}}
}

func invalidFormat(off int, hint string, cause error) error {
	return bindjson.Issues{{
		Code:    bindjson.CodeInvalidFormat,
		Message: i18n.T(bindjson.CodeInvalidFormat, nil),
		Hint:    hint,
		Cause:   cause,
		Offset:  int64(off),
	}}
}

// checkType verifies that v holds exactly t, unwrapping it for encoding.
func checkType(t reflect.Type, v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != t {
		return reflect.Value{}, bindjson.EncodeMismatch(t, v)
	}
	return rv, nil
}
