package binding

import (
	"reflect"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/i18n"
)

// objectConverter encodes and decodes values through a Descriptor.
type objectConverter struct{ d *Descriptor }

func (c objectConverter) Encode(w *bindjson.Writer, v any) error {
	return c.d.encode(w, v, nil, "")
}

func (c objectConverter) Decode(r *bindjson.Reader) (any, error) {
	return c.d.decode(r, "")
}

// encode writes v as an object. When discKey is non-nil the discriminator
// member is written first with typeName as its value.
func (d *Descriptor) encode(w *bindjson.Writer, v any, discKey []byte, typeName string) error {
	if v == nil {
		w.WriteNull()
		return nil
	}
	owner, ok := d.addr(v)
	if !ok {
		return bindjson.EncodeMismatch(d.typ, v)
	}
	if d.preferArray && discKey == nil {
		return d.encodeArray(w, owner)
	}
	w.WriteToken('{')
	first := true
	if discKey != nil {
		w.WriteRaw(discKey)
		w.WriteString(typeName)
		first = false
	}
	for _, a := range d.attrs {
		if a.ignore || a.get == nil {
			continue
		}
		val := a.get(owner)
		if a.omitEmpty && isEmptyValue(val) {
			continue
		}
		if !first {
			w.WriteToken(',')
		}
		first = false
		w.WriteRaw(a.quoted)
		if err := a.conv.Encode(w, val); err != nil {
			return bindjson.Rebase(err, a.name)
		}
	}
	w.WriteToken('}')
	return nil
}

func (d *Descriptor) encodeArray(w *bindjson.Writer, owner any) error {
	w.WriteToken('[')
	for i, a := range d.positional {
		if i > 0 {
			w.WriteToken(',')
		}
		if a.get == nil {
			w.WriteNull()
			continue
		}
		if err := a.conv.Encode(w, a.get(owner)); err != nil {
			return bindjson.Rebase(err, a.name)
		}
	}
	w.WriteToken(']')
	return nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Interface, reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

// decodeState carries one in-flight decode of a descriptor.
type decodeState struct {
	target   any
	args     []any
	pending  []pendingSet
	observed uint64
}

type pendingSet struct {
	attr  *Attribute
	value any
}

func (d *Descriptor) newState() *decodeState {
	if d.plan == ConstructorArgs {
		return &decodeState{args: make([]any, len(d.creator.Params))}
	}
	return &decodeState{target: d.newTarget()}
}

func (st *decodeState) assign(a *Attribute, v any) error {
	switch {
	case st.args != nil && a.param >= 0:
		st.args[a.param] = v
	case st.args != nil:
		st.pending = append(st.pending, pendingSet{attr: a, value: v})
	default:
		return a.set(st.target, v)
	}
	return nil
}

// decode reads an object (or, when enabled, the array form). skipKey names
// an extra member to skip, used for discriminators with a custom key.
func (d *Descriptor) decode(r *bindjson.Reader, skipKey string) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case bindjson.KindNull:
		_, err := r.ReadNull()
		return nil, err
	case bindjson.KindBeginArray:
		if d.arrayFormat {
			return d.decodeArray(r)
		}
	case bindjson.KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		return d.decodeMembers(r, d.newState(), true, skipKey)
	}
	return nil, r.Mismatch("object", k)
}

// decodeMembers reads the remaining members of an object whose '{' has been
// consumed. first is false when a member was already read by the caller.
func (d *Descriptor) decodeMembers(r *bindjson.Reader, st *decodeState, first bool, skipKey string) (any, error) {
	for ; ; first = false {
		more, err := r.More('}', first)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		off := r.Offset()
		key, h, err := r.ReadKey()
		if err != nil {
			return nil, err
		}
		slot := d.index.lookup(key, h, d.attrs)
		if slot < 0 {
			if string(key) == d.discKey || (skipKey != "" && string(key) == skipKey) || d.unknown == bindjson.UnknownIgnore {
				if err := r.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			name := string(key)
			return nil, bindjson.Issues{{
				Path:    bindjson.Pointer(name),
				Code:    bindjson.CodeUnknownKey,
				Message: i18n.T(bindjson.CodeUnknownKey, nil),
				Hint:    "no attribute " + name + " on " + d.name,
				Offset:  int64(off),
				Params:  map[string]any{"key": name, "type": d.name},
			}}
		}
		if err := d.decodeAttr(r, st, d.attrs[slot]); err != nil {
			return nil, err
		}
	}
	return d.complete(st)
}

func (d *Descriptor) decodeAttr(r *bindjson.Reader, st *decodeState, a *Attribute) error {
	if a.ignore || !a.decodable() {
		return r.Skip()
	}
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k == bindjson.KindNull {
		if !a.nullable {
			return bindjson.Issues{{
				Path:    bindjson.Pointer(a.name),
				Code:    bindjson.CodeNotNullable,
				Message: i18n.T(bindjson.CodeNotNullable, nil),
				Hint:    "attribute " + a.name + " of " + d.name + " is not nullable",
				Offset:  int64(r.Offset()),
			}}
		}
		if _, err := r.ReadNull(); err != nil {
			return err
		}
		st.observed |= a.bit
		return bindjson.Rebase(st.assign(a, nil), a.name)
	}
	v, err := a.conv.Decode(r)
	if err != nil {
		return bindjson.Rebase(err, a.name)
	}
	st.observed |= a.bit
	return bindjson.Rebase(st.assign(a, v), a.name)
}

// decodeArray reads the positional form: exactly one element per
// non-ignored attribute, in declaration order.
func (d *Descriptor) decodeArray(r *bindjson.Reader) (any, error) {
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	st := d.newState()
	for i, a := range d.positional {
		more, err := r.More(']', i == 0)
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, r.Errorf(bindjson.CodeParseError, "%d elements for %s in array form, found %d", len(d.positional), d.name, i)
		}
		if err := d.decodeAttr(r, st, a); err != nil {
			return nil, err
		}
	}
	more, err := r.More(']', len(d.positional) == 0)
	if err != nil {
		return nil, err
	}
	if more {
		return nil, r.Errorf(bindjson.CodeParseError, "%d elements for %s in array form", len(d.positional), d.name)
	}
	return d.complete(st)
}

// complete validates mandatory attributes and runs the construction plan.
func (d *Descriptor) complete(st *decodeState) (any, error) {
	if err := d.validate(st.observed); err != nil {
		return nil, err
	}
	if d.plan != ConstructorArgs {
		v, err := d.finish(st.target)
		if err != nil {
			return nil, d.constructionIssue(err)
		}
		return v, nil
	}
	v, err := d.creator.New(st.args)
	if err != nil {
		return nil, d.constructionIssue(err)
	}
	if reflect.TypeOf(v) != d.typ {
		return nil, d.constructionIssue(bindjson.EncodeMismatch(d.typ, v))
	}
	if len(st.pending) == 0 {
		return v, nil
	}
	p := reflect.New(d.typ)
	p.Elem().Set(reflect.ValueOf(v))
	owner := p.Interface()
	for _, ps := range st.pending {
		if err := ps.attr.set(owner, ps.value); err != nil {
			return nil, bindjson.Rebase(err, ps.attr.name)
		}
	}
	return p.Elem().Interface(), nil
}

func (d *Descriptor) constructionIssue(err error) error {
	if _, ok := bindjson.AsIssues(err); ok {
		return err
	}
	return bindjson.Issues{{
		Code:    bindjson.CodeConstruction,
		Message: i18n.T(bindjson.CodeConstruction, nil),
		Hint:    "constructing " + d.name + ": " + err.Error(),
		Cause:   err,
		Offset:  -1,
		Params:  map[string]any{"type": d.name},
	}}
}
