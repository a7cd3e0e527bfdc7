package binding

import (
	"reflect"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/i18n"
)

// polymorphic maps discriminator values to the concrete subtypes of an
// interface.
type polymorphic struct {
	iface     reflect.Type
	key       string
	quotedKey []byte
	signature bool
	byName    map[string]*subtype
	byType    map[reflect.Type]*subtype
	fallback  *subtype
	table     *Table
}

// subtype is one concrete implementation. typ is the dynamic type stored in
// the interface (T or *T); desc describes T.
type subtype struct {
	name string
	typ  reflect.Type
	ptr  bool
	desc *Descriptor
}

// wrap converts a decoded T into the dynamic type held by the interface.
func (s *subtype) wrap(v any) (any, error) {
	if !s.ptr {
		return v, nil
	}
	p := reflect.New(s.desc.typ)
	if v != nil {
		p.Elem().Set(reflect.ValueOf(v))
	}
	return p.Interface(), nil
}

func (p *polymorphic) lookup(name string, off int) (*subtype, error) {
	if s, ok := p.byName[name]; ok {
		return s, nil
	}
	return nil, bindjson.Issues{{
		Path:    bindjson.Pointer(p.key),
		Code:    bindjson.CodeDiscriminatorUnknown,
		Message: i18n.T(bindjson.CodeDiscriminatorUnknown, nil),
		Hint:    "no subtype of " + p.iface.String() + " named " + name,
		Offset:  int64(off),
		Params:  map[string]any{"type": p.iface.String(), "name": name},
	}}
}

// polyConverter encodes interface values with a discriminator and decodes
// them by dispatching on it.
type polyConverter struct {
	p         *polymorphic
	signature bool
}

func (c polyConverter) Encode(w *bindjson.Writer, v any) error {
	if v == nil {
		w.WriteNull()
		return nil
	}
	rt := reflect.TypeOf(v)
	s, ok := c.p.byType[rt]
	if !ok {
		return c.encodeUnregistered(w, v, rt)
	}
	payload := v
	if s.ptr {
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			w.WriteNull()
			return nil
		}
		payload = rv.Elem().Interface()
	}
	if !c.signature {
		return s.desc.encode(w, payload, nil, "")
	}
	return s.desc.encode(w, payload, c.p.quotedKey, s.name)
}

// encodeUnregistered handles implementations that were never registered as
// subtypes: they are described structurally and tagged with their Go name.
func (c polyConverter) encodeUnregistered(w *bindjson.Writer, v any, rt reflect.Type) error {
	conv, err := c.p.table.converterFor(rt)
	if err != nil {
		return err
	}
	elem := rt
	payload := v
	if rt.Kind() == reflect.Pointer {
		elem = rt.Elem()
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			w.WriteNull()
			return nil
		}
		payload = rv.Elem().Interface()
	}
	ec, err := c.p.table.converterFor(elem)
	if err != nil {
		return err
	}
	oc, ok := ec.(objectConverter)
	if !ok || !c.signature {
		return conv.Encode(w, v)
	}
	return oc.d.encode(w, payload, c.p.quotedKey, oc.d.name)
}

func (c polyConverter) Decode(r *bindjson.Reader) (any, error) {
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
	start := r.Position()
	if err := r.BeginObject(); err != nil {
		return nil, err
	}

	// fast path: discriminator is the first member
	more, err := r.More('}', true)
	if err != nil {
		return nil, err
	}
	if more {
		key, _, err := r.ReadKey()
		if err != nil {
			return nil, err
		}
		if string(key) == c.p.key {
			off := r.Offset()
			name, err := r.ReadString()
			if err != nil {
				return nil, bindjson.Rebase(err, c.p.key)
			}
			s, err := c.p.lookup(name, off)
			if err != nil {
				return nil, err
			}
			v, err := s.desc.decodeMembers(r, s.desc.newState(), false, c.p.key)
			if err != nil {
				return nil, err
			}
			return s.wrap(v)
		}
	}

	// slow path: find the discriminator anywhere, then decode from the start
	r.Rewind(start)
	name, off, found, err := c.scan(r)
	if err != nil {
		return nil, err
	}
	var s *subtype
	switch {
	case found:
		if s, err = c.p.lookup(name, off); err != nil {
			return nil, err
		}
	case c.p.fallback != nil:
		s = c.p.fallback
	default:
		return nil, bindjson.Issues{{
			Code:    bindjson.CodeDiscriminatorMissing,
			Message: i18n.T(bindjson.CodeDiscriminatorMissing, nil),
			Hint:    "object for " + c.p.iface.String() + " has no " + c.p.key + " member and no default subtype",
			Offset:  int64(r.Offset()),
			Params:  map[string]any{"type": c.p.iface.String()},
		}}
	}
	v, err := s.desc.decode(r, c.p.key)
	if err != nil {
		return nil, err
	}
	return s.wrap(v)
}

// scan looks for the discriminator among the members of the object at the
// current position and restores the position afterwards.
func (c polyConverter) scan(r *bindjson.Reader) (name string, off int, found bool, err error) {
	start := r.Position()
	defer r.Rewind(start)
	if err := r.BeginObject(); err != nil {
		return "", 0, false, err
	}
	for first := true; ; first = false {
		more, err := r.More('}', first)
		if err != nil {
			return "", 0, false, err
		}
		if !more {
			return "", 0, false, nil
		}
		key, _, err := r.ReadKey()
		if err != nil {
			return "", 0, false, err
		}
		if string(key) == c.p.key {
			off := r.Offset()
			name, err := r.ReadString()
			if err != nil {
				return "", 0, false, bindjson.Rebase(err, c.p.key)
			}
			return name, off, true, nil
		}
		if err := r.Skip(); err != nil {
			return "", 0, false, err
		}
	}
}
