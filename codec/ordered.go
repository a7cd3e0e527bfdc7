package codec

import (
	"reflect"
	"slices"

	"github.com/reoring/bindjson"
)

// OrderedMap is a string-keyed map that remembers insertion order. It is
// encoded as a JSON object whose members appear in that order, and decoding
// keeps the document order.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: map[string]V{}}
}

// Set stores v under k. A new key is appended; an existing key keeps its
// position.
func (m *OrderedMap[V]) Set(k string, v V) {
	if m.values == nil {
		m.values = map[string]V{}
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value for k.
func (m *OrderedMap[V]) Get(k string) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Delete removes k.
func (m *OrderedMap[V]) Delete(k string) {
	if _, ok := m.values[k]; !ok {
		return
	}
	delete(m.values, k)
	m.keys = slices.DeleteFunc(m.keys, func(s string) bool { return s == k })
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string { return slices.Clone(m.keys) }

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int { return len(m.keys) }

// orderedMap lets the converter drive any OrderedMap instantiation.
type orderedMap interface {
	orderedKeys() []string
	valueOf(k string) any
	setValue(k string, v any) error
	valueType() reflect.Type
}

func (m *OrderedMap[V]) orderedKeys() []string { return m.keys }

func (m *OrderedMap[V]) valueOf(k string) any { return m.values[k] }

func (m *OrderedMap[V]) setValue(k string, v any) error {
	if x, ok := v.(V); ok {
		m.Set(k, x)
		return nil
	}
	ev := reflect.New(m.valueType()).Elem()
	if err := Assign(ev, v); err != nil {
		return err
	}
	m.Set(k, ev.Interface().(V))
	return nil
}

func (m *OrderedMap[V]) valueType() reflect.Type { return reflect.TypeFor[V]() }

type orderedMapConverter struct {
	t    reflect.Type
	elem bindjson.Converter
}

func (c orderedMapConverter) Encode(w *bindjson.Writer, v any) error {
	rv, err := checkType(c.t, v)
	if err != nil {
		return err
	}
	p := reflect.New(c.t)
	p.Elem().Set(rv)
	om := p.Interface().(orderedMap)
	w.WriteToken('{')
	for i, k := range om.orderedKeys() {
		if i > 0 {
			w.WriteToken(',')
		}
		w.WriteString(k)
		w.WriteToken(':')
		if err := c.elem.Encode(w, om.valueOf(k)); err != nil {
			return bindjson.Rebase(err, k)
		}
	}
	w.WriteToken('}')
	return nil
}

func (c orderedMapConverter) Decode(r *bindjson.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k != bindjson.KindBeginObject {
		return nil, r.Mismatch("object", k)
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	p := reflect.New(c.t)
	om := p.Interface().(orderedMap)
	for first := true; ; first = false {
		more, err := r.More('}', first)
		if err != nil {
			return nil, err
		}
		if !more {
			return p.Elem().Interface(), nil
		}
		name, _, err := r.ReadKey()
		if err != nil {
			return nil, err
		}
		key := string(name)
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, bindjson.Rebase(err, key)
		}
		if err := om.setValue(key, v); err != nil {
			return nil, bindjson.Rebase(err, key)
		}
	}
}

// OrderedMapValue reports whether t is an OrderedMap instantiation and
// returns its value type.
func OrderedMapValue(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !reflect.PointerTo(t).Implements(orderedMapType) {
		return nil, false
	}
	return reflect.New(t).Interface().(orderedMap).valueType(), true
}
