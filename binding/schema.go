package binding

import (
	"encoding"
	"reflect"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/codec"
	"github.com/reoring/bindjson/jsonschema"
)

// JSONSchema exports the shape of rt as seen by this table. Object
// descriptors are emitted under $defs; polymorphic interfaces become a oneOf
// over their subtypes with the discriminator pinned by const.
func (t *Table) JSONSchema(rt reflect.Type) (*jsonschema.Schema, error) {
	g := &schemaGen{t: t, defs: map[string]*jsonschema.Schema{}}
	root, err := g.schemaOf(rt)
	if err != nil {
		return nil, err
	}
	out := *root
	out.Schema = jsonschema.Draft
	if len(g.defs) > 0 {
		out.Defs = g.defs
	}
	return &out, nil
}

type schemaGen struct {
	t    *Table
	defs map[string]*jsonschema.Schema
}

func defName(d *Descriptor) string {
	return strings.NewReplacer("/", ".", "~", ".").Replace(d.name)
}

func (g *schemaGen) schemaOf(rt reflect.Type) (*jsonschema.Schema, error) {
	if _, custom := g.t.converters[rt]; custom {
		return &jsonschema.Schema{}, nil
	}
	conv, err := g.t.converterFor(rt)
	if err != nil {
		return nil, err
	}
	switch c := conv.(type) {
	case objectConverter:
		return g.object(c.d)
	case polyConverter:
		return g.poly(c)
	case selfConverter:
		return &jsonschema.Schema{Type: "object"}, nil
	case dynamicConverter:
		return &jsonschema.Schema{}, nil
	}
	return g.builtin(rt)
}

// object registers d under $defs and returns a reference to it.
func (g *schemaGen) object(d *Descriptor) (*jsonschema.Schema, error) {
	id := defName(d)
	ref := &jsonschema.Schema{Ref: "#/$defs/" + id}
	if _, done := g.defs[id]; done {
		return ref, nil
	}
	s := &jsonschema.Schema{Type: "object", Title: d.name, Properties: map[string]*jsonschema.Schema{}}
	g.defs[id] = s
	for _, a := range d.attrs {
		if a.ignore {
			continue
		}
		var as *jsonschema.Schema
		if a.custom {
			as = &jsonschema.Schema{}
		} else {
			var err error
			if as, err = g.schemaOf(a.typ); err != nil {
				return nil, err
			}
		}
		s.Properties[a.name] = as
		if a.mandatory {
			s.Required = append(s.Required, a.name)
		}
	}
	if d.unknown == bindjson.UnknownFail {
		s.AdditionalProperties = false
	}
	return ref, nil
}

func (g *schemaGen) poly(c polyConverter) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{}
	for _, name := range sortedKeys(c.p.byName) {
		st := c.p.byName[name]
		ref, err := g.object(st.desc)
		if err != nil {
			return nil, err
		}
		if !c.signature {
			s.OneOf = append(s.OneOf, ref)
			continue
		}
		tag := &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{c.p.key: {Const: st.name}},
		}
		if st != c.p.fallback {
			tag.Required = []string{c.p.key}
		}
		s.OneOf = append(s.OneOf, &jsonschema.Schema{AllOf: []*jsonschema.Schema{ref, tag}})
	}
	return s, nil
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
	decimalType  = reflect.TypeFor[codec.Decimal]()
	numberType   = reflect.TypeFor[json.Number]()
	rawType      = reflect.TypeFor[json.RawMessage]()
	emptyStruct  = reflect.TypeFor[struct{}]()
	textType     = reflect.TypeFor[encoding.TextMarshaler]()
)

func (g *schemaGen) builtin(rt reflect.Type) (*jsonschema.Schema, error) {
	switch rt {
	case timeType:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}, nil
	case durationType:
		return &jsonschema.Schema{Type: "string", Format: "duration"}, nil
	case uuidType:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}, nil
	case decimalType, numberType:
		return &jsonschema.Schema{Type: "number"}, nil
	case rawType:
		return &jsonschema.Schema{}, nil
	}
	if vt, ok := codec.OrderedMapValue(rt); ok {
		vs, err := g.schemaOf(vt)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "object", AdditionalProperties: vs}, nil
	}
	if rt.Kind() != reflect.Interface && rt.Implements(textType) {
		return &jsonschema.Schema{Type: "string"}, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}, nil
	case reflect.String:
		return &jsonschema.Schema{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}, nil
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 && rt.Kind() == reflect.Slice {
			return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}, nil
		}
		items, err := g.schemaOf(rt.Elem())
		if err != nil {
			return nil, err
		}
		s := &jsonschema.Schema{Type: "array", Items: items}
		if rt.Kind() == reflect.Array {
			n := rt.Len()
			s.MaxItems = &n
		}
		return s, nil
	case reflect.Map:
		if rt.Elem() == emptyStruct {
			items, err := g.schemaOf(rt.Key())
			if err != nil {
				return nil, err
			}
			return &jsonschema.Schema{Type: "array", Items: items, UniqueItems: true}, nil
		}
		vs, err := g.schemaOf(rt.Elem())
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "object", AdditionalProperties: vs}, nil
	case reflect.Pointer:
		return g.schemaOf(rt.Elem())
	}
	return &jsonschema.Schema{}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
