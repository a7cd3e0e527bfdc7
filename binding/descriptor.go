package binding

import (
	"reflect"
	"slices"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/internal/engine"
)

// Plan identifies how a descriptor constructs values on decode.
type Plan int

const (
	// DefaultThenSet allocates a zero value and assigns attributes in place.
	DefaultThenSet Plan = iota
	// ConstructorArgs buffers attribute values and calls the marked Creator.
	ConstructorArgs
	// Builder accumulates attributes on a builder and finalizes it.
	Builder
)

func (p Plan) String() string {
	switch p {
	case ConstructorArgs:
		return "constructor-args"
	case Builder:
		return "builder"
	}
	return "default-then-set"
}

// Creator is a candidate construction operation for the ConstructorArgs
// plan. Params names, in order, the attribute bound to each argument. Exactly
// one candidate per type must be Marked.
type Creator struct {
	Name   string
	Params []string
	Marked bool
	New    func(args []any) (any, error)
}

// Arg returns argument i converted to A. Absent arguments are nil and yield
// the zero value.
func Arg[A any](args []any, i int) A {
	v, _ := args[i].(A)
	return v
}

// Attribute is one bound member of a Descriptor. Attributes are immutable
// once the table is built.
type Attribute struct {
	name      string
	aliases   []string
	typ       reflect.Type
	nullable  bool
	mandatory bool
	bit       uint64
	ignore    bool
	omitEmpty bool
	hashMatch bool
	conv      bindjson.Converter
	custom    bool
	quoted    []byte
	param     int
	get       func(owner any) any
	set       func(owner any, v any) error
}

func (a *Attribute) Name() string                  { return a.name }
func (a *Attribute) Aliases() []string             { return slices.Clone(a.aliases) }
func (a *Attribute) Type() reflect.Type            { return a.typ }
func (a *Attribute) Nullable() bool                { return a.nullable }
func (a *Attribute) Mandatory() bool               { return a.mandatory }
func (a *Attribute) Ignored() bool                 { return a.ignore }
func (a *Attribute) Converter() bindjson.Converter { return a.conv }

// Bit returns the attribute's bit in the mandatory mask (0 when optional).
func (a *Attribute) Bit() uint64 { return a.bit }

// Param returns the creator argument index, or -1.
func (a *Attribute) Param() int { return a.param }

// decodable reports whether a decoded value has somewhere to go.
func (a *Attribute) decodable() bool { return a.set != nil || a.param >= 0 }

func (a *Attribute) matches(key []byte) bool {
	if string(key) == a.name {
		return true
	}
	for _, n := range a.aliases {
		if string(key) == n {
			return true
		}
	}
	return false
}

// Descriptor is the compiled binding of one Go type.
type Descriptor struct {
	typ         reflect.Type
	name        string
	attrs       []*Attribute
	positional  []*Attribute
	index       nameIndex
	plan        Plan
	creator     *Creator
	unknown     bindjson.UnknownPolicy
	arrayFormat bool
	preferArray bool
	required    uint64
	discKey     string

	newTarget func() any
	finish    func(target any) (any, error)
	addr      func(v any) (any, bool)
}

func (d *Descriptor) Type() reflect.Type                    { return d.typ }
func (d *Descriptor) Name() string                          { return d.name }
func (d *Descriptor) Attributes() []*Attribute              { return slices.Clone(d.attrs) }
func (d *Descriptor) Plan() Plan                            { return d.plan }
func (d *Descriptor) UnknownPolicy() bindjson.UnknownPolicy { return d.unknown }
func (d *Descriptor) RequiredMask() uint64                  { return d.required }
func (d *Descriptor) ArrayFormat() bool                     { return d.arrayFormat }

// Attribute returns the attribute with the given primary name or alias.
func (d *Descriptor) Attribute(name string) (*Attribute, bool) {
	if i, ok := d.index.byName[name]; ok {
		return d.attrs[i], true
	}
	return nil, false
}

// nameIndex maps member names to attribute slots. byHash holds -1 for hashes
// shared by different attributes.
type nameIndex struct {
	byHash map[uint32]int
	byName map[string]int
}

func buildIndex(attrs []*Attribute) nameIndex {
	ix := nameIndex{byHash: map[uint32]int{}, byName: map[string]int{}}
	for i, a := range attrs {
		for _, n := range append([]string{a.name}, a.aliases...) {
			ix.byName[n] = i
			h := engine.Hash(n)
			if prev, ok := ix.byHash[h]; ok && prev != i {
				ix.byHash[h] = -1
			} else {
				ix.byHash[h] = i
			}
		}
	}
	return ix
}

// lookup resolves a member name to an attribute slot, or -1. The hash
// candidate is tried first and must match by name; an exact name always
// wins, and hash-only matches are accepted only for HashMatch attributes.
func (ix nameIndex) lookup(key []byte, h uint32, attrs []*Attribute) int {
	slot, ok := ix.byHash[h]
	if ok && slot >= 0 && attrs[slot].matches(key) {
		return slot
	}
	if i, found := ix.byName[string(key)]; found {
		return i
	}
	if ok && slot >= 0 && attrs[slot].hashMatch {
		return slot
	}
	return -1
}

// TypeName returns the default discriminator value of t: its package path
// and name.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
