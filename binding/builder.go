package binding

import (
	"fmt"
	"reflect"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/codec"
)

// typeSpec is the uncompiled form of a descriptor, produced by the explicit
// builders and by struct tags.
type typeSpec struct {
	typ       reflect.Type
	opts      typeOptions
	attrs     []*attrSpec
	plan      Plan
	target    reflect.Type // owner type expected by setters
	newTarget func() any
	finish    func(any) (any, error)
	addr      func(any) (any, bool)
	creators  []Creator
	errs      []string
}

type attrSpec struct {
	name      string
	aliases   []string
	typ       reflect.Type
	mandatory bool
	ignore    bool
	omitEmpty bool
	hashMatch bool
	nullable  *bool
	signature bindjson.TypeSignature
	conv      bindjson.Converter
	convName  string
	owner     reflect.Type // receiver type of set, nil when read-only
	get       func(owner any) any
	set       func(owner any, v any) error
}

// ObjectBuilder assembles the descriptor of T from explicit attribute
// declarations. Register it with TableBuilder.Bind.
type ObjectBuilder[T any] struct {
	spec *typeSpec
}

// Object starts an explicit binding of T using the DefaultThenSet plan.
func Object[T any](opts ...TypeOption) *ObjectBuilder[T] {
	t := reflect.TypeFor[T]()
	o := applyOptions(opts)
	return &ObjectBuilder[T]{spec: &typeSpec{
		typ:       t,
		opts:      o,
		plan:      DefaultThenSet,
		target:    reflect.TypeFor[*T](),
		newTarget: func() any { return new(T) },
		finish:    func(p any) (any, error) { return *p.(*T), nil },
		addr: func(v any) (any, bool) {
			x, ok := v.(T)
			if !ok {
				return nil, false
			}
			return &x, true
		},
		creators: o.creators,
	}}
}

func (b *ObjectBuilder[T]) typeSpec() *typeSpec { return b.spec }

// Type returns the bound type.
func (b *ObjectBuilder[T]) Type() reflect.Type { return b.spec.typ }

// Constructor adds a construction candidate and switches the plan to
// ConstructorArgs.
func (b *ObjectBuilder[T]) Constructor(c Creator) *ObjectBuilder[T] {
	b.spec.creators = append(b.spec.creators, c)
	return b
}

// AttrStep configures the attribute most recently declared.
type AttrStep[T any] struct {
	b *ObjectBuilder[T]
	a *attrSpec
}

func (s *AttrStep[T]) Alias(names ...string) *AttrStep[T] {
	s.a.aliases = append(s.a.aliases, names...)
	return s
}
func (s *AttrStep[T]) Mandatory() *AttrStep[T] { s.a.mandatory = true; return s }
func (s *AttrStep[T]) Ignore() *AttrStep[T]    { s.a.ignore = true; return s }
func (s *AttrStep[T]) OmitEmpty() *AttrStep[T] { s.a.omitEmpty = true; return s }

// Nullable overrides the default nullability (pointers, slices, maps and
// interfaces are nullable; everything else is not).
func (s *AttrStep[T]) Nullable(v bool) *AttrStep[T] { s.a.nullable = &v; return s }

// HashMatch accepts any member whose name hash equals the attribute's,
// skipping the name comparison. Ignored under UnknownFail.
func (s *AttrStep[T]) HashMatch() *AttrStep[T] { s.a.hashMatch = true; return s }

// ExcludeTypeInfo suppresses the discriminator for this attribute's value.
func (s *AttrStep[T]) ExcludeTypeInfo() *AttrStep[T] {
	s.a.signature = bindjson.SignatureExclude
	return s
}

// Converter overrides the converter for this attribute only.
func (s *AttrStep[T]) Converter(c bindjson.Converter) *AttrStep[T] { s.a.conv = c; return s }

// ConverterName selects a converter registered with
// TableBuilder.NamedConverter.
func (s *AttrStep[T]) ConverterName(n string) *AttrStep[T] { s.a.convName = n; return s }

// Object returns the builder, for chaining declarations.
func (s *AttrStep[T]) Object() *ObjectBuilder[T] { return s.b }

func (b *ObjectBuilder[T]) add(a *attrSpec) *AttrStep[T] {
	b.spec.attrs = append(b.spec.attrs, a)
	return &AttrStep[T]{b: b, a: a}
}

// Field declares a read-write attribute addressed by a selector returning a
// pointer into T:
//
//	binding.Field(b, "name", func(p *Person) *string { return &p.Name })
func Field[T, F any](b *ObjectBuilder[T], name string, sel func(*T) *F) *AttrStep[T] {
	ft := reflect.TypeFor[F]()
	return b.add(&attrSpec{
		name:  name,
		typ:   ft,
		owner: reflect.TypeFor[*T](),
		get:   func(owner any) any { return *sel(owner.(*T)) },
		set: func(owner any, v any) error {
			p := sel(owner.(*T))
			if x, ok := v.(F); ok {
				*p = x
				return nil
			}
			return codec.Assign(reflect.ValueOf(p).Elem(), v)
		},
	})
}

// Getter declares a read-only attribute. It is encoded from get and, on
// decode, only usable as a creator parameter.
func Getter[T, F any](b *ObjectBuilder[T], name string, get func(*T) F) *AttrStep[T] {
	return b.add(&attrSpec{
		name: name,
		typ:  reflect.TypeFor[F](),
		get:  func(owner any) any { return get(owner.(*T)) },
	})
}

// Accessor declares an attribute read through get and written through set.
func Accessor[T, F any](b *ObjectBuilder[T], name string, get func(*T) F, set func(*T, F)) *AttrStep[T] {
	return b.add(&attrSpec{
		name:  name,
		typ:   reflect.TypeFor[F](),
		owner: reflect.TypeFor[*T](),
		get:   func(owner any) any { return get(owner.(*T)) },
		set:   typedSetter(set),
	})
}

// WithBuilder switches the plan to Builder: decoding fills a fresh
// accumulator from newB and build turns it into T.
func WithBuilder[T, B any](b *ObjectBuilder[T], newB func() *B, build func(*B) (T, error)) *ObjectBuilder[T] {
	b.spec.plan = Builder
	b.spec.target = reflect.TypeFor[*B]()
	b.spec.newTarget = func() any { return newB() }
	b.spec.finish = func(acc any) (any, error) {
		v, err := build(acc.(*B))
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return b
}

// BuilderField declares an attribute read from T and written to the builder
// accumulator B.
func BuilderField[T, B, F any](b *ObjectBuilder[T], name string, get func(*T) F, set func(*B, F)) *AttrStep[T] {
	return b.add(&attrSpec{
		name:  name,
		typ:   reflect.TypeFor[F](),
		owner: reflect.TypeFor[*B](),
		get:   func(owner any) any { return get(owner.(*T)) },
		set:   typedSetter(set),
	})
}

func typedSetter[O, F any](set func(*O, F)) func(any, any) error {
	return func(owner any, v any) error {
		if x, ok := v.(F); ok || v == nil {
			set(owner.(*O), x)
			return nil
		}
		fv := reflect.New(reflect.TypeFor[F]()).Elem()
		if err := codec.Assign(fv, v); err != nil {
			return err
		}
		set(owner.(*O), fv.Interface().(F))
		return nil
	}
}

// reflectSpec returns a typeSpec whose plan callbacks work on t through
// reflection.
func reflectSpec(t reflect.Type, o typeOptions) *typeSpec {
	return &typeSpec{
		typ:       t,
		opts:      o,
		plan:      DefaultThenSet,
		target:    reflect.PointerTo(t),
		newTarget: func() any { return reflect.New(t).Interface() },
		finish:    func(p any) (any, error) { return reflect.ValueOf(p).Elem().Interface(), nil },
		addr: func(v any) (any, bool) {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() || rv.Type() != t {
				return nil, false
			}
			p := reflect.New(t)
			p.Elem().Set(rv)
			return p.Interface(), true
		},
		creators: o.creators,
	}
}

func (s *typeSpec) errorf(format string, args ...any) {
	s.errs = append(s.errs, fmt.Sprintf(format, args...))
}
