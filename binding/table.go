package binding

import (
	"bytes"
	"log/slog"
	"reflect"
	"sync"

	jsoncanonicalizer "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	json "github.com/goccy/go-json"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/codec"
	"github.com/reoring/bindjson/i18n"
)

// bindable is implemented by the explicit builders.
type bindable interface {
	typeSpec() *typeSpec
}

type subtypeRegistration struct {
	iface    reflect.Type
	concrete reflect.Type
	opts     typeOptions
}

// TableBuilder collects converters, bindings and polymorphic registrations.
// Build validates everything at once and returns an immutable Table.
type TableBuilder struct {
	settings   bindjson.Settings
	logger     *slog.Logger
	converters map[reflect.Type]bindjson.Converter
	named      map[string]bindjson.Converter
	specs      []*typeSpec
	ifaces     map[reflect.Type]typeOptions
	ifaceOrder []reflect.Type
	subtypes   []subtypeRegistration
}

// NewTableBuilder returns a builder with DefaultSettings.
func NewTableBuilder(opts ...Option) *TableBuilder {
	tb := &TableBuilder{
		settings:   bindjson.DefaultSettings(),
		logger:     slog.New(slog.DiscardHandler),
		converters: map[reflect.Type]bindjson.Converter{},
		named:      map[string]bindjson.Converter{},
		ifaces:     map[reflect.Type]typeOptions{},
	}
	for _, o := range opts {
		o(tb)
	}
	return tb
}

// Converter registers a type-level custom converter for t.
func (tb *TableBuilder) Converter(t reflect.Type, c bindjson.Converter) *TableBuilder {
	tb.converters[t] = c
	return tb
}

// NamedConverter registers a converter that attributes select by name (the
// converter= tag option or AttrStep.ConverterName).
func (tb *TableBuilder) NamedConverter(name string, c bindjson.Converter) *TableBuilder {
	tb.named[name] = c
	return tb
}

// Bind adds an explicit binding built with Object.
func (tb *TableBuilder) Bind(b bindable) *TableBuilder {
	tb.specs = append(tb.specs, b.typeSpec())
	return tb
}

// Register binds struct type t from its tags.
func (tb *TableBuilder) Register(t reflect.Type, opts ...TypeOption) *TableBuilder {
	tb.specs = append(tb.specs, specFromStruct(t, applyOptions(opts)))
	return tb
}

// Register binds T from its struct tags.
func Register[T any](tb *TableBuilder, opts ...TypeOption) *TableBuilder {
	return tb.Register(reflect.TypeFor[T](), opts...)
}

// Interface configures the polymorphic resolver of iface: DiscriminatorKey
// and ExcludeTypeInfo apply.
func (tb *TableBuilder) Interface(iface reflect.Type, opts ...TypeOption) *TableBuilder {
	if _, ok := tb.ifaces[iface]; !ok {
		tb.ifaceOrder = append(tb.ifaceOrder, iface)
	}
	tb.ifaces[iface] = applyOptions(opts)
	return tb
}

// Subtype registers concrete (T or *T) as an implementation of iface. Name
// sets its discriminator value and AsDefault makes it the fallback.
func (tb *TableBuilder) Subtype(iface, concrete reflect.Type, opts ...TypeOption) *TableBuilder {
	if _, ok := tb.ifaces[iface]; !ok {
		tb.ifaces[iface] = typeOptions{}
		tb.ifaceOrder = append(tb.ifaceOrder, iface)
	}
	tb.subtypes = append(tb.subtypes, subtypeRegistration{iface: iface, concrete: concrete, opts: applyOptions(opts)})
	return tb
}

// Subtype registers C as an implementation of interface I.
func Subtype[I, C any](tb *TableBuilder, opts ...TypeOption) *TableBuilder {
	return tb.Subtype(reflect.TypeFor[I](), reflect.TypeFor[C](), opts...)
}

// Build compiles every registration. All configuration errors are reported
// together.
func (tb *TableBuilder) Build() (*Table, error) {
	t := &Table{
		settings:    tb.settings,
		logger:      tb.logger,
		converters:  tb.converters,
		named:       tb.named,
		descriptors: map[reflect.Type]*Descriptor{},
		poly:        map[reflect.Type]*polymorphic{},
		resolved:    map[reflect.Type]bindjson.Converter{},
		building:    true,
	}
	var iss bindjson.Issues

	// phase 1: shells, so bindings may refer to each other
	specs := append([]*typeSpec(nil), tb.specs...)
	for _, s := range specs {
		if _, dup := t.descriptors[s.typ]; dup {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, TypeName(s.typ), "%v bound twice", s.typ))
			continue
		}
		t.descriptors[s.typ] = &Descriptor{typ: s.typ}
	}
	for _, sr := range tb.subtypes {
		elem := sr.concrete
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if _, ok := t.descriptors[elem]; !ok {
			specs = append(specs, specFromStruct(elem, typeOptions{}))
			t.descriptors[elem] = &Descriptor{typ: elem}
		}
	}
	for _, iface := range tb.ifaceOrder {
		o := tb.ifaces[iface]
		if iface.Kind() != reflect.Interface {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, iface.String(), "%v is not an interface", iface))
			continue
		}
		key := t.settings.DiscriminatorKey
		if o.discKey != "" {
			key = o.discKey
		}
		t.poly[iface] = &polymorphic{
			iface:     iface,
			key:       key,
			quotedKey: bindjson.QuotedName(key),
			signature: o.signature != bindjson.SignatureExclude,
			byName:    map[string]*subtype{},
			byType:    map[reflect.Type]*subtype{},
			table:     t,
		}
	}

	// phase 2: compile descriptors
	seen := map[reflect.Type]bool{}
	for _, s := range specs {
		if seen[s.typ] {
			continue
		}
		seen[s.typ] = true
		if err := t.compile(t.descriptors[s.typ], s); err != nil {
			iss = append(iss, issuesOf(err, TypeName(s.typ))...)
		}
	}

	// phase 3: polymorphic tables
	for _, sr := range tb.subtypes {
		p := t.poly[sr.iface]
		if p == nil {
			continue
		}
		if !sr.concrete.Implements(sr.iface) {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, TypeName(sr.concrete), "%v does not implement %v", sr.concrete, sr.iface))
			continue
		}
		elem := sr.concrete
		ptr := elem.Kind() == reflect.Pointer
		if ptr {
			elem = elem.Elem()
		}
		d := t.descriptors[elem]
		s := &subtype{name: sr.opts.name, typ: sr.concrete, ptr: ptr, desc: d}
		if s.name == "" {
			s.name = d.name
		}
		if prev, dup := p.byName[s.name]; dup {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, s.name, "%v and %v share discriminator %q", prev.typ, sr.concrete, s.name))
			continue
		}
		p.byName[s.name] = s
		p.byType[sr.concrete] = s
		if sr.opts.isDefault {
			if p.fallback != nil {
				iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, s.name, "%v has two default subtypes", sr.iface))
				continue
			}
			p.fallback = s
		}
	}
	t.building = false
	if len(iss) > 0 {
		t.logger.Debug("binding table rejected", "issues", len(iss))
		return nil, iss
	}
	t.logger.Debug("binding table built",
		"descriptors", len(t.descriptors),
		"polymorphic", len(t.poly),
		"resolved", len(t.resolved))
	return t, nil
}

// MustBuild is like Build but panics on error.
func (tb *TableBuilder) MustBuild() *Table {
	t, err := tb.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Table is the immutable result of a build. It is safe for concurrent use;
// converters derived lazily for structural types are published atomically.
type Table struct {
	settings    bindjson.Settings
	logger      *slog.Logger
	converters  map[reflect.Type]bindjson.Converter
	named       map[string]bindjson.Converter
	descriptors map[reflect.Type]*Descriptor
	poly        map[reflect.Type]*polymorphic
	resolved    map[reflect.Type]bindjson.Converter
	building    bool

	mu      sync.Mutex
	pending map[reflect.Type]bindjson.Converter
	lazy    sync.Map // reflect.Type -> bindjson.Converter

	readers sync.Pool
	writers sync.Pool
}

// Settings returns the table-wide defaults.
func (t *Table) Settings() bindjson.Settings { return t.settings }

// Converter returns the converter the table uses for rt.
func (t *Table) Converter(rt reflect.Type) (bindjson.Converter, error) { return t.converterFor(rt) }

// Descriptor returns the descriptor of a bound or structurally described
// type.
func (t *Table) Descriptor(rt reflect.Type) (*Descriptor, bool) {
	if d, ok := t.descriptors[rt]; ok {
		return d, true
	}
	c, err := t.converterFor(rt)
	if err != nil {
		return nil, false
	}
	oc, ok := c.(objectConverter)
	if !ok {
		return nil, false
	}
	return oc.d, true
}

func (t *Table) converterFor(rt reflect.Type) (bindjson.Converter, error) {
	if c, ok := t.resolved[rt]; ok {
		return c, nil
	}
	if c, ok := t.lazy.Load(rt); ok {
		return c.(bindjson.Converter), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = map[reflect.Type]bindjson.Converter{}
	c, err := t.resolve(rt)
	if err == nil {
		for k, v := range t.pending {
			t.lazy.Store(k, v)
		}
	}
	t.pending = nil
	return c, err
}

// resolve runs the resolution order for rt. Callers hold t.mu or are
// building.
func (t *Table) resolve(rt reflect.Type) (bindjson.Converter, error) {
	if c, ok := t.resolved[rt]; ok {
		return c, nil
	}
	if c, ok := t.lazy.Load(rt); ok {
		return c.(bindjson.Converter), nil
	}
	if c, ok := t.pending[rt]; ok {
		return c, nil
	}
	c, err := t.compute(rt)
	if err != nil {
		return nil, err
	}
	t.record(rt, c)
	return c, nil
}

func (t *Table) compute(rt reflect.Type) (bindjson.Converter, error) {
	if c, ok := t.converters[rt]; ok {
		return c, nil
	}
	if d, ok := t.descriptors[rt]; ok {
		return objectConverter{d: d}, nil
	}
	if p, ok := t.poly[rt]; ok {
		return polyConverter{p: p, signature: p.signature}, nil
	}
	if isSelfDescribing(rt) {
		return selfConverter{t: rt}, nil
	}
	c, ok, err := codec.Builtin(rt, t.resolve)
	if err != nil {
		return nil, err
	}
	if ok {
		return c, nil
	}
	if rt == anyType {
		return dynamicConverter{t: t}, nil
	}
	if rt.Kind() == reflect.Struct {
		if !t.settings.StructuralFallback {
			return nil, codec.Unresolved(rt, "not bound and structural fallback is disabled")
		}
		return t.structural(rt)
	}
	if rt.Kind() == reflect.Interface {
		return nil, codec.Unresolved(rt, "interface without registered subtypes")
	}
	return nil, codec.Unresolved(rt, "unsupported kind "+rt.Kind().String())
}

func (t *Table) record(rt reflect.Type, c bindjson.Converter) {
	if t.building {
		t.resolved[rt] = c
		return
	}
	t.pending[rt] = c
}

func (t *Table) forget(rt reflect.Type) {
	if t.building {
		delete(t.resolved, rt)
		return
	}
	delete(t.pending, rt)
}

// structural derives a descriptor for an unbound struct. The converter is
// recorded before compiling so recursive references resolve to it.
func (t *Table) structural(rt reflect.Type) (bindjson.Converter, error) {
	d := &Descriptor{typ: rt}
	conv := objectConverter{d: d}
	t.record(rt, conv)
	if err := t.compile(d, specFromStruct(rt, typeOptions{})); err != nil {
		t.forget(rt)
		return nil, err
	}
	t.logger.Debug("structural descriptor derived", "type", rt.String(), "attributes", len(d.attrs))
	return conv, nil
}

func (t *Table) getWriter() *bindjson.Writer {
	if w, ok := t.writers.Get().(*bindjson.Writer); ok {
		w.Reset()
		return w
	}
	return bindjson.NewWriter(256)
}

func (t *Table) getReader(data []byte) *bindjson.Reader {
	r, ok := t.readers.Get().(*bindjson.Reader)
	if !ok {
		r = bindjson.NewReader(nil)
	}
	r.Reset(data)
	r.SetMaxDepth(t.settings.MaxDepth)
	return r
}

// Encode returns the JSON encoding of v, using the converter of v's dynamic
// type.
func (t *Table) Encode(v any) ([]byte, error) {
	w := t.getWriter()
	defer t.writers.Put(w)
	if err := t.EncodeTo(w, v); err != nil {
		return nil, err
	}
	return bytes.Clone(w.Bytes()), nil
}

// EncodeTo appends the encoding of v to w.
func (t *Table) EncodeTo(w *bindjson.Writer, v any) error {
	if v == nil {
		w.WriteNull()
		return nil
	}
	c, err := t.converterFor(reflect.TypeOf(v))
	if err != nil {
		return err
	}
	return c.Encode(w, v)
}

// EncodeAs encodes v through the converter of the static type T, so an
// interface T emits its discriminator.
func EncodeAs[T any](t *Table, v T) ([]byte, error) {
	c, err := t.converterFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	w := t.getWriter()
	defer t.writers.Put(w)
	if err := c.Encode(w, v); err != nil {
		return nil, err
	}
	return bytes.Clone(w.Bytes()), nil
}

// EncodeCanonical encodes v and canonicalizes the result per RFC 8785
// (sorted members, normalized numbers), for hashing and signing.
func (t *Table) EncodeCanonical(v any) ([]byte, error) {
	b, err := t.Encode(v)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(b)
}

// EncodeIndent encodes v and indents the result.
func (t *Table) EncodeIndent(v any, prefix, indent string) ([]byte, error) {
	b, err := t.Encode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes data into the value target points to. The whole input must
// be one JSON value.
func (t *Table) Decode(data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return bindjson.Issues{{
			Code:    bindjson.CodeInvalidType,
			Message: i18n.T(bindjson.CodeInvalidType, nil),
			Hint:    "decode target must be a non-nil pointer",
			Offset:  -1,
		}}
	}
	v, err := t.DecodeValue(data, rv.Type().Elem())
	if err != nil {
		return err
	}
	return codec.Assign(rv.Elem(), v)
}

// DecodeValue decodes data as a value of type rt.
func (t *Table) DecodeValue(data []byte, rt reflect.Type) (any, error) {
	c, err := t.converterFor(rt)
	if err != nil {
		return nil, err
	}
	r := t.getReader(data)
	defer func() {
		r.Reset(nil)
		t.readers.Put(r)
	}()
	v, err := c.Decode(r)
	if err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeFrom decodes the next value from r into target without requiring
// the input to end there.
func (t *Table) DecodeFrom(r *bindjson.Reader, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return bindjson.Issues{{Code: bindjson.CodeInvalidType, Message: i18n.T(bindjson.CodeInvalidType, nil), Hint: "decode target must be a non-nil pointer", Offset: -1}}
	}
	c, err := t.converterFor(rv.Type().Elem())
	if err != nil {
		return err
	}
	v, err := c.Decode(r)
	if err != nil {
		return err
	}
	return codec.Assign(rv.Elem(), v)
}

// Decode decodes data as a T.
func Decode[T any](t *Table, data []byte) (T, error) {
	var out T
	err := t.Decode(data, &out)
	return out, err
}
