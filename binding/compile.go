package binding

import (
	"fmt"
	"reflect"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/i18n"
)

// maxMandatory is the width of the mandatory bit mask.
const maxMandatory = 64

func bindingIssue(code, typeName, format string, args ...any) bindjson.Issue {
	return bindjson.Issue{
		Code:    code,
		Message: i18n.T(code, nil),
		Hint:    fmt.Sprintf(format, args...),
		Offset:  -1,
		Params:  map[string]any{"type": typeName},
	}
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

// compile fills d from spec. Attribute converters are resolved through the
// table, so descriptors of other bound types may still be shells.
func (t *Table) compile(d *Descriptor, spec *typeSpec) error {
	o := spec.opts
	d.typ = spec.typ
	d.name = o.name
	if d.name == "" {
		d.name = TypeName(spec.typ)
	}
	d.unknown = t.settings.UnknownPolicy
	if o.unknown != nil {
		d.unknown = *o.unknown
	}
	d.arrayFormat = t.settings.AllowArrayFormat || o.arrayFormat
	d.preferArray = o.preferArray
	d.discKey = t.settings.DiscriminatorKey
	if o.discKey != "" {
		d.discKey = o.discKey
	}
	d.plan = spec.plan
	if len(spec.creators) > 0 {
		d.plan = ConstructorArgs
	}
	d.newTarget, d.finish, d.addr = spec.newTarget, spec.finish, spec.addr

	var iss bindjson.Issues
	for _, e := range spec.errs {
		iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: %s", d.typ, e))
	}
	seen := map[string]string{}
	mandatory := 0
	for _, as := range spec.attrs {
		a := &Attribute{
			name:      as.name,
			aliases:   as.aliases,
			typ:       as.typ,
			nullable:  nillable(as.typ),
			mandatory: as.mandatory,
			ignore:    as.ignore,
			omitEmpty: as.omitEmpty,
			hashMatch: as.hashMatch && d.unknown != bindjson.UnknownFail,
			custom:    as.conv != nil || as.convName != "",
			quoted:    bindjson.QuotedName(as.name),
			param:     -1,
			get:       as.get,
			set:       as.set,
		}
		if as.nullable != nil {
			a.nullable = *as.nullable
		}
		for _, n := range append([]string{as.name}, as.aliases...) {
			if prev, dup := seen[n]; dup {
				iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: name %q of attribute %q already used by %q", d.typ, n, as.name, prev))
				continue
			}
			seen[n] = as.name
		}
		if as.set != nil && as.owner != spec.target {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: attribute %q writes to %v but the %s plan decodes into %v", d.typ, as.name, as.owner, d.plan, spec.target))
		}
		if as.mandatory {
			if as.ignore {
				iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: attribute %q cannot be both mandatory and ignored", d.typ, as.name))
			}
			mandatory++
			if mandatory <= maxMandatory {
				a.bit = 1 << (mandatory - 1)
				d.required |= a.bit
			}
		}
		if !as.ignore {
			conv, err := t.attributeConverter(as)
			if err != nil {
				iss = append(iss, issuesOf(bindjson.Rebase(err, as.name), d.name)...)
			}
			a.conv = conv
		}
		d.attrs = append(d.attrs, a)
		if !a.ignore {
			d.positional = append(d.positional, a)
		}
	}
	if mandatory > maxMandatory {
		iss = append(iss, bindingIssue(bindjson.CodeTooManyMandatory, d.name, "%v declares %d mandatory attributes (at most %d)", d.typ, mandatory, maxMandatory))
	}
	d.index = buildIndex(d.attrs)

	if d.plan == ConstructorArgs {
		var marked []Creator
		for _, c := range spec.creators {
			if c.Marked {
				marked = append(marked, c)
			}
		}
		if len(marked) != 1 {
			iss = append(iss, bindingIssue(bindjson.CodeConstructionAmbiguity, d.name, "%v: exactly one creator must be marked, found %d of %d", d.typ, len(marked), len(spec.creators)))
		} else {
			c := marked[0]
			if c.New == nil {
				iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: creator %q has no New function", d.typ, c.Name))
			}
			d.creator = &c
			for i, p := range c.Params {
				a, ok := d.Attribute(p)
				if !ok || a.name != p {
					iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: creator parameter %q matches no attribute", d.typ, p))
					continue
				}
				if a.param >= 0 {
					iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: attribute %q bound to two creator parameters", d.typ, p))
					continue
				}
				a.param = i
			}
		}
	}
	for _, a := range d.attrs {
		if a.mandatory && !a.decodable() && !a.ignore {
			iss = append(iss, bindingIssue(bindjson.CodeInvalidBinding, d.name, "%v: mandatory attribute %q has no setter or creator parameter", d.typ, a.name))
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// attributeConverter applies the attribute-level override, then the named
// converter, then type resolution.
func (t *Table) attributeConverter(as *attrSpec) (bindjson.Converter, error) {
	switch {
	case as.conv != nil:
		return as.conv, nil
	case as.convName != "":
		c, ok := t.named[as.convName]
		if !ok {
			return nil, bindjson.Issues{bindingIssue(bindjson.CodeUnresolvedConverter, "", "no converter registered under name %q", as.convName)}
		}
		return c, nil
	}
	c, err := t.resolve(as.typ)
	if err != nil {
		return nil, err
	}
	if pc, ok := c.(polyConverter); ok {
		switch as.signature {
		case bindjson.SignatureExclude:
			pc.signature = false
		case bindjson.SignatureInclude:
			pc.signature = true
		}
		return pc, nil
	}
	return c, nil
}

func issuesOf(err error, typeName string) bindjson.Issues {
	iss, ok := bindjson.AsIssues(err)
	if !ok {
		return bindjson.Issues{bindingIssue(bindjson.CodeInvalidBinding, typeName, "%v", err)}
	}
	return iss
}
