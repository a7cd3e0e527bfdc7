package binding

import (
	"reflect"
	"slices"
	"strings"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/codec"
)

// fieldTag is the parsed form of
//
//	bindjson:"name,alias=a|b,mandatory,nullable,notnull,ignore,hashmatch,omitempty,typeinfo=exclude,converter=name"
type fieldTag struct {
	name      string
	skip      bool
	aliases   []string
	mandatory bool
	ignore    bool
	omitEmpty bool
	hashMatch bool
	nullable  *bool
	signature bindjson.TypeSignature
	converter string
}

// parseFieldTag reads the bindjson tag, falling back to the json tag for the
// name and omitempty, then to the field name. "-" in either tag skips the
// field.
func parseFieldTag(sf reflect.StructField) (fieldTag, []string) {
	var ft fieldTag
	var errs []string
	if jt, ok := sf.Tag.Lookup("json"); ok {
		if jt == "-" {
			ft.skip = true
		}
		name, rest, _ := strings.Cut(jt, ",")
		if name != "-" {
			ft.name = name
		}
		for _, o := range strings.Split(rest, ",") {
			if o == "omitempty" {
				ft.omitEmpty = true
			}
		}
	}
	if bt, ok := sf.Tag.Lookup("bindjson"); ok {
		if bt == "-" {
			ft.skip = true
			return ft, nil
		}
		ft.skip = false
		parts := strings.Split(bt, ",")
		if n := strings.TrimSpace(parts[0]); n != "" {
			ft.name = n
		}
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			key, val, _ := strings.Cut(p, "=")
			switch key {
			case "":
			case "name":
				ft.name = val
			case "alias":
				ft.aliases = append(ft.aliases, strings.Split(val, "|")...)
			case "mandatory":
				ft.mandatory = true
			case "nullable":
				t := true
				ft.nullable = &t
			case "notnull":
				f := false
				ft.nullable = &f
			case "ignore":
				ft.ignore = true
			case "hashmatch":
				ft.hashMatch = true
			case "omitempty":
				ft.omitEmpty = true
			case "typeinfo":
				switch val {
				case "exclude":
					ft.signature = bindjson.SignatureExclude
				case "include":
					ft.signature = bindjson.SignatureInclude
				default:
					errs = append(errs, "field "+sf.Name+": typeinfo must be include or exclude")
				}
			case "converter":
				ft.converter = val
			default:
				errs = append(errs, "field "+sf.Name+": unknown tag option "+p)
			}
		}
	}
	if ft.name == "" {
		ft.name = sf.Name
	}
	return ft, errs
}

// specFromStruct derives a typeSpec from the exported fields of struct t.
// Fields of embedded structs are promoted like encoding/json does; fields
// reached through embedded pointers are not bound.
func specFromStruct(t reflect.Type, o typeOptions) *typeSpec {
	spec := reflectSpec(t, o)
	if t.Kind() != reflect.Struct {
		spec.errorf("%v is not a struct", t)
		return spec
	}
	// tagged embedded structs are bound as one attribute; their promoted
	// fields are not
	var opaque [][]int
	for _, sf := range reflect.VisibleFields(t) {
		if under(sf.Index, opaque) {
			continue
		}
		if sf.Anonymous {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if sf.Tag.Get("json") == "" && sf.Tag.Get("bindjson") == "" {
					continue
				}
				opaque = append(opaque, sf.Index)
			}
		}
		if !sf.IsExported() || throughPointer(t, sf.Index) {
			continue
		}
		tag, errs := parseFieldTag(sf)
		for _, e := range errs {
			spec.errorf("%s", e)
		}
		if tag.skip {
			continue
		}
		idx := sf.Index
		spec.attrs = append(spec.attrs, &attrSpec{
			name:      tag.name,
			aliases:   tag.aliases,
			typ:       sf.Type,
			mandatory: tag.mandatory,
			ignore:    tag.ignore,
			omitEmpty: tag.omitEmpty,
			hashMatch: tag.hashMatch,
			nullable:  tag.nullable,
			signature: tag.signature,
			convName:  tag.converter,
			owner:     spec.target,
			get: func(owner any) any {
				return reflect.ValueOf(owner).Elem().FieldByIndex(idx).Interface()
			},
			set: func(owner any, v any) error {
				return codec.Assign(reflect.ValueOf(owner).Elem().FieldByIndex(idx), v)
			},
		})
	}
	return spec
}

func under(index []int, prefixes [][]int) bool {
	for _, p := range prefixes {
		if len(index) > len(p) && slices.Equal(index[:len(p)], p) {
			return true
		}
	}
	return false
}

func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Pointer {
			return true
		}
	}
	return false
}
