// Package transcode converts dynamic documents between JSON, YAML and CBOR.
// JSON goes through a binding.Table, so its settings (number mode, depth
// limit) apply; YAML and CBOR values are normalized to the same dynamic
// shapes the table produces before they are re-encoded.
package transcode

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/bindjson/binding"
)

// Format is a document encoding.
type Format int

const (
	JSON Format = iota
	YAML
	CBOR
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case CBOR:
		return "cbor"
	}
	return "json"
}

// ParseFormat accepts json, yaml (or yml) and cbor, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	}
	return JSON, fmt.Errorf("unknown format %q (want json, yaml or cbor)", s)
}

// encMode writes Core Deterministic CBOR (RFC 8949 section 4.2), so equal
// documents produce equal bytes.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any, matching what JSON and
// YAML produce.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transcode: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("transcode: CBOR decoder initialization failed: " + err.Error())
	}
}

var anyType = reflect.TypeFor[any]()

// Transcoder decodes and encodes dynamic documents.
type Transcoder struct {
	table *binding.Table
}

// New returns a Transcoder whose JSON side uses table.
func New(table *binding.Table) *Transcoder {
	return &Transcoder{table: table}
}

// Decode parses data into a dynamic value: map[string]any, []any, string,
// bool, nil, int64, uint64, float64 or []byte (CBOR byte strings).
func (t *Transcoder) Decode(f Format, data []byte) (any, error) {
	var v any
	switch f {
	case JSON:
		var err error
		if v, err = t.table.DecodeValue(data, anyType); err != nil {
			return nil, err
		}
	case YAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case CBOR:
		if err := decMode.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("cbor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %v", f)
	}
	return Normalize(v)
}

// Encode writes a dynamic value in format f.
func (t *Transcoder) Encode(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		return t.table.Encode(v)
	case YAML:
		return yaml.Marshal(v)
	case CBOR:
		return encMode.Marshal(v)
	}
	return nil, fmt.Errorf("unsupported format %v", f)
}

// Convert decodes data in format from and re-encodes it in format to.
func (t *Transcoder) Convert(from, to Format, data []byte) ([]byte, error) {
	v, err := t.Decode(from, data)
	if err != nil {
		return nil, err
	}
	return t.Encode(to, v)
}

// Normalize rewrites decoded values into the common dynamic shapes: maps
// with non-string keys get their keys formatted, json.Number becomes int64
// or float64, and small integer types widen to int64.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", x, err)
		}
		return f, nil
	case int:
		return int64(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("number %v has no JSON representation", x)
		}
		return x, nil
	}
	return v, nil
}
