package bindjson

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnknownPolicy controls how object members with no matching attribute are
// handled on decode.
type UnknownPolicy int

const (
	UnknownIgnore UnknownPolicy = iota // Skip the member's value.
	UnknownFail                        // Reject the document with unknown_key.
)

func (p UnknownPolicy) String() string {
	if p == UnknownFail {
		return "fail"
	}
	return "ignore"
}

// UnmarshalYAML accepts "ignore" or "fail".
func (p *UnknownPolicy) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "", "ignore":
		*p = UnknownIgnore
	case "fail":
		*p = UnknownFail
	default:
		return fmt.Errorf("line %d: unknown policy %q (want ignore|fail)", n.Line, n.Value)
	}
	return nil
}

// MarshalYAML renders the policy name.
func (p UnknownPolicy) MarshalYAML() (any, error) { return p.String(), nil }

// NumberMode dictates how numbers decoded into untyped (any) values are
// represented.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve the literal as json.Number.
)

func (m NumberMode) String() string {
	if m == NumberJSONNumber {
		return "json-number"
	}
	return "float64"
}

// UnmarshalYAML accepts "float64" or "json-number".
func (m *NumberMode) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "", "float64":
		*m = NumberFloat64
	case "json-number", "number":
		*m = NumberJSONNumber
	default:
		return fmt.Errorf("line %d: unknown number mode %q (want float64|json-number)", n.Line, n.Value)
	}
	return nil
}

// MarshalYAML renders the mode name.
func (m NumberMode) MarshalYAML() (any, error) { return m.String(), nil }

// TypeSignature controls emission of the discriminator for polymorphic
// attributes.
type TypeSignature int

const (
	SignatureDefault TypeSignature = iota // Emit for interface-declared attributes.
	SignatureInclude
	SignatureExclude
)
