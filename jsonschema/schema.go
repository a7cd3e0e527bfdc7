package jsonschema

// Schema is a minimal JSON Schema (2020-12) representation used for export of
// bound types. Object descriptors are emitted once under $defs and referenced
// with $ref, which also covers recursive types.
type Schema struct {
	// Core
	Schema  string `json:"$schema,omitempty"`
	Ref     string `json:"$ref,omitempty"`
	Title   string `json:"title,omitempty"`
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Const   any    `json:"const,omitempty"`
	Default any    `json:"default,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	// String
	ContentEncoding string `json:"contentEncoding,omitempty"`

	// Composition
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// Draft is the dialect URI placed in $schema of exported root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"
