package bindjson

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Input errors
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	CodeOverflow      = "overflow"
	CodeInvalidEscape = "invalid_escape"
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeNotNullable   = "not_nullable"
	CodeUnknownKey    = "unknown_key"
	CodeRequired      = "required"
	CodeConstruction  = "construction_failed"
	// Polymorphic dispatch
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	// Binding-time configuration
	CodeUnresolvedConverter   = "unresolved_converter"
	CodeConstructionAmbiguity = "construction_ambiguity"
	CodeTooManyMandatory      = "too_many_mandatory"
	CodeInvalidBinding        = "invalid_binding"
)

// Issue represents a single encode, decode or binding failure.
type Issue struct {
	Path    string // JSON Pointer to the attribute (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: what was expected at this position.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input (-1 when unknown).
	// Params carries structured parameters (e.g. {"key": "x", "type": "Person"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path (offset 12): expected string
		path := it.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, path)
		if it.Offset >= 0 {
			fmt.Fprintf(b, " (offset %d)", it.Offset)
		}
		if it.Hint != "" {
			fmt.Fprintf(b, ": %s", it.Hint)
		} else if it.Message != "" && it.Message != it.Code {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As see through an Issue list.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Is matches the category sentinels below against the issue codes.
func (iss Issues) Is(target error) bool {
	cat, ok := target.(*category)
	if !ok {
		return false
	}
	for _, it := range iss {
		if slices.Contains(cat.codes, it.Code) {
			return true
		}
	}
	return false
}

// HasCode reports whether err carries an issue with the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

type category struct {
	name  string
	codes []string
}

func (c *category) Error() string { return "bindjson: " + c.name }

// Error categories usable with errors.Is.
var (
	ErrParse                    error = &category{"malformed input", []string{CodeParseError, CodeTruncated, CodeOverflow, CodeInvalidEscape}}
	ErrTypeMismatch             error = &category{"type mismatch", []string{CodeInvalidType, CodeInvalidFormat}}
	ErrNotNullable              error = &category{"null for non-nullable attribute", []string{CodeNotNullable}}
	ErrUnknownAttribute         error = &category{"unknown attribute", []string{CodeUnknownKey}}
	ErrMissingMandatory         error = &category{"missing mandatory attribute", []string{CodeRequired}}
	ErrAmbiguousPolymorphicType error = &category{"ambiguous polymorphic type", []string{CodeDiscriminatorMissing}}
	ErrUnknownDiscriminator     error = &category{"unknown discriminator", []string{CodeDiscriminatorUnknown}}
	ErrConstruction             error = &category{"construction failed", []string{CodeConstruction}}
	ErrUnresolvedConverter      error = &category{"unresolved converter", []string{CodeUnresolvedConverter}}
	ErrConstructionAmbiguity    error = &category{"construction ambiguity", []string{CodeConstructionAmbiguity}}
	ErrTooManyMandatory         error = &category{"too many mandatory attributes", []string{CodeTooManyMandatory}}
	ErrInvalidBinding           error = &category{"invalid binding", []string{CodeInvalidBinding}}
)

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Rebase prefixes every issue path in err with segment, the JSON Pointer token
// of the enclosing attribute or element. Errors that are not Issues are
// wrapped as invalid_type at the segment.
func Rebase(err error, segment string) error {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: "/" + escapePointer(segment), Code: CodeInvalidType, Message: err.Error(), Cause: err, Offset: -1}}
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		base := "/" + escapePointer(segment)
		switch it.Path {
		case "", "/":
			it.Path = base
		default:
			it.Path = base + it.Path
		}
		out[i] = it
	}
	return out
}

func escapePointer(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// Pointer joins segments into a JSON Pointer, escaping '~' and '/'.
func Pointer(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(escapePointer(s))
	}
	return b.String()
}
