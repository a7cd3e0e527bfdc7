package binding

import (
	"log/slog"

	"github.com/reoring/bindjson"
)

// Option configures a TableBuilder.
type Option func(*TableBuilder)

// WithSettings replaces the table-wide defaults.
func WithSettings(s bindjson.Settings) Option {
	return func(tb *TableBuilder) { tb.settings = s }
}

// WithLogger sets the logger used for build and fallback diagnostics. The
// default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(tb *TableBuilder) {
		if l != nil {
			tb.logger = l
		}
	}
}

type typeOptions struct {
	name        string
	unknown     *bindjson.UnknownPolicy
	arrayFormat bool
	preferArray bool
	discKey     string
	signature   bindjson.TypeSignature
	isDefault   bool
	creators    []Creator
}

// TypeOption configures a bound type, a polymorphic interface or a subtype
// registration. Options that do not apply to the target are ignored.
type TypeOption func(*typeOptions)

func applyOptions(opts []TypeOption) typeOptions {
	var o typeOptions
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Name sets the discriminator value of a type (default: its qualified Go
// name).
func Name(n string) TypeOption { return func(o *typeOptions) { o.name = n } }

// UnknownFail rejects object members that match no attribute.
func UnknownFail() TypeOption {
	return func(o *typeOptions) { p := bindjson.UnknownFail; o.unknown = &p }
}

// UnknownIgnore skips object members that match no attribute.
func UnknownIgnore() TypeOption {
	return func(o *typeOptions) { p := bindjson.UnknownIgnore; o.unknown = &p }
}

// ArrayFormat additionally accepts the positional array form on decode.
func ArrayFormat() TypeOption { return func(o *typeOptions) { o.arrayFormat = true } }

// PreferArrayFormat encodes values positionally as arrays (and accepts both
// forms on decode).
func PreferArrayFormat() TypeOption {
	return func(o *typeOptions) {
		o.arrayFormat = true
		o.preferArray = true
	}
}

// DiscriminatorKey overrides the member name carrying the concrete type.
func DiscriminatorKey(k string) TypeOption { return func(o *typeOptions) { o.discKey = k } }

// ExcludeTypeInfo suppresses the discriminator when encoding values of a
// polymorphic interface.
func ExcludeTypeInfo() TypeOption {
	return func(o *typeOptions) { o.signature = bindjson.SignatureExclude }
}

// AsDefault makes a subtype the concrete type used when a polymorphic value
// carries no discriminator.
func AsDefault() TypeOption { return func(o *typeOptions) { o.isDefault = true } }

// WithCreator adds a construction candidate to a tag-registered type.
func WithCreator(c Creator) TypeOption {
	return func(o *typeOptions) { o.creators = append(o.creators, c) }
}
