// Package binding compiles Go types into descriptors and assembles them into
// an immutable Table that encodes and decodes JSON.
//
// A descriptor lists a type's attributes (external name, aliases,
// nullability, mandatory flag, converter and accessors) and how decoded
// values are constructed: by setting fields on a fresh value, by calling a
// designated creator with buffered arguments, or through a builder
// accumulator. Descriptors come from three places:
//
//   - explicit builders: binding.Object[T] with Field, Getter, Constructor
//     and WithBuilder;
//   - struct tags: Register[T] reads `bindjson:"..."` (falling back to the
//     json tag and the field name);
//   - structural fallback: any other struct reachable from a bound type.
//
// Interfaces are bound to concrete subtypes with Subtype; values are tagged
// with a discriminator member ("$type" by default) naming the concrete type.
//
// Resolution order for a type is: type-level custom converter, bound
// descriptor or polymorphic resolver, self-describing (bindjson.Object),
// built-in (package codec), dynamic (any), structural fallback. An
// attribute-level converter overrides all of them.
package binding
