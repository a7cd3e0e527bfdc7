// Package bindjson is the core of a reflection-bound JSON engine: a
// hand-written Reader and Writer over byte buffers, the Converter contract
// every bound type is encoded through, the issue taxonomy returned by all
// operations, and the table-wide Settings.
//
// Types are bound to converters by the binding package, which compiles
// descriptors (attribute lists, construction plans and polymorphic
// resolvers) into an immutable Table. Built-in converters for scalars,
// well-known types and containers live in the codec package.
//
// Quick start:
//
//	tb := binding.NewTableBuilder()
//	binding.Register[Person](tb, binding.UnknownFail())
//	table, err := tb.Build()
//	...
//	out, err := table.Encode(Person{Name: "Ada"})
//	p, err := binding.Decode[Person](table, out)
package bindjson
