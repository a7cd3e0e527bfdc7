package codec

import (
	"fmt"
	"strconv"

	"github.com/reoring/bindjson"
)

// Enum returns a converter encoding the values of T by name. Values without a
// name fail to encode; unknown names fail to decode.
func Enum[T comparable](names map[T]string) bindjson.Converter {
	byName := make(map[string]T, len(names))
	for v, n := range names {
		byName[n] = v
	}
	return bindjson.Func(
		func(w *bindjson.Writer, v T) error {
			n, ok := names[v]
			if !ok {
				return invalidFormat(-1, fmt.Sprintf("no name for %T value %v", v, v), nil)
			}
			w.WriteString(n)
			return nil
		},
		func(r *bindjson.Reader) (T, error) {
			var zero T
			off := r.Offset()
			b, err := r.ReadStringBytes()
			if err != nil {
				return zero, err
			}
			v, ok := byName[string(b)]
			if !ok {
				return zero, invalidFormat(off, fmt.Sprintf("unknown %T constant %s", zero, strconv.Quote(string(b))), nil)
			}
			return v, nil
		},
	)
}
