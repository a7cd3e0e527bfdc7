package codec

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/bindjson"
)

// DecodeDynamic decodes the next value into the untyped representation:
// map[string]any, []any, string, bool, nil, and float64 or json.Number
// depending on mode.
func DecodeDynamic(r *bindjson.Reader, mode bindjson.NumberMode) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case bindjson.KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		m := map[string]any{}
		for first := true; ; first = false {
			more, err := r.More('}', first)
			if err != nil {
				return nil, err
			}
			if !more {
				return m, nil
			}
			name, _, err := r.ReadKey()
			if err != nil {
				return nil, err
			}
			key := string(name)
			v, err := DecodeDynamic(r, mode)
			if err != nil {
				return nil, bindjson.Rebase(err, key)
			}
			m[key] = v
		}
	case bindjson.KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		out := []any{}
		for i := 0; ; i++ {
			more, err := r.More(']', i == 0)
			if err != nil {
				return nil, err
			}
			if !more {
				return out, nil
			}
			v, err := DecodeDynamic(r, mode)
			if err != nil {
				return nil, bindjson.Rebase(err, strconv.Itoa(i))
			}
			out = append(out, v)
		}
	case bindjson.KindString:
		return r.ReadString()
	case bindjson.KindNumber:
		if mode == bindjson.NumberJSONNumber {
			lit, err := r.ReadNumber()
			if err != nil {
				return nil, err
			}
			return json.Number(lit), nil
		}
		return r.ReadFloat(64)
	case bindjson.KindBool:
		return r.ReadBool()
	case bindjson.KindNull:
		_, err := r.ReadNull()
		return nil, err
	}
	return nil, r.Skip()
}
