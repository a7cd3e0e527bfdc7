package codec

import (
	"reflect"
	"testing"

	"github.com/reoring/bindjson"
)

// resolve is a minimal Resolver over the built-ins only.
func resolve(t reflect.Type) (bindjson.Converter, error) {
	c, ok, err := Builtin(t, resolve)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Unresolved(t, "not built in")
	}
	return c, nil
}

func mustConverter(t *testing.T, typ reflect.Type) bindjson.Converter {
	t.Helper()
	c, err := resolve(typ)
	if err != nil {
		t.Fatalf("resolve %v: %v", typ, err)
	}
	return c
}

func encode(t *testing.T, c bindjson.Converter, v any) string {
	t.Helper()
	w := bindjson.NewWriter(64)
	if err := c.Encode(w, v); err != nil {
		t.Fatalf("encode %v: %v", v, err)
	}
	return string(w.Bytes())
}

func decode(t *testing.T, c bindjson.Converter, in string) any {
	t.Helper()
	r := bindjson.NewReader([]byte(in))
	v, err := c.Decode(r)
	if err != nil {
		t.Fatalf("decode %s: %v", in, err)
	}
	if err := r.End(); err != nil {
		t.Fatalf("decode %s: trailing input: %v", in, err)
	}
	return v
}

func decodeErr(c bindjson.Converter, in string) error {
	_, err := c.Decode(bindjson.NewReader([]byte(in)))
	return err
}
