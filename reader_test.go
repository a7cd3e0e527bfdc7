package bindjson

import (
	"errors"
	"math"
	"testing"
)

func TestReader_ObjectIteration(t *testing.T) {
	r := NewReader([]byte(` { "a" : 1, "bc": [true, null, "x"] } `))
	if err := r.BeginObject(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	var keys []string
	for first := true; ; first = false {
		more, err := r.More('}', first)
		if err != nil {
			t.Fatalf("more: %v", err)
		}
		if !more {
			break
		}
		k, _, err := r.ReadKey()
		if err != nil {
			t.Fatalf("key: %v", err)
		}
		keys = append(keys, string(k))
		if err := r.Skip(); err != nil {
			t.Fatalf("skip: %v", err)
		}
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "bc" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if err := r.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func TestReader_KeyHashMatchesEscapedForm(t *testing.T) {
	r1 := NewReader([]byte(`"name":`))
	_, h1, err := r1.ReadKey()
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	r2 := NewReader([]byte(`"n\u0061me":`))
	k2, h2, err := r2.ReadKey()
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if string(k2) != "name" || h1 != h2 {
		t.Fatalf("escaped key must decode and hash like the plain one: %q %x %x", k2, h1, h2)
	}
}

func TestReader_Numbers(t *testing.T) {
	r := NewReader([]byte(`-9223372036854775808`))
	v, err := r.ReadInt(64)
	if err != nil || v != math.MinInt64 {
		t.Fatalf("min int: %d %v", v, err)
	}

	r = NewReader([]byte(`300`))
	if _, err := r.ReadInt(8); !errors.Is(err, ErrParse) {
		t.Fatalf("expected overflow as parse error, got %v", err)
	}

	r = NewReader([]byte(`1.5`))
	if _, err := r.ReadInt(32); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch for fractional int, got %v", err)
	}

	r = NewReader([]byte(`2.5e3`))
	f, err := r.ReadFloat(64)
	if err != nil || f != 2500 {
		t.Fatalf("float: %v %v", f, err)
	}

	r = NewReader([]byte(`1e400`))
	if _, err := r.ReadFloat(64); !errors.Is(err, ErrParse) {
		t.Fatalf("expected overflow for 1e400, got %v", err)
	}
}

func TestReader_Errors(t *testing.T) {
	cases := []struct {
		in   string
		code string
		off  int64
	}{
		{`{"a":1`, CodeTruncated, 6},
		{`{"a" 1}`, CodeParseError, 5},
		{`"ab`, CodeTruncated, 3},
		{`"a\qb"`, CodeInvalidEscape, 2},
		{`[1,]`, CodeParseError, 3},
		{`tru`, CodeTruncated, 3},
		{`nul1`, CodeParseError, 0},
		{`-`, CodeTruncated, 1},
	}
	for _, c := range cases {
		r := NewReader([]byte(c.in))
		var err error
		switch c.in[0] {
		case '"':
			_, err = r.ReadString()
		default:
			err = r.Skip()
		}
		iss, ok := AsIssues(err)
		if !ok || len(iss) != 1 {
			t.Fatalf("%s: expected one issue, got %v", c.in, err)
		}
		if iss[0].Code != c.code || iss[0].Offset != c.off {
			t.Fatalf("%s: got %s@%d want %s@%d", c.in, iss[0].Code, iss[0].Offset, c.code, c.off)
		}
	}
}

func TestReader_TrailingComma(t *testing.T) {
	for in, hint := range map[string]string{
		`[1,2, ]`:  `unexpected ']', expected value`,
		`{"a":1,}`: `unexpected '}', expected object key`,
	} {
		r := NewReader([]byte(in))
		closing := byte(']')
		if in[0] == '{' {
			closing = '}'
		}
		if _, err := r.Next(); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		var err error
		for first := true; err == nil; first = false {
			var more bool
			if more, err = r.More(closing, first); err != nil || !more {
				break
			}
			if closing == '}' {
				if _, _, err = r.ReadKey(); err != nil {
					break
				}
			}
			err = r.Skip()
		}
		iss, ok := AsIssues(err)
		if !ok || iss[0].Code != CodeParseError || iss[0].Hint != hint {
			t.Fatalf("%s: expected parse_error %q, got %v", in, hint, err)
		}
		if iss[0].Offset != int64(len(in)-1) {
			t.Fatalf("%s: offset %d", in, iss[0].Offset)
		}
	}
}

func TestReader_TrailingGarbage(t *testing.T) {
	r := NewReader([]byte(`{} x`))
	if err := r.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if err := r.End(); !errors.Is(err, ErrParse) {
		t.Fatalf("expected trailing garbage error, got %v", err)
	}
}

func TestReader_MaxDepth(t *testing.T) {
	r := NewReader([]byte(`[[[1]]]`))
	r.SetMaxDepth(2)
	if err := r.Skip(); !errors.Is(err, ErrParse) {
		t.Fatalf("expected depth error, got %v", err)
	}
	r.Reset([]byte(`[[1]]`))
	if err := r.Skip(); err != nil {
		t.Fatalf("depth 2 should pass: %v", err)
	}
}

func TestReader_RawAndRewind(t *testing.T) {
	r := NewReader([]byte(`{"x": {"y": [1, 2]}, "z": 3}`))
	if err := r.BeginObject(); err != nil {
		t.Fatal(err)
	}
	pos := r.Position()
	if _, err := r.More('}', true); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.ReadKey(); err != nil {
		t.Fatal(err)
	}
	raw, err := r.ReadRaw()
	if err != nil || string(raw) != `{"y": [1, 2]}` {
		t.Fatalf("raw: %q %v", raw, err)
	}
	r.Rewind(pos)
	if _, err := r.More('}', true); err != nil {
		t.Fatal(err)
	}
	k, _, err := r.ReadKey()
	if err != nil || string(k) != "x" {
		t.Fatalf("rewind did not restore position: %q %v", k, err)
	}
}

func TestReader_PeekMismatch(t *testing.T) {
	r := NewReader([]byte(`123`))
	if _, err := r.ReadString(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if k, err := r.Peek(); err != nil || k != KindNumber {
		t.Fatalf("mismatch must not consume: %v %v", k, err)
	}
}
