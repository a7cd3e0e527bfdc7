package codec

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/bindjson"
)

func TestUUID(t *testing.T) {
	id := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	c := mustConverter(t, reflect.TypeFor[uuid.UUID]())
	out := encode(t, c, id)
	if out != `"1b4e28ba-2fa1-11d2-883f-0016d3cca427"` {
		t.Fatalf("unexpected uuid output: %s", out)
	}
	if got := decode(t, c, out); got != id {
		t.Fatalf("uuid roundtrip: %v", got)
	}
	if err := decodeErr(c, `"not-a-uuid"`); !errors.Is(err, bindjson.ErrTypeMismatch) {
		t.Fatalf("expected invalid_format, got %v", err)
	}
}

func TestNumberAndRaw(t *testing.T) {
	if got := decode(t, Number, "12.500").(json.Number); got != "12.500" {
		t.Fatalf("number literal must be kept: %s", got)
	}
	if out := encode(t, Number, json.Number("")); out != "0" {
		t.Fatalf("empty number: %s", out)
	}
	w := bindjson.NewWriter(0)
	if err := Number.Encode(w, json.Number("12x")); err == nil {
		t.Fatalf("expected invalid number error")
	}

	raw := decode(t, Raw, `{"a": [1, 2]}`).(json.RawMessage)
	if string(raw) != `{"a": [1, 2]}` {
		t.Fatalf("raw bytes: %s", raw)
	}
	if out := encode(t, Raw, json.RawMessage(nil)); out != "null" {
		t.Fatalf("empty raw: %s", out)
	}
	if err := Raw.Encode(w, json.RawMessage(`{bad`)); err == nil {
		t.Fatalf("expected invalid raw error")
	}
}

type blob []byte

func TestBytes(t *testing.T) {
	c := mustConverter(t, reflect.TypeFor[blob]())
	if out := encode(t, c, blob("hi")); out != `"aGk="` {
		t.Fatalf("unexpected base64: %s", out)
	}
	if got := decode(t, c, `"aGk="`).(blob); string(got) != "hi" {
		t.Fatalf("unexpected bytes: %q", got)
	}
	if got := decode(t, c, `null`).(blob); got != nil {
		t.Fatalf("null must decode to nil")
	}
}

func TestText(t *testing.T) {
	c := mustConverter(t, reflect.TypeFor[netip.Addr]())
	addr := netip.MustParseAddr("10.0.0.1")
	if out := encode(t, c, addr); out != `"10.0.0.1"` {
		t.Fatalf("unexpected text output: %s", out)
	}
	if got := decode(t, c, `"10.0.0.1"`); got != addr {
		t.Fatalf("unexpected addr %v", got)
	}
	if err := decodeErr(c, `"x.y"`); !errors.Is(err, bindjson.ErrTypeMismatch) {
		t.Fatalf("expected invalid_format, got %v", err)
	}
}

type color int

const (
	red color = iota
	green
)

func TestEnum(t *testing.T) {
	c := Enum(map[color]string{red: "RED", green: "GREEN"})
	if out := encode(t, c, green); out != `"GREEN"` {
		t.Fatalf("unexpected enum output: %s", out)
	}
	if got := decode(t, c, `"RED"`); got != red {
		t.Fatalf("unexpected enum value %v", got)
	}
	if err := decodeErr(c, `"BLUE"`); !errors.Is(err, bindjson.ErrTypeMismatch) {
		t.Fatalf("expected unknown constant error, got %v", err)
	}
	w := bindjson.NewWriter(0)
	if err := c.Encode(w, color(9)); err == nil {
		t.Fatalf("expected error for unnamed value")
	}
}
