package codec

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reoring/bindjson"
)

func TestDecimal_PreservesScale(t *testing.T) {
	cases := map[string]string{
		"0":                                "0",
		"2.50":                             "2.50",
		"-0.05":                            "-0.05",
		"1.5e3":                            "1500",
		"12e-3":                            "0.012",
		"123456789012345678901234567890.1": "123456789012345678901234567890.1",
	}
	for in, want := range cases {
		d := decode(t, DecimalNumber, in).(Decimal)
		if out := encode(t, DecimalNumber, d); out != want {
			t.Fatalf("%s: got %s want %s", in, out, want)
		}
	}
	if out := encode(t, DecimalNumber, decimal.New(-314, -2)); out != "-3.14" {
		t.Fatalf("unexpected literal %s", out)
	}
	var zero Decimal
	if out := encode(t, DecimalNumber, zero); out != "0" {
		t.Fatalf("zero value must encode as 0, got %s", out)
	}
}

func TestDecimal_Rejects(t *testing.T) {
	for _, bad := range []string{`"1.5"`, "1e99999", "true"} {
		if err := decodeErr(DecimalNumber, bad); err == nil {
			t.Fatalf("%s: expected error", bad)
		}
	}
	if err := decodeErr(DecimalNumber, "1e99999"); !errors.Is(err, bindjson.ErrTypeMismatch) {
		t.Fatalf("expected invalid_format, got %v", err)
	}
}

func TestDecimal_FixedScale(t *testing.T) {
	money := FixedScale(2)
	cases := map[string]string{
		"1.005":   "1.01",
		"1.004":   "1.00",
		"-1.005":  "-1.01",
		"7":       "7.00",
		"0.125":   "0.13",
		"3.14159": "3.14",
	}
	for in, want := range cases {
		if out := encode(t, money, decimal.RequireFromString(in)); out != want {
			t.Fatalf("encode %s: got %s want %s", in, out, want)
		}
		got := decode(t, money, in).(Decimal)
		if got.StringFixed(2) != want || !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("decode %s: got %s want %s", in, got, want)
		}
	}
}
