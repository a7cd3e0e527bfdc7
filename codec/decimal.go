package codec

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reoring/bindjson"
)

// maxDecimalExponent bounds the exponent accepted on decode so that a short
// literal such as 1e999999 cannot expand into an enormous number.
const maxDecimalExponent = 4096

// Decimal is the arbitrary-precision decimal bound by default.
type Decimal = decimal.Decimal

// DecimalNumber encodes a Decimal as a JSON number literal, preserving scale:
// 10.50 stays 10.50.
var DecimalNumber = bindjson.Func(encodeDecimal, decodeDecimal)

// FixedScale returns a Decimal converter that rounds half away from zero to
// exactly scale fractional digits in both directions (for example money with
// scale 2).
func FixedScale(scale int32) bindjson.Converter {
	return bindjson.Func(
		func(w *bindjson.Writer, d Decimal) error {
			w.WriteRaw([]byte(d.StringFixed(scale)))
			return nil
		},
		func(r *bindjson.Reader) (Decimal, error) {
			d, err := decodeDecimal(r)
			if err != nil {
				return Decimal{}, err
			}
			return d.Round(scale), nil
		},
	)
}

// decimalLiteral renders d without an exponent, keeping trailing zeros of
// its scale.
func decimalLiteral(d Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func encodeDecimal(w *bindjson.Writer, d Decimal) error {
	w.WriteRaw([]byte(decimalLiteral(d)))
	return nil
}

func decodeDecimal(r *bindjson.Reader) (Decimal, error) {
	off := r.Offset()
	lit, err := r.ReadNumber()
	if err != nil {
		return Decimal{}, err
	}
	d, err := decimal.NewFromString(string(lit))
	if err != nil {
		return Decimal{}, invalidFormat(off, err.Error(), err)
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		err := fmt.Errorf("decimal %s: exponent out of range", lit)
		return Decimal{}, invalidFormat(off, err.Error(), err)
	}
	return d, nil
}
