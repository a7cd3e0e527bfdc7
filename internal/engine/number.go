package engine

import (
	"math"
	"strconv"
)

// NumResult classifies the outcome of an integer conversion.
type NumResult int

const (
	NumOK NumResult = iota
	NumOverflow
	NumNotInteger
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ScanNumber validates the JSON number grammar starting at data[pos] and
// returns the index just past the literal. When the literal is malformed, bad
// holds the offending index (len(data) when the input ended early) and end is
// meaningless.
func ScanNumber(data []byte, pos int) (end int, bad int) {
	i := pos
	if i < len(data) && data[i] == '-' {
		i++
	}
	if i >= len(data) {
		return i, i
	}
	switch {
	case data[i] == '0':
		i++
	case data[i] >= '1' && data[i] <= '9':
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	default:
		return i, i
	}
	if i < len(data) && data[i] == '.' {
		i++
		if i >= len(data) || !isDigit(data[i]) {
			return i, i
		}
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	}
	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		i++
		if i < len(data) && (data[i] == '+' || data[i] == '-') {
			i++
		}
		if i >= len(data) || !isDigit(data[i]) {
			return i, i
		}
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	}
	return i, -1
}

// parseMagnitude accumulates the decimal digits of lit into a uint64.
func parseMagnitude(digits []byte) (uint64, NumResult) {
	if len(digits) == 0 {
		return 0, NumNotInteger
	}
	var u uint64
	for _, c := range digits {
		if !isDigit(c) {
			return 0, NumNotInteger
		}
		if u > math.MaxUint64/10 {
			return 0, NumOverflow
		}
		u *= 10
		next := u + uint64(c-'0')
		if next < u {
			return 0, NumOverflow
		}
		u = next
	}
	return u, NumOK
}

// ParseInt converts an integer literal to a signed value of the given bit
// size. Literals with a fraction or exponent report NumNotInteger.
func ParseInt(lit []byte, bitSize int) (int64, NumResult) {
	neg := len(lit) > 0 && lit[0] == '-'
	digits := lit
	if neg {
		digits = lit[1:]
	}
	u, res := parseMagnitude(digits)
	if res != NumOK {
		return 0, res
	}
	limit := uint64(1) << (bitSize - 1)
	if neg {
		if u > limit {
			return 0, NumOverflow
		}
		return -int64(u), NumOK
	}
	if u > limit-1 {
		return 0, NumOverflow
	}
	return int64(u), NumOK
}

// ParseUint converts a non-negative integer literal. Negative literals other
// than -0 overflow.
func ParseUint(lit []byte, bitSize int) (uint64, NumResult) {
	neg := len(lit) > 0 && lit[0] == '-'
	digits := lit
	if neg {
		digits = lit[1:]
	}
	u, res := parseMagnitude(digits)
	if res != NumOK {
		return 0, res
	}
	if neg && u != 0 {
		return 0, NumOverflow
	}
	if bitSize < 64 && u > uint64(1)<<bitSize-1 {
		return 0, NumOverflow
	}
	return u, NumOK
}

// AppendFloat appends the shortest representation of f that round-trips at
// the given bit size. Exponent form is used outside [1e-6, 1e21).
func AppendFloat(dst []byte, f float64, bitSize int) []byte {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bitSize == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bitSize == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	dst = strconv.AppendFloat(dst, f, format, -1, bitSize)
	if format == 'e' {
		// e-09 -> e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}
