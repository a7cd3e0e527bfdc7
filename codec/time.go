package codec

import (
	"strconv"
	"time"

	"github.com/reoring/bindjson"
)

// Time converts time.Time to and from RFC3339 strings. Encoding normalizes to
// UTC with RFC3339Nano (trailing zeros trimmed).
var Time = bindjson.Func(encodeTime, decodeTime)

// Duration encodes a time.Duration as its string form ("1h30m"). Decoding
// also accepts an integer count of nanoseconds.
var Duration = bindjson.Func(encodeDuration, decodeDuration)

func encodeTime(w *bindjson.Writer, t time.Time) error {
	w.WriteString(formatRFC3339Canonical(t))
	return nil
}

func decodeTime(r *bindjson.Reader) (time.Time, error) {
	off := r.Offset()
	b, err := r.ReadStringBytes()
	if err != nil {
		return time.Time{}, err
	}
	t, err := parseRFC3339(string(b))
	if err != nil {
		return time.Time{}, invalidFormat(off, "invalid RFC3339 time", err)
	}
	return t, nil
}

func encodeDuration(w *bindjson.Writer, d time.Duration) error {
	w.WriteString(d.String())
	return nil
}

func decodeDuration(r *bindjson.Reader) (time.Duration, error) {
	off := r.Offset()
	k, err := r.Peek()
	if err != nil {
		return 0, err
	}
	if k == bindjson.KindNumber {
		n, err := r.ReadInt(64)
		return time.Duration(n), err
	}
	b, err := r.ReadStringBytes()
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(string(b))
	if err != nil {
		return 0, invalidFormat(off, "invalid duration "+strconv.Quote(string(b)), err)
	}
	return d, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
