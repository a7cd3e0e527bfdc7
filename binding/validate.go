package binding

import (
	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/i18n"
)

// validate checks the observed mask against the mandatory mask and reports
// every missing attribute.
func (d *Descriptor) validate(observed uint64) error {
	missing := d.required &^ observed
	if missing == 0 {
		return nil
	}
	var iss bindjson.Issues
	for _, a := range d.attrs {
		if a.bit == 0 || missing&a.bit == 0 {
			continue
		}
		hint := "missing " + a.name
		if len(a.aliases) > 0 {
			hint += " (or an alias)"
		}
		iss = bindjson.AppendIssues(iss, bindjson.Issue{
			Path:    bindjson.Pointer(a.name),
			Code:    bindjson.CodeRequired,
			Message: i18n.T(bindjson.CodeRequired, nil),
			Hint:    hint,
			Offset:  -1,
			Params:  map[string]any{"type": d.name},
		})
	}
	return iss
}
