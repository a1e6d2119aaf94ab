// Package permissions resolves which companies a user may see unmasked and
// how masked values are bucketed into profile ranges.
package permissions

import (
	"errors"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUserRequired indicates a lookup without a username.
var ErrUserRequired = errors.New("permissions: username required")

// AdminRole grants unmasked access to every company.
const AdminRole = "admin"

// NotApplicable is returned when no range contains a value.
const NotApplicable = "NA"

// ProfileRange is a labeled half-open interval [Min, Max). A nil bound is unbounded.
type ProfileRange struct {
	Label string
	Min   *float64
	Max   *float64
}

// Contains reports whether v falls inside the range.
func (r ProfileRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v >= *r.Max {
		return false
	}
	return true
}

var labelPrinter = message.NewPrinter(language.English)

// DisplayLabel returns the stored label, or one rendered from the bounds.
func (r ProfileRange) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	switch {
	case r.Min != nil && r.Max != nil:
		return labelPrinter.Sprintf("%d-%d", int64(math.Round(*r.Min)), int64(math.Round(*r.Max)))
	case r.Min != nil:
		return labelPrinter.Sprintf("%d+", int64(math.Round(*r.Min)))
	case r.Max != nil:
		return labelPrinter.Sprintf("<%d", int64(math.Round(*r.Max)))
	}
	return NotApplicable
}

// RangeFromValue returns the label of the first range containing v.
func RangeFromValue(v float64, ranges []ProfileRange) string {
	for _, r := range ranges {
		if r.Contains(v) {
			return r.DisplayLabel()
		}
	}
	return NotApplicable
}

// AnonymizedName masks a company's display name.
func AnonymizedName(companyID string) string {
	prefix := companyID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return prefix + "-xxxx"
}
