// Package kpi holds the metric value type shared by every report and the
// null-safe formula library applied to quarterly figures.
package kpi

import (
	"encoding/json"
	"errors"
	"math"
)

// NotApplicableLabel is the wire representation of a missing value.
const NotApplicableLabel = "NA"

type kind uint8

const (
	kindNA kind = iota
	kindNumeric
	kindLabel
)

// Value is either a number, "NA", or a masking label produced by anonymization.
// The zero Value is NA.
type Value struct {
	kind  kind
	num   float64
	label string
}

// NA returns the not-applicable value.
func NA() Value { return Value{} }

// Num wraps a float. NaN and infinities are not representable and become NA.
func Num(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{kind: kindNumeric, num: v}
}

// FromPtr converts a nullable database number.
func FromPtr(v *float64) Value {
	if v == nil {
		return Value{}
	}
	return Num(*v)
}

// Label masks a value with a display label. Labels never take part in arithmetic.
func Label(label string) Value {
	if label == "" || label == NotApplicableLabel {
		return Value{}
	}
	return Value{kind: kindLabel, label: label}
}

// IsNumeric reports whether v carries a number.
func (v Value) IsNumeric() bool { return v.kind == kindNumeric }

// IsNA reports whether v is the not-applicable sentinel.
func (v Value) IsNA() bool { return v.kind == kindNA }

// IsLabel reports whether v was replaced by a masking label.
func (v Value) IsLabel() bool { return v.kind == kindLabel }

// Float returns the number and whether v is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumeric {
		return 0, false
	}
	return v.num, true
}

// String renders the value the way it is serialized.
func (v Value) String() string {
	switch v.kind {
	case kindNumeric:
		raw, _ := json.Marshal(v.num)
		return string(raw)
	case kindLabel:
		return v.label
	default:
		return NotApplicableLabel
	}
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumeric:
		return json.Marshal(v.num)
	case kindLabel:
		return json.Marshal(v.label)
	default:
		return json.Marshal(NotApplicableLabel)
	}
}

// UnmarshalJSON accepts numbers, "NA", labels and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if v == nil {
		return errors.New("kpi: unmarshal into nil value")
	}
	if string(data) == "null" {
		*v = NA()
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Num(num)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = Label(text)
	return nil
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
