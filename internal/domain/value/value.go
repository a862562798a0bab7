// Package value holds the tagged attribute value used by records and queries.
package value

import (
	"strconv"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
)

// Value is a tagged variant: exactly one of number, category or flag is meaningful,
// selected by Kind. The zero Value is empty.
type Value struct {
	kind attribute.Kind
	num  float64
	cat  string
	flag bool
}

// Num creates a numeric value.
func Num(v float64) Value { return Value{kind: attribute.Numeric, num: v} }

// Cat creates a categorical value.
func Cat(v string) Value { return Value{kind: attribute.Categorical, cat: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: attribute.Boolean, flag: v} }

// Kind returns the value kind, or "" for the empty value.
func (v Value) Kind() attribute.Kind { return v.kind }

// IsEmpty reports whether the value carries no information:
// the zero Value or an empty categorical string.
func (v Value) IsEmpty() bool {
	return v.kind == "" || (v.kind == attribute.Categorical && v.cat == "")
}

// Number returns the numeric payload.
func (v Value) Number() float64 { return v.num }

// Category returns the categorical payload.
func (v Value) Category() string { return v.cat }

// Flag returns the boolean payload.
func (v Value) Flag() bool { return v.flag }

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case attribute.Numeric:
		return v.num == o.num
	case attribute.Categorical:
		return v.cat == o.cat
	case attribute.Boolean:
		return v.flag == o.flag
	default:
		return true
	}
}

// Any returns the payload as a plain Go value (float64, string, bool or nil).
func (v Value) Any() any {
	switch v.kind {
	case attribute.Numeric:
		return v.num
	case attribute.Categorical:
		return v.cat
	case attribute.Boolean:
		return v.flag
	default:
		return nil
	}
}

// String formats the payload for storage and display.
func (v Value) String() string {
	switch v.kind {
	case attribute.Numeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case attribute.Categorical:
		return v.cat
	case attribute.Boolean:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}
