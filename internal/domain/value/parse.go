package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
)

// Parse converts a textual cell into a Value of the given kind.
// Booleans accept true/false, yes/no and 1/0 in any case.
func Parse(kind attribute.Kind, s string) (Value, error) {
	switch kind {
	case attribute.Numeric:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("not a number: %q", s)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("number must be finite: %q", s)
		}
		return Num(f), nil
	case attribute.Categorical:
		return Cat(NormalizeText(s)), nil
	case attribute.Boolean:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			return Bool(true), nil
		case "false", "no", "0":
			return Bool(false), nil
		default:
			return Value{}, fmt.Errorf("not a boolean: %q", s)
		}
	default:
		return Value{}, fmt.Errorf("unknown kind %q", kind)
	}
}

// FromAny converts a decoded JSON/YAML scalar into a Value of the given kind.
// nil and blank strings yield the empty Value; a payload of the wrong type is
// an error.
func FromAny(kind attribute.Kind, v any) (Value, error) {
	if v == nil {
		return Value{}, nil
	}
	if s, ok := v.(string); ok && NormalizeText(s) == "" {
		return Value{}, nil
	}
	switch kind {
	case attribute.Numeric:
		f, ok := toFloat(v)
		if !ok {
			return Value{}, fmt.Errorf("expected number, got %T", v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("number must be finite")
		}
		return Num(f), nil
	case attribute.Categorical:
		s, ok := v.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected string, got %T", v)
		}
		return Cat(NormalizeText(s)), nil
	case attribute.Boolean:
		b, ok := v.(bool)
		if !ok {
			return Value{}, fmt.Errorf("expected boolean, got %T", v)
		}
		return Bool(b), nil
	default:
		return Value{}, fmt.Errorf("unknown kind %q", kind)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Decode converts a decoded JSON/YAML scalar into a record value.
// Unlike FromAny, an empty string is a legal categorical value and nil is an error.
func Decode(kind attribute.Kind, v any) (Value, error) {
	if v == nil {
		return Value{}, fmt.Errorf("missing value")
	}
	if s, ok := v.(string); ok && kind == attribute.Categorical {
		return Cat(NormalizeText(s)), nil
	}
	val, err := FromAny(kind, v)
	if err != nil {
		return Value{}, err
	}
	if val.IsEmpty() {
		return Value{}, fmt.Errorf("missing value")
	}
	return val, nil
}
