package attribute

import (
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/casematch/internal/domain"
)

// Kind is the value kind of an attribute.
type Kind string

// Attribute kind constants.
const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
	Boolean     Kind = "boolean"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Numeric, Categorical, Boolean:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown attribute kind %q", domain.ErrInvalidSchema, s)
	}
}

// Attribute is an immutable schema entry describing one attribute.
type Attribute struct {
	name          string
	kind          Kind
	min           float64
	max           float64
	allowedValues []string
}

// NewNumeric validates and creates a numeric attribute with range [lo, hi].
func NewNumeric(name string, lo, hi float64) (Attribute, error) {
	if err := validateName(name); err != nil {
		return Attribute{}, err
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Attribute{}, fmt.Errorf("%w: attribute %q: range bounds must be finite", domain.ErrInvalidSchema, name)
	}
	if lo > hi {
		return Attribute{}, fmt.Errorf("%w: attribute %q: min %g greater than max %g", domain.ErrInvalidSchema, name, lo, hi)
	}
	return Attribute{name: name, kind: Numeric, min: lo, max: hi}, nil
}

// NewCategorical validates and creates a categorical attribute.
// allowed is informational and never consulted during scoring.
func NewCategorical(name string, allowed []string) (Attribute, error) {
	if err := validateName(name); err != nil {
		return Attribute{}, err
	}
	return Attribute{name: name, kind: Categorical, allowedValues: slices.Clone(allowed)}, nil
}

// NewBoolean validates and creates a boolean attribute.
func NewBoolean(name string) (Attribute, error) {
	if err := validateName(name); err != nil {
		return Attribute{}, err
	}
	return Attribute{name: name, kind: Boolean}, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: attribute name is required", domain.ErrInvalidSchema)
	}
	if len(name) > 64 {
		return fmt.Errorf("%w: attribute name %q too long (max 64)", domain.ErrInvalidSchema, name)
	}
	return nil
}

// Name returns the attribute name.
func (a Attribute) Name() string { return a.name }

// Kind returns the attribute value kind.
func (a Attribute) Kind() Kind { return a.kind }

// Min returns the lower range bound (numeric only).
func (a Attribute) Min() float64 { return a.min }

// Max returns the upper range bound (numeric only).
func (a Attribute) Max() float64 { return a.max }

// AllowedValues returns the enumerated values (categorical only).
func (a Attribute) AllowedValues() []string { return slices.Clone(a.allowedValues) }

// Degenerate reports whether a numeric attribute has a zero-width range.
func (a Attribute) Degenerate() bool { return a.kind == Numeric && a.min == a.max }

// Allows reports whether v is one of the enumerated values.
// An attribute without an enumeration allows any value.
func (a Attribute) Allows(v string) bool {
	if len(a.allowedValues) == 0 {
		return true
	}
	return slices.Contains(a.allowedValues, v)
}
