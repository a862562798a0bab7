package attribute

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/casematch/internal/domain"
)

// Schema is an ordered, immutable set of attributes with unique names.
type Schema struct {
	attrs []Attribute
	index map[string]int
}

// NewSchema validates uniqueness and builds a Schema preserving order.
func NewSchema(attrs []Attribute) (Schema, error) {
	if len(attrs) == 0 {
		return Schema{}, fmt.Errorf("%w: schema has no attributes", domain.ErrInvalidSchema)
	}
	index := make(map[string]int, len(attrs))
	for i, a := range attrs {
		if a.name == "" {
			return Schema{}, fmt.Errorf("%w: attribute %d has no name", domain.ErrInvalidSchema, i)
		}
		if _, dup := index[a.name]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate attribute %q", domain.ErrInvalidSchema, a.name)
		}
		index[a.name] = i
	}
	return Schema{attrs: slices.Clone(attrs), index: index}, nil
}

// Attributes returns the attributes in schema order.
func (s Schema) Attributes() []Attribute { return slices.Clone(s.attrs) }

// Len returns the number of attributes.
func (s Schema) Len() int { return len(s.attrs) }

// At returns the i-th attribute.
func (s Schema) At(i int) Attribute { return s.attrs[i] }

// Lookup returns the attribute with the given name.
func (s Schema) Lookup(name string) (Attribute, bool) {
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Names returns attribute names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		out[i] = a.name
	}
	return out
}
