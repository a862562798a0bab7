package record

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

// Query is a partial record: any attribute it omits, or holds as an empty value,
// is ignored by scoring.
type Query struct {
	values map[string]value.Value
}

// NewQuery validates a partial set of values against the schema.
// Empty values are dropped; unknown names and kind mismatches are rejected.
func NewQuery(values map[string]value.Value, schema attribute.Schema) (Query, error) {
	out := make(map[string]value.Value, len(values))
	for name, v := range values {
		attr, ok := schema.Lookup(name)
		if !ok {
			return Query{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
		if v.IsEmpty() {
			continue
		}
		if v.Kind() != attr.Kind() {
			return Query{}, domain.NewSchemaMismatch(name, "expected "+string(attr.Kind())+" value")
		}
		out[name] = v
	}
	return Query{values: out}, nil
}

// ParseQuery decodes loosely typed input (e.g. a JSON object) into a Query.
// null and "" mean "not specified".
func ParseQuery(raw map[string]any, schema attribute.Schema) (Query, error) {
	values := make(map[string]value.Value, len(raw))
	for name, v := range raw {
		attr, ok := schema.Lookup(name)
		if !ok {
			return Query{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
		val, err := value.FromAny(attr.Kind(), v)
		if err != nil {
			return Query{}, domain.NewSchemaMismatch(name, err.Error())
		}
		values[name] = val
	}
	return NewQuery(values, schema)
}

// Value returns the specified value for an attribute.
// ok is false when the attribute is absent or empty.
func (q Query) Value(name string) (value.Value, bool) {
	v, ok := q.values[name]
	if !ok || v.IsEmpty() {
		return value.Value{}, false
	}
	return v, true
}

// Len returns the number of specified attributes.
func (q Query) Len() int {
	n := 0
	for _, v := range q.values {
		if !v.IsEmpty() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no attribute is specified.
func (q Query) IsEmpty() bool { return q.Len() == 0 }

// Values returns a copy of the specified values.
func (q Query) Values() map[string]value.Value { return maps.Clone(q.values) }

// Names returns specified attribute names, sorted.
func (q Query) Names() []string {
	names := make([]string, 0, len(q.values))
	for name, v := range q.values {
		if !v.IsEmpty() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
