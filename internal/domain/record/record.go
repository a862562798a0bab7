package record

import (
	"maps"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

// Record is one catalog item with a value for every schema attribute.
type Record struct {
	key         string
	description string
	values      map[string]value.Value
}

// New validates values against the schema and creates a Record.
// Every schema attribute must be present with the declared kind; unknown names are rejected.
func New(key, description string, values map[string]value.Value, schema attribute.Schema) (Record, error) {
	if key == "" {
		return Record{}, domain.NewSchemaMismatch("Name", "record key is required")
	}
	for name, v := range values {
		attr, ok := schema.Lookup(name)
		if !ok {
			return Record{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
		if v.Kind() != attr.Kind() {
			return Record{}, domain.NewSchemaMismatch(name, "expected "+string(attr.Kind())+" value")
		}
	}
	for _, attr := range schema.Attributes() {
		if _, ok := values[attr.Name()]; !ok {
			return Record{}, domain.NewSchemaMismatch(attr.Name(), "missing value in record "+key)
		}
	}
	return Record{key: key, description: description, values: maps.Clone(values)}, nil
}

// Key returns the identifying name of the record.
func (r Record) Key() string { return r.key }

// Description returns the free-text description (not scored).
func (r Record) Description() string { return r.description }

// Value returns the value of an attribute.
func (r Record) Value(name string) (value.Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Values returns a copy of all attribute values.
func (r Record) Values() map[string]value.Value { return maps.Clone(r.values) }
