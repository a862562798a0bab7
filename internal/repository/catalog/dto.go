package catalog

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

// Hash field names. Attribute values live under "a:<attribute>".
const (
	fieldName        = "name"
	fieldDescription = "description"
	attrFieldPrefix  = "a:"
)

// recordToHash converts a Record to a map for HSET.
func recordToHash(r record.Record, schema attribute.Schema) map[string]string {
	m := make(map[string]string, schema.Len()+2)
	m[fieldName] = r.Key()
	m[fieldDescription] = r.Description()
	for _, name := range schema.Names() {
		if v, ok := r.Value(name); ok {
			m[attrFieldPrefix+name] = v.String()
		}
	}
	return m
}

// recordFromHash hydrates and validates a Record from an HGETALL result map.
// Attribute fields not present in the schema are ignored so that a schema
// can drop attributes without rewriting the stored catalog.
func recordFromHash(m map[string]string, schema attribute.Schema) (record.Record, error) {
	values := make(map[string]value.Value, schema.Len())
	for field, raw := range m {
		name, ok := strings.CutPrefix(field, attrFieldPrefix)
		if !ok {
			continue
		}
		attr, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		v, err := value.Parse(attr.Kind(), raw)
		if err != nil {
			return record.Record{}, domain.NewSchemaMismatch(name, fmt.Sprintf("stored value: %v", err))
		}
		values[name] = v
	}
	return record.New(m[fieldName], m[fieldDescription], values, schema)
}
