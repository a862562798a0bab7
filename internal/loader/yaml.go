package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

type yamlRecord struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Values      map[string]any `yaml:"values"`
}

// ReadYAML reads a catalog from a YAML list of {name, description, values}.
func ReadYAML(r io.Reader, schema attribute.Schema) ([]record.Record, error) {
	var raw []yamlRecord
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}

	out := make([]record.Record, 0, len(raw))
	for i, yr := range raw {
		rec, err := yr.decode(schema)
		if err != nil {
			return nil, fmt.Errorf("yaml record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (yr yamlRecord) decode(schema attribute.Schema) (record.Record, error) {
	values := make(map[string]value.Value, len(yr.Values))
	for name, v := range yr.Values {
		attr, ok := schema.Lookup(name)
		if !ok {
			return record.Record{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
		if s, isStr := v.(string); isStr {
			v = normalizeCell(s)
		}
		val, err := value.Decode(attr.Kind(), v)
		if err != nil {
			return record.Record{}, domain.NewSchemaMismatch(name, err.Error())
		}
		values[name] = val
	}
	return record.New(normalizeCell(yr.Name), normalizeCell(yr.Description), values, schema)
}
