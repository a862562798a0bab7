package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

// Reserved column names.
const (
	ColumnName        = "Name"
	ColumnDescription = "Description"
)

// ReadCSV reads a catalog from CSV. The header row names the columns: Name is
// the record key, Description is optional, and every schema attribute needs a
// column. Unknown columns are ignored.
func ReadCSV(r io.Reader, schema attribute.Schema) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	cols, err := mapColumns(header, schema)
	if err != nil {
		return nil, err
	}

	var out []record.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := cols.decode(row, schema)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

type columnMap struct {
	name        int
	description int
	attrs       map[string]int
}

func mapColumns(header []string, schema attribute.Schema) (columnMap, error) {
	cols := columnMap{name: -1, description: -1, attrs: make(map[string]int, schema.Len())}
	for i, h := range header {
		h = normalizeCell(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case h == ColumnName:
			cols.name = i
		case h == ColumnDescription:
			cols.description = i
		default:
			if _, ok := schema.Lookup(h); ok {
				cols.attrs[h] = i
			}
		}
	}
	if cols.name < 0 {
		return columnMap{}, fmt.Errorf("csv header: missing %q column", ColumnName)
	}
	for _, name := range schema.Names() {
		if _, ok := cols.attrs[name]; !ok {
			return columnMap{}, fmt.Errorf("csv header: missing column for attribute %q", name)
		}
	}
	return cols, nil
}

func (c columnMap) decode(row []string, schema attribute.Schema) (record.Record, error) {
	key := normalizeCell(row[c.name])
	desc := ""
	if c.description >= 0 {
		desc = normalizeCell(row[c.description])
	}

	values := make(map[string]value.Value, len(c.attrs))
	for name, i := range c.attrs {
		attr, _ := schema.Lookup(name)
		v, err := value.Parse(attr.Kind(), normalizeCell(row[i]))
		if err != nil {
			return record.Record{}, fmt.Errorf("column %q: %w", name, err)
		}
		values[name] = v
	}
	return record.New(key, desc, values, schema)
}
