package casematch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain"
)

const tagKey = "casematch"

// schemaMeta holds parsed struct tag metadata, cached per TypedEngine.
type schemaMeta struct {
	typ reflect.Type

	keyIdx  int // -1 if not present
	descIdx int // -1 if not present

	attrs   []Attribute
	weights map[string]Weight
	fields  []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
	kind      Kind
}

// SchemaOf returns the attributes declared by T's casematch struct tags.
func SchemaOf[T any]() ([]Attribute, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	return cloneAttributes(meta.attrs), nil
}

// parseSchema reflects on T and extracts casematch struct tag metadata.
//
// Tag grammar:
//
//	`casematch:"Name,kind[,min=N][,max=N][,values=a|b][,weight=N][,off]"`
//	`casematch:",key"`
//	`casematch:",description"`
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("casematch: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("casematch: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, keyIdx: -1, descIdx: -1, weights: make(map[string]Weight)}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if len(meta.attrs) == 0 {
		return nil, fmt.Errorf("casematch: no attribute tags in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's casematch tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")
	name := parts[0]
	if len(parts) < 2 {
		return fmt.Errorf("casematch: field %s: tag %q has no kind", f.Name, tag)
	}
	role := parts[1]

	switch role {
	case "key":
		if meta.keyIdx != -1 {
			return fmt.Errorf("casematch: duplicate key tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("casematch: key field %s must be a string", f.Name)
		}
		meta.keyIdx = idx
		return nil
	case "description":
		if meta.descIdx != -1 {
			return fmt.Errorf("casematch: duplicate description tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("casematch: description field %s must be a string", f.Name)
		}
		meta.descIdx = idx
		return nil
	}

	if name == "" {
		name = f.Name
	}
	kind := Kind(role)
	if err := checkFieldKind(f, kind); err != nil {
		return err
	}

	attr := Attribute{Name: name, Kind: kind}
	w := Weight{Value: 1, Enabled: true}
	for _, opt := range parts[2:] {
		if err := applyOption(&attr, &w, f.Name, opt); err != nil {
			return err
		}
	}

	meta.attrs = append(meta.attrs, attr)
	meta.weights[name] = w
	meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name, kind: kind})
	return nil
}

func applyOption(attr *Attribute, w *Weight, fieldName, opt string) error {
	if opt == "off" {
		w.Enabled = false
		return nil
	}
	key, val, ok := strings.Cut(opt, "=")
	if !ok {
		return fmt.Errorf("casematch: field %s: unknown option %q", fieldName, opt)
	}

	var err error
	switch key {
	case "min":
		attr.Min, err = strconv.ParseFloat(val, 64)
	case "max":
		attr.Max, err = strconv.ParseFloat(val, 64)
	case "weight":
		w.Value, err = strconv.ParseFloat(val, 64)
	case "values":
		attr.Values = strings.Split(val, "|")
	default:
		return fmt.Errorf("casematch: field %s: unknown option %q", fieldName, key)
	}
	if err != nil {
		return fmt.Errorf("casematch: field %s: option %s: %w", fieldName, key, err)
	}
	return nil
}

func checkFieldKind(f reflect.StructField, kind Kind) error {
	k := f.Type.Kind()
	var ok bool
	switch kind {
	case Numeric:
		ok = isNumber(k)
	case Categorical:
		ok = k == reflect.String
	case Boolean:
		ok = k == reflect.Bool
	default:
		return fmt.Errorf("casematch: field %s: unknown kind %q", f.Name, kind)
	}
	if !ok {
		return fmt.Errorf("casematch: field %s: %s attribute cannot be a %s", f.Name, kind, f.Type)
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// structValue dereferences item down to its struct. A nil item is a schema
// mismatch: it has no attribute values to score.
func (m *schemaMeta) structValue(item any) (reflect.Value, error) {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, domain.NewSchemaMismatch("", "nil "+m.typ.String()+" item")
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != m.typ {
		return reflect.Value{}, domain.NewSchemaMismatch("", fmt.Sprintf("item is %T, not %s", item, m.typ))
	}
	return v, nil
}

// toRecord converts a typed struct to a Record using schema metadata.
func (m *schemaMeta) toRecord(item any) (Record, error) {
	v, err := m.structValue(item)
	if err != nil {
		return Record{}, err
	}

	var r Record
	if m.keyIdx != -1 {
		r.Key = v.Field(m.keyIdx).String()
	}
	if m.descIdx != -1 {
		r.Description = v.Field(m.descIdx).String()
	}
	r.Values = m.values(v)
	return r, nil
}

// toQuery uses every attribute of item as the query.
func (m *schemaMeta) toQuery(item any) (Query, error) {
	v, err := m.structValue(item)
	if err != nil {
		return nil, err
	}
	return Query(m.values(v)), nil
}

func (m *schemaMeta) values(v reflect.Value) map[string]any {
	out := make(map[string]any, len(m.fields))
	for _, fm := range m.fields {
		fv := v.Field(fm.structIdx)
		switch fm.kind {
		case Numeric:
			out[fm.name] = toFloat64(fv)
		case Categorical:
			out[fm.name] = fv.String()
		case Boolean:
			out[fm.name] = fv.Bool()
		}
	}
	return out
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}
