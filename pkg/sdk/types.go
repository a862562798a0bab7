package casematch

import "github.com/kailas-cloud/casematch/internal/domain/attribute"

// Kind is the type of an attribute.
type Kind string

// Attribute kinds.
const (
	Numeric     Kind = Kind(attribute.Numeric)
	Categorical Kind = Kind(attribute.Categorical)
	Boolean     Kind = Kind(attribute.Boolean)
)

// Attribute declares one comparable dimension of the catalog.
// Min and Max bound numeric attributes; Values optionally lists the known
// categories of a categorical one.
type Attribute struct {
	Name   string
	Kind   Kind
	Min    float64
	Max    float64
	Values []string
}

// Weight is the importance of one attribute. A disabled attribute never
// participates in scoring, whatever its value.
type Weight struct {
	Value   float64
	Enabled bool
}

// Record is one catalog item. Values must hold a float64 (or any integer
// type) for numeric attributes, a string for categorical ones and a bool for
// boolean ones, for every attribute of the schema.
type Record struct {
	Key         string
	Description string
	Values      map[string]any
}

// Query is a partial record. Absent attributes, nil and "" are ignored.
type Query map[string]any

// Contribution is one attribute's share of a score.
type Contribution struct {
	Attribute  string
	Similarity float64
	Weight     float64
	// Skipped is empty when the attribute participated, otherwise one of
	// "no_query_value", "disabled" or "zero_weight".
	Skipped string
}

// Result is a scored record.
type Result struct {
	Record    Record
	Score     float64
	Percent   int
	Matched   []string
	Breakdown []Contribution // nil unless WithExplain
}
