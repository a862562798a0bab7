package similarity

import (
	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// SkipReason explains why an attribute did not participate in a score.
type SkipReason string

// Skip reasons, checked in this order.
const (
	NotSkipped   SkipReason = ""
	NoQueryValue SkipReason = "no_query_value"
	Disabled     SkipReason = "disabled"
	ZeroWeight   SkipReason = "zero_weight"
)

// Contribution is the outcome for one attribute of a single score.
type Contribution struct {
	Attribute  string
	Kind       attribute.Kind
	Similarity float64
	Weight     float64
	Skipped    SkipReason
}

// Participated reports whether the attribute entered the weighted average.
func (c Contribution) Participated() bool { return c.Skipped == NotSkipped }

// Matched reports whether the attribute participated with full similarity.
func (c Contribution) Matched() bool { return c.Participated() && c.Similarity == 1 }

// Explanation is a score with its per-attribute breakdown in schema order.
type Explanation struct {
	Score         float64
	Contributions []Contribution
}

// Matched returns the names of participating attributes with similarity 1.
func (e Explanation) Matched() []string {
	var out []string
	for _, c := range e.Contributions {
		if c.Matched() {
			out = append(out, c.Attribute)
		}
	}
	return out
}

// Score returns the weighted average of per-attribute similarities between the
// query and the candidate, in [0, 1].
//
// Attributes the query leaves unspecified, and attributes whose effective weight
// is not positive, contribute to neither numerator nor denominator. When nothing
// participates the score is 0. The only error is a structural mismatch between
// the inputs and the schema.
func Score(q record.Query, c record.Record, s attribute.Schema, w weight.Set) (float64, error) {
	return evaluate(q, c, s, w, nil)
}

// Explain is Score plus the per-attribute breakdown. Both always agree.
func Explain(q record.Query, c record.Record, s attribute.Schema, w weight.Set) (Explanation, error) {
	contribs := make([]Contribution, 0, s.Len())
	score, err := evaluate(q, c, s, w, func(ct Contribution) {
		contribs = append(contribs, ct)
	})
	if err != nil {
		return Explanation{}, err
	}
	return Explanation{Score: score, Contributions: contribs}, nil
}

func evaluate(
	q record.Query, c record.Record, s attribute.Schema, w weight.Set,
	visit func(Contribution),
) (float64, error) {
	var totalSimilarity, totalWeight float64

	for i := range s.Len() {
		attr := s.At(i)
		name := attr.Name()
		ct := Contribution{Attribute: name, Kind: attr.Kind()}

		qv, ok := q.Value(name)
		if !ok {
			ct.Skipped = NoQueryValue
			if visit != nil {
				visit(ct)
			}
			continue
		}

		cfg, _ := w.Get(name)
		ct.Weight = cfg.Effective()
		if ct.Weight <= 0 {
			ct.Skipped = ZeroWeight
			if !cfg.Enabled {
				ct.Skipped = Disabled
			}
			if visit != nil {
				visit(ct)
			}
			continue
		}

		cv, ok := c.Value(name)
		if !ok {
			return 0, domain.NewSchemaMismatch(name, "candidate "+c.Key()+" has no value")
		}
		sim, err := attributeSimilarity(attr, qv, cv)
		if err != nil {
			return 0, err
		}
		ct.Similarity = sim

		totalSimilarity += sim * ct.Weight
		totalWeight += ct.Weight
		if visit != nil {
			visit(ct)
		}
	}

	if totalWeight > 0 {
		return totalSimilarity / totalWeight, nil
	}
	return 0, nil
}

// attributeSimilarity dispatches on the schema's declared kind.
func attributeSimilarity(attr attribute.Attribute, qv, cv value.Value) (float64, error) {
	if qv.Kind() != attr.Kind() {
		return 0, domain.NewSchemaMismatch(attr.Name(), "query value is not "+string(attr.Kind()))
	}
	if cv.Kind() != attr.Kind() {
		return 0, domain.NewSchemaMismatch(attr.Name(), "candidate value is not "+string(attr.Kind()))
	}
	switch attr.Kind() {
	case attribute.Boolean:
		return Boolean(qv.Flag(), cv.Flag()), nil
	case attribute.Numeric:
		return Numerical(qv.Number(), cv.Number(), attr.Min(), attr.Max()), nil
	case attribute.Categorical:
		return Categorical(qv.Category(), cv.Category()), nil
	default:
		return 0, domain.NewSchemaMismatch(attr.Name(), "unknown kind "+string(attr.Kind()))
	}
}
