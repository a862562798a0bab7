package casematch

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/ranking"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/similarity"
	"github.com/kailas-cloud/casematch/internal/domain/value"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// Engine scores and ranks records against a fixed attribute schema.
// It is safe for concurrent use; weight changes never affect a Rank call
// already in progress.
type Engine struct {
	schema attribute.Schema
	attrs  []Attribute

	mu      sync.RWMutex
	weights weight.Set

	workers           int
	parallelThreshold int
	obs               *observer
}

// New creates an Engine for the given attributes.
func New(attrs []Attribute, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{parallelThreshold: defaultParallelThreshold}
	for _, o := range opts {
		o.apply(cfg)
	}

	schema, err := buildSchema(attrs)
	if err != nil {
		return nil, fmt.Errorf("casematch: %w", err)
	}

	m := weight.Uniform(schema).Map()
	for name, w := range cfg.weights {
		m[name] = weight.Weight{Value: w.Value, Enabled: w.Enabled}
	}
	set, err := weight.NewSet(m)
	if err != nil {
		return nil, fmt.Errorf("casematch: %w", err)
	}
	if err := set.CheckAgainst(schema); err != nil {
		return nil, fmt.Errorf("casematch: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		schema:            schema,
		attrs:             cloneAttributes(attrs),
		weights:           set,
		workers:           cfg.workers,
		parallelThreshold: cfg.parallelThreshold,
		obs:               obs,
	}, nil
}

func buildSchema(attrs []Attribute) (attribute.Schema, error) {
	built := make([]attribute.Attribute, len(attrs))
	for i, a := range attrs {
		var err error
		switch a.Kind {
		case Numeric:
			built[i], err = attribute.NewNumeric(a.Name, a.Min, a.Max)
		case Categorical:
			built[i], err = attribute.NewCategorical(a.Name, a.Values)
		case Boolean:
			built[i], err = attribute.NewBoolean(a.Name)
		default:
			err = fmt.Errorf("%w: attribute %q: unknown kind %q", domain.ErrInvalidSchema, a.Name, a.Kind)
		}
		if err != nil {
			return attribute.Schema{}, err
		}
	}
	return attribute.NewSchema(built)
}

func cloneAttributes(attrs []Attribute) []Attribute {
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = a
		out[i].Values = append([]string(nil), a.Values...)
	}
	return out
}

// Attributes returns the schema in declaration order.
func (e *Engine) Attributes() []Attribute { return cloneAttributes(e.attrs) }

// Weights returns a copy of the current weight configuration.
func (e *Engine) Weights() map[string]Weight {
	e.mu.RLock()
	set := e.weights
	e.mu.RUnlock()

	out := make(map[string]Weight, e.schema.Len())
	for name, w := range set.Map() {
		out[name] = Weight{Value: w.Value, Enabled: w.Enabled}
	}
	return out
}

// SetWeight changes the weight of one attribute, keeping its enabled flag.
func (e *Engine) SetWeight(name string, v float64) error {
	return e.updateWeight(name, func(w *weight.Weight) { w.Value = v })
}

// SetEnabled turns one attribute on or off, keeping its weight.
func (e *Engine) SetEnabled(name string, enabled bool) error {
	return e.updateWeight(name, func(w *weight.Weight) { w.Enabled = enabled })
}

func (e *Engine) updateWeight(name string, fn func(*weight.Weight)) error {
	if _, ok := e.schema.Lookup(name); !ok {
		return domain.NewSchemaMismatch(name, "unknown attribute")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	w, _ := e.weights.Get(name)
	fn(&w)
	next, err := e.weights.With(name, w)
	if err != nil {
		return err
	}
	e.weights = next
	return nil
}

func (e *Engine) snapshot() weight.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// Score returns the weighted similarity of r to q, in [0, 1].
func (e *Engine) Score(q Query, r Record) (score float64, err error) {
	start := time.Now()
	defer func() { e.obs.observe("score", start, 1, err) }()

	pq, err := record.ParseQuery(q, e.schema)
	if err != nil {
		return 0, err
	}
	rec, err := e.toRecord(r, "0")
	if err != nil {
		return 0, err
	}
	return similarity.Score(pq, rec, e.schema, e.snapshot())
}

// Explain is Score with the per-attribute breakdown.
func (e *Engine) Explain(q Query, r Record) (Result, error) {
	res, err := e.Rank(q, []Record{r}, WithExplain())
	if err != nil {
		return Result{}, err
	}
	return res[0], nil
}

// Rank scores every record against q and returns them best first. Records
// with equal scores keep their catalog order.
func (e *Engine) Rank(q Query, catalog []Record, opts ...RankOption) ([]Result, error) {
	ranked, err := e.rank(q, catalog, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(ranked))
	for i := range ranked {
		out[i] = toResult(catalog[position(&ranked[i])], &ranked[i])
	}
	return out, nil
}

// rank keys every domain record by its catalog position, so callers can map
// results back to their own values whatever their keys are.
func (e *Engine) rank(q Query, catalog []Record, opts []RankOption) (ranked []ranking.Result, err error) {
	start := time.Now()
	defer func() { e.obs.observe("rank", start, len(catalog), err) }()

	rc := rankConfig{}
	for _, o := range opts {
		o(&rc)
	}

	pq, err := record.ParseQuery(q, e.schema)
	if err != nil {
		return nil, err
	}
	recs := make([]record.Record, len(catalog))
	for i, r := range catalog {
		if recs[i], err = e.toRecord(r, strconv.Itoa(i)); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	return ranking.Rank(pq, recs, e.schema, e.snapshot(), e.rankOptions(rc, len(recs)))
}

func (e *Engine) rankOptions(rc rankConfig, n int) ranking.Options {
	opts := ranking.Options{Limit: rc.limit, MinScore: rc.minScore, Explain: rc.explain}
	if e.workers > 1 && n >= e.parallelThreshold {
		opts.Workers = e.workers
	}
	return opts
}

func (e *Engine) toRecord(r Record, key string) (record.Record, error) {
	values := make(map[string]value.Value, len(r.Values))
	for name, raw := range r.Values {
		attr, ok := e.schema.Lookup(name)
		if !ok {
			return record.Record{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
		v, err := value.Decode(attr.Kind(), raw)
		if err != nil {
			return record.Record{}, domain.NewSchemaMismatch(name, err.Error())
		}
		values[name] = v
	}
	return record.New(key, r.Description, values, e.schema)
}

func position(res *ranking.Result) int {
	i, _ := strconv.Atoi(res.Record().Key())
	return i
}

func toResult(r Record, res *ranking.Result) Result {
	out := Result{
		Record:  r,
		Score:   res.Score(),
		Percent: res.Percent(),
		Matched: res.Matched(),
	}
	if exp := res.Explanation(); exp != nil {
		out.Breakdown = make([]Contribution, len(exp.Contributions))
		for i, c := range exp.Contributions {
			out.Breakdown[i] = Contribution{
				Attribute:  c.Attribute,
				Similarity: c.Similarity,
				Weight:     c.Weight,
				Skipped:    string(c.Skipped),
			}
		}
	}
	return out
}
