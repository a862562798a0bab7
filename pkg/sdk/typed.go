package casematch

import "fmt"

// TypedResult is a scored item.
type TypedResult[T any] struct {
	Item      T
	Score     float64
	Percent   int
	Matched   []string
	Breakdown []Contribution
}

// TypedEngine ranks Go values whose schema comes from casematch struct tags.
type TypedEngine[T any] struct {
	*Engine
	meta *schemaMeta
}

// NewTyped creates an engine for T. Tag weights apply first; WithWeights in
// opts overrides them.
func NewTyped[T any](opts ...Option) (*TypedEngine[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	all := append([]Option{WithWeights(meta.weights)}, opts...)
	eng, err := New(meta.attrs, all...)
	if err != nil {
		return nil, err
	}
	return &TypedEngine[T]{Engine: eng, meta: meta}, nil
}

// ScoreItem returns the similarity of item to q.
func (te *TypedEngine[T]) ScoreItem(q Query, item T) (float64, error) {
	r, err := te.meta.toRecord(item)
	if err != nil {
		return 0, err
	}
	return te.Score(q, r)
}

// RankItems ranks items against q, best first.
func (te *TypedEngine[T]) RankItems(q Query, items []T, opts ...RankOption) ([]TypedResult[T], error) {
	catalog := make([]Record, len(items))
	for i, item := range items {
		r, err := te.meta.toRecord(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		catalog[i] = r
	}

	ranked, err := te.rank(q, catalog, opts)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	out := make([]TypedResult[T], len(ranked))
	for i := range ranked {
		res := toResult(catalog[position(&ranked[i])], &ranked[i])
		out[i] = TypedResult[T]{
			Item:      items[position(&ranked[i])],
			Score:     res.Score,
			Percent:   res.Percent,
			Matched:   res.Matched,
			Breakdown: res.Breakdown,
		}
	}
	return out, nil
}

// Like ranks items by similarity to example across every attribute.
func (te *TypedEngine[T]) Like(example T, items []T, opts ...RankOption) ([]TypedResult[T], error) {
	q, err := te.meta.toQuery(example)
	if err != nil {
		return nil, err
	}
	return te.RankItems(q, items, opts...)
}

// QueryOf returns a query holding every attribute of item.
func (te *TypedEngine[T]) QueryOf(item T) (Query, error) {
	return te.meta.toQuery(item)
}
