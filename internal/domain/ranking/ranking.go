// Package ranking scores a catalog against a query and orders it by similarity.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/similarity"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// Result pairs a record with its similarity score.
type Result struct {
	record      record.Record
	score       float64
	matched     []string
	explanation *similarity.Explanation
}

// NewResult creates a result.
func NewResult(r record.Record, score float64, matched []string) Result {
	return Result{record: r, score: score, matched: matched}
}

// SetExplanation attaches the per-attribute breakdown.
func (r *Result) SetExplanation(exp similarity.Explanation) { r.explanation = &exp }

// Record returns the scored record.
func (r *Result) Record() record.Record { return r.record }

// Score returns the similarity score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Percent returns the score rounded to a whole percentage.
func (r *Result) Percent() int { return int(math.Round(r.score * 100)) }

// Matched returns attributes whose candidate value fully matched the query.
func (r *Result) Matched() []string { return r.matched }

// Explanation returns the per-attribute breakdown, or nil if not requested.
func (r *Result) Explanation() *similarity.Explanation { return r.explanation }

// Options tunes a ranking pass.
type Options struct {
	// Limit caps the number of results; 0 keeps all.
	Limit int
	// MinScore drops results scoring below it.
	MinScore float64
	// Explain attaches the per-attribute breakdown to every result.
	Explain bool
	// Workers > 1 scores contiguous chunks of the catalog concurrently.
	Workers int
}

// Rank scores every candidate independently and returns results sorted by
// descending score. Ties keep catalog order. An empty catalog yields an empty,
// non-nil slice.
func Rank(
	q record.Query, catalog []record.Record, s attribute.Schema, w weight.Set, opts Options,
) ([]Result, error) {
	results := make([]Result, len(catalog))

	var err error
	if opts.Workers > 1 && len(catalog) > 1 {
		err = scoreParallel(q, catalog, s, w, opts, results)
	} else {
		err = scoreRange(q, catalog, s, w, opts.Explain, results, 0, len(catalog))
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	return applyOptions(results, opts), nil
}

func scoreRange(
	q record.Query, catalog []record.Record, s attribute.Schema, w weight.Set,
	explain bool, out []Result, from, to int,
) error {
	for i := from; i < to; i++ {
		exp, err := similarity.Explain(q, catalog[i], s, w)
		if err != nil {
			return fmt.Errorf("score %s: %w", catalog[i].Key(), err)
		}
		res := Result{record: catalog[i], score: exp.Score, matched: exp.Matched()}
		if explain {
			res.explanation = &exp
		}
		out[i] = res
	}
	return nil
}

// scoreParallel splits the catalog into one chunk per worker. Each worker writes
// only its own index range, so the slice needs no locking.
func scoreParallel(
	q record.Query, catalog []record.Record, s attribute.Schema, w weight.Set,
	opts Options, out []Result,
) error {
	workers := min(opts.Workers, len(catalog))
	chunk := (len(catalog) + workers - 1) / workers

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for n := range workers {
		from := n * chunk
		to := min(from+chunk, len(catalog))
		if from >= to {
			continue
		}
		wg.Add(1)
		go func(n, from, to int) {
			defer wg.Done()
			errs[n] = scoreRange(q, catalog, s, w, opts.Explain, out, from, to)
		}(n, from, to)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func applyOptions(results []Result, opts Options) []Result {
	if opts.MinScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.score >= opts.MinScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
