package rank

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/ranking"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/similarity"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// Options are the caller-facing ranking options.
type Options struct {
	Limit    int
	MinScore float64
	Explain  bool
}

// Service ranks the catalog against queries.
type Service struct {
	catalog CatalogReader
	weights WeightSource
	schema  attribute.Schema
	logger  *zap.Logger

	workers           int
	parallelThreshold int
}

// New creates a ranking service. Ranking is sequential until WithParallelism is set.
func New(catalog CatalogReader, weights WeightSource, schema attribute.Schema, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, weights: weights, schema: schema, logger: logger}
}

// WithParallelism enables chunked parallel scoring for catalogs of at least
// threshold records.
func (s *Service) WithParallelism(workers, threshold int) *Service {
	s.workers = workers
	s.parallelThreshold = threshold
	return s
}

// Rank scores every catalog record against q and returns them best first,
// together with the number of candidates scored.
func (s *Service) Rank(ctx context.Context, q record.Query, opts Options) ([]ranking.Result, int, error) {
	start := time.Now()

	recs, err := s.catalog.Snapshot()
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("rank", "error").Inc()
		return nil, 0, fmt.Errorf("catalog snapshot: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, 0, err
	}

	workers := 0
	if s.workers > 1 && len(recs) >= s.parallelThreshold {
		workers = s.workers
	}

	results, err := ranking.Rank(q, recs, s.schema, s.weights.Snapshot(), ranking.Options{
		Limit:    opts.Limit,
		MinScore: opts.MinScore,
		Explain:  opts.Explain,
		Workers:  workers,
	})
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("rank", "error").Inc()
		return nil, 0, fmt.Errorf("rank catalog: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RankRequestsTotal.WithLabelValues("rank", "ok").Inc()
	metrics.RankDuration.WithLabelValues("rank").Observe(elapsed.Seconds())
	metrics.CandidatesScoredTotal.Add(float64(len(recs)))

	s.logger.Debug("Ranked catalog",
		zap.Int("candidates", len(recs)),
		zap.Int("returned", len(results)),
		zap.Int("query_attributes", q.Len()),
		zap.Int("workers", workers),
		zap.Duration("duration", elapsed),
	)
	return results, len(recs), nil
}

// Score scores a single catalog record against q.
func (s *Service) Score(ctx context.Context, key string, q record.Query, explain bool) (ranking.Result, error) {
	start := time.Now()

	rec, err := s.catalog.Get(key)
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("score", "error").Inc()
		return ranking.Result{}, fmt.Errorf("get record: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return ranking.Result{}, err
	}

	exp, err := similarity.Explain(q, rec, s.schema, s.weights.Snapshot())
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("score", "error").Inc()
		return ranking.Result{}, fmt.Errorf("score %s: %w", key, err)
	}

	res := ranking.NewResult(rec, exp.Score, exp.Matched())
	if explain {
		res.SetExplanation(exp)
	}

	metrics.RankRequestsTotal.WithLabelValues("score", "ok").Inc()
	metrics.RankDuration.WithLabelValues("score").Observe(time.Since(start).Seconds())
	metrics.CandidatesScoredTotal.Inc()
	return res, nil
}
