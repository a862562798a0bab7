package casematch

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures an Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	weights           map[string]Weight
	workers           int
	parallelThreshold int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

const defaultParallelThreshold = 2048

// WithWeights overrides the weight of the listed attributes.
// Attributes not listed get weight 1, enabled.
func WithWeights(w map[string]Weight) Option {
	return optionFunc(func(c *engineConfig) {
		if c.weights == nil {
			c.weights = make(map[string]Weight, len(w))
		}
		for name, wt := range w {
			c.weights[name] = wt
		}
	})
}

// WithWorkers scores large catalogs on n goroutines. Default: 1 (sequential).
func WithWorkers(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.workers = n
	})
}

// WithParallelThreshold sets the catalog size from which WithWorkers applies.
// Default: 2048.
func WithParallelThreshold(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.parallelThreshold = n
	})
}

// WithLogger enables structured logging of engine operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithPrometheus registers engine metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}

// RankOption tunes a single Rank call.
type RankOption func(*rankConfig)

type rankConfig struct {
	limit    int
	minScore float64
	explain  bool
}

// WithLimit keeps only the n best results. 0 keeps all.
func WithLimit(n int) RankOption {
	return func(c *rankConfig) { c.limit = n }
}

// WithMinScore drops results scoring below s.
func WithMinScore(s float64) RankOption {
	return func(c *rankConfig) { c.minScore = s }
}

// WithExplain attaches the per-attribute breakdown to every result.
func WithExplain() RankOption {
	return func(c *rankConfig) { c.explain = true }
}
