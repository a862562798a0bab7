package weights

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// Patch is a partial update of one attribute's weight configuration.
// Nil fields are left unchanged.
type Patch struct {
	Weight  *float64
	Enabled *bool
}

// Service owns the mutable weight configuration.
// Readers get immutable snapshots; writers swap in a new Set under the lock,
// so a ranking pass never sees a partially applied change.
type Service struct {
	mu       sync.RWMutex
	schema   attribute.Schema
	defaults weight.Set
	current  weight.Set
	logger   *zap.Logger
}

// New creates a weight service starting from defaults.
func New(schema attribute.Schema, defaults weight.Set, logger *zap.Logger) (*Service, error) {
	if err := defaults.CheckAgainst(schema); err != nil {
		return nil, fmt.Errorf("default weights: %w", err)
	}
	return &Service{
		schema:   schema,
		defaults: defaults,
		current:  defaults,
		logger:   logger,
	}, nil
}

// Snapshot returns the current configuration. The returned Set never changes.
func (s *Service) Snapshot() weight.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps the whole mapping. Attributes missing from m become unconfigured
// and therefore do not participate in scoring.
func (s *Service) Replace(_ context.Context, m map[string]weight.Weight) (weight.Set, error) {
	for name := range m {
		if _, ok := s.schema.Lookup(name); !ok {
			return weight.Set{}, domain.NewSchemaMismatch(name, "unknown attribute")
		}
	}
	next, err := weight.NewSet(m)
	if err != nil {
		return weight.Set{}, fmt.Errorf("replace weights: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	metrics.WeightUpdatesTotal.WithLabelValues("replace").Inc()
	s.logger.Info("Weight configuration replaced", zap.Int("attributes", len(m)))
	return next, nil
}

// Update applies a patch to a single attribute.
func (s *Service) Update(_ context.Context, name string, p Patch) (weight.Weight, error) {
	if _, ok := s.schema.Lookup(name); !ok {
		return weight.Weight{}, domain.NewSchemaMismatch(name, "unknown attribute")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, _ := s.current.Get(name)
	if p.Weight != nil {
		w.Value = *p.Weight
	}
	if p.Enabled != nil {
		w.Enabled = *p.Enabled
	}
	next, err := s.current.With(name, w)
	if err != nil {
		return weight.Weight{}, fmt.Errorf("update %s: %w", name, err)
	}
	s.current = next

	metrics.WeightUpdatesTotal.WithLabelValues("update").Inc()
	s.logger.Info("Attribute weight updated",
		zap.String("attribute", name),
		zap.Float64("weight", w.Value),
		zap.Bool("enabled", w.Enabled),
	)
	return w, nil
}

// Reset restores the startup defaults.
func (s *Service) Reset(_ context.Context) weight.Set {
	s.mu.Lock()
	s.current = s.defaults
	s.mu.Unlock()

	metrics.WeightUpdatesTotal.WithLabelValues("reset").Inc()
	s.logger.Info("Weight configuration reset to defaults")
	return s.defaults
}
