package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// Service holds the in-memory catalog. Reload swaps the whole slice, so a
// snapshot taken before a reload stays valid and unchanged.
type Service struct {
	source Source
	schema attribute.Schema
	logger *zap.Logger

	mu       sync.RWMutex
	records  []record.Record
	index    map[string]int
	loaded   bool
	loadedAt time.Time
}

// New creates a catalog service. Call Reload before serving.
func New(source Source, schema attribute.Schema, logger *zap.Logger) *Service {
	return &Service{source: source, schema: schema, logger: logger}
}

// Reload loads the catalog from the source, validates it and swaps it in.
// On failure the previous catalog stays in place.
func (s *Service) Reload(ctx context.Context) (int, error) {
	start := time.Now()

	recs, err := s.source.Load(ctx)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	index := make(map[string]int, len(recs))
	for i, r := range recs {
		if _, err := record.New(r.Key(), r.Description(), r.Values(), s.schema); err != nil {
			metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
			return 0, fmt.Errorf("validate record %d: %w", i, err)
		}
		if _, dup := index[r.Key()]; dup {
			metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
			return 0, fmt.Errorf("%w: %q", domain.ErrDuplicateRecord, r.Key())
		}
		index[r.Key()] = i
	}
	s.warnUndeclared(recs)

	s.mu.Lock()
	s.records = recs
	s.index = index
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	metrics.CatalogRecords.Set(float64(len(recs)))
	s.logger.Info("Catalog loaded",
		zap.Int("records", len(recs)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(recs), nil
}

// warnUndeclared logs categorical values missing from their attribute's
// enumeration. They are still scored.
func (s *Service) warnUndeclared(recs []record.Record) {
	for _, attr := range s.schema.Attributes() {
		if attr.Kind() != attribute.Categorical || len(attr.AllowedValues()) == 0 {
			continue
		}
		seen := make(map[string]struct{})
		for _, r := range recs {
			v, _ := r.Value(attr.Name())
			if !attr.Allows(v.Category()) {
				seen[v.Category()] = struct{}{}
			}
		}
		if len(seen) > 0 {
			s.logger.Warn("Catalog holds undeclared categorical values",
				zap.String("attribute", attr.Name()),
				zap.Int("distinct", len(seen)),
			)
		}
	}
}

// Snapshot returns the current catalog in load order. Callers must not modify it.
func (s *Service) Snapshot() ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, domain.ErrCatalogNotLoaded
	}
	return s.records, nil
}

// Get returns a record by key.
func (s *Service) Get(key string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return record.Record{}, domain.ErrCatalogNotLoaded
	}
	i, ok := s.index[key]
	if !ok {
		return record.Record{}, fmt.Errorf("%w: %q", domain.ErrRecordNotFound, key)
	}
	return s.records[i], nil
}

// Count returns the number of loaded records.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ready reports whether a catalog has been loaded.
func (s *Service) Ready(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.ErrCatalogNotLoaded
	}
	return nil
}

// LoadedAt returns the time of the last successful reload.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
