package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/kailas-cloud/casematch/internal/db"
	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
)

// store is the consumer interface for the catalog (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists catalog records as hashes. It implements usecase/catalog.Source.
type Repo struct {
	store  store
	schema attribute.Schema
	prefix string
}

// New creates a catalog repository. prefix namespaces every key, e.g. "casematch:".
func New(s store, schema attribute.Schema, prefix string) *Repo {
	return &Repo{store: s, schema: schema, prefix: prefix}
}

// Load returns every stored record sorted by key, each once.
func (r *Repo) Load(ctx context.Context) ([]record.Record, error) {
	keys, err := r.store.Scan(ctx, r.recordKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	if len(keys) == 0 {
		return []record.Record{}, nil
	}
	keys = slices.Compact(slices.Sorted(slices.Values(keys)))

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi records: %w", err)
	}

	recs := make([]record.Record, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		rec, err := recordFromHash(m, r.schema)
		if err != nil {
			return nil, fmt.Errorf("parse record %s: %w", keys[i], err)
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Key() < recs[j].Key()
	})

	return recs, nil
}

// Get retrieves a single stored record.
func (r *Repo) Get(ctx context.Context, key string) (record.Record, error) {
	m, err := r.store.HGetAll(ctx, r.recordKey(key))
	if errors.Is(err, db.ErrKeyNotFound) {
		return record.Record{}, fmt.Errorf("%w: %q", domain.ErrRecordNotFound, key)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("hgetall record %s: %w", key, err)
	}
	return recordFromHash(m, r.schema)
}

// SaveAll writes records in one pipelined round-trip. Existing records with
// the same key are overwritten; others are left alone.
func (r *Repo) SaveAll(ctx context.Context, recs []record.Record) error {
	items := make([]db.HashSetItem, len(recs))
	for i, rec := range recs {
		items[i] = db.HashSetItem{Key: r.recordKey(rec.Key()), Fields: recordToHash(rec, r.schema)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset records: %w", err)
	}
	return nil
}

// ReplaceAll writes recs and deletes every stored record not among them.
// It returns the number of deleted records.
func (r *Repo) ReplaceAll(ctx context.Context, recs []record.Record) (int, error) {
	existing, err := r.store.Scan(ctx, r.recordKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan records: %w", err)
	}

	if err = r.SaveAll(ctx, recs); err != nil {
		return 0, err
	}

	keep := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		keep[r.recordKey(rec.Key())] = struct{}{}
	}
	var stale []string
	for _, k := range existing {
		if _, ok := keep[k]; !ok {
			stale = append(stale, k)
		}
	}
	if err = r.store.Del(ctx, stale...); err != nil {
		return 0, fmt.Errorf("del stale records: %w", err)
	}
	return len(stale), nil
}

// Valkey key pattern: {prefix}record:{key}

func (r *Repo) recordKey(key string) string {
	return r.prefix + "record:" + key
}
