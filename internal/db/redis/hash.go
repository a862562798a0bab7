package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/casematch/internal/db"
)

const (
	scanBatch     = 500
	pipelineBatch = 1000
)

// doBatched sends cmds in pipelines of at most pipelineBatch commands and calls
// onResult with each command's index in cmds.
func (s *Store) doBatched(
	ctx context.Context, cmds []rueidis.Completed, onResult func(i int, res rueidis.RedisResult) error,
) error {
	for from := 0; from < len(cmds); from += pipelineBatch {
		to := min(from+pipelineBatch, len(cmds))
		for j, res := range s.client.DoMulti(ctx, cmds[from:to]...) {
			if err := onResult(from+j, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// HSetMulti writes every item as a hash, pipelined.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	cmds := make([]rueidis.Completed, 0, len(items))
	for _, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for field, v := range item.Fields {
			cmd = cmd.FieldValue(field, v)
		}
		cmds = append(cmds, cmd.Build())
	}

	return s.doBatched(ctx, cmds, func(i int, res rueidis.RedisResult) error {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
		return nil
	})
}

// HGetAll returns all fields of a hash. A missing key yields ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	switch {
	case err != nil:
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	case len(m) == 0:
		return nil, db.ErrKeyNotFound
	default:
		return m, nil
	}
}

// HGetAllMulti fetches many hashes, pipelined, in key order.
// Keys deleted between SCAN and HGETALL come back as empty maps.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	cmds := make([]rueidis.Completed, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, s.b().Hgetall().Key(key).Build())
	}

	out := make([]map[string]string, len(keys))
	err := s.doBatched(ctx, cmds, func(i int, res rueidis.RedisResult) error {
		m, err := res.AsStrMap()
		if err != nil {
			return &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Del deletes keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := s.b().Del().Key(keys...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Scan returns every key matching pattern. SCAN may report a key more than
// once across cursor pages; each key appears once in the result, in first-seen
// order.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range res.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
