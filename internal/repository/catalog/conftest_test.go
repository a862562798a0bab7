package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/casematch/internal/db"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
)

const testPrefix = "casematch:"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, keys ...string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func testSchema(t *testing.T) attribute.Schema {
	t.Helper()
	lvl, _ := attribute.NewNumeric("Level", 0, 9)
	school, _ := attribute.NewCategorical("School", nil)
	ritual, _ := attribute.NewBoolean("Ritual")
	s, err := attribute.NewSchema([]attribute.Attribute{lvl, school, ritual})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func testRecord(t *testing.T, key string, level float64, school string, ritual bool) record.Record {
	t.Helper()
	r, err := record.New(key, key+" description", map[string]value.Value{
		"Level":  value.Num(level),
		"School": value.Cat(school),
		"Ritual": value.Bool(ritual),
	}, testSchema(t))
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}
