package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/casematch/internal/db"
	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/record"
)

func TestRecordHash_RoundTrip(t *testing.T) {
	schema := testSchema(t)
	orig := testRecord(t, "Fireball", 3.5, "Evocation", false)

	m := recordToHash(orig, schema)
	if m["name"] != "Fireball" || m["a:Level"] != "3.5" || m["a:Ritual"] != "false" {
		t.Errorf("unexpected hash: %v", m)
	}

	got, err := recordFromHash(m, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Key() != orig.Key() || got.Description() != orig.Description() {
		t.Errorf("got %q/%q", got.Key(), got.Description())
	}
	for _, name := range schema.Names() {
		a, _ := orig.Value(name)
		b, _ := got.Value(name)
		if !a.Equal(b) {
			t.Errorf("%s: %v != %v", name, a, b)
		}
	}
}

func TestRecordFromHash_IgnoresUnknownFields(t *testing.T) {
	m := map[string]string{
		"name": "x", "a:Level": "1", "a:School": "", "a:Ritual": "true",
		"a:Color": "red", "created_at": "123",
	}
	if _, err := recordFromHash(m, testSchema(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordFromHash_Invalid(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]string
	}{
		{"bad number", map[string]string{"name": "x", "a:Level": "high", "a:School": "a", "a:Ritual": "true"}},
		{"bad bool", map[string]string{"name": "x", "a:Level": "1", "a:School": "a", "a:Ritual": "maybe"}},
		{"missing attribute", map[string]string{"name": "x", "a:Level": "1", "a:School": "a"}},
		{"missing name", map[string]string{"a:Level": "1", "a:School": "a", "a:Ritual": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := recordFromHash(tt.m, testSchema(t)); !errors.Is(err, domain.ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestLoad_SortedByKey(t *testing.T) {
	schema := testSchema(t)
	store := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "casematch:record:*" {
				t.Errorf("pattern = %q", pattern)
			}
			return []string{"casematch:record:b", "casematch:record:gone", "casematch:record:a"}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			stored := map[string]map[string]string{
				"casematch:record:a": recordToHash(testRecord(t, "a", 1, "Evocation", false), schema),
				"casematch:record:b": recordToHash(testRecord(t, "b", 2, "Illusion", true), schema),
			}
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				out[i] = stored[k]
			}
			return out, nil
		},
	}

	recs, err := New(store, schema, testPrefix).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[0].Key() != "a" || recs[1].Key() != "b" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestLoad_RepeatedScanKeys(t *testing.T) {
	schema := testSchema(t)
	var fetched []string
	store := &mockStore{
		scanFn: func(context.Context, string) ([]string, error) {
			return []string{"casematch:record:a", "casematch:record:b", "casematch:record:a"}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			fetched = keys
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				key := strings.TrimPrefix(k, "casematch:record:")
				out[i] = recordToHash(testRecord(t, key, 1, "Evocation", false), schema)
			}
			return out, nil
		},
	}

	recs, err := New(store, schema, testPrefix).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetched) != 2 {
		t.Errorf("fetched keys = %v, want each once", fetched)
	}
	if len(recs) != 2 || recs[0].Key() != "a" || recs[1].Key() != "b" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestLoad_Empty(t *testing.T) {
	recs, err := New(&mockStore{}, testSchema(t), testPrefix).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", recs)
	}
}

func TestLoad_ScanError(t *testing.T) {
	scanErr := &db.Error{Op: db.OpScan, Err: errors.New("conn reset")}
	store := &mockStore{scanFn: func(context.Context, string) ([]string, error) { return nil, scanErr }}

	_, err := New(store, testSchema(t), testPrefix).Load(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	schema := testSchema(t)
	store := &mockStore{
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			if key == "casematch:record:Fireball" {
				return recordToHash(testRecord(t, "Fireball", 3, "Evocation", false), schema), nil
			}
			return nil, db.ErrKeyNotFound
		},
	}
	repo := New(store, schema, testPrefix)

	r, err := repo.Get(context.Background(), "Fireball")
	if err != nil || r.Key() != "Fireball" {
		t.Errorf("Get = %v, %v", r.Key(), err)
	}
	if _, err := repo.Get(context.Background(), "Nope"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSaveAll(t *testing.T) {
	var got []db.HashSetItem
	store := &mockStore{hsetMultiFn: func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}}

	err := New(store, testSchema(t), testPrefix).SaveAll(context.Background(),
		[]record.Record{testRecord(t, "a", 1, "Evocation", false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "casematch:record:a" || got[0].Fields["a:School"] != "Evocation" {
		t.Errorf("unexpected items: %+v", got)
	}
}

func TestReplaceAll_DeletesStale(t *testing.T) {
	var deleted []string
	store := &mockStore{
		scanFn: func(context.Context, string) ([]string, error) {
			return []string{"casematch:record:a", "casematch:record:old"}, nil
		},
		delFn: func(_ context.Context, keys ...string) error {
			deleted = keys
			return nil
		},
	}

	n, err := New(store, testSchema(t), testPrefix).ReplaceAll(context.Background(),
		[]record.Record{testRecord(t, "a", 1, "Evocation", false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(deleted) != 1 || deleted[0] != "casematch:record:old" {
		t.Errorf("deleted %d: %v", n, deleted)
	}
}
