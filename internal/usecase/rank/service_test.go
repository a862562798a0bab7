package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/value"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// --- Mocks ---

type mockCatalog struct {
	records []record.Record
	err     error
}

func (m *mockCatalog) Snapshot() ([]record.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockCatalog) Get(key string) (record.Record, error) {
	if m.err != nil {
		return record.Record{}, m.err
	}
	for _, r := range m.records {
		if r.Key() == key {
			return r, nil
		}
	}
	return record.Record{}, domain.ErrRecordNotFound
}

type mockWeights struct {
	set weight.Set
}

func (m *mockWeights) Snapshot() weight.Set { return m.set }

// --- Helpers ---

func testSchema(t *testing.T) attribute.Schema {
	t.Helper()
	lvl, _ := attribute.NewNumeric("Level", 0, 9)
	school, _ := attribute.NewCategorical("School", nil)
	s, err := attribute.NewSchema([]attribute.Attribute{lvl, school})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func testWeights(t *testing.T) weight.Set {
	t.Helper()
	set, err := weight.NewSet(map[string]weight.Weight{
		"Level":  {Value: 1, Enabled: true},
		"School": {Value: 2, Enabled: true},
	})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return set
}

func spell(t *testing.T, key string, level float64, school string) record.Record {
	t.Helper()
	r, err := record.New(key, "", map[string]value.Value{
		"Level":  value.Num(level),
		"School": value.Cat(school),
	}, testSchema(t))
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

func query(t *testing.T, level float64, school string) record.Query {
	t.Helper()
	q, err := record.NewQuery(map[string]value.Value{
		"Level":  value.Num(level),
		"School": value.Cat(school),
	}, testSchema(t))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	return q
}

func newService(t *testing.T, recs []record.Record) *Service {
	t.Helper()
	return New(&mockCatalog{records: recs}, &mockWeights{set: testWeights(t)}, testSchema(t), zap.NewNop())
}

// --- Tests ---

func TestRank_OrdersBestFirst(t *testing.T) {
	svc := newService(t, []record.Record{
		spell(t, "Shield", 1, "Abjuration"),
		spell(t, "Fireball", 3, "Evocation"),
		spell(t, "Magic Missile", 1, "Evocation"),
	})

	results, total, err := svc.Rank(context.Background(), query(t, 1, "Evocation"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(results) != 3 {
		t.Fatalf("total=%d len=%d, want 3/3", total, len(results))
	}
	want := []string{"Magic Missile", "Fireball", "Shield"}
	for i, k := range want {
		if got := results[i].Record().Key(); got != k {
			t.Errorf("position %d = %s, want %s", i, got, k)
		}
	}
	if results[0].Score() != 1 {
		t.Errorf("top score = %f, want 1", results[0].Score())
	}
}

func TestRank_LimitAndMinScore(t *testing.T) {
	svc := newService(t, []record.Record{
		spell(t, "a", 1, "Evocation"),
		spell(t, "b", 2, "Evocation"),
		spell(t, "c", 9, "Illusion"),
	})

	results, total, err := svc.Rank(context.Background(), query(t, 1, "Evocation"), Options{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(results) != 1 || results[0].Record().Key() != "a" {
		t.Errorf("Limit: total=%d results=%d", total, len(results))
	}

	results, _, err = svc.Rank(context.Background(), query(t, 1, "Evocation"), Options{MinScore: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("MinScore kept %d results, want 2", len(results))
	}
}

func TestRank_ParallelMatchesSequential(t *testing.T) {
	recs := make([]record.Record, 500)
	for i := range recs {
		recs[i] = spell(t, fmt.Sprintf("s%03d", i), float64(i%10), []string{"Evocation", "Illusion"}[i%2])
	}
	q := query(t, 4, "Illusion")

	seq := newService(t, recs)
	par := newService(t, recs).WithParallelism(8, 100)

	want, _, err := seq.Rank(context.Background(), q, Options{})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	got, _, err := par.Rank(context.Background(), q, Options{})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i := range want {
		if got[i].Record().Key() != want[i].Record().Key() || got[i].Score() != want[i].Score() {
			t.Fatalf("position %d: parallel %s/%f, sequential %s/%f", i,
				got[i].Record().Key(), got[i].Score(), want[i].Record().Key(), want[i].Score())
		}
	}
}

func TestRank_CatalogNotLoaded(t *testing.T) {
	svc := New(&mockCatalog{err: domain.ErrCatalogNotLoaded}, &mockWeights{}, testSchema(t), zap.NewNop())

	_, _, err := svc.Rank(context.Background(), query(t, 1, "Evocation"), Options{})
	if !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("expected ErrCatalogNotLoaded, got %v", err)
	}
}

func TestRank_SchemaMismatch(t *testing.T) {
	lvl, _ := attribute.NewNumeric("Level", 0, 9)
	partial, err := attribute.NewSchema([]attribute.Attribute{lvl})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	broken, err := record.New("broken", "", map[string]value.Value{"Level": value.Num(1)}, partial)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	svc := newService(t, []record.Record{spell(t, "ok", 1, "Evocation"), broken})

	_, _, err = svc.Rank(context.Background(), query(t, 1, "Evocation"), Options{})
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRank_CanceledContext(t *testing.T) {
	svc := newService(t, []record.Record{spell(t, "a", 1, "Evocation")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := svc.Rank(ctx, query(t, 1, "Evocation"), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScore_Single(t *testing.T) {
	svc := newService(t, []record.Record{spell(t, "Fireball", 3, "Evocation")})

	res, err := svc.Score(context.Background(), "Fireball", query(t, 1, "Evocation"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Level 1 - 2/9 = 7/9 at weight 1, School 1 at weight 2.
	want := (7.0/9 + 2) / 3
	if math.Abs(res.Score()-want) > 1e-9 {
		t.Errorf("Score() = %f, want %f", res.Score(), want)
	}
	exp := res.Explanation()
	if exp == nil || len(exp.Contributions) != 2 {
		t.Fatalf("expected 2 contributions, got %+v", exp)
	}
	if exp.Score != res.Score() {
		t.Errorf("explanation score %f != result score %f", exp.Score, res.Score())
	}
}

func TestScore_NoExplain(t *testing.T) {
	svc := newService(t, []record.Record{spell(t, "Fireball", 3, "Evocation")})

	res, err := svc.Score(context.Background(), "Fireball", query(t, 3, "Evocation"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Explanation() != nil {
		t.Error("expected no explanation")
	}
	if res.Percent() != 100 {
		t.Errorf("Percent() = %d, want 100", res.Percent())
	}
}

func TestScore_NotFound(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Score(context.Background(), "missing", query(t, 1, "Evocation"), false)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
