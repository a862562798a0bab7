package weights

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

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

func newService(t *testing.T) *Service {
	t.Helper()
	schema := testSchema(t)
	svc, err := New(schema, weight.Uniform(schema), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestNew_RejectsUnknownDefaults(t *testing.T) {
	schema := testSchema(t)
	bad, _ := weight.NewSet(map[string]weight.Weight{"Range": {Value: 1, Enabled: true}})

	_, err := New(schema, bad, zap.NewNop())
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := newService(t)
	before := svc.Snapshot()

	w, err := svc.Update(context.Background(), "School", Patch{Weight: ptr(0.4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Value != 0.4 || !w.Enabled {
		t.Errorf("updated weight = %+v", w)
	}

	w, err = svc.Update(context.Background(), "School", Patch{Enabled: ptr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Value != 0.4 || w.Enabled {
		t.Errorf("toggled weight = %+v", w)
	}
	if svc.Snapshot().Effective("School") != 0 {
		t.Error("disabled attribute should have effective weight 0")
	}
	if before.Effective("School") != 1 {
		t.Error("earlier snapshot changed after update")
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc := newService(t)

	_, err := svc.Update(context.Background(), "Range", Patch{Weight: ptr(1.0)})
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("unknown attribute: expected ErrSchemaMismatch, got %v", err)
	}

	_, err = svc.Update(context.Background(), "Level", Patch{Weight: ptr(-2.0)})
	if !errors.Is(err, domain.ErrInvalidWeight) {
		t.Errorf("negative weight: expected ErrInvalidWeight, got %v", err)
	}
	if svc.Snapshot().Effective("Level") != 1 {
		t.Error("failed update must not change the configuration")
	}
}

func TestReplaceAndReset(t *testing.T) {
	svc := newService(t)

	set, err := svc.Replace(context.Background(), map[string]weight.Weight{
		"Level": {Value: 0.2, Enabled: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Effective("Level") != 0.2 || set.Effective("School") != 0 {
		t.Errorf("replaced set = %+v", set.Map())
	}

	_, err = svc.Replace(context.Background(), map[string]weight.Weight{"Range": {Value: 1}})
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
	_, err = svc.Replace(context.Background(), map[string]weight.Weight{"Level": {Value: -1}})
	if !errors.Is(err, domain.ErrInvalidWeight) {
		t.Errorf("expected ErrInvalidWeight, got %v", err)
	}

	reset := svc.Reset(context.Background())
	if reset.Effective("School") != 1 || svc.Snapshot().Effective("Level") != 1 {
		t.Error("Reset did not restore defaults")
	}
}

func TestSnapshot_ConcurrentUpdates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Update(ctx, "Level", Patch{Weight: ptr(float64(i % 5))})
		}(i)
		go func() {
			defer wg.Done()
			snap := svc.Snapshot()
			if w := snap.Effective("Level"); w < 0 || w > 4 {
				t.Errorf("unexpected snapshot weight %f", w)
			}
		}()
	}
	wg.Wait()
}
