package weight

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
)

// MaxValue is the largest accepted weight. It keeps the weight total over any
// schema finite.
const MaxValue = 1e6

// Weight is the runtime configuration of a single attribute.
type Weight struct {
	Value   float64
	Enabled bool
}

// Effective returns the weight that participates in scoring: 0 when disabled.
func (w Weight) Effective() float64 {
	if !w.Enabled {
		return 0
	}
	return w.Value
}

// Validate checks that the weight is in [0, MaxValue].
func (w Weight) Validate() error {
	if math.IsNaN(w.Value) || math.IsInf(w.Value, 0) {
		return fmt.Errorf("%w: weight must be finite", domain.ErrInvalidWeight)
	}
	if w.Value < 0 {
		return fmt.Errorf("%w: weight must be non-negative, got %g", domain.ErrInvalidWeight, w.Value)
	}
	if w.Value > MaxValue {
		return fmt.Errorf("%w: weight must not exceed %g, got %g", domain.ErrInvalidWeight, float64(MaxValue), w.Value)
	}
	return nil
}

// Set is an immutable mapping from attribute name to Weight.
// Mutators return a new Set; a Set handed to a ranking pass never changes.
type Set struct {
	weights map[string]Weight
}

// NewSet copies m into a Set after validating every weight.
func NewSet(m map[string]Weight) (Set, error) {
	for name, w := range m {
		if err := w.Validate(); err != nil {
			return Set{}, fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	return Set{weights: maps.Clone(m)}, nil
}

// Uniform returns a Set giving every schema attribute weight 1, enabled.
func Uniform(s attribute.Schema) Set {
	m := make(map[string]Weight, s.Len())
	for _, name := range s.Names() {
		m[name] = Weight{Value: 1, Enabled: true}
	}
	return Set{weights: m}
}

// Get returns the weight for name. Unconfigured attributes report a zero, disabled weight.
func (s Set) Get(name string) (Weight, bool) {
	w, ok := s.weights[name]
	return w, ok
}

// Effective returns the scoring weight for name (0 if unconfigured or disabled).
func (s Set) Effective(name string) float64 {
	return s.weights[name].Effective()
}

// With returns a copy of s with name set to w.
func (s Set) With(name string, w Weight) (Set, error) {
	if err := w.Validate(); err != nil {
		return Set{}, fmt.Errorf("attribute %q: %w", name, err)
	}
	m := maps.Clone(s.weights)
	if m == nil {
		m = make(map[string]Weight, 1)
	}
	m[name] = w
	return Set{weights: m}, nil
}

// Map returns a copy of the underlying mapping.
func (s Set) Map() map[string]Weight { return maps.Clone(s.weights) }

// Names returns configured attribute names, sorted.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s.weights))
}

// CheckAgainst verifies every configured name exists in the schema.
func (s Set) CheckAgainst(schema attribute.Schema) error {
	for _, name := range s.Names() {
		if _, ok := schema.Lookup(name); !ok {
			return domain.NewSchemaMismatch(name, "weight configured for unknown attribute")
		}
	}
	return nil
}
