package attribute

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/casematch/internal/domain"
)

func TestNewNumeric(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		lo, hi  float64
		wantErr bool
	}{
		{"valid", "Level", 0, 9, false},
		{"degenerate", "Flat", 3, 3, false},
		{"inverted", "Level", 9, 0, true},
		{"empty name", "", 0, 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := NewNumeric(tc.attr, tc.lo, tc.hi)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewNumeric() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && a.Kind() != Numeric {
				t.Errorf("Kind() = %q, want numeric", a.Kind())
			}
		})
	}
}

func TestDegenerate(t *testing.T) {
	flat, _ := NewNumeric("Flat", 2, 2)
	if !flat.Degenerate() {
		t.Error("expected degenerate range")
	}
	lvl, _ := NewNumeric("Level", 0, 9)
	if lvl.Degenerate() {
		t.Error("expected non-degenerate range")
	}
	b, _ := NewBoolean("Ritual")
	if b.Degenerate() {
		t.Error("boolean attribute is never degenerate")
	}
}

func TestCategorical_AllowedValuesCopied(t *testing.T) {
	allowed := []string{"Evocation", "Illusion"}
	a, err := NewCategorical("School", allowed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	allowed[0] = "changed"
	if a.AllowedValues()[0] != "Evocation" {
		t.Errorf("AllowedValues() aliased caller slice: %v", a.AllowedValues())
	}
	if !a.Allows("Illusion") || a.Allows("Necromancy") {
		t.Error("Allows() does not follow the enumeration")
	}
	open, _ := NewCategorical("Free", nil)
	if !open.Allows("anything") {
		t.Error("attribute without enumeration should allow any value")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"numeric", "categorical", "boolean"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) error: %v", s, err)
		}
	}
	if _, err := ParseKind("text"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNewSchema(t *testing.T) {
	lvl, _ := NewNumeric("Level", 0, 9)
	school, _ := NewCategorical("School", nil)

	s, err := NewSchema([]Attribute{lvl, school})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if names := s.Names(); names[0] != "Level" || names[1] != "School" {
		t.Errorf("Names() = %v, want schema order", names)
	}
	if _, ok := s.Lookup("School"); !ok {
		t.Error("Lookup(School) not found")
	}
	if _, ok := s.Lookup("Range"); ok {
		t.Error("Lookup(Range) should not be found")
	}
}

func TestNewSchema_Invalid(t *testing.T) {
	lvl, _ := NewNumeric("Level", 0, 9)

	if _, err := NewSchema(nil); err == nil {
		t.Error("expected error for empty schema")
	}
	if _, err := NewSchema([]Attribute{lvl, lvl}); !errors.Is(err, domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema for duplicate names, got %v", err)
	}
	if _, err := NewSchema([]Attribute{{}}); err == nil {
		t.Error("expected error for unnamed attribute")
	}
}
