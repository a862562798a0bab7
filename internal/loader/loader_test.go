package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/similarity"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

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

const spellsCSV = `Name,Level,School,Ritual,Description,Source
Fireball,3,Evocation,no,A bright streak,PHB
Alarm,1,Abjuration,Yes,"Sets an alarm, quietly",PHB
Mending,0,,FALSE,,XGE
`

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(spellsCSV), testSchema(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	fb := recs[0]
	if fb.Key() != "Fireball" || fb.Description() != "A bright streak" {
		t.Errorf("record 0 = %q / %q", fb.Key(), fb.Description())
	}
	if v, _ := fb.Value("Level"); v.Number() != 3 {
		t.Errorf("Level = %v, want 3", v)
	}
	if v, _ := recs[1].Value("Ritual"); !v.Flag() {
		t.Error("Alarm Ritual should be true")
	}
	if recs[1].Description() != "Sets an alarm, quietly" {
		t.Errorf("quoted description = %q", recs[1].Description())
	}
	v, ok := recs[2].Value("School")
	if !ok || v.Category() != "" {
		t.Errorf("empty categorical cell should be kept, got %v, %v", v, ok)
	}
}

func TestReadCSV_NormalizesCells(t *testing.T) {
	// e + combining acute must come out precomposed.
	in := "Name,Level,School,Ritual\n  Cafe\u0301 , 1 ,  Evocation ,true\n"
	recs, err := ReadCSV(strings.NewReader(in), testSchema(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Key() != "Caf\u00e9" {
		t.Errorf("key = %q, want NFC form", recs[0].Key())
	}
	if v, _ := recs[0].Value("School"); v.Category() != "Evocation" {
		t.Errorf("School = %q, want trimmed", v.Category())
	}
}

func TestReadCSV_DecomposedCellMatchesSameQuery(t *testing.T) {
	const school = "Cafe\u0301"
	in := "Name,Level,School,Ritual\nX,3," + school + ",no\n"
	s := testSchema(t)

	recs, err := ReadCSV(strings.NewReader(in), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err := record.ParseQuery(map[string]any{"School": school}, s)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	got, err := similarity.Score(q, recs[0], s, weight.Uniform(s))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 1 {
		t.Errorf("score = %v, want 1 for the cell's own bytes", got)
	}
}

func TestReadCSV_BOMHeader(t *testing.T) {
	in := "\ufeffName,Level,School,Ritual\nShield,1,Abjuration,no\n"
	recs, err := ReadCSV(strings.NewReader(in), testSchema(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Key() != "Shield" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantSub string
	}{
		{"empty input", "", "missing header"},
		{"no name column", "Level,School,Ritual\n1,a,no\n", `missing "Name"`},
		{"missing attribute column", "Name,Level,School\nx,1,a\n", `"Ritual"`},
		{"bad number", "Name,Level,School,Ritual\nx,high,a,no\n", "line 2"},
		{"bad boolean", "Name,Level,School,Ritual\nx,1,a,no\ny,1,a,maybe\n", "line 3"},
		{"empty key", "Name,Level,School,Ritual\n,1,a,no\n", "record key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), testSchema(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

const spellsYAML = `
- name: Fireball
  description: A bright streak
  values:
    Level: 3
    School: Evocation
    Ritual: false
- name: Alarm
  values:
    Level: 1.0
    School: ""
    Ritual: true
`

func TestReadYAML(t *testing.T) {
	recs, err := ReadYAML(strings.NewReader(spellsYAML), testSchema(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if v, _ := recs[0].Value("Level"); v.Number() != 3 {
		t.Errorf("Level = %v, want 3", v)
	}
	if v, ok := recs[1].Value("School"); !ok || v.Category() != "" {
		t.Errorf("empty categorical should be kept, got %v, %v", v, ok)
	}
}

func TestReadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown attribute", "- name: x\n  values: {Level: 1, School: a, Ritual: true, Color: red}\n"},
		{"wrong type", "- name: x\n  values: {Level: high, School: a, Ritual: true}\n"},
		{"missing attribute", "- name: x\n  values: {Level: 1, School: a}\n"},
		{"null value", "- name: x\n  values: {Level: ~, School: a, Ritual: true}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadYAML(strings.NewReader(tt.in), testSchema(t))
			if !errors.Is(err, domain.ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestReadYAML_Empty(t *testing.T) {
	recs, err := ReadYAML(strings.NewReader(""), testSchema(t))
	if err != nil || len(recs) != 0 {
		t.Errorf("ReadYAML(empty) = %v, %v", recs, err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"spells.csv", FormatCSV, false},
		{"spells.CSV", FormatCSV, false},
		{"spells.yaml", FormatYAML, false},
		{"spells.yml", FormatYAML, false},
		{"spells.json", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spells.csv")
	if err := os.WriteFile(path, []byte(spellsCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	recs, err := NewFileSource(path, "", testSchema(t)).Load(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("expected 3 records, got %d", len(recs))
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.csv"), "", testSchema(t)); err == nil {
		t.Error("expected error for missing file")
	}
}
