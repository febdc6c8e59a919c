package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tcpires/peticiona/internal/record"
)

func writeSections(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sections.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSections(t *testing.T) {
	path := writeSections(t, `
sections:
  - id: horas_extras
    description: Pedido de horas extras
    condition:
      field: HORAS_EXTRAS
      operator: "=="
      value: true
    keywords: ["horas extras", "jornada"]
  - id: adicional_noturno
    expr: "ADICIONAL_NOTURNO == 'Sim'"
  - id: qualificacao
`)
	defs, err := LoadSections(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(defs))
	}
	if defs[0].Condition == nil || defs[0].Condition.Field != "HORAS_EXTRAS" {
		t.Errorf("expected structured condition to parse, got %+v", defs[0].Condition)
	}
	if len(defs[0].Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %v", defs[0].Keywords)
	}
	if defs[1].Expr == "" {
		t.Error("expected textual expr to parse")
	}
}

func TestLoadSectionsRejectsDuplicates(t *testing.T) {
	path := writeSections(t, `
sections:
  - id: a
  - id: a
`)
	_, err := LoadSections(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadSectionsRejectsMissingID(t *testing.T) {
	path := writeSections(t, `
sections:
  - description: no id here
`)
	if _, err := LoadSections(path); err == nil {
		t.Fatal("expected error for section without id")
	}
}

func TestActiveSections(t *testing.T) {
	defs := []SectionDef{
		{ID: "horas_extras", Condition: &Condition{Field: "HORAS_EXTRAS", Operator: "==", Value: true}},
		{ID: "noturno", Expr: "ADICIONAL_NOTURNO == 'Sim'"},
		{ID: "sempre"},
		{ID: "quebrado", Condition: &Condition{Field: "x", Operator: "frobnicate", Value: 1}},
	}
	rec := record.Record{
		"HORAS_EXTRAS":      "Sim",
		"ADICIONAL_NOTURNO": "Não",
	}

	active := ActiveSections(defs, rec, testLogger())

	if !active["horas_extras"] {
		t.Error("expected horas_extras active for HORAS_EXTRAS=Sim")
	}
	if active["noturno"] {
		t.Error("expected noturno inactive for ADICIONAL_NOTURNO=Não")
	}
	if !active["sempre"] {
		t.Error("expected definition without condition to be always active")
	}
	// A failing rule deactivates its section instead of aborting the run.
	if active["quebrado"] {
		t.Error("expected section with broken rule to be inactive")
	}
}
