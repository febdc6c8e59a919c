package assembly

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/record"
	"github.com/tcpires/peticiona/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mapProvider map[string]fieldmeta.FieldMeta

func (p mapProvider) ByName(field string) (fieldmeta.FieldMeta, bool) {
	m, ok := p[field]
	return m, ok
}

func para(texts ...string) *docmodel.Unit {
	u := docmodel.NewUnit(docmodel.KindParagraph, texts...)
	u.SetDetach(func() {})
	return u
}

func petitionUnits() []*docmodel.Unit {
	return []*docmodel.Unit{
		para("Reclamante: {{nome}}"),
		para("{{#horas_extras}}"),
		para("Requer o pagamento de {{valor_he}} em horas extras."),
		para("{{/horas_extras}}"),
		para("{{#noturno}}"),
		para("Requer adicional noturno."),
		para("{{/noturno}}"),
		para("Valor da causa: {{valor_causa}}."),
	}
}

func petitionDefs() []rules.SectionDef {
	return []rules.SectionDef{
		{ID: "horas_extras", Condition: &rules.Condition{Field: "HORAS_EXTRAS", Operator: "==", Value: true}},
		{ID: "noturno", Condition: &rules.Condition{Field: "NOTURNO", Operator: "==", Value: true}},
	}
}

func TestAssembleDocumentFullRecord(t *testing.T) {
	asm := New(petitionDefs(), fieldmeta.NullProvider{}, Options{}, nil, testLogger())

	rec := record.Record{
		"nome":         "Maria Souza",
		"HORAS_EXTRAS": "Sim",
		"NOTURNO":      "Não",
		"valor_he":     1500.0,
		"valor_causa":  30000.0,
	}
	kept, stats, err := asm.AssembleDocument(petitionUnits(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var text strings.Builder
	for _, u := range kept {
		text.WriteString(u.Text())
		text.WriteString("\n")
	}
	out := text.String()

	if !strings.Contains(out, "Maria Souza") {
		t.Errorf("expected name substituted, got:\n%s", out)
	}
	if !strings.Contains(out, "R$ 1.500,00") {
		t.Errorf("expected monetary-sounding field rendered as currency, got:\n%s", out)
	}
	if !strings.Contains(out, "horas extras") {
		t.Errorf("expected active section kept, got:\n%s", out)
	}
	if strings.Contains(out, "noturno") {
		t.Errorf("expected inactive section pruned, got:\n%s", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("expected no residual tokens, got:\n%s", out)
	}

	if stats.Status != StatusSuccess {
		t.Errorf("expected success status, got %q", stats.Status)
	}
	if stats.Completeness != 100 {
		t.Errorf("expected 100%% completeness, got %v", stats.Completeness)
	}
	if stats.SectionsActive != 1 || stats.SectionsPruned != 1 {
		t.Errorf("unexpected section counts: active=%d pruned=%d", stats.SectionsActive, stats.SectionsPruned)
	}
}

func TestAssembleDocumentPartialRecord(t *testing.T) {
	asm := New(petitionDefs(), fieldmeta.NullProvider{}, Options{}, nil, testLogger())

	// Two of three discovered placeholders resolve: 66.7%, partial band.
	rec := record.Record{
		"nome":         "Maria",
		"HORAS_EXTRAS": "Sim",
		"valor_he":     100.0,
	}
	_, stats, err := asm.AssembleDocument(petitionUnits(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Status != StatusPartial {
		t.Errorf("expected partial status, got %q (completeness %v)", stats.Status, stats.Completeness)
	}
	if stats.Missing != 1 {
		t.Errorf("expected 1 missing placeholder, got %d", stats.Missing)
	}
}

func TestAssembleDocumentEmptyRecord(t *testing.T) {
	asm := New(petitionDefs(), fieldmeta.NullProvider{}, Options{}, nil, testLogger())

	_, stats, err := asm.AssembleDocument(petitionUnits(), record.Record{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Status != StatusError {
		t.Errorf("expected error status for empty record, got %q", stats.Status)
	}
}

func TestAssembleDocumentRequiredMissingForcesError(t *testing.T) {
	meta := mapProvider{
		"cpf": {Name: "cpf", RequiredWhenActive: true},
	}
	asm := New(nil, meta, Options{}, nil, testLogger())

	// All but one placeholder resolves; without the required-field gate the
	// completeness band alone would report partial.
	units := []*docmodel.Unit{
		para("Reclamante: {{nome}}, CPF {{cpf}}."),
	}
	_, stats, err := asm.AssembleDocument(units, record.Record{"nome": "Maria"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Status != StatusError {
		t.Errorf("expected error status with a required field missing, got %q (completeness %v)",
			stats.Status, stats.Completeness)
	}
	if len(stats.MissingRequired) != 1 || stats.MissingRequired[0] != "cpf" {
		t.Errorf("unexpected missing required fields %v", stats.MissingRequired)
	}
}

func TestAssembleDocumentStrictMode(t *testing.T) {
	meta := mapProvider{
		"nome": {Name: "nome", RequiredWhenActive: true},
	}
	asm := New(petitionDefs(), meta, Options{Strict: true}, nil, testLogger())

	_, stats, err := asm.AssembleDocument(petitionUnits(), record.Record{"HORAS_EXTRAS": "Não"})
	var missing *RequiredFieldMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected RequiredFieldMissingError, got %v", err)
	}
	if len(missing.Fields) != 1 || missing.Fields[0] != "nome" {
		t.Errorf("unexpected missing fields %v", missing.Fields)
	}
	if stats.Status != StatusError {
		t.Errorf("expected error status, got %q", stats.Status)
	}
}

func TestAssembleDocumentRecordsLatency(t *testing.T) {
	latency := NewLatency(0)
	asm := New(nil, fieldmeta.NullProvider{}, Options{}, latency, testLogger())

	units := []*docmodel.Unit{para("Sem placeholders.")}
	_, stats, err := asm.AssembleDocument(units, record.Record{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Completeness != 100 || stats.Status != StatusSuccess {
		t.Errorf("expected trivially complete run, got %+v", stats)
	}
	if latency.Snapshot().Count != 1 {
		t.Error("expected one latency sample recorded")
	}
}
