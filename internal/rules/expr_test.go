package rules

import (
	"errors"
	"testing"

	"github.com/tcpires/peticiona/internal/record"
)

func TestEvaluateExprLiterals(t *testing.T) {
	rec := record.Record{}
	if got, _ := EvaluateExpr("True", rec, testLogger()); !got {
		t.Error("expected True literal to be true")
	}
	if got, _ := EvaluateExpr("False", rec, testLogger()); got {
		t.Error("expected False literal to be false")
	}
	if got, err := EvaluateExpr("", rec, testLogger()); !got || err != nil {
		t.Errorf("expected empty expression to be true, got %v err=%v", got, err)
	}
}

func TestEvaluateExprComparisons(t *testing.T) {
	rec := record.Record{
		"HORAS_EXTRAS": "Sim",
		"idade":        int64(42),
		"cidade":       "Fortaleza",
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"HORAS_EXTRAS == 'Sim'", true},
		{"HORAS_EXTRAS == 'Não'", false},
		{`cidade == "Fortaleza"`, true},
		{"idade >= 18", true},
		{"idade < 18", false},
		{"idade != 42", false},
	}
	for _, tt := range tests {
		got, err := EvaluateExpr(tt.expr, rec, testLogger())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestEvaluateExprLogicalCalls(t *testing.T) {
	rec := record.Record{"a": int64(1), "b": int64(2), "c": "Sim"}

	tests := []struct {
		expr string
		want bool
	}{
		{"AND(a == 1, b == 2)", true},
		{"AND(a == 1, b == 3)", false},
		{"OR(a == 9, b == 2)", true},
		{"OR(a == 9, b == 9)", false},
		{"and(a == 1, c == 'Sim')", true},
		{"AND(OR(a == 9, b == 2), c == 'Sim')", true},
	}
	for _, tt := range tests {
		got, err := EvaluateExpr(tt.expr, rec, testLogger())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestEvaluateExprRejectsUnsafe(t *testing.T) {
	exprs := []string{
		"__import__('os').system('ls')",
		"eval(x)",
		"open('/etc/passwd')",
		"getattr(a, 'b')",
	}
	for _, expr := range exprs {
		_, err := EvaluateExpr(expr, record.Record{}, testLogger())
		var unsafeErr *UnsafeExpressionError
		if !errors.As(err, &unsafeErr) {
			t.Errorf("%s: expected UnsafeExpressionError, got %v", expr, err)
		}
	}
}

func TestEvaluateExprUnrecognized(t *testing.T) {
	_, err := EvaluateExpr("idade ** 2 > 100", record.Record{"idade": int64(5)}, testLogger())
	var ruleErr *InvalidRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected InvalidRuleError for unrecognized grammar, got %v", err)
	}
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("a == 1, OR(b == 2, c == 3), d == 4")
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %v", len(parts), parts)
	}
	if parts[1] != " OR(b == 2, c == 3)" {
		t.Errorf("expected nested call kept intact, got %q", parts[1])
	}
}
