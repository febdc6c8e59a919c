package rules

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/tcpires/peticiona/internal/record"
)

// Deny-list applied to legacy textual conditions before parsing. The
// vocabulary mirrors the rule sources this grammar was inherited from:
// tokens associated with code execution, attribute access, or file/OS
// access are rejected outright.
var dangerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bimport\b`),
	regexp.MustCompile(`\bexec\b`),
	regexp.MustCompile(`\beval\b`),
	regexp.MustCompile(`\bcompile\b`),
	regexp.MustCompile(`\bglobals\b`),
	regexp.MustCompile(`\blocals\b`),
	regexp.MustCompile(`\bgetattr\b`),
	regexp.MustCompile(`\bsetattr\b`),
	regexp.MustCompile(`\bdelattr\b`),
	regexp.MustCompile(`\b__\w+__\b`),
	regexp.MustCompile(`\bopen\b`),
	regexp.MustCompile(`\bfile\b`),
	regexp.MustCompile(`\bsystem\b`),
	regexp.MustCompile(`\bos\b`),
	regexp.MustCompile(`\bsys\b`),
}

var (
	logicalCallRe = regexp.MustCompile(`(?i)^(AND|OR)\((.*)\)$`)
	comparisonRe  = regexp.MustCompile(`^(\w+)\s*(==|!=|<=|>=|<|>)\s*(?:'([^']*)'|"([^"]*)"|(\S+))$`)
)

// CheckSafety rejects expressions containing deny-listed tokens. Rejection
// happens before any parsing, so an unsafe expression is never partially
// evaluated.
func CheckSafety(expr string) error {
	lower := strings.ToLower(expr)
	for _, p := range dangerPatterns {
		if p.MatchString(lower) {
			return &UnsafeExpressionError{Expr: expr, Pattern: p.String()}
		}
	}
	return nil
}

// EvaluateExpr evaluates a legacy flat-string condition against rec. The
// constrained grammar accepts exactly: the literals "True"/"False", the
// call-like forms AND(cond, cond, ...) / OR(cond, cond, ...), and a single
// comparison "field <op> value". Anything else fails with InvalidRuleError;
// there is no dynamic fallback.
func EvaluateExpr(expr string, rec record.Record, log *slog.Logger) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}
	if err := CheckSafety(expr); err != nil {
		return false, err
	}
	return evalExpr(expr, rec, log)
}

func evalExpr(expr string, rec record.Record, log *slog.Logger) (bool, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}

	if m := logicalCallRe.FindStringSubmatch(expr); m != nil {
		op := strings.ToUpper(m[1])
		parts := splitTopLevel(m[2])
		// Children are all evaluated, matching the tree evaluator.
		results := make([]bool, 0, len(parts))
		var firstErr error
		for _, part := range parts {
			r, err := evalExpr(part, rec, log)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			results = append(results, r)
		}
		if firstErr != nil {
			return false, firstErr
		}
		if op == "AND" {
			for _, r := range results {
				if !r {
					return false, nil
				}
			}
			return true, nil
		}
		for _, r := range results {
			if r {
				return true, nil
			}
		}
		return false, nil
	}

	if m := comparisonRe.FindStringSubmatch(expr); m != nil {
		value := m[3]
		if m[4] != "" {
			value = m[4]
		}
		if value == "" && m[5] != "" {
			value = m[5]
		}
		cond := &Condition{Field: m[1], Operator: m[2], Value: value}
		return Evaluate(cond, rec, log)
	}

	return false, invalidRule("expression format not recognized: %q", expr)
}

// splitTopLevel splits a comma-separated argument list, ignoring commas
// inside nested parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
