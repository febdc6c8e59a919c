// Package rules implements the condition evaluator and the section
// activation engine: boolean condition trees (or legacy textual
// expressions) evaluated against a flat data record decide which document
// sections are active.
package rules

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/tcpires/peticiona/internal/record"
)

// Condition is one node of a condition tree. When Op is set the node is a
// composite ("and", "or", "not") over Children; otherwise it is a leaf
// comparing a record field against an expected value.
type Condition struct {
	Field    string `yaml:"field,omitempty" json:"field,omitempty"`
	Operator string `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`

	Op       string       `yaml:"op,omitempty" json:"op,omitempty"`
	Children []*Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// Leaf operators that take no expected value.
var unaryOperators = map[string]bool{
	"is_empty":     true,
	"is_not_empty": true,
}

var leafOperators = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"in": true, "not_in": true,
	"contains": true, "not_contains": true,
	"startswith": true, "endswith": true, "matches": true,
	"is_empty": true, "is_not_empty": true,
}

// Evaluate walks the condition tree against rec. A nil condition is
// vacuously true. Malformed nodes fail with InvalidRuleError, which aborts
// this node and, transitively, its parent.
func Evaluate(cond *Condition, rec record.Record, log *slog.Logger) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if cond.Op != "" {
		return evalComposite(cond, rec, log)
	}
	return evalLeaf(cond, rec, log)
}

func evalComposite(cond *Condition, rec record.Record, log *slog.Logger) (bool, error) {
	op := strings.ToLower(cond.Op)
	switch op {
	case "and", "or", "not":
	default:
		return false, invalidRule("unknown logical operator %q", cond.Op)
	}
	if op == "not" && len(cond.Children) != 1 {
		return false, invalidRule("not requires exactly one child, got %d", len(cond.Children))
	}

	// Every child is evaluated even once the outcome is already determined,
	// so diagnostics cover the whole tree.
	results := make([]bool, 0, len(cond.Children))
	var firstErr error
	for _, child := range cond.Children {
		r, err := Evaluate(child, rec, log)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		results = append(results, r)
	}
	if firstErr != nil {
		return false, firstErr
	}

	switch op {
	case "and":
		for _, r := range results {
			if !r {
				return false, nil
			}
		}
		return true, nil
	case "or":
		for _, r := range results {
			if r {
				return true, nil
			}
		}
		return false, nil
	default: // not
		return !results[0], nil
	}
}

func evalLeaf(cond *Condition, rec record.Record, log *slog.Logger) (bool, error) {
	if cond.Field == "" || cond.Operator == "" {
		return false, invalidRule("leaf condition requires field and operator")
	}
	if !leafOperators[cond.Operator] {
		return false, invalidRule("operator %q not allowed", cond.Operator)
	}
	if !unaryOperators[cond.Operator] && cond.Value == nil {
		return false, invalidRule("operator %q requires an expected value", cond.Operator)
	}

	raw, ok := rec.Get(cond.Field)
	if !ok {
		if !unaryOperators[cond.Operator] {
			log.Debug("condition field absent from record", "field", cond.Field)
			return false, nil
		}
		// Absent counts as empty for the emptiness operators.
		raw = nil
	}

	left := record.Coerce(raw)
	right := record.Coerce(cond.Value)
	return applyOperator(cond.Operator, left, right, log), nil
}

func applyOperator(op string, left, right any, log *slog.Logger) bool {
	switch op {
	case "==":
		return equalValues(left, right)
	case "!=":
		return !equalValues(left, right)
	case "<", "<=", ">", ">=":
		c, ok := compareValues(left, right)
		if !ok {
			log.Debug("incomparable operands", "op", op)
			return false
		}
		switch op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		default:
			return c >= 0
		}
	case "in":
		return memberOf(left, right)
	case "not_in":
		return !memberOf(left, right)
	case "contains", "not_contains", "startswith", "endswith":
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return false
		}
		switch op {
		case "contains":
			return strings.Contains(ls, rs)
		case "not_contains":
			return !strings.Contains(ls, rs)
		case "startswith":
			return strings.HasPrefix(ls, rs)
		default:
			return strings.HasSuffix(ls, rs)
		}
	case "matches":
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return false
		}
		re, err := regexp.Compile(rs)
		if err != nil {
			log.Warn("invalid pattern in matches operator", "pattern", rs, "error", err)
			return false
		}
		loc := re.FindStringIndex(ls)
		return loc != nil && loc[0] == 0 // anchored at start
	case "is_empty":
		return record.IsEmptyValue(left)
	case "is_not_empty":
		return !record.IsEmptyValue(left)
	}
	return false
}

// equalValues compares two coerced scalars. Booleans equal their numeric
// counterparts (true is 1, false is 0), so a record value of 1 matches an
// expected "Sim"/true and vice versa.
func equalValues(a, b any) bool {
	if af, aok := equatableFloat(a); aok {
		bf, bok := equatableFloat(b)
		return bok && af == bf
	}
	switch at := a.(type) {
	case nil:
		return b == nil
	case string:
		bs, ok := b.(string)
		return ok && at == bs
	}
	return false
}

func equatableFloat(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return asFloat(v)
}

// compareValues orders two coerced scalars. Only numbers order against
// numbers and strings against strings; anything else is incomparable.
func compareValues(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func memberOf(needle, haystack any) bool {
	items, ok := haystack.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equalValues(needle, record.Coerce(item)) {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	return 0, false
}
