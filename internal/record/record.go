// Package record supplies the flat data records a document is generated
// from, with the scalar coercion rules shared by ingestion and rule
// evaluation.
package record

import (
	"strconv"
	"strings"
)

// Record maps field names to scalar values (string, int64, float64, bool or
// nil). It is immutable during a single assembly run.
type Record map[string]any

// Get returns the value for a field and whether it is present.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

var (
	affirmative = map[string]bool{"sim": true, "yes": true, "true": true, "1": true, "s": true, "y": true, "t": true}
	negative    = map[string]bool{"não": true, "nao": true, "no": true, "false": true, "0": true, "n": true, "f": true}
)

// Coerce normalizes a scalar for comparison. String operands are trimmed,
// mapped against the affirmative/negative vocabularies, then parsed as
// integer or decimal; anything else passes through unchanged.
func Coerce(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if affirmative[lower] {
		return true
	}
	if negative[lower] {
		return false
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// CoerceCell converts a raw CSV cell into a typed scalar for a Record. An
// empty cell becomes nil; otherwise integers and decimals (dot or comma
// separator) are parsed, and everything else stays a trimmed string. The
// affirmative/negative vocabulary is deliberately not applied here: "Sim"
// stays "Sim" in the record so substituted text reads naturally, and rule
// evaluation coerces at comparison time.
func CoerceCell(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Decimal comma, common in pt-BR data exports: 1.234,50 or 1234,50.
	if strings.Contains(s, ",") {
		norm := strings.ReplaceAll(s, ".", "")
		norm = strings.ReplaceAll(norm, ",", ".")
		if f, err := strconv.ParseFloat(norm, 64); err == nil {
			return f
		}
	}
	return s
}

// IsEmptyValue reports whether a scalar counts as empty: nil, empty or
// blank string, or an empty collection.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
