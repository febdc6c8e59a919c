// Package fieldmeta resolves per-field metadata (category, data type,
// formatting hint, required flag) used by placeholder substitution. The
// production implementation is backed by the relational field-definition
// model; NullProvider is the explicit "no metadata" implementation.
package fieldmeta

import "strings"

// FieldMeta describes one template field.
type FieldMeta struct {
	Name               string
	Category           string
	DataType           string
	FormatHint         string
	RequiredWhenActive bool
	DefaultValue       string
}

// Provider resolves metadata by field name.
type Provider interface {
	// ByName returns the metadata for a field, or ok=false when the field
	// is unknown to the model.
	ByName(field string) (FieldMeta, bool)
}

// NullProvider knows no fields. It is a valid provider: every field is
// optional and carries no formatting hints.
type NullProvider struct{}

func (NullProvider) ByName(string) (FieldMeta, bool) { return FieldMeta{}, false }

var monetaryHints = []string{"#.##0,00", "dinheiro", "monetário", "monetario", "moeda", "r$"}
var monetaryTypes = []string{"dinheiro", "moeda", "valor", "salario", "salário", "monetário", "monetario"}

// Monetary reports whether the metadata declares a monetary rendering. An
// explicit monetary format hint always counts; the data type vocabulary
// counts unless the type asks for written-out words, so "valor_extenso"
// stays a word-rendered type.
func (m FieldMeta) Monetary() bool {
	hint := strings.ToLower(m.FormatHint)
	for _, h := range monetaryHints {
		if h != "" && strings.Contains(hint, h) {
			return true
		}
	}
	typ := strings.ToLower(m.DataType)
	if strings.Contains(typ, "extenso") {
		return false
	}
	for _, t := range monetaryTypes {
		if strings.Contains(typ, t) {
			return true
		}
	}
	return false
}

// SpelledOut reports whether the metadata asks for the value written out as
// number words.
func (m FieldMeta) SpelledOut() bool {
	return strings.Contains(strings.ToLower(m.DataType), "extenso")
}
