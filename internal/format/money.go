// Package format renders field values for insertion into documents:
// Brazilian monetary amounts and numbers written out in words.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Money renders a value as Brazilian currency: thousands grouping with
// dots, decimal comma, two fraction digits. Example: 1234.5 → "R$ 1.234,50".
func Money(v float64) string {
	return ptBR.Sprintf("R$ %v",
		number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Value renders an arbitrary scalar with the default string conversion.
// Nil renders to the empty string.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		// Trim a trailing ",0" style tail: 2.0 reads as "2".
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return s
	}
	return fmt.Sprint(v)
}

// Monetary field vocabulary: fields whose names sound like money amounts
// get currency rendering even without an explicit metadata hint.
var monetaryNames = []string{
	"valor", "salario", "salário", "remuneracao", "remuneração",
	"vencimento", "subsidio", "subsídio", "proventos",
	"montante", "importancia", "importância", "quantia",
	"bruto", "liquido", "líquido", "total",
}

// MonetaryName reports whether a field name matches the monetary-sounding
// vocabulary.
func MonetaryName(field string) bool {
	lower := strings.ToLower(field)
	for _, term := range monetaryNames {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
