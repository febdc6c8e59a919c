package format

import (
	"math"
	"strings"
)

var (
	unidades  = []string{"", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove"}
	dezenas   = []string{"", "dez", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	centenas  = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos", "seiscentos", "setecentos", "oitocentos", "novecentos"}
	especiais = map[int64]string{
		11: "onze", 12: "doze", 13: "treze", 14: "quatorze", 15: "quinze",
		16: "dezesseis", 17: "dezessete", 18: "dezoito", 19: "dezenove",
	}
)

type escala struct {
	singular string
	plural   string
	valor    int64
}

var escalas = []escala{
	{"bilhão", "bilhões", 1_000_000_000},
	{"milhão", "milhões", 1_000_000},
	{"mil", "mil", 1_000},
}

// Extenso writes a non-negative integer as Brazilian Portuguese cardinal
// words.
func Extenso(n int64) string {
	if n == 0 {
		return "zero"
	}
	var parts []string
	for _, e := range escalas {
		if n < e.valor {
			continue
		}
		q := n / e.valor
		n %= e.valor
		nome := e.plural
		if q == 1 {
			nome = e.singular
		}
		if e.valor == 1_000 && q == 1 {
			// "mil", never "um mil".
			parts = append(parts, nome)
		} else {
			parts = append(parts, grupo(q)+" "+nome)
		}
	}
	if n > 0 {
		if len(parts) > 0 && (n < 100 || n%100 == 0) {
			parts = append(parts, "e "+grupo(n))
		} else {
			parts = append(parts, grupo(n))
		}
	}
	return strings.Join(parts, " ")
}

// grupo spells a number from 1 to 999.
func grupo(n int64) string {
	if n == 100 {
		return "cem"
	}
	var parts []string
	if n >= 100 {
		parts = append(parts, centenas[n/100])
		n %= 100
	}
	if s, ok := especiais[n]; ok {
		parts = append(parts, s)
		n = 0
	}
	if n >= 10 {
		parts = append(parts, dezenas[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, unidades[n])
	}
	return strings.Join(parts, " e ")
}

// MoneyExtenso writes a monetary value as words with real/centavo
// suffixes, e.g. 1234.50 → "mil duzentos e trinta e quatro reais e
// cinquenta centavos".
func MoneyExtenso(v float64) string {
	inteiro := int64(math.Floor(v))
	centavos := int64(math.Round((v - float64(inteiro)) * 100))
	if centavos == 100 {
		inteiro++
		centavos = 0
	}

	reais := Extenso(inteiro)
	if inteiro == 1 {
		reais += " real"
	} else {
		reais += " reais"
	}

	cent := Extenso(centavos)
	if centavos == 1 {
		cent += " centavo"
	} else {
		cent += " centavos"
	}

	return reais + " e " + cent
}
