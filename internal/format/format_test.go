package format

import "testing"

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{1234.5, "R$ 1.234,50"},
		{1234567.89, "R$ 1.234.567,89"},
		{2500, "R$ 2.500,00"},
		{0.5, "R$ 0,50"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestMonetaryName(t *testing.T) {
	positives := []string{"valor_causa", "SALARIO_BASE", "salário líquido", "remuneracao_total", "quantia"}
	for _, name := range positives {
		if !MonetaryName(name) {
			t.Errorf("expected %q to sound monetary", name)
		}
	}
	negatives := []string{"nome", "cidade", "cpf", "data_admissao"}
	for _, name := range negatives {
		if MonetaryName(name) {
			t.Errorf("expected %q not to sound monetary", name)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"texto", "texto"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{2.0, "2"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Value(tt.in); got != tt.want {
			t.Errorf("Value(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestExtenso(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "zero"},
		{1, "um"},
		{15, "quinze"},
		{21, "vinte e um"},
		{100, "cem"},
		{101, "cento e um"},
		{234, "duzentos e trinta e quatro"},
		{1000, "mil"},
		{1001, "mil e um"},
		{1234, "mil duzentos e trinta e quatro"},
		{2000, "dois mil"},
		{1100, "mil e cem"},
		{1_000_000, "um milhão"},
		{2_000_000, "dois milhões"},
		{1_000_000_000, "um bilhão"},
	}
	for _, tt := range tests {
		if got := Extenso(tt.in); got != tt.want {
			t.Errorf("Extenso(%d): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestMoneyExtenso(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234.50, "mil duzentos e trinta e quatro reais e cinquenta centavos"},
		{1, "um real e zero centavos"},
		{0.01, "zero reais e um centavo"},
		{2.999, "três reais e zero centavos"},
	}
	for _, tt := range tests {
		if got := MoneyExtenso(tt.in); got != tt.want {
			t.Errorf("MoneyExtenso(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
