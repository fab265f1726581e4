package layout

import "testing"

func TestASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TOTAL R$ 7,50", "TOTAL R$ 7,50"},
		{"CUPOM FISCAL ELETRÔNICO - SAT", "CUPOM FISCAL ELETRONICO - SAT"},
		{"Endereço: Praça da Sé", "Endereco: Praca da Se"},
		{"acréscimo sobre item", "acrescimo sobre item"},
		{"OBSERVAÇÕES DO CONTRIBUINTE", "OBSERVACOES DO CONTRIBUINTE"},
		{"Rua 7, nº 12, 3ª andar", "Rua 7, no 12, 3a andar"},
		{"“aspas” – travessão", "\"aspas\" - travessao"},
		{"tab\there", "tab here"},
		{"日本", "??"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ASCII(tt.in); got != tt.want {
				t.Errorf("ASCII(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
