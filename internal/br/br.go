// =============================================================================
// SAT Extrato - Brazilian Formatting Helpers
// =============================================================================
//
// Small lookups and formatters for Brazilian fiscal data as it appears on a
// printed receipt:
//
//   - CNPJ / CPF tax ids and the CEP postal code
//   - IBGE state codes (cUF) to state abbreviations
//   - SAT payment method codes (cMP) to labels
//   - monetary and quantity values in pt-BR notation
//
// Tax ids are discriminated by digit count only. Check digits are not
// verified: the SAT device already rejected invalid documents when the
// sale was issued.
//
// =============================================================================

package br

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownUF is returned for state codes outside the IBGE table.
var ErrUnknownUF = errors.New("br: unknown state code")

// =============================================================================
// TAX IDS AND POSTAL CODES
// =============================================================================

const (
	cpfDigits  = 11
	cnpjDigits = 14
	cepDigits  = 8
)

// IsCPF reports whether doc is made of exactly 11 digits.
func IsCPF(doc string) bool {
	return len(doc) == cpfDigits && allDigits(doc)
}

// IsCNPJ reports whether doc is made of exactly 14 digits.
func IsCNPJ(doc string) bool {
	return len(doc) == cnpjDigits && allDigits(doc)
}

// IsCNPJCPF reports whether doc looks like either a CPF or a CNPJ.
func IsCNPJCPF(doc string) bool {
	return IsCPF(doc) || IsCNPJ(doc)
}

// FormatCNPJ renders 61099008000141 as 61.099.008/0001-41. Anything that is
// not a 14-digit string is returned unchanged.
func FormatCNPJ(doc string) string {
	if !IsCNPJ(doc) {
		return doc
	}
	return doc[0:2] + "." + doc[2:5] + "." + doc[5:8] + "/" + doc[8:12] + "-" + doc[12:14]
}

// FormatCPF renders 12345678909 as 123.456.789-09. Anything that is not an
// 11-digit string is returned unchanged.
func FormatCPF(doc string) string {
	if !IsCPF(doc) {
		return doc
	}
	return doc[0:3] + "." + doc[3:6] + "." + doc[6:9] + "-" + doc[9:11]
}

// FormatCNPJCPF picks the CPF or CNPJ mask by digit count.
func FormatCNPJCPF(doc string) string {
	if IsCPF(doc) {
		return FormatCPF(doc)
	}
	return FormatCNPJ(doc)
}

// FormatCEP renders 05311000 as 05311-000.
func FormatCEP(cep string) string {
	if len(cep) != cepDigits || !allDigits(cep) {
		return cep
	}
	return cep[:5] + "-" + cep[5:]
}

// =============================================================================
// STATES
// =============================================================================

var ufByCode = map[int]string{
	11: "RO", 12: "AC", 13: "AM", 14: "RR", 15: "PA", 16: "AP", 17: "TO",
	21: "MA", 22: "PI", 23: "CE", 24: "RN", 25: "PB", 26: "PE", 27: "AL", 28: "SE", 29: "BA",
	31: "MG", 32: "ES", 33: "RJ", 35: "SP",
	41: "PR", 42: "SC", 43: "RS",
	50: "MS", 51: "MT", 52: "GO", 53: "DF",
}

// UFByCode maps an IBGE state code (cUF) to its two-letter abbreviation.
func UFByCode(code int) (string, error) {
	uf, ok := ufByCode[code]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownUF, code)
	}
	return uf, nil
}

// =============================================================================
// PAYMENT METHODS
// =============================================================================

var paymentMethods = map[string]string{
	"01": "Dinheiro",
	"02": "Cheque",
	"03": "Cartão de Crédito",
	"04": "Cartão de Débito",
	"05": "Crédito Loja",
	"10": "Vale Alimentação",
	"11": "Vale Refeição",
	"12": "Vale Presente",
	"13": "Vale Combustível",
	"15": "Boleto Bancário",
	"16": "Depósito Bancário",
	"17": "PIX",
	"18": "Transferência bancária",
	"19": "Programa de fidelidade",
	"99": "Outros",
}

// PaymentMethod returns the label of a cMP code. Unknown codes are returned
// as they are so the receipt still shows something traceable.
func PaymentMethod(code string) string {
	if label, ok := paymentMethods[strings.TrimSpace(code)]; ok {
		return label
	}
	return code
}

// =============================================================================
// NUMBERS
// =============================================================================

// Money formats d in pt-BR notation keeping its own scale: 1234.50 becomes
// "1.234,50" and 7.5 becomes "7,5".
func Money(d decimal.Decimal) string {
	places := int32(0)
	if exp := d.Exponent(); exp < 0 {
		places = -exp
	}

	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(places), ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// Quantity formats d like Money after dropping trailing zeros, so a qCom of
// 1.0000 prints as "1" and 2.5000 as "2,5".
func Quantity(d decimal.Decimal) string {
	trimmed, err := decimal.NewFromString(d.String())
	if err != nil {
		return Money(d)
	}
	return Money(trimmed)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
