package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// substitutions covers characters that do not decompose into an ASCII base
// letter plus combining marks.
var substitutions = map[rune]string{
	'\t':     " ",
	'\u00a0': " ",
	'ß':      "ss",
	'º':      "o",
	'ª':      "a",
	'°':      "o",
	'Æ':      "AE",
	'æ':      "ae",
	'Ø':      "O",
	'ø':      "o",
	'Đ':      "D",
	'đ':      "d",
	'Ł':      "L",
	'ł':      "l",
	'Œ':      "OE",
	'œ':      "oe",
	'×':      "x",
	'«':      "<<",
	'»':      ">>",
	'‘':      "'",
	'’':      "'",
	'“':      "\"",
	'”':      "\"",
	'–':      "-",
	'—':      "-",
	'…':      "...",
	'•':      "*",
	'€':      "EUR",
	'£':      "GBP",
	'§':      "S",
}

// ASCII transliterates s to printable ASCII. Accented letters lose their
// marks ("ELETRÔNICO" becomes "ELETRONICO"), a few symbols are spelled out
// and anything else becomes '?'.
func ASCII(s string) string {
	if isPrintableASCII(s) {
		return s
	}

	// Transformers carry state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == '\n' || (r >= 0x20 && r < 0x7f):
			b.WriteRune(r)
		default:
			if sub, ok := substitutions[r]; ok {
				b.WriteString(sub)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\n' && (c < 0x20 || c >= 0x7f) {
			return false
		}
	}
	return true
}
