// =============================================================================
// SAT Extrato - Layout Primitives
// =============================================================================
//
// This package holds the character-grid primitives used by the receipt
// layout engine. Every line printed on the paper roll goes through one of:
//
//   - Fit:   two-sided justified line ("left text ...... right text")
//   - Wrap:  word wrap to the active column width, honouring hard breaks
//   - ASCII: transliteration to the printable subset accepted by the printer
//
// All lengths are measured in runes. The printer only receives ASCII, so
// after transliteration one rune is one printed column.
//
// =============================================================================

package layout

import "strings"

// DefaultMinGutter is the minimum number of blanks kept between the left and
// the right fragment of a bordered line.
const DefaultMinGutter = 4

// Fit lays out left and right on a single line of width columns.
//
// When both fragments fit with at least minGutter blanks between them, the
// result is left, the blanks needed to reach width, then right. Otherwise
// exactly minGutter blanks are kept and the remaining width is split in two
// halves: left keeps its first runes (tail dropped) and right keeps its last
// runes (head dropped). An odd remainder goes to the right side when
// favorRight is set, to the left side otherwise. A side shorter than its half
// hands the unused columns to the other side, so a truncated line always has
// exactly width runes.
//
// Fit never fails. A width smaller than minGutter yields only the gutter and a
// negative minGutter is treated as zero.
func Fit(left, right string, width, minGutter int, favorRight bool) string {
	if minGutter < 0 {
		minGutter = 0
	}

	l, r := []rune(left), []rune(right)

	gutter := width - (len(l) + len(r))
	if gutter >= minGutter {
		return left + strings.Repeat(" ", gutter) + right
	}

	avail := width - minGutter
	if avail < 0 {
		avail = 0
	}

	budgetLeft, budgetRight := avail/2, avail/2
	if avail%2 != 0 {
		if favorRight {
			budgetRight++
		} else {
			budgetLeft++
		}
	}

	// A short side donates its unused budget to the other one.
	if len(l) < budgetLeft {
		budgetRight += budgetLeft - len(l)
		budgetLeft = len(l)
	}
	if len(r) < budgetRight {
		budgetLeft += budgetRight - len(r)
		budgetRight = len(r)
	}
	budgetLeft = min(budgetLeft, len(l))

	var b strings.Builder
	b.Grow(budgetLeft + minGutter + budgetRight)
	b.WriteString(string(l[:budgetLeft]))
	b.WriteString(strings.Repeat(" ", minGutter))
	b.WriteString(string(r[len(r)-budgetRight:]))
	return b.String()
}

// Borders is Fit with the default gutter and right-side bias.
func Borders(left, right string, width int) string {
	return Fit(left, right, width, DefaultMinGutter, true)
}
