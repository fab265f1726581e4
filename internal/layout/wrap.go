package layout

import (
	"iter"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// HardLines splits text on explicit line breaks. CR LF and bare CR are
// treated as LF.
func HardLines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// Wrap returns the lines of text wrapped to width columns.
//
// Explicit line breaks always end a line. Each hard line is then wrapped
// greedily at whitespace; runs of whitespace collapse to a single blank and a
// word longer than width is split across lines. Blank hard lines produce no
// output. A width below one is treated as one.
//
// The returned sequence is lazy and can be ranged over more than once.
func Wrap(text string, width int) iter.Seq[string] {
	if width < 1 {
		width = 1
	}
	segments := HardLines(text)

	return func(yield func(string) bool) {
		for _, segment := range segments {
			if !wrapSegment(segment, width, yield) {
				return
			}
		}
	}
}

// Lines collects Wrap into a slice.
func Lines(text string, width int) []string {
	var lines []string
	for line := range Wrap(text, width) {
		lines = append(lines, line)
	}
	return lines
}

// wrapSegment wraps one hard line. It reports false when the consumer
// stopped the iteration.
func wrapSegment(segment string, width int, yield func(string) bool) bool {
	var (
		line strings.Builder
		n    int
	)

	flush := func() bool {
		if n == 0 {
			return true
		}
		s := line.String()
		line.Reset()
		n = 0
		return yield(s)
	}

	for _, word := range strings.Fields(segment) {
		w := []rune(word)

		switch {
		case n == 0 && len(w) <= width:
			line.WriteString(word)
			n = len(w)

		case n > 0 && n+1+len(w) <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			n += 1 + len(w)

		case len(w) <= width:
			if !flush() {
				return false
			}
			line.WriteString(word)
			n = len(w)

		default:
			// Over-long word: fill what is left of the current line, then
			// emit full-width chunks and keep the remainder open.
			if n > 0 {
				if room := width - n - 1; room > 0 {
					line.WriteByte(' ')
					line.WriteString(string(w[:room]))
					n += 1 + room
					w = w[room:]
				}
				if !flush() {
					return false
				}
			}
			for len(w) > width {
				if !yield(string(w[:width])) {
					return false
				}
				w = w[width:]
			}
			line.WriteString(string(w))
			n = len(w)
		}
	}

	return flush()
}
