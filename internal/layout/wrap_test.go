package layout

import (
	"slices"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "short text",
			text:  "DIMEP",
			width: 48,
			want:  []string{"DIMEP"},
		},
		{
			name:  "greedy break at whitespace",
			text:  "DIMAS DE MELO PIMENTA SISTEMAS DE PONTO E ACESSO LTDA",
			width: 24,
			want:  []string{"DIMAS DE MELO PIMENTA", "SISTEMAS DE PONTO E", "ACESSO LTDA"},
		},
		{
			name:  "hard breaks normalised",
			text:  "a\r\nb\rc\nd",
			width: 10,
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "hard break survives wide column",
			text:  "AVENIDA MOFARREJ, 840, 908\r\nVL. LEOPOLDINA",
			width: 80,
			want:  []string{"AVENIDA MOFARREJ, 840, 908", "VL. LEOPOLDINA"},
		},
		{
			name:  "blank segments dropped",
			text:  "one\n\n   \ntwo",
			width: 10,
			want:  []string{"one", "two"},
		},
		{
			name:  "whitespace collapsed",
			text:  "  a   b\tc  ",
			width: 10,
			want:  []string{"a b c"},
		},
		{
			name:  "long word hard split",
			text:  "abcdefghij",
			width: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:  "long word fills current line first",
			text:  "ab abcdefghij",
			width: 5,
			want:  []string{"ab ab", "cdefg", "hij"},
		},
		{
			name:  "long word after full line",
			text:  "abcd efghijklm",
			width: 4,
			want:  []string{"abcd", "efgh", "ijkl", "m"},
		},
		{
			name:  "empty text",
			text:  "",
			width: 10,
			want:  nil,
		},
		{
			name:  "non positive width",
			text:  "ab",
			width: 0,
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.text, tt.width)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Lines(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
			for _, line := range got {
				if w := tt.width; w > 0 && len([]rune(line)) > w {
					t.Errorf("line %q exceeds width %d", line, w)
				}
			}
		})
	}
}

func TestWrapRestartable(t *testing.T) {
	seq := Wrap("lorem ipsum dolor sit amet consectetur", 12)

	var first, second []string
	for line := range seq {
		first = append(first, line)
	}
	for line := range seq {
		second = append(second, line)
	}
	if !slices.Equal(first, second) {
		t.Errorf("second pass %q differs from first %q", second, first)
	}
}

func TestWrapStopsEarly(t *testing.T) {
	var got []string
	for line := range Wrap("one two three four five", 3) {
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("got %q", got)
	}
}

func TestWrapRoundTrip(t *testing.T) {
	text := "Consulte o QR Code pelo aplicativo De olho na nota\r\n" +
		"disponivel na AppStore (Apple)\rand PlayStore   (Android)\n" +
		"Valor aproximado dos tributos deste cupom"

	for width := 12; width <= 60; width += 7 {
		for _, segment := range HardLines(text) {
			lines := Lines(segment, width)
			got := strings.Join(lines, " ")
			want := strings.Join(strings.Fields(segment), " ")
			if got != want {
				t.Errorf("width %d: rejoined %q, want %q", width, got, want)
			}
		}

		// Every hard break still ends a line.
		all := Lines(text, width)
		for _, segment := range HardLines(text) {
			words := strings.Fields(segment)
			last := words[len(words)-1]
			found := false
			for _, line := range all {
				if strings.HasSuffix(line, last) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("width %d: no line ends with %q", width, last)
			}
		}
	}
}
