package sink

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ginjaninja78/sat-extrato/internal/config"
	"golang.org/x/text/encoding/charmap"
)

var columns = config.Columns{Normal: 48, Condensed: 57, Expanded: 24}

func TestPreviewCentersByActiveWidth(t *testing.T) {
	tests := []struct {
		name      string
		condensed bool
		expanded  bool
		pad       int
	}{
		{"normal", false, false, (48 - 4) / 2},
		{"condensed", true, false, (57 - 4) / 2},
		{"expanded", false, true, (24 - 4) / 2},
		{"both fall back to normal", true, true, (48 - 4) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPreview(&buf, columns)
			p.SetCondensed(tt.condensed)
			p.SetExpanded(tt.expanded)
			p.JustifyCenter()
			if err := p.Text("ABCD"); err != nil {
				t.Fatal(err)
			}
			want := strings.Repeat(" ", tt.pad) + "ABCD\n"
			if buf.String() != want {
				t.Errorf("got %q, want %q", buf.String(), want)
			}
		})
	}
}

func TestPreviewLeftAndFeed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreview(&buf, columns)
	p.JustifyCenter()
	p.JustifyLeft()
	p.Text("TOTAL R$    7,50  ")
	p.LineFeed(2)
	p.LineFeed(0)

	if got, want := buf.String(), "TOTAL R$    7,50\n\n\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPreviewCode128(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreview(&buf, columns)

	key := "35150461099008000141599000017900000015450903"
	if err := p.Code128(key, BarcodeOptions{Height: 96, Width: 2, HRI: true}); err != nil {
		t.Fatalf("Code128: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != barRows+1 {
		t.Fatalf("got %d lines, want %d", len(lines), barRows+1)
	}
	if !strings.Contains(lines[0], "|") || len(lines[0]) > 48 {
		t.Errorf("bar row = %q", lines[0])
	}
	if lines[barRows] != key {
		t.Errorf("HRI = %q", lines[barRows])
	}
}

func TestPreviewCode128InvalidPayload(t *testing.T) {
	p := NewPreview(&bytes.Buffer{}, columns)
	err := p.Code128("ÇÃO", BarcodeOptions{})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestPreviewQRCode(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreview(&buf, columns)
	if err := p.QRCode("HELLO SAT", QRCodeOptions{ModuleSize: 4, ECC: "m"}); err != nil {
		t.Fatalf("QRCode: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.ContainsAny(lines[0], ":'.") {
		t.Errorf("first row has no modules: %q", lines[0])
	}

	if err := p.QRCode("HELLO", QRCodeOptions{ECC: "X"}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestPreviewCut(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreview(&buf, columns, WithCutter(false))
	if p.HasCutter() {
		t.Error("HasCutter = true")
	}
	if err := p.Cut(true, 1); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "\n8< - ") || len(strings.TrimSpace(got)) != 48 {
		t.Errorf("cut marker = %q", got)
	}
}

func TestPreviewCharmap(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreview(&buf, columns, WithCharmap(charmap.ISO8859_1))
	if err := p.Text("PÃO 日"); err != nil {
		t.Fatal(err)
	}
	want := []byte{'P', 0xC3, 'O', ' ', 0x1A, '\n'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestCharmapByName(t *testing.T) {
	tests := []struct {
		name    string
		want    *charmap.Charmap
		wantErr bool
	}{
		{"", nil, false},
		{"UTF-8", nil, false},
		{" CP850 ", charmap.CodePage850, false},
		{"iso-8859-1", charmap.ISO8859_1, false},
		{"ebcdic", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CharmapByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	var p Printer = r
	if _, ok := p.(ItalicSetter); !ok {
		t.Fatal("Recorder does not implement ItalicSetter")
	}

	p.JustifyCenter()
	p.SetEmphasized(true)
	p.Text("Extrato No. 000000")
	p.SetEmphasized(false)
	p.Code128("1234", BarcodeOptions{Height: 96, Width: 2})
	p.Cut(true, 0)

	if got := r.Lines(); len(got) != 1 || got[0] != "Extrato No. 000000" {
		t.Errorf("Lines = %q", got)
	}
	if got := r.Find(OpEmphasized); len(got) != 2 || !got[0].On || got[1].On {
		t.Errorf("emphasis ops = %+v", got)
	}

	trace := r.String()
	for _, want := range []string{
		"justify_center\n",
		"emphasized on\n",
		`text "Extrato No. 000000"`,
		`code128 "1234" height=96 width=2 hri=false`,
		"cut partial=true feed=0",
	} {
		if !strings.Contains(trace, want) {
			t.Errorf("trace missing %q:\n%s", want, trace)
		}
	}
}

func TestRecorderFailAfter(t *testing.T) {
	fault := errors.New("paper out")
	r := &Recorder{FailAfter: 2, Err: fault}

	if err := r.Text("one"); err != nil {
		t.Fatal(err)
	}
	if err := r.Text("two"); err != nil {
		t.Fatal(err)
	}
	if err := r.Text("three"); err != fault {
		t.Errorf("error = %v, want %v", err, fault)
	}
	if len(r.Ops) != 2 {
		t.Errorf("recorded %d ops, want 2", len(r.Ops))
	}

	r = &Recorder{FailAfter: 1}
	r.LineFeed(1)
	if err := r.LineFeed(1); !errors.Is(err, ErrInjected) {
		t.Errorf("error = %v, want ErrInjected", err)
	}
}
