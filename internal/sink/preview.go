package sink

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// barRows is the number of text rows used to draw a Code128 symbol.
const barRows = 2

// Preview is a Printer that draws the receipt as plain text. Centering uses
// the width of the active print mode; emphasis has no visible effect.
// Barcodes and QR codes are encoded for real so an invalid payload fails the
// same way it would on a device.
type Preview struct {
	w       io.Writer
	columns config.Columns
	cutter  bool
	encoder *encoding.Encoder

	center    bool
	emphasis  bool
	italic    bool
	condensed bool
	expanded  bool
}

// PreviewOption configures a Preview.
type PreviewOption func(*Preview)

// WithCutter sets whether the preview advertises a paper cutter.
func WithCutter(on bool) PreviewOption {
	return func(p *Preview) {
		p.cutter = on
	}
}

// Charmaps are the code pages accepted by CharmapByName.
var charmaps = map[string]*charmap.Charmap{
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp860":        charmap.CodePage860,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

// CharmapByName returns the code page called name. "" and "utf-8" return
// nil, meaning no encoding.
func CharmapByName(name string) (*charmap.Charmap, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" {
		return nil, nil
	}
	cm, ok := charmaps[name]
	if !ok {
		return nil, fmt.Errorf("unknown code page %q", name)
	}
	return cm, nil
}

// WithCharmap encodes every line with the given code page before writing,
// the way bytes would reach a printer configured for that page. Characters
// the page cannot represent are replaced.
func WithCharmap(cm *charmap.Charmap) PreviewOption {
	return func(p *Preview) {
		if cm == nil {
			p.encoder = nil
			return
		}
		p.encoder = encoding.ReplaceUnsupported(cm.NewEncoder())
	}
}

// NewPreview returns a Preview writing to w. The printer has a cutter unless
// WithCutter(false) is given.
func NewPreview(w io.Writer, columns config.Columns, opts ...PreviewOption) *Preview {
	p := &Preview{w: w, columns: columns, cutter: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Preview) width() int {
	switch {
	case p.condensed && !p.expanded:
		return p.columns.Condensed
	case p.expanded && !p.condensed:
		return p.columns.Expanded
	default:
		return p.columns.Normal
	}
}

func (p *Preview) writeLine(line string) error {
	if p.center {
		if pad := (p.width() - runewidth.StringWidth(line)) / 2; pad > 0 {
			line = strings.Repeat(" ", pad) + line
		}
	}
	line = strings.TrimRight(line, " ")
	if p.encoder != nil {
		encoded, err := p.encoder.String(line)
		if err != nil {
			return fmt.Errorf("failed to encode line: %w", err)
		}
		line = encoded
	}
	_, err := io.WriteString(p.w, line+"\n")
	return err
}

func (p *Preview) Text(line string) error {
	return p.writeLine(line)
}

func (p *Preview) LineFeed(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := io.WriteString(p.w, strings.Repeat("\n", n))
	return err
}

func (p *Preview) JustifyLeft() error {
	p.center = false
	return nil
}

func (p *Preview) JustifyCenter() error {
	p.center = true
	return nil
}

func (p *Preview) SetEmphasized(on bool) error {
	p.emphasis = on
	return nil
}

func (p *Preview) SetExpanded(on bool) error {
	p.expanded = on
	return nil
}

func (p *Preview) SetCondensed(on bool) error {
	p.condensed = on
	return nil
}

// SetItalic implements ItalicSetter.
func (p *Preview) SetItalic(on bool) error {
	p.italic = on
	return nil
}

// Code128 draws the symbol scaled to the active width, followed by the digits
// when opts.HRI is set.
func (p *Preview) Code128(data string, opts BarcodeOptions) error {
	var bc barcode.Barcode
	bc, err := code128.Encode(data)
	if err != nil {
		return fmt.Errorf("%w: code128 %q: %w", ErrInvalidPayload, data, err)
	}

	row := bars(bc, p.width())
	for range barRows {
		if err := p.writeLine(row); err != nil {
			return err
		}
	}
	if opts.HRI {
		return p.writeLine(data)
	}
	return nil
}

// bars samples the modules of a one-dimensional symbol into columns.
func bars(bc barcode.Barcode, columns int) string {
	bounds := bc.Bounds()
	modules := bounds.Dx()
	if columns <= 0 || modules <= 0 {
		return ""
	}
	if columns > modules {
		columns = modules
	}

	var b strings.Builder
	for col := range columns {
		x := bounds.Min.X + col*modules/columns
		if dark(bc, x, bounds.Min.Y) {
			b.WriteByte('|')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// QRCode draws the symbol with two module rows per text line.
func (p *Preview) QRCode(data string, opts QRCodeOptions) error {
	level, err := eccLevel(opts.ECC)
	if err != nil {
		return err
	}
	code, err := qr.Encode(data, level, qr.Auto)
	if err != nil {
		return fmt.Errorf("%w: qrcode: %w", ErrInvalidPayload, err)
	}

	for _, line := range matrix(code) {
		if err := p.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func eccLevel(ecc string) (qr.ErrorCorrectionLevel, error) {
	switch strings.ToUpper(ecc) {
	case "", "L":
		return qr.L, nil
	case "M":
		return qr.M, nil
	case "Q":
		return qr.Q, nil
	case "H":
		return qr.H, nil
	default:
		return qr.L, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidPayload, ecc)
	}
}

// matrix renders a two-dimensional symbol, packing two module rows into each
// text line: ':' both dark, '\'' top only, '.' bottom only.
func matrix(code image.Image) []string {
	bounds := code.Bounds()
	lines := make([]string, 0, (bounds.Dy()+1)/2)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var b strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := dark(code, x, y)
			bottom := y+1 < bounds.Max.Y && dark(code, x, y+1)
			switch {
			case top && bottom:
				b.WriteByte(':')
			case top:
				b.WriteByte('\'')
			case bottom:
				b.WriteByte('.')
			default:
				b.WriteByte(' ')
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

func dark(img image.Image, x, y int) bool {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128
}

// Cut feeds the paper and draws a cut marker across the normal width.
func (p *Preview) Cut(partial bool, feed int) error {
	if err := p.LineFeed(feed); err != nil {
		return err
	}
	marker := "8< "
	if partial {
		marker = "8< - "
	}
	line := marker + strings.Repeat("-", max(p.columns.Normal-len(marker), 0))
	_, err := io.WriteString(p.w, line+"\n")
	return err
}

func (p *Preview) HasCutter() bool {
	return p.cutter
}
