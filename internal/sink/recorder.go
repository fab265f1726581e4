package sink

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInjected is the default fault returned by a Recorder set to fail.
var ErrInjected = errors.New("sink: injected printer fault")

// Operation names recorded by Recorder.
const (
	OpText          = "text"
	OpLineFeed      = "line_feed"
	OpJustifyLeft   = "justify_left"
	OpJustifyCenter = "justify_center"
	OpEmphasized    = "emphasized"
	OpExpanded      = "expanded"
	OpCondensed     = "condensed"
	OpItalic        = "italic"
	OpCode128       = "code128"
	OpQRCode        = "qrcode"
	OpCut           = "cut"
)

// Op is one recorded printer operation. Only the fields relevant to Name
// are filled.
type Op struct {
	Name    string
	Text    string
	On      bool
	N       int
	Barcode BarcodeOptions
	QRCode  QRCodeOptions
}

func (op Op) String() string {
	switch op.Name {
	case OpText:
		return fmt.Sprintf("%s %q", op.Name, op.Text)
	case OpLineFeed:
		return fmt.Sprintf("%s %d", op.Name, op.N)
	case OpEmphasized, OpExpanded, OpCondensed, OpItalic:
		state := "off"
		if op.On {
			state = "on"
		}
		return op.Name + " " + state
	case OpCode128:
		return fmt.Sprintf("%s %q height=%d width=%d hri=%t",
			op.Name, op.Text, op.Barcode.Height, op.Barcode.Width, op.Barcode.HRI)
	case OpQRCode:
		return fmt.Sprintf("%s %q module=%d ecc=%s",
			op.Name, op.Text, op.QRCode.ModuleSize, op.QRCode.ECC)
	case OpCut:
		return fmt.Sprintf("%s partial=%t feed=%d", op.Name, op.On, op.N)
	default:
		return op.Name
	}
}

// Recorder is a Printer that keeps every operation in memory. Setting
// FailAfter to n > 0 makes every operation after the first n fail with Err
// (or ErrInjected), which is how transport faults are simulated.
type Recorder struct {
	Ops []Op

	// Cutter is returned by HasCutter.
	Cutter bool

	FailAfter int
	Err       error
}

// NewRecorder returns a Recorder that advertises a cutter.
func NewRecorder() *Recorder {
	return &Recorder{Cutter: true}
}

func (r *Recorder) record(op Op) error {
	if r.FailAfter > 0 && len(r.Ops) >= r.FailAfter {
		if r.Err != nil {
			return r.Err
		}
		return ErrInjected
	}
	r.Ops = append(r.Ops, op)
	return nil
}

func (r *Recorder) Text(line string) error {
	return r.record(Op{Name: OpText, Text: line})
}

func (r *Recorder) LineFeed(n int) error {
	return r.record(Op{Name: OpLineFeed, N: n})
}

func (r *Recorder) JustifyLeft() error {
	return r.record(Op{Name: OpJustifyLeft})
}

func (r *Recorder) JustifyCenter() error {
	return r.record(Op{Name: OpJustifyCenter})
}

func (r *Recorder) SetEmphasized(on bool) error {
	return r.record(Op{Name: OpEmphasized, On: on})
}

func (r *Recorder) SetExpanded(on bool) error {
	return r.record(Op{Name: OpExpanded, On: on})
}

func (r *Recorder) SetCondensed(on bool) error {
	return r.record(Op{Name: OpCondensed, On: on})
}

// SetItalic implements ItalicSetter.
func (r *Recorder) SetItalic(on bool) error {
	return r.record(Op{Name: OpItalic, On: on})
}

func (r *Recorder) Code128(data string, opts BarcodeOptions) error {
	return r.record(Op{Name: OpCode128, Text: data, Barcode: opts})
}

func (r *Recorder) QRCode(data string, opts QRCodeOptions) error {
	return r.record(Op{Name: OpQRCode, Text: data, QRCode: opts})
}

func (r *Recorder) Cut(partial bool, feed int) error {
	return r.record(Op{Name: OpCut, On: partial, N: feed})
}

func (r *Recorder) HasCutter() bool {
	return r.Cutter
}

// Lines returns the text of every Text operation in order.
func (r *Recorder) Lines() []string {
	var lines []string
	for _, op := range r.Ops {
		if op.Name == OpText {
			lines = append(lines, op.Text)
		}
	}
	return lines
}

// Find returns the recorded operations with the given name.
func (r *Recorder) Find(name string) []Op {
	var ops []Op
	for _, op := range r.Ops {
		if op.Name == name {
			ops = append(ops, op)
		}
	}
	return ops
}

// String lists the operations one per line.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, op := range r.Ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}
