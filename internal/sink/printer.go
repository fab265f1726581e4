// =============================================================================
// SAT Extrato - Printer Sink
// =============================================================================
//
// This module defines the operations a receipt printer accepts. The layout
// engine only talks to a Printer; how the operations reach paper (ESC/POS
// bytes, a text preview, a trace for tests) is up to the implementation.
//
// IMPLEMENTATIONS:
//   - Preview  : draws the receipt as plain text on an io.Writer
//   - Recorder : keeps every operation in memory
//
// Every operation is synchronous. An error returned by a Printer is a
// transport fault and is handed back to the caller unchanged.
//
// =============================================================================

package sink

import "errors"

// ErrInvalidPayload is returned when a barcode or QR code cannot encode the
// data it was given.
var ErrInvalidPayload = errors.New("sink: invalid symbol payload")

// BarcodeOptions are the Code128 parameters.
type BarcodeOptions struct {
	// Height of the bars in printer dots.
	Height int

	// Width is the module width multiplier.
	Width int

	// HRI prints the human readable digits below the bars.
	HRI bool
}

// QRCodeOptions are the QR code parameters.
type QRCodeOptions struct {
	// ModuleSize is the size of one module in printer dots.
	ModuleSize int

	// ECC is the error correction level: "L", "M", "Q" or "H".
	ECC string
}

// Printer is the set of operations the layout engine issues.
type Printer interface {
	// Text prints one line. The line feed is implied.
	Text(line string) error

	// LineFeed advances the paper n lines.
	LineFeed(n int) error

	JustifyLeft() error
	JustifyCenter() error

	SetEmphasized(on bool) error
	SetExpanded(on bool) error
	SetCondensed(on bool) error

	Code128(data string, opts BarcodeOptions) error
	QRCode(data string, opts QRCodeOptions) error

	// Cut feeds the paper feed lines and then cuts it.
	Cut(partial bool, feed int) error

	// HasCutter reports whether the printer has a paper cutter.
	HasCutter() bool
}

// ItalicSetter is implemented by printers that support italic text. Printers
// without it leave italic as a bookkeeping flag of the caller.
type ItalicSetter interface {
	SetItalic(on bool) error
}
