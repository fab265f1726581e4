package extrato

import (
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/layout"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/internal/sink"
	"github.com/google/uuid"
)

// Session renders one receipt on one printer. It owns the print mode and
// the annotation queues, and keeps the first error it meets: once an error
// is recorded no further operation reaches the printer.
type Session struct {
	id      string
	printer sink.Printer
	conf    *config.Config
	log     logging.Logger

	mode Mode
	err  error

	// beforeNotes is flushed right before the contributor notes, bodyNotes
	// right after them.
	beforeNotes []string
	bodyNotes   []string
}

func newSession(p sink.Printer, conf *config.Config, log logging.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		printer: p,
		conf:    conf,
		log:     logging.With(log, "session", id),
	}
}

// ID identifies the session in log records.
func (s *Session) ID() string { return s.id }

// Mode returns the current print mode.
func (s *Session) Mode() Mode { return s.mode }

// Err returns the first error met by the session.
func (s *Session) Err() error { return s.err }

// Width is the column count of the current print mode.
func (s *Session) Width() int {
	return s.mode.Width(s.conf.Columns)
}

func (s *Session) do(op func() error) {
	if s.err != nil {
		return
	}
	s.err = op()
}

func (s *Session) fail(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

// value returns an unwrapper for (T, error) pairs that records the error
// and yields the value.
func value[T any](s *Session) func(T, error) T {
	return func(v T, err error) T {
		s.fail(err)
		return v
	}
}

// =============================================================================
// PRINT MODE
// =============================================================================

func (s *Session) bold() {
	s.mode.Bold = !s.mode.Bold
	on := s.mode.Bold
	s.do(func() error { return s.printer.SetEmphasized(on) })
}

func (s *Session) italic() {
	s.mode.Italic = !s.mode.Italic
	on := s.mode.Italic
	if it, ok := s.printer.(sink.ItalicSetter); ok {
		s.do(func() error { return it.SetItalic(on) })
	}
}

func (s *Session) condensed() {
	s.mode.Condensed = !s.mode.Condensed
	on := s.mode.Condensed
	s.do(func() error { return s.printer.SetCondensed(on) })
}

func (s *Session) expanded() {
	s.mode.Expanded = !s.mode.Expanded
	on := s.mode.Expanded
	s.do(func() error { return s.printer.SetExpanded(on) })
}

// normal switches off the flags that are on, each exactly once.
func (s *Session) normal() {
	if s.mode.Bold {
		s.bold()
	}
	if s.mode.Italic {
		s.italic()
	}
	if s.mode.Expanded {
		s.expanded()
	}
	if s.mode.Condensed {
		s.condensed()
	}
}

// =============================================================================
// EMISSION
// =============================================================================

func (s *Session) center() {
	s.do(s.printer.JustifyCenter)
}

func (s *Session) left() {
	s.do(s.printer.JustifyLeft)
}

func (s *Session) feed(n int) {
	s.do(func() error { return s.printer.LineFeed(n) })
}

// text prints one line transliterated to printable ASCII.
func (s *Session) text(line string) {
	s.do(func() error { return s.printer.Text(layout.ASCII(line)) })
}

// wrap prints text wrapped to the current width, honouring its line breaks.
// Text is transliterated before it is measured.
func (s *Session) wrap(text string) {
	text = layout.ASCII(strings.Join(layout.HardLines(text), "\n"))
	for line := range layout.Wrap(text, s.Width()) {
		if s.err != nil {
			return
		}
		s.text(line)
	}
}

// borders prints a two-sided line across the current width.
func (s *Session) borders(left, right string) {
	s.text(s.fit(left, right, s.conf.Layout.MinGutter))
}

// fit lays out the transliterated sides, so that spelled out symbols are
// counted at their printed width.
func (s *Session) fit(left, right string, gutter int) string {
	return layout.Fit(layout.ASCII(left), layout.ASCII(right), s.Width(), gutter, s.conf.Layout.FavorRight())
}

func (s *Session) separator() {
	s.text(strings.Repeat("-", s.Width()))
}

// fits reports whether a line of the given parts is strictly narrower than
// the current width.
func (s *Session) fits(parts ...string) bool {
	n := 0
	for _, p := range parts {
		n += utf8.RuneCountInString(layout.ASCII(p))
	}
	return n < s.Width()
}

func (s *Session) code128(data string) {
	opts := sink.BarcodeOptions{
		Height: s.conf.Barcode.Height,
		Width:  s.conf.Barcode.Width,
		HRI:    s.conf.Barcode.HRI,
	}
	s.do(func() error { return s.printer.Code128(data, opts) })
}

func (s *Session) qrcode(data string) {
	opts := sink.QRCodeOptions{
		ModuleSize: s.conf.QRCode.ModuleSize,
		ECC:        s.conf.QRCode.ErrorCorrection,
	}
	s.do(func() error { return s.printer.QRCode(data, opts) })
}

// flush prints a queue of annotations as a block.
func (s *Session) flush(notes []string) {
	if len(notes) == 0 {
		return
	}
	s.normal()
	s.left()
	s.feed(1)
	for _, note := range notes {
		s.text(note)
	}
}
