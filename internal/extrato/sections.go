package extrato

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/accesskey"
	"github.com/ginjaninja78/sat-extrato/internal/br"
	"github.com/ginjaninja78/sat-extrato/internal/cfe"
)

// Texts shared by both receipt variants.
const (
	titleText      = "CUPOM FISCAL ELETRÔNICO - SAT"
	testBannerText = "= TESTE ="
	testMarker     = ">"
	timestampFmt   = "02/01/2006 - 15:04:05"
)

// =============================================================================
// HEADER
// =============================================================================

// header prints the issuer identity, address and registrations.
func (s *Session) header(doc *cfe.Document) {
	s.normal()

	emit := doc.Inf.Emit
	addr := emit.EnderEmit
	tradeName := emit.XFant.Text()
	legalName := value[string](s)(cfe.Required(emit.XNome, "infCFe/emit/xNome"))

	street := value[string](s)(cfe.Required(addr.XLgr, "infCFe/emit/enderEmit/xLgr"))
	district := value[string](s)(cfe.Required(addr.XBairro, "infCFe/emit/enderEmit/xBairro"))
	city := value[string](s)(cfe.Required(addr.XMun, "infCFe/emit/enderEmit/xMun"))
	cep := value[string](s)(cfe.Required(addr.CEP, "infCFe/emit/enderEmit/CEP"))
	uf := value[string](s)(br.UFByCode(value[int](s)(doc.StateCode())))
	cnpj := value[string](s)(cfe.Required(emit.CNPJ, "infCFe/emit/CNPJ"))
	if s.err != nil {
		return
	}

	address := s.address(street, addr.Nro.Text(), addr.XCpl.Text(), district,
		fmt.Sprintf("%s/%s CEP: %s", city, uf, br.FormatCEP(cep)))

	s.center()
	s.bold()
	if tradeName != "" {
		s.wrap(tradeName)
	}
	s.wrap(legalName)
	s.bold()
	s.wrap(address)

	s.feed(1)
	s.left()
	s.text("CNPJ: " + br.FormatCNPJ(cnpj))
	if ie := emit.IE.Text(); ie != "" {
		s.text("IE: " + ie)
	}
	if im := emit.IM.Text(); im != "" {
		s.text("IM: " + im)
	}
	s.separator()
}

// address joins the parts of an address, one per line. The complement joins
// the street line when both are narrower than the current width.
func (s *Session) address(street, number, complement, district, city string) string {
	if number != "" {
		street = street + ", " + number
	}
	if complement != "" && s.fits(street, complement) {
		street = street + ", " + complement
		complement = ""
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{street, complement, district, city} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\r\n")
}

// =============================================================================
// TITLE
// =============================================================================

// title prints the receipt number and title lines, bold and centered.
func (s *Session) title(doc *cfe.Document, extra ...string) {
	number := value[string](s)(doc.ReceiptNumber())

	s.normal()
	s.center()
	s.bold()
	s.text("Extrato No. " + number)
	s.text(titleText)
	for _, line := range extra {
		s.text(line)
	}
	s.testBanner(doc)
	s.bold()
	s.left()
	s.separator()
}

// testBanner marks documents issued in the test environment.
func (s *Session) testBanner(doc *cfe.Document) {
	if !doc.IsTestEnvironment() {
		return
	}
	marker := strings.Repeat(testMarker, s.Width())
	s.feed(1)
	s.italic()
	s.text(marker)
	s.text(testBannerText)
	s.text(marker)
	s.italic()
	s.feed(1)
}

// =============================================================================
// CONSUMER
// =============================================================================

// consumerDocument returns the formatted consumer tax id, or "" when the
// document carries none or an invalid one.
func consumerDocument(doc *cfe.Document) string {
	id := doc.ConsumerDocument()
	if !br.IsCNPJCPF(id) {
		return ""
	}
	return br.FormatCNPJCPF(id)
}

func consumerLine(id string) string {
	return "CPF/CNPJ do Consumidor: " + id
}

// =============================================================================
// KEY BLOCK
// =============================================================================

// emission gathers what identifies a document in print: the device serial,
// the emission time, the access key and the QR code payload.
type emission struct {
	serial string
	at     time.Time
	key    string
	qrcode string
}

func (s *Session) emission(doc *cfe.Document) emission {
	return emission{
		serial: value[string](s)(doc.SerialNumber()),
		at:     value[time.Time](s)(doc.EmittedAt()),
		key:    value[string](s)(doc.AccessKey()),
		qrcode: value[string](s)(doc.QRCodePayload()),
	}
}

// keyBlock prints the serial, the timestamp, the grouped key, the barcode
// and the QR code of e. The caller sets the alignment of the first lines;
// heading, when given, is printed bold above the serial.
func (s *Session) keyBlock(e emission, heading string) {
	if s.err != nil {
		return
	}
	segments, err := s.conf.Barcode.Segments(e.key)
	if err != nil {
		s.fail(err)
		return
	}

	s.bold()
	if heading != "" {
		s.wrap(heading)
		s.feed(1)
	}
	s.text("SAT no. " + e.serial)
	s.bold()
	s.text(e.at.Format(timestampFmt))

	s.feed(1)
	s.left()
	s.condensed()
	s.text(accesskey.Display(e.key))
	s.condensed()

	s.feed(1)
	s.center()
	for i, segment := range segments {
		if i > 0 {
			s.feed(1)
		}
		s.code128(segment)
	}

	s.feed(2)
	s.qrcode(e.qrcode)
}

// qrMessage prints the configured message below the last QR code.
func (s *Session) qrMessage() {
	msg := s.conf.QRCode.Message
	if msg == "" {
		return
	}
	s.normal()
	s.feed(1)
	s.center()
	if s.conf.QRCode.MessageCondensed {
		s.condensed()
	}
	s.wrap(msg)
	s.normal()
}

// =============================================================================
// END OF DOCUMENT
// =============================================================================

// end closes the receipt: separator, footer note, then cut or feed.
func (s *Session) end() {
	s.normal()
	s.left()
	s.feed(1)
	s.separator()

	note := s.conf.FooterNote
	if !note.Empty() {
		s.condensed()
		s.borders(note.Left, note.Right)
		s.condensed()
	}

	if s.err != nil {
		return
	}
	if s.conf.Cut.Enabled && s.printer.HasCutter() {
		s.do(func() error { return s.printer.Cut(s.conf.Cut.Partial, s.conf.Cut.Feed) })
	} else if s.conf.FeedLines > 0 {
		s.feed(s.conf.FeedLines)
	}
}
