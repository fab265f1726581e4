package extrato

import (
	"fmt"

	"github.com/ginjaninja78/sat-extrato/internal/br"
	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/layout"
	"github.com/shopspring/decimal"
)

const (
	legendText   = "# | COD | DESC | QTD | UN | VL UN R$ | (VL TR R$)* | VL ITEM R$"
	legendNote   = "*Valor aproximado dos tributos do item."
	deliveryText = "DADOS PARA ENTREGA"
	notesTitle   = "OBSERVAÇÕES DO CONTRIBUINTE"
	taxNoteText  = "Valor aproximado dos tributos deste cupom"
	taxNoteLabel = "(Lei Fed. 12.741/2012) R$"
)

// Sale is the receipt of a sale. Summary leaves out the legend and the
// line items.
type Sale struct {
	Doc     *cfe.Document
	Summary bool
}

func (v *Sale) Kind() string {
	if v.Summary {
		return KindSummary
	}
	return KindSale
}

func (v *Sale) Document() *cfe.Document { return v.Doc }

func (v *Sale) check() error {
	if v.Doc == nil || v.Doc.Kind != cfe.KindSale {
		return fmt.Errorf("%w: sale receipt needs a sale document", ErrWrongDocument)
	}
	return nil
}

func (v *Sale) body(s *Session) {
	doc := v.Doc

	s.title(doc)
	s.saleConsumer(doc)
	if !v.Summary {
		s.legend()
		s.items(doc)
	}
	s.totals(doc)
	s.payments(doc)
	s.fiscalNotes(doc)
	s.delivery(doc)

	s.flush(s.beforeNotes)
	s.contributorNotes(doc)
	s.flush(s.bodyNotes)

	s.beforeNotes = s.beforeNotes[:0]
	s.bodyNotes = s.bodyNotes[:0]
}

func (v *Sale) footer(s *Session) {
	e := s.emission(v.Doc)

	s.normal()
	s.separator()
	s.center()
	s.keyBlock(e, "")
	s.qrMessage()
}

// =============================================================================
// CONSUMER AND LEGEND
// =============================================================================

func (s *Session) saleConsumer(doc *cfe.Document) {
	id := consumerDocument(doc)
	if id == "" {
		return
	}
	s.normal()
	s.left()
	s.text(consumerLine(id))
	if name := doc.Inf.Dest.XNome.Text(); name != "" && s.conf.ShowConsumerName {
		s.wrap(name)
	}
	s.separator()
}

func (s *Session) legend() {
	s.normal()
	s.condensed()
	s.wrap(legendText)
	s.condensed()
	s.separator()
	s.beforeNotes = append(s.beforeNotes, legendNote)
}

// =============================================================================
// LINE ITEMS
// =============================================================================

func (s *Session) items(doc *cfe.Document) {
	for _, det := range doc.Inf.Det {
		if s.err != nil {
			return
		}
		it, err := det.Item()
		if err != nil {
			s.fail(err)
			return
		}

		s.item(it)

		if !it.Discount.IsZero() {
			s.borders("desconto sobre item", "- "+br.Money(it.Discount))
		}
		if !it.ProratedDiscount.IsZero() {
			s.borders("rateio de desconto sobre subtotal", "- "+br.Money(it.ProratedDiscount))
		}
		if !it.Surcharge.IsZero() {
			s.borders("acréscimo sobre item", "+ "+br.Money(it.Surcharge))
		}
		if !it.ProratedSurcharge.IsZero() {
			s.borders("rateio de acréscimo sobre subtotal", "+ "+br.Money(it.ProratedSurcharge))
		}

		if svc := it.Service; svc != nil {
			if !svc.Deduction.IsZero() {
				s.borders("dedução para ISSQN", "- "+br.Money(svc.Deduction))
			}
			s.borders("base de cálculo ISSQN", br.Money(svc.Base))
		}
	}
}

// item prints the number, code and description of an item wrapped to the
// width, with the quantity and amounts fitted on the last line when they fit
// or on a line of their own otherwise.
func (s *Session) item(it cfe.Item) {
	detail := layout.ASCII(itemDetail(it))

	s.normal()
	s.left()
	if s.conf.ItemsCondensed {
		s.condensed()
	}

	width := s.Width()
	head := layout.ASCII(fmt.Sprintf("%03d %s %s", it.Number, it.Code, it.Description))
	lines := layout.Lines(head, width)
	last := len(lines) - 1

	if last < 0 || len(lines[last])+len(detail)+1 > width {
		lines = append(lines, s.fit("", detail, 1))
	} else {
		lines[last] = s.fit(lines[last], detail, 1)
	}
	for _, line := range lines {
		s.text(line)
	}

	if s.conf.ItemsCondensed {
		s.condensed()
	}
}

func itemDetail(it cfe.Item) string {
	qty := br.Quantity(it.Quantity)
	if it.TaxEstimate.IsZero() {
		return fmt.Sprintf("%s %s x %s %s", qty, it.Unit, br.Money(it.UnitPrice), br.Money(it.Amount))
	}
	return fmt.Sprintf("%s %s x %s (%s) %s", qty, it.Unit, br.Money(it.UnitPrice),
		br.Money(it.TaxEstimate), br.Money(it.Amount))
}

// =============================================================================
// TOTALS AND PAYMENTS
// =============================================================================

func (s *Session) totals(doc *cfe.Document) {
	t, err := doc.Totals()
	if err != nil {
		s.fail(err)
		return
	}

	s.normal()
	s.feed(1)

	if t.HasAdjustments() {
		s.borders("Total bruto de itens", br.Money(t.Gross))
	}
	if !t.ItemDiscounts.IsZero() {
		s.borders("Total de descontos sobre item", "- "+br.Money(t.ItemDiscounts))
	}
	if !t.SubtotalDiscount.IsZero() {
		s.borders("Desconto sobre subtotal", "- "+br.Money(t.SubtotalDiscount))
	}
	if !t.ItemSurcharges.IsZero() {
		s.borders("Total de acréscimos sobre item", "+ "+br.Money(t.ItemSurcharges))
	}
	if !t.SubtotalSurcharge.IsZero() {
		s.borders("Acréscimo sobre subtotal", "+ "+br.Money(t.SubtotalSurcharge))
	}

	s.bold()
	s.borders("TOTAL R$", br.Money(t.Total))
	s.bold()
}

func (s *Session) payments(doc *cfe.Document) {
	payments, change, err := doc.Payments()
	if err != nil {
		s.fail(err)
		return
	}

	s.normal()
	s.feed(1)
	for _, p := range payments {
		s.borders(br.PaymentMethod(p.Code), br.Money(p.Amount))
	}
	if !change.IsZero() {
		s.borders("Troco R$", br.Money(change))
	}
}

// =============================================================================
// NOTES AND DELIVERY
// =============================================================================

// fiscalNotes prints the tax authority notes in condensed mode, switched on
// once for the whole group.
func (s *Session) fiscalNotes(doc *cfe.Document) {
	notes := doc.FiscalNotes()
	if len(notes) == 0 {
		return
	}

	s.normal()
	s.left()
	s.feed(1)
	s.condensed()
	for _, obs := range notes {
		s.wrap(fmt.Sprintf("%s: %s", obs.XCampo.Text(), obs.XTexto.Text()))
	}
	s.condensed()
}

func (s *Session) delivery(doc *cfe.Document) {
	addr := doc.Inf.Entrega
	street := addr.XLgr.Text()
	if street == "" {
		return
	}

	s.normal()

	district := value[string](s)(cfe.Required(addr.XBairro, "infCFe/entrega/xBairro"))
	city := value[string](s)(cfe.Required(addr.XMun, "infCFe/entrega/xMun"))
	uf := value[string](s)(cfe.Required(addr.UF, "infCFe/entrega/UF"))
	if s.err != nil {
		return
	}
	address := s.address(street, addr.Nro.Text(), addr.XCpl.Text(), district, city+"/"+uf)

	s.left()
	s.separator()
	s.bold()
	s.text(deliveryText)
	s.bold()
	s.wrap("Endereço: " + address)

	if name := doc.Inf.Dest.XNome.Text(); name != "" {
		s.wrap("Destinatário: " + name)
	}
}

func (s *Session) contributorNotes(doc *cfe.Document) {
	info := doc.Inf.InfAdic.InfCpl.Text()
	taxes, err := cfe.DecimalOr(doc.Inf.Total.VCFeLei12741, "infCFe/total/vCFeLei12741", decimal.Zero)
	if err != nil {
		s.fail(err)
		return
	}
	if info == "" && taxes.IsZero() {
		return
	}

	s.normal()
	s.left()
	s.separator()
	s.bold()
	s.text(notesTitle)
	s.bold()

	if info != "" {
		s.condensed()
		s.wrap(info)
		s.condensed()
	}

	if !taxes.IsZero() {
		s.condensed()
		s.wrap(taxNoteText)
		s.borders(taxNoteLabel, br.Money(taxes))
		s.condensed()
	}
}
