package extrato

import (
	"fmt"

	"github.com/ginjaninja78/sat-extrato/internal/br"
	"github.com/ginjaninja78/sat-extrato/internal/cfe"
)

const (
	cancellationText = "CANCELAMENTO"
	cancelledData    = "DADOS DO CUPOM FISCAL ELETRÔNICO CANCELADO"
	cancellationData = "DADOS DO CUPOM FISCAL ELETRÔNICO DE CANCELAMENTO"
)

// Cancellation is the receipt of a cancellation. Original is the sale it
// cancels: the cancelled-data block shows the sale's serial, emission time,
// key and QR code, while the footer shows the cancellation's own.
type Cancellation struct {
	Doc      *cfe.Document
	Original *cfe.Document
}

func (v *Cancellation) Kind() string { return KindCancellation }

func (v *Cancellation) Document() *cfe.Document { return v.Doc }

func (v *Cancellation) check() error {
	if v.Doc == nil || v.Doc.Kind != cfe.KindCancellation {
		return fmt.Errorf("%w: cancellation receipt needs a cancellation document", ErrWrongDocument)
	}
	if v.Original == nil {
		return ErrMissingOriginal
	}
	if v.Original.Kind != cfe.KindSale {
		return fmt.Errorf("%w: original is a %s document", ErrWrongDocument, v.Original.Kind)
	}
	if !v.Doc.Inf.CancelledID.Set {
		return nil
	}

	cancelled, err := v.Doc.CancelledKey()
	if err != nil {
		return err
	}
	original, err := v.Original.AccessKey()
	if err != nil {
		return err
	}
	if cancelled != original {
		return fmt.Errorf("%w: chCanc %s, original %s", ErrMismatchedCancellation, cancelled, original)
	}
	return nil
}

func (v *Cancellation) body(s *Session) {
	s.title(v.Doc, cancellationText)

	s.bold()
	s.condensed()
	s.text(cancelledData)
	s.condensed()
	s.bold()

	s.cancellationConsumer(v.Doc)
	s.cancellationTotal(v.Doc)

	e := s.emission(v.Original)
	s.normal()
	s.center()
	s.feed(1)
	s.keyBlock(e, "")
}

func (v *Cancellation) footer(s *Session) {
	e := s.emission(v.Doc)

	s.normal()
	s.feed(2)
	s.separator()
	s.center()
	s.keyBlock(e, cancellationData)
	s.qrMessage()
}

func (s *Session) cancellationConsumer(doc *cfe.Document) {
	s.normal()
	s.left()
	s.feed(1)
	if id := consumerDocument(doc); id != "" {
		s.text(consumerLine(id))
	}
}

func (s *Session) cancellationTotal(doc *cfe.Document) {
	total, err := doc.Total()
	s.fail(err)

	s.normal()
	s.left()
	s.bold()
	s.text("TOTAL R$ " + br.Money(total))
	s.bold()
}
