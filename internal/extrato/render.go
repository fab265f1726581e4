// =============================================================================
// SAT Extrato - Receipt Layout Engine
// =============================================================================
//
// This package lays out the receipt ("extrato") of a CF-e-SAT on a receipt
// printer. A receipt is a fixed sequence of sections, each printed only when
// the document has data for it:
//
//   HEADER          issuer names, address, CNPJ/IE/IM
//   BODY            title and test banner, consumer, legend and items,
//                   totals, payments, fiscal notes, delivery address,
//                   annotations, contributor notes
//   FOOTER          serial, emission time, grouped key, barcode, QR code
//   END OF DOCUMENT separator, footer note, cut or feed
//
// VARIANTS:
//   - Sale          : the receipt of a sale; Summary skips legend and items
//   - Cancellation  : needs the cancelled sale as well, whose identification
//                     fills the cancelled-data block
//
// A render runs on a Session that owns the print mode. The first error, be
// it a missing field or a printer fault, stops the render and is returned
// as is.
//
// =============================================================================

package extrato

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/internal/sink"
)

var (
	// ErrMissingOriginal is returned when a cancellation is rendered without
	// the sale it cancels.
	ErrMissingOriginal = errors.New("extrato: cancellation needs the original sale")

	// ErrMismatchedCancellation is returned when chCanc of a cancellation is
	// not the key of the sale given as original.
	ErrMismatchedCancellation = errors.New("extrato: cancellation does not refer to the original sale")

	// ErrWrongDocument is returned when a variant receives a document of the
	// wrong kind.
	ErrWrongDocument = errors.New("extrato: wrong document kind")
)

// Receipt kinds, as returned by Extrato.Kind.
const (
	KindSale         = "venda"
	KindSummary      = "resumo"
	KindCancellation = "cancelamento"
)

// Extrato is a receipt variant: *Sale or *Cancellation.
type Extrato interface {
	// Kind names the variant.
	Kind() string

	// Document returns the document the receipt is about.
	Document() *cfe.Document

	check() error
	body(s *Session)
	footer(s *Session)
}

// Select picks the variant for doc from its root element. original is only
// used, and then required, for cancellations.
func Select(doc, original *cfe.Document, summary bool) (Extrato, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrWrongDocument)
	}
	switch doc.Kind {
	case cfe.KindSale:
		return &Sale{Doc: doc, Summary: summary}, nil
	case cfe.KindCancellation:
		if original == nil {
			return nil, ErrMissingOriginal
		}
		return &Cancellation{Doc: doc, Original: original}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrWrongDocument, doc.Kind)
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a render.
type Option func(*options)

type options struct {
	log logging.Logger
}

// WithLogger sets the logger of the session.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// =============================================================================
// RENDER
// =============================================================================

// Render prints e on p using conf. Printer errors are returned unchanged.
func Render(p sink.Printer, conf *config.Config, e Extrato, opts ...Option) error {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := e.check(); err != nil {
		return err
	}

	s := newSession(p, conf, o.log)
	doc := e.Document()
	s.log.Debug("rendering %s receipt (%d items)", e.Kind(), len(doc.Inf.Det))

	s.header(doc)
	e.body(s)
	e.footer(s)
	s.end()

	if s.err != nil {
		s.log.Error("render failed: %v", s.err)
		return s.err
	}
	s.log.Debug("render finished")
	return nil
}
