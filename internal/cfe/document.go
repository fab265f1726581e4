// =============================================================================
// SAT Extrato - CF-e Document Model
// =============================================================================
//
// This module decodes the XML of a CF-e-SAT into typed structures. Only the
// groups needed to print the receipt are mapped; the signature and tax
// details are skipped by the decoder.
//
// DOCUMENT SHAPES:
//   - <CFe>      : a sale
//   - <CFeCanc>  : the cancellation of a sale, pointing to it via chCanc
//
// Every element is decoded into a Field so the accessors can tell an absent
// element from an empty one. Required fields that are absent surface as a
// *FieldError wrapping ErrFieldMissing.
//
// =============================================================================

package cfe

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"golang.org/x/net/html/charset"
)

var (
	// ErrUnknownRoot is returned when the root element is neither CFe nor
	// CFeCanc.
	ErrUnknownRoot = errors.New("cfe: unknown document root")

	// ErrMalformed is returned when the input is not well-formed XML.
	ErrMalformed = errors.New("cfe: malformed document")
)

// Kind tells a sale from a cancellation.
type Kind int

const (
	KindSale Kind = iota + 1
	KindCancellation
)

func (k Kind) String() string {
	switch k {
	case KindSale:
		return "venda"
	case KindCancellation:
		return "cancelamento"
	default:
		return "unknown"
	}
}

// Root element names.
const (
	RootSale         = "CFe"
	RootCancellation = "CFeCanc"
)

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is one decoded CF-e.
type Document struct {
	Kind Kind
	Inf  InfCFe
}

// InfCFe is the infCFe group.
type InfCFe struct {
	ID          Field `xml:"Id,attr"`
	Version     Field `xml:"versao,attr"`
	CancelledID Field `xml:"chCanc,attr"`

	Ide      Ide        `xml:"ide"`
	Emit     Emit       `xml:"emit"`
	Dest     Dest       `xml:"dest"`
	Entrega  Address    `xml:"entrega"`
	Det      []Det      `xml:"det"`
	Total    Total      `xml:"total"`
	Pgto     Pgto       `xml:"pgto"`
	InfAdic  InfAdic    `xml:"infAdic"`
	ObsFisco []ObsFisco `xml:"obsFisco"`
}

// Ide is the identification group.
type Ide struct {
	CUF              Field `xml:"cUF"`
	CNF              Field `xml:"cNF"`
	Mod              Field `xml:"mod"`
	NSerieSAT        Field `xml:"nserieSAT"`
	NCFe             Field `xml:"nCFe"`
	DEmi             Field `xml:"dEmi"`
	HEmi             Field `xml:"hEmi"`
	CDV              Field `xml:"cDV"`
	TpAmb            Field `xml:"tpAmb"`
	CNPJ             Field `xml:"CNPJ"`
	SignAC           Field `xml:"signAC"`
	AssinaturaQRCODE Field `xml:"assinaturaQRCODE"`
	NumeroCaixa      Field `xml:"numeroCaixa"`
}

// Emit is the issuer group.
type Emit struct {
	CNPJ      Field   `xml:"CNPJ"`
	XNome     Field   `xml:"xNome"`
	XFant     Field   `xml:"xFant"`
	EnderEmit Address `xml:"enderEmit"`
	IE        Field   `xml:"IE"`
	IM        Field   `xml:"IM"`
}

// Address covers both enderEmit and entrega. CEP only exists in the issuer
// address and UF only in the delivery address.
type Address struct {
	XLgr    Field `xml:"xLgr"`
	Nro     Field `xml:"nro"`
	XCpl    Field `xml:"xCpl"`
	XBairro Field `xml:"xBairro"`
	XMun    Field `xml:"xMun"`
	CEP     Field `xml:"CEP"`
	UF      Field `xml:"UF"`
}

// Dest is the consumer group.
type Dest struct {
	CPF   Field `xml:"CPF"`
	CNPJ  Field `xml:"CNPJ"`
	XNome Field `xml:"xNome"`
}

// Det is one product or service entry.
type Det struct {
	NItem   Field   `xml:"nItem,attr"`
	Prod    Prod    `xml:"prod"`
	Imposto Imposto `xml:"imposto"`
}

// Prod is the product group of a det entry.
type Prod struct {
	CProd    Field `xml:"cProd"`
	CEAN     Field `xml:"cEAN"`
	XProd    Field `xml:"xProd"`
	NCM      Field `xml:"NCM"`
	CFOP     Field `xml:"CFOP"`
	UCom     Field `xml:"uCom"`
	QCom     Field `xml:"qCom"`
	VUnCom   Field `xml:"vUnCom"`
	VProd    Field `xml:"vProd"`
	IndRegra Field `xml:"indRegra"`
	VDesc    Field `xml:"vDesc"`
	VOutro   Field `xml:"vOutro"`
	VItem    Field `xml:"vItem"`
	VRatDesc Field `xml:"vRatDesc"`
	VRatAcr  Field `xml:"vRatAcr"`
}

// Imposto carries the tax groups of a det entry that show on the receipt.
type Imposto struct {
	VItem12741 Field  `xml:"vItem12741"`
	ISSQN      *ISSQN `xml:"ISSQN"`
}

// ISSQN is the municipal service tax group.
type ISSQN struct {
	VDeducISSQN Field `xml:"vDeducISSQN"`
	VBC         Field `xml:"vBC"`
	VAliq       Field `xml:"vAliq"`
	VISSQN      Field `xml:"vISSQN"`
	CMunFG      Field `xml:"cMunFG"`
	CListServ   Field `xml:"cListServ"`
	CNatOp      Field `xml:"cNatOp"`
	IndIncFisc  Field `xml:"indIncFisc"`
}

// Total is the totals group.
type Total struct {
	ICMSTot      ICMSTot     `xml:"ICMSTot"`
	VCFe         Field       `xml:"vCFe"`
	DescAcrEntr  DescAcrEntr `xml:"DescAcrEntr"`
	VCFeLei12741 Field       `xml:"vCFeLei12741"`
}

// ICMSTot holds the item totals.
type ICMSTot struct {
	VICMS     Field `xml:"vICMS"`
	VProd     Field `xml:"vProd"`
	VDesc     Field `xml:"vDesc"`
	VPIS      Field `xml:"vPIS"`
	VCOFINS   Field `xml:"vCOFINS"`
	VPISST    Field `xml:"vPISST"`
	VCOFINSST Field `xml:"vCOFINSST"`
	VOutro    Field `xml:"vOutro"`
}

// DescAcrEntr holds the discount and surcharge applied on the subtotal.
type DescAcrEntr struct {
	VDescSubtot  Field `xml:"vDescSubtot"`
	VAcresSubtot Field `xml:"vAcresSubtot"`
}

// Pgto is the payment group.
type Pgto struct {
	MP     []MP  `xml:"MP"`
	VTroco Field `xml:"vTroco"`
}

// MP is one payment method entry.
type MP struct {
	CMP   Field `xml:"cMP"`
	VMP   Field `xml:"vMP"`
	CAdmC Field `xml:"cAdmC"`
}

// InfAdic is the additional information group.
type InfAdic struct {
	InfCpl   Field      `xml:"infCpl"`
	ObsFisco []ObsFisco `xml:"obsFisco"`
}

// ObsFisco is one note from the tax authority.
type ObsFisco struct {
	XCampo Field `xml:"xCampo,attr"`
	XTexto Field `xml:"xTexto"`
}

// =============================================================================
// PARSING
// =============================================================================

type envelope struct {
	XMLName xml.Name
	Inf     InfCFe `xml:"infCFe"`
}

// Parse decodes a CF-e document. The root element decides the Kind.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	doc := &Document{Inf: env.Inf}
	switch env.XMLName.Local {
	case RootSale:
		doc.Kind = KindSale
	case RootCancellation:
		doc.Kind = KindCancellation
	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownRoot, env.XMLName.Local)
	}
	return doc, nil
}

// ParseFile reads and decodes the CF-e at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
