package cfe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/accesskey"
	"github.com/shopspring/decimal"
)

// TestSignAC is the application signature used by SAT devices in
// development mode. A document carrying it is a test emission.
const TestSignAC = "SGR-SAT SISTEMA DE GESTAO E RETAGUARDA DO SAT"

// TestReceiptNumber replaces nCFe on test emissions.
const TestReceiptNumber = "000000"

const emissionLayout = "20060102150405"

// AccessKey returns the 44-digit key from infCFe/@Id.
func (d *Document) AccessKey() (string, error) {
	id, err := Required(d.Inf.ID, "infCFe/@Id")
	if err != nil {
		return "", err
	}
	key, err := accesskey.Normalize(id)
	if err != nil {
		return "", invalid("infCFe/@Id", id, err)
	}
	return key, nil
}

// CancelledKey returns the key of the sale a cancellation refers to.
func (d *Document) CancelledKey() (string, error) {
	id, err := Required(d.Inf.CancelledID, "infCFe/@chCanc")
	if err != nil {
		return "", err
	}
	key, err := accesskey.Normalize(id)
	if err != nil {
		return "", invalid("infCFe/@chCanc", id, err)
	}
	return key, nil
}

// IsTestEnvironment reports whether the document was issued in the test
// environment, either by tpAmb or by the development signature.
func (d *Document) IsTestEnvironment() bool {
	return d.Inf.Ide.TpAmb.Value == "2" || d.Inf.Ide.SignAC.Value == TestSignAC
}

// ReceiptNumber returns nCFe, or TestReceiptNumber for test emissions.
func (d *Document) ReceiptNumber() (string, error) {
	if d.IsTestEnvironment() {
		return TestReceiptNumber, nil
	}
	return Required(d.Inf.Ide.NCFe, "infCFe/ide/nCFe")
}

// SerialNumber returns the serial number of the SAT device.
func (d *Document) SerialNumber() (string, error) {
	return Required(d.Inf.Ide.NSerieSAT, "infCFe/ide/nserieSAT")
}

// EmittedAt joins ide/dEmi and ide/hEmi.
func (d *Document) EmittedAt() (time.Time, error) {
	date, err := Required(d.Inf.Ide.DEmi, "infCFe/ide/dEmi")
	if err != nil {
		return time.Time{}, err
	}
	clock, err := Required(d.Inf.Ide.HEmi, "infCFe/ide/hEmi")
	if err != nil {
		return time.Time{}, err
	}
	at, err := time.Parse(emissionLayout, date+clock)
	if err != nil {
		return time.Time{}, invalid("infCFe/ide/dEmi+hEmi", date+clock, err)
	}
	return at, nil
}

// StateCode returns the IBGE state code from ide/cUF.
func (d *Document) StateCode() (int, error) {
	raw, err := Required(d.Inf.Ide.CUF, "infCFe/ide/cUF")
	if err != nil {
		return 0, err
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("infCFe/ide/cUF", raw, err)
	}
	return code, nil
}

// ConsumerDocument returns dest/CPF, falling back to dest/CNPJ, or "".
func (d *Document) ConsumerDocument() string {
	return Either(d.Inf.Dest.CPF, d.Inf.Dest.CNPJ).Value
}

// Total returns total/vCFe.
func (d *Document) Total() (decimal.Decimal, error) {
	return RequiredDecimal(d.Inf.Total.VCFe, "infCFe/total/vCFe")
}

// QRCodePayload builds the QR code content of the document:
// key|dEmi hEmi|vCFe|consumer CNPJ or CPF|assinaturaQRCODE.
func (d *Document) QRCodePayload() (string, error) {
	key, err := d.AccessKey()
	if err != nil {
		return "", err
	}
	date, err := Required(d.Inf.Ide.DEmi, "infCFe/ide/dEmi")
	if err != nil {
		return "", err
	}
	clock, err := Required(d.Inf.Ide.HEmi, "infCFe/ide/hEmi")
	if err != nil {
		return "", err
	}
	total, err := Required(d.Inf.Total.VCFe, "infCFe/total/vCFe")
	if err != nil {
		return "", err
	}
	signature, err := Required(d.Inf.Ide.AssinaturaQRCODE, "infCFe/ide/assinaturaQRCODE")
	if err != nil {
		return "", err
	}
	consumer := Either(d.Inf.Dest.CNPJ, d.Inf.Dest.CPF).Value

	return strings.Join([]string{key, date + clock, total, consumer, signature}, "|"), nil
}

// FiscalNotes returns the tax authority notes from both placements:
// infAdic/obsFisco (layout up to 2016) then infCFe/obsFisco (2017 on).
func (d *Document) FiscalNotes() []ObsFisco {
	notes := make([]ObsFisco, 0, len(d.Inf.InfAdic.ObsFisco)+len(d.Inf.ObsFisco))
	notes = append(notes, d.Inf.InfAdic.ObsFisco...)
	notes = append(notes, d.Inf.ObsFisco...)
	return notes
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// Item is a read-only view over one det entry with parsed values.
type Item struct {
	Number      int
	Code        string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal

	// TaxEstimate is vItem12741, the approximate taxes of the item.
	TaxEstimate decimal.Decimal

	Discount          decimal.Decimal
	ProratedDiscount  decimal.Decimal
	Surcharge         decimal.Decimal
	ProratedSurcharge decimal.Decimal

	// Service is set when the item is taxed by ISSQN.
	Service *ServiceTax
}

// ServiceTax holds the ISSQN values printed below an item.
type ServiceTax struct {
	Nature    string
	Base      decimal.Decimal
	Deduction decimal.Decimal
}

// IsService reports whether the entry is taxed by ISSQN, which is told by
// the presence of ISSQN/cNatOp.
func (det Det) IsService() bool {
	return det.Imposto.ISSQN != nil && det.Imposto.ISSQN.CNatOp.Set
}

// Item builds the view of the entry, failing on absent required fields.
func (det Det) Item() (Item, error) {
	prefix := fmt.Sprintf("infCFe/det[%s]/", det.NItem.Value)

	var (
		it  Item
		err error
	)

	raw, err := Required(det.NItem, prefix+"@nItem")
	if err != nil {
		return it, err
	}
	if it.Number, err = strconv.Atoi(raw); err != nil {
		return it, invalid(prefix+"@nItem", raw, err)
	}

	p := det.Prod
	if it.Code, err = Required(p.CProd, prefix+"prod/cProd"); err != nil {
		return it, err
	}
	if it.Description, err = Required(p.XProd, prefix+"prod/xProd"); err != nil {
		return it, err
	}
	if it.Unit, err = Required(p.UCom, prefix+"prod/uCom"); err != nil {
		return it, err
	}
	if it.Quantity, err = RequiredDecimal(p.QCom, prefix+"prod/qCom"); err != nil {
		return it, err
	}
	if it.UnitPrice, err = RequiredDecimal(p.VUnCom, prefix+"prod/vUnCom"); err != nil {
		return it, err
	}
	if it.Amount, err = RequiredDecimal(p.VProd, prefix+"prod/vProd"); err != nil {
		return it, err
	}

	optional := []struct {
		field Field
		path  string
		dst   *decimal.Decimal
	}{
		{det.Imposto.VItem12741, "imposto/vItem12741", &it.TaxEstimate},
		{p.VDesc, "prod/vDesc", &it.Discount},
		{p.VRatDesc, "prod/vRatDesc", &it.ProratedDiscount},
		{p.VOutro, "prod/vOutro", &it.Surcharge},
		{p.VRatAcr, "prod/vRatAcr", &it.ProratedSurcharge},
	}
	for _, o := range optional {
		if *o.dst, err = DecimalOr(o.field, prefix+o.path, decimal.Zero); err != nil {
			return it, err
		}
	}

	if det.IsService() {
		iss := det.Imposto.ISSQN
		svc := &ServiceTax{Nature: iss.CNatOp.Value}
		if svc.Base, err = DecimalOr(iss.VBC, prefix+"imposto/ISSQN/vBC", decimal.Zero); err != nil {
			return it, err
		}
		if svc.Deduction, err = DecimalOr(iss.VDeducISSQN, prefix+"imposto/ISSQN/vDeducISSQN", decimal.Zero); err != nil {
			return it, err
		}
		it.Service = svc
	}

	return it, nil
}

// =============================================================================
// TOTALS AND PAYMENTS
// =============================================================================

// Totals is the roll-up printed below the items.
type Totals struct {
	// Gross is ICMSTot/vProd.
	Gross decimal.Decimal

	// ItemDiscounts is ICMSTot/vDesc plus the vDesc of ISSQN items.
	ItemDiscounts decimal.Decimal

	// ItemSurcharges is ICMSTot/vOutro plus the vOutro of ISSQN items.
	ItemSurcharges decimal.Decimal

	SubtotalDiscount  decimal.Decimal
	SubtotalSurcharge decimal.Decimal

	// Total is vCFe.
	Total decimal.Decimal

	// TaxEstimate is vCFeLei12741.
	TaxEstimate decimal.Decimal
}

// HasAdjustments reports whether any discount or surcharge applies.
func (t Totals) HasAdjustments() bool {
	return !t.ItemDiscounts.IsZero() || !t.SubtotalDiscount.IsZero() ||
		!t.ItemSurcharges.IsZero() || !t.SubtotalSurcharge.IsZero()
}

// Totals gathers the totals group of a sale.
func (d *Document) Totals() (Totals, error) {
	var (
		t   Totals
		err error
	)
	tot := d.Inf.Total

	issqnDiscount, issqnSurcharge := decimal.Zero, decimal.Zero
	for i, det := range d.Inf.Det {
		if !det.IsService() {
			continue
		}
		prefix := fmt.Sprintf("infCFe/det[%d]/prod/", i+1)
		desc, err := DecimalOr(det.Prod.VDesc, prefix+"vDesc", decimal.Zero)
		if err != nil {
			return t, err
		}
		outro, err := DecimalOr(det.Prod.VOutro, prefix+"vOutro", decimal.Zero)
		if err != nil {
			return t, err
		}
		issqnDiscount = issqnDiscount.Add(desc)
		issqnSurcharge = issqnSurcharge.Add(outro)
	}

	if t.Gross, err = RequiredDecimal(tot.ICMSTot.VProd, "infCFe/total/ICMSTot/vProd"); err != nil {
		return t, err
	}
	if t.ItemDiscounts, err = DecimalOr(tot.ICMSTot.VDesc, "infCFe/total/ICMSTot/vDesc", decimal.Zero); err != nil {
		return t, err
	}
	if t.ItemSurcharges, err = DecimalOr(tot.ICMSTot.VOutro, "infCFe/total/ICMSTot/vOutro", decimal.Zero); err != nil {
		return t, err
	}
	t.ItemDiscounts = t.ItemDiscounts.Add(issqnDiscount)
	t.ItemSurcharges = t.ItemSurcharges.Add(issqnSurcharge)

	if t.SubtotalDiscount, err = DecimalOr(tot.DescAcrEntr.VDescSubtot, "infCFe/total/DescAcrEntr/vDescSubtot", decimal.Zero); err != nil {
		return t, err
	}
	if t.SubtotalSurcharge, err = DecimalOr(tot.DescAcrEntr.VAcresSubtot, "infCFe/total/DescAcrEntr/vAcresSubtot", decimal.Zero); err != nil {
		return t, err
	}
	if t.Total, err = d.Total(); err != nil {
		return t, err
	}
	if t.TaxEstimate, err = DecimalOr(tot.VCFeLei12741, "infCFe/total/vCFeLei12741", decimal.Zero); err != nil {
		return t, err
	}
	return t, nil
}

// Payment is one parsed MP entry.
type Payment struct {
	Code   string
	Amount decimal.Decimal
}

// Payments returns the payment entries and the change (vTroco).
func (d *Document) Payments() ([]Payment, decimal.Decimal, error) {
	payments := make([]Payment, 0, len(d.Inf.Pgto.MP))
	for i, mp := range d.Inf.Pgto.MP {
		prefix := fmt.Sprintf("infCFe/pgto/MP[%d]/", i+1)
		code, err := Required(mp.CMP, prefix+"cMP")
		if err != nil {
			return nil, decimal.Zero, err
		}
		amount, err := RequiredDecimal(mp.VMP, prefix+"vMP")
		if err != nil {
			return nil, decimal.Zero, err
		}
		payments = append(payments, Payment{Code: code, Amount: amount})
	}

	change, err := RequiredDecimal(d.Inf.Pgto.VTroco, "infCFe/pgto/vTroco")
	if err != nil {
		return nil, decimal.Zero, err
	}
	return payments, change, nil
}
