package cfe_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/cfe/cfetest"
	"github.com/shopspring/decimal"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		fixture string
		kind    cfe.Kind
		key     string
	}{
		{cfetest.Sale, cfe.KindSale, cfetest.SaleKey},
		{cfetest.ComplexSale, cfe.KindSale, cfetest.ComplexSaleKey},
		{cfetest.Cancellation, cfe.KindCancellation, cfetest.CancellationKey},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			doc := cfetest.Load(t, tt.fixture)
			if doc.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", doc.Kind, tt.kind)
			}
			key, err := doc.AccessKey()
			if err != nil {
				t.Fatalf("AccessKey: %v", err)
			}
			if key != tt.key {
				t.Errorf("AccessKey = %q, want %q", key, tt.key)
			}
		})
	}
}

func TestParseUnknownRoot(t *testing.T) {
	_, err := cfe.Parse([]byte(`<?xml version="1.0"?><NFe><infNFe Id="x"/></NFe>`))
	if !errors.Is(err, cfe.ErrUnknownRoot) {
		t.Fatalf("error = %v, want ErrUnknownRoot", err)
	}
	if !strings.Contains(err.Error(), "NFe") {
		t.Errorf("error %q does not name the root", err)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := cfe.Parse([]byte(`<CFe><infCFe>`))
	if !errors.Is(err, cfe.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}

func TestParseLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<CFe><infCFe><emit><xNome>PADARIA P\xc3O</xNome></emit></infCFe></CFe>")
	parsed, err := cfe.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Inf.Emit.XNome.Value; got != "PADARIA PÃO" {
		t.Errorf("xNome = %q", got)
	}
}

func TestRequiredFieldMissing(t *testing.T) {
	doc, err := cfe.Parse([]byte(`<CFe><infCFe><ide/><total/></infCFe></CFe>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = doc.AccessKey()
	var fe *cfe.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FieldError", err)
	}
	if fe.Path != "infCFe/@Id" || !errors.Is(err, cfe.ErrFieldMissing) {
		t.Errorf("FieldError = %+v", fe)
	}

	if _, err := doc.Total(); !errors.Is(err, cfe.ErrFieldMissing) {
		t.Errorf("Total error = %v, want ErrFieldMissing", err)
	}
	if _, err := doc.SerialNumber(); !errors.Is(err, cfe.ErrFieldMissing) {
		t.Errorf("SerialNumber error = %v, want ErrFieldMissing", err)
	}
}

func TestInvalidDecimal(t *testing.T) {
	doc, err := cfe.Parse([]byte(`<CFe><infCFe><total><vCFe>7,50</vCFe></total></infCFe></CFe>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := doc.Total(); !errors.Is(err, cfe.ErrInvalidValue) {
		t.Errorf("Total error = %v, want ErrInvalidValue", err)
	}
}

func TestReceiptNumber(t *testing.T) {
	tests := []struct {
		name   string
		tpAmb  string
		signAC string
		want   string
	}{
		{"production", "1", "c2lnbmF0dXJl", "000123"},
		{"test environment by tpAmb", "2", "c2lnbmF0dXJl", "000000"},
		{"test environment by signature", "1", cfe.TestSignAC, "000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := `<CFe><infCFe><ide><nCFe>000123</nCFe><tpAmb>` + tt.tpAmb +
				`</tpAmb><signAC>` + tt.signAC + `</signAC></ide></infCFe></CFe>`
			doc, err := cfe.Parse([]byte(xml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, err := doc.ReceiptNumber()
			if err != nil {
				t.Fatalf("ReceiptNumber: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReceiptNumber = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmittedAt(t *testing.T) {
	doc := cfetest.Load(t, cfetest.Sale)
	at, err := doc.EmittedAt()
	if err != nil {
		t.Fatalf("EmittedAt: %v", err)
	}
	want := time.Date(2015, 4, 9, 9, 34, 55, 0, time.UTC)
	if !at.Equal(want) {
		t.Errorf("EmittedAt = %v, want %v", at, want)
	}
}

func TestQRCodePayload(t *testing.T) {
	doc := cfetest.Load(t, cfetest.ComplexSale)
	got, err := doc.QRCodePayload()
	if err != nil {
		t.Fatalf("QRCodePayload: %v", err)
	}
	want := cfetest.ComplexSaleKey + "|20170705143210|20.50|12345678909|QVNTSU5BVFVSQS1RUkNPREUtMDAwMDI0"
	if got != want {
		t.Errorf("QRCodePayload = %q, want %q", got, want)
	}

	doc = cfetest.Load(t, cfetest.Sale)
	got, err = doc.QRCodePayload()
	if err != nil {
		t.Fatalf("QRCodePayload: %v", err)
	}
	if parts := strings.Split(got, "|"); len(parts) != 5 || parts[3] != "" || parts[2] != "7.50" {
		t.Errorf("QRCodePayload without consumer = %q", got)
	}
}

func TestCancelledKey(t *testing.T) {
	doc := cfetest.Load(t, cfetest.Cancellation)
	key, err := doc.CancelledKey()
	if err != nil {
		t.Fatalf("CancelledKey: %v", err)
	}
	if key != cfetest.SaleKey {
		t.Errorf("CancelledKey = %q, want %q", key, cfetest.SaleKey)
	}
}

func TestConsumerDocument(t *testing.T) {
	if got := cfetest.Load(t, cfetest.ComplexSale).ConsumerDocument(); got != "12345678909" {
		t.Errorf("ConsumerDocument = %q", got)
	}
	if got := cfetest.Load(t, cfetest.Sale).ConsumerDocument(); got != "" {
		t.Errorf("ConsumerDocument = %q, want empty", got)
	}
}

func TestFiscalNotes(t *testing.T) {
	notes := cfetest.Load(t, cfetest.ComplexSale).FiscalNotes()
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].XCampo.Value != "ant" || notes[1].XCampo.Value != "nova" {
		t.Errorf("notes out of order: %+v", notes)
	}
	if notes[1].XTexto.Value != "redação 2017" {
		t.Errorf("xTexto = %q", notes[1].XTexto.Value)
	}
}

func TestItems(t *testing.T) {
	doc := cfetest.Load(t, cfetest.ComplexSale)
	if len(doc.Inf.Det) != 3 {
		t.Fatalf("got %d items", len(doc.Inf.Det))
	}

	first, err := doc.Inf.Det[0].Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if first.Number != 1 || first.Code != "7891234567891" || first.Unit != "KG" {
		t.Errorf("first item = %+v", first)
	}
	if !first.Discount.Equal(decimal.RequireFromString("0.45")) || !first.TaxEstimate.Equal(decimal.RequireFromString("0.98")) {
		t.Errorf("first item values = %v %v", first.Discount, first.TaxEstimate)
	}
	if first.Service != nil {
		t.Error("first item is not a service")
	}

	service, err := doc.Inf.Det[1].Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if service.Service == nil {
		t.Fatal("second item should carry ISSQN")
	}
	if !service.Service.Base.Equal(decimal.RequireFromString("5.50")) || !service.Service.Deduction.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("service = %+v", service.Service)
	}

	third, err := doc.Inf.Det[2].Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if !third.ProratedDiscount.Equal(decimal.RequireFromString("0.50")) || !third.Surcharge.IsZero() {
		t.Errorf("third item = %+v", third)
	}
}

func TestItemMissingField(t *testing.T) {
	doc, err := cfe.Parse([]byte(`<CFe><infCFe><det nItem="7"><prod><cProd>1</cProd></prod></det></infCFe></CFe>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = doc.Inf.Det[0].Item()
	var fe *cfe.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FieldError", err)
	}
	if fe.Path != "infCFe/det[7]/prod/xProd" {
		t.Errorf("Path = %q", fe.Path)
	}
}

func TestTotals(t *testing.T) {
	totals, err := cfetest.Load(t, cfetest.ComplexSale).Totals()
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}

	check := func(name string, got decimal.Decimal, want string) {
		t.Helper()
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
	check("Gross", totals.Gross, "20.45")
	check("ItemDiscounts", totals.ItemDiscounts, "0.45")
	check("ItemSurcharges", totals.ItemSurcharges, "1.00")
	check("SubtotalDiscount", totals.SubtotalDiscount, "0.50")
	check("SubtotalSurcharge", totals.SubtotalSurcharge, "0")
	check("Total", totals.Total, "20.50")
	check("TaxEstimate", totals.TaxEstimate, "3.10")

	if !totals.HasAdjustments() {
		t.Error("HasAdjustments = false")
	}

	plain, err := cfetest.Load(t, cfetest.Sale).Totals()
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if plain.HasAdjustments() {
		t.Error("plain sale reports adjustments")
	}
}

func TestPayments(t *testing.T) {
	payments, change, err := cfetest.Load(t, cfetest.ComplexSale).Payments()
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(payments) != 2 || payments[0].Code != "01" || payments[1].Code != "03" {
		t.Errorf("payments = %+v", payments)
	}
	if !change.Equal(decimal.RequireFromString("9.50")) {
		t.Errorf("change = %s", change)
	}
}
