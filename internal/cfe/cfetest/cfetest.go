// Package cfetest provides CF-e fixtures for tests.
package cfetest

import (
	"embed"
	"testing"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
)

//go:embed testdata/*.xml
var fixtures embed.FS

// Fixture file names.
const (
	// Sale is a one-item test-environment sale.
	Sale = "sale.xml"

	// ComplexSale has discounts, a surcharge, an ISSQN item, a consumer,
	// a delivery address and notes in every group.
	ComplexSale = "sale_complex.xml"

	// Cancellation cancels Sale.
	Cancellation = "cancellation.xml"
)

// Keys of the fixtures.
const (
	SaleKey         = "35150461099008000141599000017900000015450903"
	ComplexSaleKey  = "35170708723218000186599000040190000241114257"
	CancellationKey = "35150461099008000141599000040190000053222424"
)

// Bytes returns the raw XML of a fixture.
func Bytes(t testing.TB, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return data
}

// Load parses a fixture.
func Load(t testing.TB, name string) *cfe.Document {
	t.Helper()
	doc, err := cfe.Parse(Bytes(t, name))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	return doc
}
