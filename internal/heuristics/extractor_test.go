package heuristics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleInvoice = `Invoice no: INV-2024-0099
Supplier:
Acme Consulting GmbH
Invoice date: 03/15/2024
Tax ID: 12-3456789
IBAN: DE44500105175407324931
Items
1. Software development services 10,00
2. Code review 2,00
Net price
100,00
250,50
Summary
Total amount: $350.50`

func TestExtractFullInvoice(t *testing.T) {
	rec := NewExtractor(nil).Extract(sampleInvoice)

	require.Equal(t, "2024", rec.InvoiceNumber, "alphanumeric prefixes are dropped, digits only")
	require.Equal(t, "Acme Consulting GmbH", rec.SupplierName)
	require.Equal(t, "03/15/2024", rec.InvoiceDate)
	require.Equal(t, "12-3456789", rec.TaxID)
	require.Equal(t, "DE44500105175407324931", rec.BankAccount)
	require.NotNil(t, rec.TotalAmount)
	require.Equal(t, 350.50, *rec.TotalAmount)

	require.Len(t, rec.LineItems, 2)
	require.Equal(t, "Software development services", rec.LineItems[0].Description)
	require.Equal(t, 10.0, rec.LineItems[0].Quantity)
	require.NotNil(t, rec.LineItems[0].UnitPrice)
	require.Equal(t, 100.0, *rec.LineItems[0].UnitPrice)
	require.Equal(t, "Code review", rec.LineItems[1].Description)
	require.Equal(t, 2.0, rec.LineItems[1].Quantity)
	require.NotNil(t, rec.LineItems[1].UnitPrice)
	require.Equal(t, 250.50, *rec.LineItems[1].UnitPrice)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := NewExtractor(nil)

	first, err := json.Marshal(e.Extract(sampleInvoice))
	require.NoError(t, err)
	second, err := json.Marshal(e.Extract(sampleInvoice))
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestExtractInvoiceNumberKeepsFirstDigitRun(t *testing.T) {
	rec := NewExtractor(nil).Extract("Invoice Number: 77812\n")
	require.Equal(t, "77812", rec.InvoiceNumber)
}

func TestExtractDateScansForward(t *testing.T) {
	// the value sits two lines below the label, behind a competing field
	text := "Date of issue\nTax ID: 999\n03/20/2024\n"
	rec := NewExtractor(nil).Extract(text)
	require.Equal(t, "03/20/2024", rec.InvoiceDate)
}

func TestExtractDueAndServiceDates(t *testing.T) {
	text := "Payment due date 04/14/2024\nService period 01/31/2024\n"
	rec := NewExtractor(nil).Extract(text)
	require.Equal(t, "04/14/2024", rec.DueDate)
	require.Equal(t, "01/31/2024", rec.ServiceDate)
}

func TestExtractTotalProbesFollowingLines(t *testing.T) {
	text := "Total amount\nUSD\n$ 420.00\n"
	rec := NewExtractor(nil).Extract(text)
	require.NotNil(t, rec.TotalAmount)
	require.Equal(t, 420.0, *rec.TotalAmount)
}

func TestExtractEmptyText(t *testing.T) {
	rec := NewExtractor(nil).Extract("")
	require.Empty(t, rec.InvoiceNumber)
	require.Empty(t, rec.SupplierName)
	require.Nil(t, rec.TotalAmount)
	require.Empty(t, rec.LineItems)
}

func TestLineItemsWrappedDescription(t *testing.T) {
	items := scanLineItems([]string{"1. Consulting", "and advisory work", "Summary"})
	require.Len(t, items, 1)
	require.Equal(t, "Consulting and advisory work", items[0].Description)
	require.Equal(t, 1.0, items[0].Quantity)
	require.Nil(t, items[0].UnitPrice)
}

func TestLineItemsEndOfInputClosesItem(t *testing.T) {
	items := scanLineItems([]string{"1. Widget 2,00"})
	require.Len(t, items, 1)
	require.Equal(t, "Widget", items[0].Description)
	require.Equal(t, 2.0, items[0].Quantity)
}

func TestLineItemsPositionalPriceBackfill(t *testing.T) {
	lines := []string{
		"1. Alpha 1,00",
		"2. Beta 2,00",
		"3. Gamma 3,00",
		"Net price",
		"10,00",
		"20,00",
		"Summary",
	}
	items := scanLineItems(lines)
	require.Len(t, items, 3)
	require.Equal(t, 10.0, *items[0].UnitPrice)
	require.Equal(t, 20.0, *items[1].UnitPrice)
	require.Nil(t, items[2].UnitPrice, "prices run out before the last item")
}

func TestParseDecimalCommaSeparator(t *testing.T) {
	require.Equal(t, 12.5, parseDecimal("12,50"))
	require.Equal(t, 12.5, parseDecimal("12.50"))
}
