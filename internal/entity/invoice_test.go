package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineItemJSONKeepsNullUnitPrice(t *testing.T) {
	b, err := json.Marshal(LineItem{Description: "Consulting", Quantity: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"description": "Consulting", "quantity": 2, "unit_price": null}`, string(b))
}

func TestInvoiceRecordJSONOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(&InvoiceRecord{InvoiceNumber: "2024"})
	require.NoError(t, err)
	require.JSONEq(t, `{"invoice_number": "2024"}`, string(b))
}

func TestInvoiceRecordJSONRoundTrip(t *testing.T) {
	in := &InvoiceRecord{
		InvoiceNumber: "2024",
		InvoiceDate:   "03/15/2024",
		SupplierName:  "Acme GmbH",
		TaxID:         "12-3456789",
		BankAccount:   "DE44500105175407324931",
		TotalAmount:   Float64Ptr(350.5),
		LineItems: []LineItem{
			{Description: "Dev work", Quantity: 10, UnitPrice: Float64Ptr(25.5)},
			{Description: "Review", Quantity: 2},
		},
		Warnings: []string{"High unit price detected: 250.5 for Review"},
		AnomalousItems: []AnomalousLineItem{
			{LineItem: LineItem{Description: "Review", Quantity: 2}, AnomalyScore: -0.05, IsAnomaly: -1},
		},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out InvoiceRecord
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, *in, out)
}

func TestMissingRequiredOrder(t *testing.T) {
	rec := &InvoiceRecord{SupplierName: "Acme", TotalAmount: Float64Ptr(10)}
	require.Equal(t,
		[]string{"invoice_number", "invoice_date", "tax_id", "bank_account"},
		rec.MissingRequired())
}

func TestMissingRequiredComplete(t *testing.T) {
	rec := &InvoiceRecord{
		InvoiceNumber: "1",
		SupplierName:  "Acme",
		InvoiceDate:   "01/01/2024",
		TaxID:         "12-3",
		BankAccount:   "DE44500105175407324931",
		TotalAmount:   Float64Ptr(1),
	}
	require.Empty(t, rec.MissingRequired())
}
