package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

func completeInvoice() *entity.InvoiceRecord {
	return &entity.InvoiceRecord{
		InvoiceNumber: "2024",
		SupplierName:  "Acme Consulting GmbH",
		InvoiceDate:   "02/15/2023",
		TaxID:         "12-3456789",
		BankAccount:   "DE44500105175407324931",
		TotalAmount:   entity.Float64Ptr(350.50),
	}
}

func window(start, end string) *DateWindow {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return &DateWindow{Start: s, End: e}
}

func TestAnalyzeNilInvoice(t *testing.T) {
	rep := NewAnalyzer(nil).Analyze(nil, nil)
	require.Equal(t, entity.StatusError, rep.Status)
	require.Equal(t, "Invalid invoice data", rep.Message)
}

func TestAnalyzeMissingFieldsShortCircuits(t *testing.T) {
	inv := &entity.InvoiceRecord{
		InvoiceNumber: "2024",
		LineItems: []entity.LineItem{
			{Description: "Widget", Quantity: 1, UnitPrice: entity.Float64Ptr(9999)},
		},
	}
	rep := NewAnalyzer(nil).Analyze(inv, nil)

	require.Equal(t, entity.StatusWarning, rep.Status)
	require.Equal(t, "Missing required fields: supplier_name, invoice_date, tax_id, bank_account, total_amount", rep.Message)
	require.Empty(t, inv.Warnings, "no deeper checks run on incomplete records")
	require.Empty(t, inv.AnomalousItems)
}

func TestAnalyzeCleanInvoice(t *testing.T) {
	inv := completeInvoice()
	rep := NewAnalyzer(nil).Analyze(inv, window("2023-01-01", "2023-12-31"))

	require.Equal(t, entity.StatusSuccess, rep.Status)
	require.Equal(t, "No issues detected", rep.Message)
	require.Empty(t, inv.Warnings)
}

func TestAnalyzeDateOutsideWindow(t *testing.T) {
	inv := completeInvoice()
	inv.InvoiceDate = "02/15/2024"
	rep := NewAnalyzer(nil).Analyze(inv, window("2023-01-01", "2023-12-31"))

	require.Equal(t, entity.StatusWarning, rep.Status)
	require.Contains(t, inv.Warnings, "Invoice date is outside the contract period.")
}

func TestAnalyzeUnparsableDate(t *testing.T) {
	inv := completeInvoice()
	inv.InvoiceDate = "2023-02-15"
	rep := NewAnalyzer(nil).Analyze(inv, window("2023-01-01", "2023-12-31"))

	require.Equal(t, entity.StatusWarning, rep.Status)
	require.Contains(t, inv.Warnings, "Unable to parse invoice date format.")
}

func TestAnalyzeNoWindowSkipsDateCheck(t *testing.T) {
	inv := completeInvoice()
	inv.InvoiceDate = "not a date"
	rep := NewAnalyzer(nil).Analyze(inv, nil)
	require.Equal(t, entity.StatusSuccess, rep.Status)
}

func TestAnalyzeHighUnitPrice(t *testing.T) {
	inv := completeInvoice()
	inv.LineItems = []entity.LineItem{
		{Description: "Widget", Quantity: 1, UnitPrice: entity.Float64Ptr(150)},
	}
	rep := NewAnalyzer(nil).Analyze(inv, nil)

	require.Equal(t, entity.StatusWarning, rep.Status)
	require.Equal(t, "Analysis completed with warnings", rep.Message)
	require.Contains(t, inv.Warnings, "High unit price detected: 150 for Widget")
}

func TestAnalyzeFlagsPriceOutlier(t *testing.T) {
	inv := completeInvoice()
	inv.LineItems = []entity.LineItem{
		{Description: "Paper", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Pens", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Staples", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Gold toner", Quantity: 1, UnitPrice: entity.Float64Ptr(500)},
	}
	rep := NewAnalyzer(nil).Analyze(inv, nil)

	require.Equal(t, entity.StatusWarning, rep.Status)
	require.Contains(t, inv.Warnings, "Potential fraud/anomalies detected via machine learning model.")
	require.Len(t, inv.AnomalousItems, 1)
	require.Equal(t, "Gold toner", inv.AnomalousItems[0].Description)
	require.Equal(t, -1, inv.AnomalousItems[0].IsAnomaly)
	require.Negative(t, inv.AnomalousItems[0].AnomalyScore)
}

func TestAnalyzeIdenticalItemsAreNotOutliers(t *testing.T) {
	inv := completeInvoice()
	inv.LineItems = []entity.LineItem{
		{Description: "Paper", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Pens", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Staples", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
		{Description: "Clips", Quantity: 2, UnitPrice: entity.Float64Ptr(10)},
	}
	NewAnalyzer(nil).Analyze(inv, nil)
	require.Empty(t, inv.AnomalousItems)
}

func TestAnalyzeSkipsItemsWithoutUnitPrice(t *testing.T) {
	inv := completeInvoice()
	inv.LineItems = []entity.LineItem{
		{Description: "Unpriced", Quantity: 3},
	}
	rep := NewAnalyzer(nil).Analyze(inv, nil)
	require.Equal(t, entity.StatusSuccess, rep.Status)
	require.Empty(t, inv.AnomalousItems)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	build := func() *entity.InvoiceRecord {
		inv := completeInvoice()
		inv.LineItems = []entity.LineItem{
			{Description: "A", Quantity: 2, UnitPrice: entity.Float64Ptr(12)},
			{Description: "B", Quantity: 3, UnitPrice: entity.Float64Ptr(14)},
			{Description: "C", Quantity: 2, UnitPrice: entity.Float64Ptr(11)},
			{Description: "D", Quantity: 1, UnitPrice: entity.Float64Ptr(800)},
		}
		return inv
	}

	first := build()
	second := build()
	NewAnalyzer(nil).Analyze(first, nil)
	NewAnalyzer(nil).Analyze(second, nil)

	require.Equal(t, len(first.AnomalousItems), len(second.AnomalousItems))
	for i := range first.AnomalousItems {
		require.Equal(t, first.AnomalousItems[i].Description, second.AnomalousItems[i].Description)
		require.Equal(t, first.AnomalousItems[i].AnomalyScore, second.AnomalousItems[i].AnomalyScore)
	}
}

func TestExplainPriorities(t *testing.T) {
	require.Equal(t,
		"This item has a high unit price which may be unusual for this type of product.",
		Explain(entity.LineItem{Quantity: 50, UnitPrice: entity.Float64Ptr(200)}))
	require.Equal(t,
		"High quantity detected, might be bulk order or mis-entry.",
		Explain(entity.LineItem{Quantity: 20, UnitPrice: entity.Float64Ptr(5)}))
	require.Equal(t,
		"Anomaly detection based on unit price and quantity patterns.",
		Explain(entity.LineItem{Quantity: 2, UnitPrice: entity.Float64Ptr(5)}))
}

func TestForestScoresIsolatedPointHigher(t *testing.T) {
	data := []point{{10, 2}, {11, 2}, {10, 3}, {12, 2}, {11, 3}, {500, 1}}
	f := FitForest(DefaultForestConfig(), data)

	outlier := f.Score(point{500, 1})
	inlier := f.Score(point{10, 2})
	require.Greater(t, outlier, inlier)
}

func TestPercentileInterpolation(t *testing.T) {
	require.Equal(t, 1.75, percentile([]float64{1, 2, 3, 4}, 25))
	require.Equal(t, 5.0, percentile([]float64{5}, 25))
	require.Equal(t, 4.0, percentile([]float64{1, 4}, 100))
}
