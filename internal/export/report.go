// Package export renders an analyzed invoice as an XLSX workbook so findings
// can be handed to whoever reviews flagged invoices.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-auditor/internal/anomaly"
)

const (
	sheetInvoice = "Invoice"
	sheetItems   = "Line Items"
)

// WriteReportXLSX returns a workbook with the invoice fields on one sheet and
// the line items, with anomaly flags and rationales, on another.
func WriteReportXLSX(rep anomaly.Report) ([]byte, error) {
	inv := rep.Invoice
	if inv == nil {
		return nil, fmt.Errorf("report carries no invoice")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetInvoice); err != nil {
		return nil, err
	}

	fields := [][2]string{
		{"Status", string(rep.Status)},
		{"Message", rep.Message},
		{"Invoice Number", inv.InvoiceNumber},
		{"Invoice Date", inv.InvoiceDate},
		{"Due Date", inv.DueDate},
		{"Service Date", inv.ServiceDate},
		{"Supplier", inv.SupplierName},
		{"Tax ID", inv.TaxID},
		{"Bank Account", inv.BankAccount},
	}
	row := 1
	for _, kv := range fields {
		if err := setRow(f, sheetInvoice, row, kv[0], kv[1]); err != nil {
			return nil, err
		}
		row++
	}
	if inv.TotalAmount != nil {
		if err := setRow(f, sheetInvoice, row, "Total Amount", *inv.TotalAmount); err != nil {
			return nil, err
		}
		row++
	}
	for _, w := range inv.Warnings {
		if err := setRow(f, sheetInvoice, row, "Warning", w); err != nil {
			return nil, err
		}
		row++
	}

	if _, err := f.NewSheet(sheetItems); err != nil {
		return nil, err
	}
	headers := []string{"#", "Description", "Quantity", "Unit Price", "Flagged", "Rationale"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetItems, cell, h); err != nil {
			return nil, err
		}
	}

	flagged := map[string]bool{}
	for _, a := range inv.AnomalousItems {
		flagged[a.Description] = true
	}

	for i, item := range inv.LineItems {
		r := i + 2
		values := []any{i + 1, item.Description, item.Quantity, nil, "", ""}
		if item.UnitPrice != nil {
			values[3] = *item.UnitPrice
		}
		if flagged[item.Description] {
			values[4] = "yes"
			values[5] = anomaly.Explain(item)
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := f.SetCellValue(sheetItems, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, label string, value any) error {
	a, _ := excelize.CoordinatesToCellName(1, row)
	b, _ := excelize.CoordinatesToCellName(2, row)
	if err := f.SetCellValue(sheet, a, label); err != nil {
		return err
	}
	return f.SetCellValue(sheet, b, value)
}
