package llmextract

import (
	"regexp"
	"strconv"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Patterns over a JSON-flavored quoted-key/value syntax. They work on text
// that LOOKS like JSON but does not parse, which is the usual failure mode
// of a model that almost followed instructions.
var (
	reFBInvoiceNumber = regexp.MustCompile(`"invoice_number"\s*:\s*"([^"]+)"`)
	reFBInvoiceDate   = regexp.MustCompile(`"invoice_date"\s*:\s*"([^"]+)"`)
	reFBSupplierName  = regexp.MustCompile(`"supplier_name"\s*:\s*"([^"]+)"`)
	reFBTaxID         = regexp.MustCompile(`"tax_id"\s*:\s*"([^"]+)"`)
	reFBBankAccount   = regexp.MustCompile(`"bank_account"\s*:\s*"([^"]+)"`)
	reFBTotalAmount   = regexp.MustCompile(`"total_amount"\s*:\s*(\d+\.?\d*)`)

	// repeated description/quantity/unit_price triples anywhere in the text
	reFBLineItem = regexp.MustCompile(`"description"\s*:\s*"([^"]*)"\s*,\s*"quantity"\s*:\s*(\d+\.?\d*)\s*,\s*"unit_price"\s*:\s*(\d+\.?\d*)`)
)

// FallbackExtract rebuilds a record field by field when the reply is not
// valid JSON. Fields it cannot locate stay absent.
func FallbackExtract(text string) *entity.InvoiceRecord {
	rec := &entity.InvoiceRecord{}

	if m := reFBInvoiceNumber.FindStringSubmatch(text); m != nil {
		rec.InvoiceNumber = m[1]
	}
	if m := reFBInvoiceDate.FindStringSubmatch(text); m != nil {
		rec.InvoiceDate = m[1]
	}
	if m := reFBSupplierName.FindStringSubmatch(text); m != nil {
		rec.SupplierName = m[1]
	}
	if m := reFBTaxID.FindStringSubmatch(text); m != nil {
		rec.TaxID = m[1]
	}
	if m := reFBBankAccount.FindStringSubmatch(text); m != nil {
		rec.BankAccount = m[1]
	}
	if m := reFBTotalAmount.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.TotalAmount = entity.Float64Ptr(v)
		}
	}

	for _, m := range reFBLineItem.FindAllStringSubmatch(text, -1) {
		qty, _ := strconv.ParseFloat(m[2], 64)
		price, _ := strconv.ParseFloat(m[3], 64)
		rec.LineItems = append(rec.LineItems, entity.LineItem{
			Description: m[1],
			Quantity:    qty,
			UnitPrice:   entity.Float64Ptr(price),
		})
	}
	return rec
}
