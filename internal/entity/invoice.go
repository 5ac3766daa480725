package entity

// InvoiceRecord is the structured data pulled out of one document.
// Every field is optional: an extractor sets only what it could match,
// and the analyzer appends warnings and anomalous items afterwards.
// A record lives for the duration of one session and is never persisted.
type InvoiceRecord struct {
	InvoiceNumber string   `json:"invoice_number,omitempty"`
	InvoiceDate   string   `json:"invoice_date,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	ServiceDate   string   `json:"service_date,omitempty"`
	SupplierName  string   `json:"supplier_name,omitempty"`
	TaxID         string   `json:"tax_id,omitempty"`
	BankAccount   string   `json:"bank_account,omitempty"`
	TotalAmount   *float64 `json:"total_amount,omitempty"`

	LineItems      []LineItem          `json:"line_items,omitempty"`
	Warnings       []string            `json:"warnings,omitempty"`
	AnomalousItems []AnomalousLineItem `json:"anomalous_items,omitempty"`
}

// LineItem is a single invoice position. Quantity defaults to 1 when the
// parser could not recover it; UnitPrice stays nil until it is matched
// against a collected price list.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
}

// AnomalousLineItem is a line item the outlier model flagged, carrying the
// model's score and label (-1 outlier, 1 inlier).
type AnomalousLineItem struct {
	LineItem
	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    int     `json:"is_anomaly"`
}

// RequiredFields are the fields the analyzer insists on before it runs any
// deeper checks.
var RequiredFields = []string{
	"invoice_number", "supplier_name", "invoice_date", "tax_id", "bank_account", "total_amount",
}

// MissingRequired returns the names of required fields absent from the record,
// in RequiredFields order.
func (r *InvoiceRecord) MissingRequired() []string {
	present := map[string]bool{
		"invoice_number": r.InvoiceNumber != "",
		"supplier_name":  r.SupplierName != "",
		"invoice_date":   r.InvoiceDate != "",
		"tax_id":         r.TaxID != "",
		"bank_account":   r.BankAccount != "",
		"total_amount":   r.TotalAmount != nil,
	}
	var missing []string
	for _, f := range RequiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Float64Ptr is a convenience for building optional decimals.
func Float64Ptr(v float64) *float64 { return &v }
