package heuristics

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Extractor pulls named invoice fields and a line-item list out of plain text
// by deterministic, case-insensitive keyword matching. It is best-effort: an
// unmatched field is simply absent, and any panic during a run yields an
// empty record rather than partial state.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// lineView is one scanned line with the lookahead context rules match on.
// Labels and their values are frequently split across adjacent lines in
// OCR output, so Combined glues the line to the next non-blank one.
type lineView struct {
	Raw           string // original line
	Clean         string // trimmed, lowercased
	Combined      string // Raw + " " + next non-blank line
	CombinedLower string
	Index         int
	Lines         []string
}

// fieldRule pairs a keyword predicate with a field-specific value extractor.
// Rules are evaluated in priority order; the first match wins per line.
type fieldRule struct {
	name    string
	match   func(v lineView) bool
	extract func(rec *entity.InvoiceRecord, v lineView)
}

// competing field keywords that stop the forward date scan
var dateScanSkip = []string{"tax id", "iban", "client", "total", "description", "qty", "summary", "items"}

var fieldRules = []fieldRule{
	{
		name: "invoice_number",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "invoice no") || strings.Contains(v.Clean, "invoice number")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			// digits only; alphanumeric prefixes like "INV-" are dropped
			if m := reDigits.FindString(v.Combined); m != "" {
				rec.InvoiceNumber = m
			}
		},
	},
	{
		name: "supplier_name",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "supplier") || strings.Contains(v.Clean, "seller")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			rec.SupplierName = nextNonBlank(v.Lines, v.Index)
		},
	},
	{
		name: "invoice_date",
		match: func(v lineView) bool {
			return strings.Contains(v.CombinedLower, "invoice date") ||
				strings.Contains(v.CombinedLower, "date of issue") ||
				strings.Contains(v.CombinedLower, "issue date") ||
				strings.Contains(v.CombinedLower, "date:")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			date := reDateShape.FindString(v.Combined)
			if date == "" {
				// value may sit a few lines below the label; skip lines that
				// belong to a competing field
				for j := v.Index + 1; j < len(v.Lines); j++ {
					future := strings.TrimSpace(v.Lines[j])
					if containsAny(strings.ToLower(future), dateScanSkip) {
						continue
					}
					if date = reDateShape.FindString(future); date != "" {
						break
					}
				}
			}
			if date != "" {
				rec.InvoiceDate = date
			}
		},
	},
	{
		name: "service_date",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "service period")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			if date := reDateShape.FindString(strings.TrimSpace(v.Combined)); date != "" {
				rec.ServiceDate = date
			}
		},
	},
	{
		name: "due_date",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "due date")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			if date := reDateShape.FindString(strings.TrimSpace(v.Combined)); date != "" {
				rec.DueDate = date
			}
		},
	},
	{
		name: "tax_id",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "tax id")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			// first match wins across the whole document
			if rec.TaxID != "" {
				return
			}
			if m := reTaxID.FindString(v.Combined); m != "" {
				rec.TaxID = m
			}
		},
	},
	{
		name: "bank_account",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "bank account") || strings.Contains(v.Clean, "iban")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			if m := reIBAN.FindString(v.Combined); m != "" {
				rec.BankAccount = m
			}
		},
	},
	{
		name: "total_amount",
		match: func(v lineView) bool {
			return strings.Contains(v.Clean, "total amount") || strings.Contains(v.Clean, "total")
		},
		extract: func(rec *entity.InvoiceRecord, v lineView) {
			m := reMoney.FindStringSubmatch(v.Raw)
			if m == nil {
				// probe up to the next 3 lines for the amount
				for j := v.Index + 1; j < len(v.Lines) && j < v.Index+4; j++ {
					if m = reMoney.FindStringSubmatch(v.Lines[j]); m != nil {
						break
					}
				}
			}
			if m != nil {
				rec.TotalAmount = entity.Float64Ptr(parseDecimal(m[1]))
			}
		},
	},
}

// Extract runs the rule table over every line and then scans the text again
// for numbered line items. Re-running it on identical text yields an
// identical record.
func (e *Extractor) Extract(text string) (rec *entity.InvoiceRecord) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("heuristics.extract.panic", "panic", r)
			rec = &entity.InvoiceRecord{}
		}
	}()

	rec = &entity.InvoiceRecord{}
	lines := splitLines(text)

	for i, raw := range lines {
		v := lineView{
			Raw:      raw,
			Clean:    strings.ToLower(strings.TrimSpace(raw)),
			Combined: raw + " " + nextNonBlank(lines, i),
			Index:    i,
			Lines:    lines,
		}
		v.CombinedLower = strings.ToLower(v.Combined)

		for _, rule := range fieldRules {
			if rule.match(v) {
				rule.extract(rec, v)
				break
			}
		}
	}

	rec.LineItems = scanLineItems(lines)
	return rec
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// nextNonBlank returns the first non-blank line after index i, trimmed.
func nextNonBlank(lines []string, i int) string {
	for j := i + 1; j < len(lines); j++ {
		if t := strings.TrimSpace(lines[j]); t != "" {
			return t
		}
	}
	return ""
}
