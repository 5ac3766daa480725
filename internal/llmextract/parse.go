package llmextract

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

var reCodeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSONPayload locates a fenced code block in the model's reply and
// returns its content; without a fence the whole reply is the candidate.
func ExtractJSONPayload(reply string) string {
	if m := reCodeFence.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}

// ParseReply turns a model reply into an InvoiceRecord. Structurally invalid
// replies never fail: they degrade to the regex fallback, which in the worst
// case yields an empty record.
func ParseReply(reply string, logger *slog.Logger) *entity.InvoiceRecord {
	if logger == nil {
		logger = slog.Default()
	}
	payload := ExtractJSONPayload(reply)

	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		logger.Warn("llm.parse.fallback", "error", err, "payload_bytes", len(payload))
		return FallbackExtract(payload)
	}

	// Audit only: a schema mismatch is worth a log line, not a failure.
	if err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), []byte(payload)); err != nil {
		logger.Warn("llm.parse.schema_mismatch", "error", err)
	}

	return coerceRecord(m)
}

// coerceRecord maps a decoded JSON object onto the record, tolerating the
// usual model sloppiness (numbers quoted as strings and vice versa).
func coerceRecord(m map[string]any) *entity.InvoiceRecord {
	rec := &entity.InvoiceRecord{
		InvoiceNumber: asString(m["invoice_number"]),
		InvoiceDate:   asString(m["invoice_date"]),
		DueDate:       asString(m["due_date"]),
		ServiceDate:   asString(m["service_date"]),
		SupplierName:  asString(m["supplier_name"]),
		TaxID:         asString(m["tax_id"]),
		BankAccount:   asString(m["bank_account"]),
	}
	if v, ok := asFloat(m["total_amount"]); ok {
		rec.TotalAmount = entity.Float64Ptr(v)
	}

	items, ok := m["line_items"].([]any)
	if !ok {
		return rec
	}
	for _, raw := range items {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := entity.LineItem{
			Description: asString(obj["description"]),
			Quantity:    1,
		}
		if q, ok := asFloat(obj["quantity"]); ok {
			item.Quantity = q
		}
		if p, ok := asFloat(obj["unit_price"]); ok {
			item.UnitPrice = entity.Float64Ptr(p)
		}
		rec.LineItems = append(rec.LineItems, item)
	}
	return rec
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
