package llmextract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns the invoice record schema as a generic map.
// It is deliberately loose: every field optional, unknown keys allowed. It is
// used to audit model replies and to gate direct JSON ingestion.
func BuildInvoiceJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "number"},
			"unit_price":  map[string]any{"type": []any{"number", "null"}},
		},
	}

	anomalousItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description":   map[string]any{"type": "string"},
			"quantity":      map[string]any{"type": "number"},
			"unit_price":    map[string]any{"type": []any{"number", "null"}},
			"anomaly_score": map[string]any{"type": "number"},
			"is_anomaly":    map[string]any{"type": "integer"},
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number":  map[string]any{"type": "string"},
			"invoice_date":    map[string]any{"type": "string"},
			"due_date":        map[string]any{"type": "string"},
			"service_date":    map[string]any{"type": "string"},
			"supplier_name":   map[string]any{"type": "string"},
			"tax_id":          map[string]any{"type": "string"},
			"bank_account":    map[string]any{"type": "string"},
			"total_amount":    map[string]any{"type": "number"},
			"line_items":      map[string]any{"type": "array", "items": lineItem},
			"warnings":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"anomalous_items": map[string]any{"type": "array", "items": anomalousItem},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
