package llmextract

import (
	"context"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// FieldExtractor is the interface the processing pipeline depends on.
// The API key is supplied by the caller at call time and never stored.
// The second return value is the model's raw reply text.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, apiKey, text string) (*entity.InvoiceRecord, string, error)
}
