package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/anomaly"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/heuristics"
	"github.com/joseph-ayodele/invoice-auditor/internal/llmextract"
	"github.com/joseph-ayodele/invoice-auditor/internal/textacquire"
)

// TextAcquirer is the acquisition capability the processor depends on.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc entity.RawDocument) (textacquire.Result, error)
}

// Processor coordinates text acquisition, field extraction and analysis for
// one document at a time. It is stateless per invocation; all per-session
// state lives in Session.
type Processor struct {
	logger     *slog.Logger
	acquirer   TextAcquirer
	heuristics *heuristics.Extractor
	llm        llmextract.FieldExtractor
	analyzer   *anomaly.Analyzer
}

func NewProcessor(logger *slog.Logger, acquirer TextAcquirer, hx *heuristics.Extractor, llm llmextract.FieldExtractor, an *anomaly.Analyzer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if hx == nil {
		hx = heuristics.NewExtractor(logger)
	}
	if an == nil {
		an = anomaly.NewAnalyzer(logger)
	}
	return &Processor{logger: logger, acquirer: acquirer, heuristics: hx, llm: llm, analyzer: an}
}

// Process turns one raw document into an ExtractionResult. Images and PDFs
// go through the heuristic extractor over the acquired text; everything else
// is converted to markup and sent to the AI extractor when a credential is
// present. Every failure mode comes back as a tagged result, never a panic.
func (p *Processor) Process(ctx context.Context, doc entity.RawDocument, sess *Session) entity.ExtractionResult {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)

	if doc.Name == "" || len(doc.Data) == 0 {
		return p.remember(sess, entity.ExtractionResult{
			Status:  entity.StatusError,
			Message: "No file uploaded",
		})
	}

	format := constants.MapExtToFormat(filepath.Ext(doc.Name))
	p.logger.Info("processor.start", "req_id", rid, "name", doc.Name, "format", string(format), "bytes", len(doc.Data))

	acq, err := p.acquirer.Acquire(ctx, doc)
	if err != nil {
		p.logger.Error("processor.acquire.failed", "req_id", rid, "method", string(acq.Method), "error", err)
		return p.remember(sess, entity.ExtractionResult{
			Status:  entity.StatusError,
			Method:  acq.Method,
			Message: err.Error(),
		})
	}
	p.logger.Info("processor.acquire.ok", "req_id", rid, "method", string(acq.Method), "text_bytes", len(acq.Text))

	var out entity.ExtractionResult
	switch format {
	case constants.IMAGE, constants.PDF:
		out = entity.ExtractionResult{
			Status:         entity.StatusSuccess,
			Method:         acq.Method,
			RawText:        acq.Text,
			StructuredData: p.heuristics.Extract(acq.Text),
		}

	default:
		if sess == nil || sess.APIKey == "" {
			// conversion succeeded; AI extraction is skipped, not failed
			out = entity.ExtractionResult{
				Status:  entity.StatusWarning,
				Method:  acq.Method,
				RawText: acq.Text,
				Message: "API key not provided. Only markup conversion is available.",
			}
			break
		}
		rec, reply, err := p.llm.ExtractFields(ctx, sess.APIKey, acq.Text)
		if err != nil {
			p.logger.Error("processor.llm.failed", "req_id", rid, "error", err)
			out = entity.ExtractionResult{
				Status:  entity.StatusError,
				Method:  acq.Method,
				Message: err.Error(),
			}
			break
		}
		out = entity.ExtractionResult{
			Status:         entity.StatusSuccess,
			Method:         acq.Method,
			RawText:        acq.Text,
			StructuredData: rec,
			AIResponse:     reply,
		}
	}

	return p.remember(sess, out)
}

// Analyze runs the fraud/anomaly analyzer over an already-extracted record.
func (p *Processor) Analyze(inv *entity.InvoiceRecord, sess *Session) anomaly.Report {
	var window *anomaly.DateWindow
	if sess != nil {
		window = sess.Window
	}
	rep := p.analyzer.Analyze(inv, window)
	if sess != nil {
		sess.LastReport = &rep
	}
	return rep
}

// AnalyzeJSON accepts a pre-existing InvoiceRecord serialized as JSON,
// bypassing acquisition and extraction entirely.
func (p *Processor) AnalyzeJSON(data []byte, sess *Session) (anomaly.Report, error) {
	if err := llmextract.ValidateJSONAgainstSchema(llmextract.BuildInvoiceJSONSchema(), data); err != nil {
		return anomaly.Report{}, common.NewAppError("RECORD_INVALID", "invoice JSON does not match the record schema", common.ErrInvalidInput)
	}
	var rec entity.InvoiceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return anomaly.Report{}, common.NewAppError("RECORD_DECODE", "invalid invoice JSON", common.ErrInvalidInput)
	}
	return p.Analyze(&rec, sess), nil
}

func (p *Processor) remember(sess *Session, res entity.ExtractionResult) entity.ExtractionResult {
	if sess != nil {
		sess.LastResult = &res
	}
	return res
}
