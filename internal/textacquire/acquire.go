package textacquire

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for image PDFs, default 300
}

// Result is the text produced for one document plus the method that won.
type Result struct {
	Text   string
	Method entity.Method
}

// Acquirer turns an uploaded file into plain text, picking a strategy by
// file-type dispatch: OCR for images, text layer (or OCR fallback) for PDFs,
// markup conversion for everything else.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Acquirer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Acquire produces plain text for the document. On failure the returned
// Result still carries the method tag so callers can surface a tagged error.
func (a *Acquirer) Acquire(ctx context.Context, doc entity.RawDocument) (Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(doc.Name))
	format := constants.MapExtToFormat(ext)
	a.logger.Debug("acquire.start", "name", doc.Name, "ext", ext, "format", string(format), "bytes", len(doc.Data))

	switch format {
	case constants.IMAGE:
		return a.acquireImage(ctx, doc)
	case constants.PDF:
		return a.acquirePDF(ctx, doc)
	default:
		return a.acquireMarkup(ctx, doc, ext)
	}
}
