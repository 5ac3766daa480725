package textacquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// acquirePDF first tries the text layer; a whitespace-only result means an
// image-based PDF, so the first page is rasterized and sent through OCR.
func (a *Acquirer) acquirePDF(ctx context.Context, doc entity.RawDocument) (Result, error) {
	pdf, err := fitz.NewFromMemory(doc.Data)
	if err != nil {
		return Result{Method: entity.MethodTextExtraction},
			common.NewAppError("PDF_OPEN", fmt.Sprintf("error processing PDF %q", doc.Name), common.ErrDecode)
	}
	defer func() {
		if cerr := pdf.Close(); cerr != nil {
			a.logger.Warn("acquire.pdf.close_failed", "error", cerr)
		}
	}()

	var b strings.Builder
	for i := 0; i < pdf.NumPage(); i++ {
		txt, terr := pdf.Text(i)
		if terr != nil {
			return Result{Method: entity.MethodTextExtraction},
				common.NewAppError("PDF_TEXT", fmt.Sprintf("error reading page %d of %q", i+1, doc.Name), common.ErrDecode)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}

	if strings.TrimSpace(b.String()) != "" {
		return Result{Text: b.String(), Method: entity.MethodTextExtraction}, nil
	}

	// No text layer: rasterize the first page and OCR it.
	res := Result{Method: entity.MethodOCR}
	img, ierr := pdf.ImageDPI(0, float64(a.cfg.DPI))
	if ierr != nil {
		return res, common.NewAppError("PDF_RENDER", fmt.Sprintf("error rendering %q", doc.Name), common.ErrDecode)
	}

	tmpDir, err := os.MkdirTemp("", "ia-pdf-*")
	if err != nil {
		return res, common.WrapError(err, "create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			a.logger.Warn("acquire.pdf.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	page := filepath.Join(tmpDir, "page-1.png")
	if err := imaging.Save(img, page); err != nil {
		return res, common.WrapError(err, "write rendered page")
	}

	txt, err := a.tesseract(ctx, page)
	if err != nil {
		return res, err
	}
	res.Text = txt
	return res, nil
}
