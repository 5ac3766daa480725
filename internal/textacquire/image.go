package textacquire

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

func (a *Acquirer) acquireImage(ctx context.Context, doc entity.RawDocument) (Result, error) {
	res := Result{Method: entity.MethodOCR}

	img, _, err := image.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return res, common.NewAppError("IMAGE_DECODE", fmt.Sprintf("error processing image %q", doc.Name), common.ErrDecode)
	}

	tmpDir, err := os.MkdirTemp("", "ia-ocr-*")
	if err != nil {
		return res, common.WrapError(err, "create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			a.logger.Warn("acquire.image.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	// Grayscale before OCR; tesseract copes better without color noise.
	page := filepath.Join(tmpDir, "page.png")
	if err := imaging.Save(imaging.Grayscale(img), page); err != nil {
		return res, common.WrapError(err, "write temp image")
	}

	txt, err := a.tesseract(ctx, page)
	if err != nil {
		return res, err
	}
	res.Text = txt
	return res, nil
}

func (a *Acquirer) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, path, "stdout", "-l", a.cfg.TesseractLang)
	if err != nil {
		return "", common.NewAppError("OCR_FAILED",
			fmt.Sprintf("tesseract: %v: %s", err, truncate(string(errb), 2048)), common.ErrDecode)
	}
	return string(out), nil
}
