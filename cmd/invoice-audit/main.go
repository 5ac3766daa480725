package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/invoice-auditor/internal/anomaly"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/export"
	"github.com/joseph-ayodele/invoice-auditor/internal/heuristics"
	"github.com/joseph-ayodele/invoice-auditor/internal/llmextract"
	"github.com/joseph-ayodele/invoice-auditor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-auditor/internal/textacquire"
)

func main() {
	fs := ff.NewFlagSet("invoice-audit")
	var (
		filePath      = fs.StringLong("file", "", "document to process (png, jpg, pdf, docx, xlsx, html, ...)")
		recordPath    = fs.StringLong("record", "", "analyze a pre-extracted invoice record (JSON), skipping extraction")
		apiKey        = fs.StringLong("api-key", "", "hosted model API key for markup documents (or INVOICE_AUDIT_API_KEY)")
		contractStart = fs.StringLong("contract-start", "", "contract window start, YYYY-MM-DD")
		contractEnd   = fs.StringLong("contract-end", "", "contract window end, YYYY-MM-DD")
		runAnalyzer   = fs.BoolLong("analyze", "run the fraud/anomaly analyzer on the extracted record")
		textOut       = fs.StringLong("text-out", "", "write the raw extracted text to this path")
		xlsxOut       = fs.StringLong("xlsx-out", "", "write an XLSX audit report to this path")
		verbose       = fs.BoolLong("verbose", "enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_AUDIT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *filePath == "" && *recordPath == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: one of --file or --record is required")
		os.Exit(2)
	}

	sess := pipeline.NewSession()
	sess.APIKey = *apiKey
	defer sess.Clear()

	if *contractStart != "" && *contractEnd != "" {
		start, err := time.Parse("2006-01-02", *contractStart)
		if err != nil {
			logger.Error("invalid --contract-start", "value", *contractStart, "error", err)
			os.Exit(2)
		}
		end, err := time.Parse("2006-01-02", *contractEnd)
		if err != nil {
			logger.Error("invalid --contract-end", "value", *contractEnd, "error", err)
			os.Exit(2)
		}
		sess.Window = &anomaly.DateWindow{Start: start, End: end}
	}

	proc := pipeline.NewProcessor(
		logger,
		textacquire.NewAcquirer(textacquire.Config{
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			DPI:           cfg.OCR.DPI,
		}, logger),
		heuristics.NewExtractor(logger),
		llmextract.NewClient(llmextract.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger),
		anomaly.NewAnalyzer(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *recordPath != "" {
		data, err := os.ReadFile(*recordPath)
		if err != nil {
			logger.Error("read record", "path", *recordPath, "error", err)
			os.Exit(1)
		}
		rep, err := proc.AnalyzeJSON(data, sess)
		if err != nil {
			logger.Error("analyze record", "error", err)
			os.Exit(1)
		}
		printJSON(rep)
		writeReport(logger, *xlsxOut, rep)
		return
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		logger.Error("read file", "path", *filePath, "error", err)
		os.Exit(1)
	}

	res := proc.Process(ctx, entity.RawDocument{Name: filepath.Base(*filePath), Data: data}, sess)
	if *textOut != "" && res.RawText != "" {
		if err := os.WriteFile(*textOut, []byte(res.RawText), 0o644); err != nil {
			logger.Error("write raw text", "path", *textOut, "error", err)
		}
	}
	printJSON(res)
	if res.Status == entity.StatusError {
		os.Exit(1)
	}

	if *runAnalyzer && res.StructuredData != nil {
		rep := proc.Analyze(res.StructuredData, sess)
		printJSON(rep)
		writeReport(logger, *xlsxOut, rep)
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}

func writeReport(logger *slog.Logger, path string, rep anomaly.Report) {
	if path == "" {
		return
	}
	b, err := export.WriteReportXLSX(rep)
	if err != nil {
		logger.Error("build xlsx report", "error", err)
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		logger.Error("write xlsx report", "path", path, "error", err)
	}
}
