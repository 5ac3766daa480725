package textacquire

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// acquireMarkup converts non-image, non-PDF inputs to a plain markdown-ish
// text representation. Formats with no converter report a missing-capability
// error naming the extension.
func (a *Acquirer) acquireMarkup(_ context.Context, doc entity.RawDocument, ext string) (Result, error) {
	res := Result{Method: entity.MethodMarkupConversion}

	text, err := convertMarkup(doc.Data, ext)
	if err != nil {
		return res, err
	}
	res.Text = text
	return res, nil
}

func convertMarkup(data []byte, ext string) (string, error) {
	switch ext {
	case "txt", "md", "xml":
		return string(data), nil
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return "", common.NewAppError("MARKUP_JSON", "invalid JSON document", common.ErrDecode)
		}
		return buf.String(), nil
	case "csv":
		return csvToMarkdown(data)
	case "html", "htm":
		return htmlToText(data), nil
	case "epub":
		return epubToText(data)
	case "xlsx":
		return xlsxToMarkdown(data)
	case "docx":
		return zipXMLText(data, "word/document.xml")
	case "pptx":
		return pptxToText(data)
	default:
		// doc, ppt, xls and anything unknown: legacy binary formats we have
		// no reader for.
		return "", common.NewAppError("MARKUP_UNSUPPORTED",
			fmt.Sprintf("no converter available for %q files", ext), common.ErrMissingCapability)
	}
}

func csvToMarkdown(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", common.NewAppError("MARKUP_CSV", "invalid CSV document", common.ErrDecode)
	}
	return rowsToMarkdownTable(rows), nil
}

func rowsToMarkdownTable(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", len(row)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// htmlToText walks the token stream and keeps visible text, one line per
// block-level element, skipping script and style bodies.
func htmlToText(data []byte) string {
	z := html.NewTokenizer(bytes.NewReader(data))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if n := string(name); n == "script" || n == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch n := string(name); n {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "tr", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table":
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if txt := strings.TrimSpace(string(z.Text())); txt != "" {
				b.WriteString(txt)
				b.WriteString(" ")
			}
		}
	}
}

func epubToText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.NewAppError("MARKUP_EPUB", "invalid EPUB container", common.ErrDecode)
	}
	var names []string
	byName := map[string]*zip.File{}
	for _, f := range zr.File {
		n := strings.ToLower(f.Name)
		if strings.HasSuffix(n, ".html") || strings.HasSuffix(n, ".xhtml") || strings.HasSuffix(n, ".htm") {
			names = append(names, f.Name)
			byName[f.Name] = f
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		rc, err := byName[n].Open()
		if err != nil {
			continue
		}
		chapter, _ := io.ReadAll(rc)
		_ = rc.Close()
		if txt := htmlToText(chapter); txt != "" {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(txt)
		}
	}
	return b.String(), nil
}

func xlsxToMarkdown(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", common.NewAppError("MARKUP_XLSX", "invalid XLSX workbook", common.ErrDecode)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## ")
		b.WriteString(sheet)
		b.WriteString("\n\n")
		b.WriteString(rowsToMarkdownTable(rows))
	}
	return b.String(), nil
}

// zipXMLText extracts the character data of <t>-style text runs from one XML
// part of an OOXML archive, breaking lines at paragraph ends.
func zipXMLText(data []byte, part string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.NewAppError("MARKUP_OOXML", "invalid document archive", common.ErrDecode)
	}
	for _, f := range zr.File {
		if f.Name == part {
			rc, err := f.Open()
			if err != nil {
				return "", common.WrapError(err, "open "+part)
			}
			defer func() { _ = rc.Close() }()
			return wordMLText(rc), nil
		}
	}
	return "", common.NewAppError("MARKUP_OOXML", "document archive missing "+part, common.ErrDecode)
}

// wordMLText keeps character data inside <w:t>/<a:t> runs and ends a line at
// each closing paragraph element.
func wordMLText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func pptxToText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.NewAppError("MARKUP_OOXML", "invalid presentation archive", common.ErrDecode)
	}
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		txt, err := zipXMLText(data, n)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}
