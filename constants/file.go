package constants

import "strings"

// Format is the closed set of input kinds the processor dispatches on.
type Format string

const (
	IMAGE  Format = "IMAGE"
	PDF    Format = "PDF"
	MARKUP Format = "MARKUP"
)

// SupportedExtensions holds the extensions accepted at the input boundary.
// Anything else still routes to the generic MARKUP converter, which reports
// a missing-capability error if it cannot handle the format.
var SupportedExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "bmp": {}, "gif": {}, "tiff": {},
	"pdf": {},
	"ppt": {}, "pptx": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"txt": {}, "html": {}, "htm": {}, "json": {}, "xml": {}, "csv": {}, "epub": {}, "md": {},
}

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "bmp": {}, "gif": {}, "tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its handler variant.
// Unknown extensions fall through to MARKUP.
func MapExtToFormat(ext string) Format {
	ext = NormalizeExt(ext)
	if _, ok := imageExtensions[ext]; ok {
		return IMAGE
	}
	if ext == "pdf" {
		return PDF
	}
	return MARKUP
}
