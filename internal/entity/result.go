package entity

// Status of a processing call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Method tags which text acquisition path produced the result.
type Method string

const (
	MethodOCR              Method = "ocr"
	MethodTextExtraction   Method = "text_extraction"
	MethodMarkupConversion Method = "markup_conversion"
)

// RawDocument is one uploaded file: opaque bytes plus the declared name,
// whose extension drives format dispatch. Owned by the caller for the
// duration of a single processing call.
type RawDocument struct {
	Name string
	Data []byte
}

// ExtractionResult is the outcome of one processing call.
//
// Invariants: StatusError implies StructuredData is nil; StatusSuccess
// implies RawText was produced (possibly empty).
type ExtractionResult struct {
	Status         Status         `json:"status"`
	Method         Method         `json:"method,omitempty"`
	Message        string         `json:"message,omitempty"`
	RawText        string         `json:"raw_text,omitempty"`
	StructuredData *InvoiceRecord `json:"structured_data,omitempty"`
	AIResponse     string         `json:"ai_response,omitempty"`
}
