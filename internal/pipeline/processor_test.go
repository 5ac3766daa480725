package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/textacquire"
)

// stubAcquirer returns canned text without touching any real decoder.
type stubAcquirer struct {
	res textacquire.Result
	err error
}

func (s stubAcquirer) Acquire(context.Context, entity.RawDocument) (textacquire.Result, error) {
	return s.res, s.err
}

// stubLLM hands back a fixed record.
type stubLLM struct {
	rec   *entity.InvoiceRecord
	reply string
	err   error
}

func (s stubLLM) ExtractFields(context.Context, string, string) (*entity.InvoiceRecord, string, error) {
	return s.rec, s.reply, s.err
}

func TestProcessNoFile(t *testing.T) {
	p := NewProcessor(nil, stubAcquirer{}, nil, nil, nil)
	sess := NewSession()

	res := p.Process(context.Background(), entity.RawDocument{}, sess)
	require.Equal(t, entity.StatusError, res.Status)
	require.Equal(t, "No file uploaded", res.Message)
	require.NotNil(t, sess.LastResult)
	require.Equal(t, res, *sess.LastResult)
}

func TestProcessImageRunsHeuristics(t *testing.T) {
	acq := stubAcquirer{res: textacquire.Result{
		Text:   "Invoice no: 123\nSupplier:\nAcme GmbH\n",
		Method: entity.MethodOCR,
	}}
	p := NewProcessor(nil, acq, nil, nil, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "scan.png", Data: []byte{1}}, NewSession())
	require.Equal(t, entity.StatusSuccess, res.Status)
	require.Equal(t, entity.MethodOCR, res.Method)
	require.NotNil(t, res.StructuredData)
	require.Equal(t, "123", res.StructuredData.InvoiceNumber)
	require.Equal(t, "Acme GmbH", res.StructuredData.SupplierName)
}

func TestProcessAcquireFailure(t *testing.T) {
	acq := stubAcquirer{
		res: textacquire.Result{Method: entity.MethodOCR},
		err: errors.New("IMAGE_DECODE: error processing image"),
	}
	p := NewProcessor(nil, acq, nil, nil, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "scan.png", Data: []byte{1}}, NewSession())
	require.Equal(t, entity.StatusError, res.Status)
	require.Equal(t, entity.MethodOCR, res.Method, "errors keep the method tag")
	require.Contains(t, res.Message, "IMAGE_DECODE")
	require.Nil(t, res.StructuredData)
}

func TestProcessMarkupWithoutAPIKey(t *testing.T) {
	acq := stubAcquirer{res: textacquire.Result{Text: "# converted", Method: entity.MethodMarkupConversion}}
	p := NewProcessor(nil, acq, nil, stubLLM{}, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "invoice.docx", Data: []byte{1}}, NewSession())
	require.Equal(t, entity.StatusWarning, res.Status)
	require.Equal(t, "API key not provided. Only markup conversion is available.", res.Message)
	require.Equal(t, "# converted", res.RawText)
	require.Nil(t, res.StructuredData)
}

func TestProcessMarkupWithAPIKey(t *testing.T) {
	rec := &entity.InvoiceRecord{InvoiceNumber: "8001"}
	acq := stubAcquirer{res: textacquire.Result{Text: "# converted", Method: entity.MethodMarkupConversion}}
	p := NewProcessor(nil, acq, nil, stubLLM{rec: rec, reply: `{"invoice_number": "8001"}`}, nil)

	sess := NewSession()
	sess.APIKey = "key"
	res := p.Process(context.Background(), entity.RawDocument{Name: "invoice.docx", Data: []byte{1}}, sess)

	require.Equal(t, entity.StatusSuccess, res.Status)
	require.Equal(t, entity.MethodMarkupConversion, res.Method)
	require.Same(t, rec, res.StructuredData)
	require.Equal(t, `{"invoice_number": "8001"}`, res.AIResponse)
}

func TestProcessLLMFailure(t *testing.T) {
	acq := stubAcquirer{res: textacquire.Result{Text: "# converted", Method: entity.MethodMarkupConversion}}
	p := NewProcessor(nil, acq, nil, stubLLM{err: errors.New("LLM_REQUEST: chat completion failed")}, nil)

	sess := NewSession()
	sess.APIKey = "key"
	res := p.Process(context.Background(), entity.RawDocument{Name: "invoice.docx", Data: []byte{1}}, sess)

	require.Equal(t, entity.StatusError, res.Status)
	require.Contains(t, res.Message, "LLM_REQUEST")
}

func TestAnalyzeJSONValidRecord(t *testing.T) {
	p := NewProcessor(nil, stubAcquirer{}, nil, nil, nil)
	sess := NewSession()

	rep, err := p.AnalyzeJSON([]byte(`{"invoice_number": "1"}`), sess)
	require.NoError(t, err)
	require.Equal(t, entity.StatusWarning, rep.Status, "incomplete records come back as warnings")
	require.Contains(t, rep.Message, "Missing required fields")
	require.NotNil(t, sess.LastReport)
	require.Equal(t, rep, *sess.LastReport)
}

func TestAnalyzeJSONSchemaMismatch(t *testing.T) {
	p := NewProcessor(nil, stubAcquirer{}, nil, nil, nil)

	_, err := p.AnalyzeJSON([]byte(`{"total_amount": "lots"}`), NewSession())
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestSessionClear(t *testing.T) {
	sess := NewSession()
	sess.APIKey = "secret"
	sess.LastResult = &entity.ExtractionResult{}

	sess.Clear()
	require.Empty(t, sess.APIKey)
	require.Nil(t, sess.LastResult)
	require.Nil(t, sess.LastReport)
}
