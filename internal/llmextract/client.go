package llmextract

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Config for the hosted-model client.
type Config struct {
	BaseURL string        // default https://api.deepseek.com
	Model   string        // default "deepseek-chat"
	Timeout time.Duration // http client timeout
}

// Client implements FieldExtractor against an OpenAI-compatible
// chat-completion endpoint. One request per document, streaming disabled.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// ExtractFields sends the converted text to the model and parses the reply.
// The credential comes from the caller; a fresh transport client is built per
// call so the key is never retained.
func (c *Client) ExtractFields(ctx context.Context, apiKey, text string) (*entity.InvoiceRecord, string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	if apiKey == "" {
		return nil, "", common.NewAppError("LLM_NO_CREDENTIAL", "API key not provided", common.ErrRemoteCall)
	}

	cc := openai.DefaultConfig(apiKey)
	cc.BaseURL = c.cfg.BaseURL
	cc.HTTPClient = &http.Client{Timeout: c.cfg.Timeout}
	api := openai.NewClientWithConfig(cc)

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:  c.cfg.Model,
		Stream: false,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(text)},
		},
	})
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, "", common.NewAppError("LLM_REQUEST", "chat completion failed", common.ErrRemoteCall)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid)
		return nil, "", common.NewAppError("LLM_EMPTY", "no choices in model response", common.ErrRemoteCall)
	}

	content := resp.Choices[0].Message.Content
	rec := ParseReply(content, c.logger)

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"invoice_number", rec.InvoiceNumber,
		"supplier", rec.SupplierName,
		"line_items", len(rec.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, content, nil
}
