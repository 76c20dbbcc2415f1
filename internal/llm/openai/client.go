package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/llm"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseDetails implements llm.DetailParser. The reply is returned as-is apart
// from trimming surrounding whitespace.
func (c *Client) ParseDetails(ctx context.Context, text string) (string, error) {
	start := time.Now()
	c.logger.Info("llm.parse.start", "model", c.cfg.Model, "text_len", len(text))

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildUserPrompt(text)},
		},
		MaxTokens: c.cfg.MaxTokens,
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("llm.parse.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	c.logger.Info("llm.parse.ok", "reply_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// ExtractContact implements llm.ContactExtractor. JSON mode is requested when
// the model supports it; otherwise the prompt alone asks for JSON. Either way
// the reply is normalized and then validated against the contact schema.
func (c *Client) ExtractContact(ctx context.Context, text string) (llm.Contact, []byte, error) {
	start := time.Now()
	jsonMode := SupportsJSONMode(c.cfg.Model)
	c.logger.Info("llm.extract.start", "model", c.cfg.Model, "json_mode", jsonMode, "text_len", len(text))

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildStrictUserPrompt(text)},
		},
		MaxTokens: c.cfg.MaxTokens,
	}
	if jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Contact{}, nil, err
	}
	rawContent := []byte(content)

	cleaned, _, err := llm.NormalizeContactJSON(rawContent, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed", "error", err, "content", content)
		return llm.Contact{}, rawContent, fmt.Errorf("%w: %v", llm.ErrInvalidReply, err)
	}

	schema := llm.BuildContactJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Contact{}, cleaned, err
	}

	var out llm.Contact
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return llm.Contact{}, cleaned, fmt.Errorf("%w: unmarshal contact: %v", llm.ErrInvalidReply, err)
	}

	c.logger.Info("llm.extract.ok",
		"name", out.Name,
		"company", out.Company,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

func (c *Client) complete(ctx context.Context, body chatRequest) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", fmt.Errorf("openai chat/completions: %w", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", llm.ErrNoChoices
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
