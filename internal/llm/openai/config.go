package openai

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Config for the OpenAI client.
type Config struct {
	APIKey    string        // required; resolved by the caller
	BaseURL   string        // default https://api.openai.com/v1
	Model     string        // default gpt-4
	MaxTokens int           // default 200
	Timeout   time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = constants.DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Models predating JSON mode reject response_format with a 400.
var noJSONMode = map[string]struct{}{
	"gpt-4":                  {},
	"gpt-4-0314":             {},
	"gpt-4-0613":             {},
	"gpt-4-32k":              {},
	"gpt-4-32k-0314":         {},
	"gpt-4-32k-0613":         {},
	"gpt-3.5-turbo-0301":     {},
	"gpt-3.5-turbo-0613":     {},
	"gpt-3.5-turbo-16k":      {},
	"gpt-3.5-turbo-16k-0613": {},
}

// SupportsJSONMode reports whether model accepts response_format json_object.
func SupportsJSONMode(model string) bool {
	_, legacy := noJSONMode[strings.ToLower(strings.TrimSpace(model))]
	return !legacy
}
