// Package gemini relays prompts to the Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/naas/internal/logging"
	"github.com/aretw0/naas/pkg/domain"
	"google.golang.org/genai"
)

// Generation defaults.
const (
	DefaultModel           = "gemini-1.5-flash"
	DefaultTemperature     = 0.7
	DefaultTopK            = 40
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 200
)

// Config holds the upstream credentials and generation parameters.
type Config struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32

	// BaseURL overrides the API endpoint, for proxies and tests.
	BaseURL string
}

// DefaultConfig returns the generation parameters of the hosted service.
func DefaultConfig() Config {
	return Config{
		Model:           DefaultModel,
		Temperature:     DefaultTemperature,
		TopK:            DefaultTopK,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Client implements ports.Relay.
type Client struct {
	models     *genai.Models
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the transport used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a relay client. Without an API key the client is still usable
// but every Ask fails with domain.ErrRelayUnconfigured.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c := &Client{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.models = gc.Models
	return c, nil
}

// Configured reports whether an API key was provided.
func (c *Client) Configured() bool {
	return c.models != nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Ask sends prompt as a single user turn and returns the raw payload.
// Upstream failures come back as *domain.RelayError.
func (c *Client) Ask(ctx context.Context, prompt string) (*domain.Payload, error) {
	if c.models == nil {
		return nil, domain.ErrRelayUnconfigured
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), c.generationConfig())
	if err != nil {
		if relayErr := asRelayError(err); relayErr != nil {
			c.logger.Warn("Gemini returned an error", "status", relayErr.Status, "reason", relayErr.Reason, "duration", time.Since(start))
			return nil, relayErr
		}
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	c.logger.Debug("Gemini responded", "model", c.cfg.Model, "duration", time.Since(start))

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini response: %w", err)
	}
	return domain.DecodePayload(raw)
}

func (c *Client) generationConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: c.cfg.MaxOutputTokens}
	if c.cfg.Temperature > 0 {
		cfg.Temperature = genai.Ptr(c.cfg.Temperature)
	}
	if c.cfg.TopK > 0 {
		cfg.TopK = genai.Ptr(c.cfg.TopK)
	}
	if c.cfg.TopP > 0 {
		cfg.TopP = genai.Ptr(c.cfg.TopP)
	}
	return cfg
}

func asRelayError(err error) *domain.RelayError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr)
	}
	return nil
}

func fromAPIError(e genai.APIError) *domain.RelayError {
	status := e.Code
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &domain.RelayError{Status: status, Code: e.Code, Message: e.Message, Reason: e.Status}
}
