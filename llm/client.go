// Package llm provides a chat-completion client for OpenAI-compatible
// endpoints with retry on transient failures.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout allows for slow local inference servers.
const DefaultTimeout = 180 * time.Second

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines a completion request.
type Request struct {
	Messages []Message

	// Temperature controls randomness. nil uses the endpoint default.
	Temperature *float32

	// MaxTokens limits response length. 0 uses the endpoint default.
	MaxTokens int
}

// TokenUsage reports token consumption for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the completion result.
type Response struct {
	Content      string
	Model        string
	Usage        TokenUsage
	FinishReason string
	Attempts     int
}

// Client talks to one model on an OpenAI-compatible endpoint.
type Client struct {
	api          *openai.Client
	model        string
	systemPrompt string
	temperature  *float32
	maxTokens    int
	retryConfig  RetryConfig
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	systemPrompt string
	temperature  *float32
	maxTokens    int
	retryConfig  RetryConfig
	logger       *slog.Logger
}

// WithBaseURL points the client at a custom endpoint (e.g. a local
// inference server exposing /v1/chat/completions).
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithAPIKey sets the bearer key.
func WithAPIKey(key string) ClientOption {
	return func(o *clientOptions) {
		o.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithSystemPrompt prepends a system message to every Generate call.
func WithSystemPrompt(prompt string) ClientOption {
	return func(o *clientOptions) {
		o.systemPrompt = prompt
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(o *clientOptions) {
		o.temperature = &t
	}
}

// WithMaxTokens sets the default response length limit.
func WithMaxTokens(n int) ClientOption {
	return func(o *clientOptions) {
		o.maxTokens = n
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(o *clientOptions) {
		o.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient creates a client for model.
func NewClient(model string, opts ...ClientOption) *Client {
	o := clientOptions{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		retryConfig: DefaultRetryConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	cfg.HTTPClient = o.httpClient

	return &Client{
		api:          openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: o.systemPrompt,
		temperature:  o.temperature,
		maxTokens:    o.maxTokens,
		retryConfig:  o.retryConfig,
		logger:       o.logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user message and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var msgs []Message
	if c.systemPrompt != "" {
		msgs = append(msgs, Message{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt})
	}
	msgs = append(msgs, Message{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.Complete(ctx, Request{Messages: msgs})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Complete sends a completion request, retrying transient failures.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, NewFatalError(fmt.Errorf("at least one message is required"))
	}

	attempts := max(1, c.retryConfig.MaxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.doRequest(ctx, req)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}
		lastErr = err

		if IsFatal(err) {
			return nil, err
		}

		if attempt < attempts {
			backoff := c.retryConfig.Backoff(attempt)
			c.logger.Debug("LLM request failed, retrying",
				"model", c.model,
				"attempt", attempt,
				"max_attempts", attempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("model %s failed after %d attempts: %w", c.model, attempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	creq := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
	}
	if req.MaxTokens > 0 {
		creq.MaxTokens = req.MaxTokens
	}
	if t := req.Temperature; t != nil {
		creq.Temperature = *t
	} else if c.temperature != nil {
		creq.Temperature = *c.temperature
	}
	for _, m := range req.Messages {
		creq.Messages = append(creq.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	c.logger.Debug("Sending LLM request", "model", c.model, "messages", len(creq.Messages))

	out, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(out.Choices) == 0 {
		return nil, NewTransientError(errors.New("response has no choices"))
	}

	return &Response{
		Content:      out.Choices[0].Message.Content,
		Model:        out.Model,
		FinishReason: string(out.Choices[0].FinishReason),
		Usage: TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}
