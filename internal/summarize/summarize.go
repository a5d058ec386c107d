// Package summarize condenses a transcript through an LLM chat API. Models
// named claude* go to the Anthropic messages API; everything else goes to the
// OpenAI chat completions API.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/httpx"
)

const systemPrompt = "You are a helpful assistant that summarizes video transcripts. " +
	"Provide a clear, structured summary that captures the key points, main arguments, and important details. " +
	"Use bullet points for key takeaways."

const (
	anthropicEnv     = "ANTHROPIC_API_KEY"
	openaiEnv        = "OPENAI_API_KEY"
	anthropicBase    = "https://api.anthropic.com"
	openaiBase       = "https://api.openai.com"
	anthropicPath    = "/v1/messages"
	openaiPath       = "/v1/chat/completions"
	anthropicVersion = "2023-06-01"
	maxTokens        = 4096
)

// Sentinel errors for the summarization path.
var (
	ErrMissingAnthropicKey = errors.New("ANTHROPIC_API_KEY environment variable not set (required for Claude summarization)")
	ErrMissingOpenAIKey    = errors.New("OPENAI_API_KEY environment variable not set (required for OpenAI summarization)")
	ErrUnexpectedResponse  = errors.New("unexpected summarization response format")
)

// APIError indicates a non-2xx response from a summarization API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s api returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Client talks to the summarization APIs.
type Client struct {
	httpClient    *httpx.Client
	anthropicBase string
	openaiBase    string
	anthropicKey  string
	openaiKey     string
	logger        *slog.Logger
}

// Option customizes the summarization client.
type Option func(*Client)

// WithAnthropicBaseURL overrides the Anthropic API base (used by tests).
func WithAnthropicBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.anthropicBase = base
		}
	}
}

// WithOpenAIBaseURL overrides the OpenAI API base (used by tests).
func WithOpenAIBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.openaiBase = base
		}
	}
}

// WithAnthropicKey sets the Anthropic credential explicitly instead of
// reading the environment.
func WithAnthropicKey(key string) Option {
	return func(c *Client) {
		c.anthropicKey = key
	}
}

// WithOpenAIKey sets the OpenAI credential explicitly instead of reading
// the environment.
func WithOpenAIKey(key string) Option {
	return func(c *Client) {
		c.openaiKey = key
	}
}

// WithLogger sets the logger used for summarization progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new summarization client.
func NewClient(httpClient *httpx.Client, opts ...Option) *Client {
	c := &Client{
		httpClient:    httpClient,
		anthropicBase: anthropicBase,
		openaiBase:    openaiBase,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize condenses the transcript with the given model and returns the
// summary text.
func (c *Client) Summarize(ctx context.Context, transcript *ytx.Transcript, model string) (string, error) {
	texts := make([]string, len(transcript.Segments))
	for i, segment := range transcript.Segments {
		texts[i] = segment.Text
	}
	transcriptText := strings.Join(texts, " ")
	userMessage := fmt.Sprintf("Summarize this transcript from the video %q:\n\n%s", transcript.Title, transcriptText)

	if isAnthropicModel(model) {
		return c.summarizeAnthropic(ctx, userMessage, model)
	}
	return c.summarizeOpenAI(ctx, userMessage, model)
}

func isAnthropicModel(model string) bool {
	return strings.HasPrefix(model, "claude")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) summarizeAnthropic(ctx context.Context, userMessage, model string) (string, error) {
	apiKey := c.anthropicKey
	if apiKey == "" {
		apiKey = os.Getenv(anthropicEnv)
	}
	if apiKey == "" {
		return "", ErrMissingAnthropicKey
	}

	c.logger.Debug("summarizing via anthropic api", "model", model)

	payload, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []chatMessage{{Role: "user", Content: userMessage}},
	})
	if err != nil {
		return "", fmt.Errorf("encode summarization request: %w", err)
	}

	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
		"Content-Type":      "application/json",
	}
	resp, err := c.httpClient.Do(ctx, http.MethodPost, c.anthropicBase+anthropicPath, bytes.NewReader(payload), headers)
	if err != nil {
		return "", wrapAPIError("anthropic", err)
	}

	return extractAnthropicText(resp.Body)
}

func extractAnthropicText(data []byte) (string, error) {
	var decoded anthropicResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	var b strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrUnexpectedResponse
	}
	return b.String(), nil
}

type openaiRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) summarizeOpenAI(ctx context.Context, userMessage, model string) (string, error) {
	apiKey := c.openaiKey
	if apiKey == "" {
		apiKey = os.Getenv(openaiEnv)
	}
	if apiKey == "" {
		return "", ErrMissingOpenAIKey
	}

	c.logger.Debug("summarizing via openai api", "model", model)

	payload, err := json.Marshal(openaiRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode summarization request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
		"Content-Type":  "application/json",
	}
	resp, err := c.httpClient.Do(ctx, http.MethodPost, c.openaiBase+openaiPath, bytes.NewReader(payload), headers)
	if err != nil {
		return "", wrapAPIError("openai", err)
	}

	return extractOpenAIText(resp.Body)
}

func extractOpenAIText(data []byte) (string, error) {
	var decoded openaiResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrUnexpectedResponse
	}
	return decoded.Choices[0].Message.Content, nil
}

func wrapAPIError(provider string, err error) error {
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{Provider: provider, StatusCode: httpErr.StatusCode, Body: string(httpErr.Body)}
	}
	return err
}
