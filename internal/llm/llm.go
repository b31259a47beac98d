// Package llm sends prompts to an OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/taskwise/taskwise/internal/metrics"
)

// ErrGenerationFailed wraps every failure to obtain a usable reply.
var ErrGenerationFailed = errors.New("generation failed")

const finishReasonContentFilter = "content_filter"

// Generator turns a prompt into the model's raw text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds gateway settings.
type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	MaxOutputTokens int
	// Timeout bounds a single call. Zero leaves the caller's context alone.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a Generator backed by openai-go.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewClient creates a Client. Retries are disabled; a failed call surfaces immediately.
func NewClient(cfg Config, logger *slog.Logger, recorder metrics.Recorder) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}

	return &Client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
		timeout:   cfg.Timeout,
		logger:    logger.With("component", "llm"),
		metrics:   recorder,
	}
}

// Generate sends prompt as a single user message and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ObserveGeneration(elapsed, metrics.OutcomeError)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("generation request rejected",
				"status", apiErr.StatusCode,
				"model", c.model,
				"duration_ms", elapsed.Milliseconds(),
			)
			return "", fmt.Errorf("%w: status %d", ErrGenerationFailed, apiErr.StatusCode)
		}
		c.logger.Error("generation request failed",
			"error", err,
			"model", c.model,
			"duration_ms", elapsed.Milliseconds(),
		)
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(completion.Choices) == 0 {
		c.metrics.ObserveGeneration(elapsed, metrics.OutcomeEmpty)
		return "", fmt.Errorf("%w: no choices in reply", ErrGenerationFailed)
	}

	choice := completion.Choices[0]
	if choice.FinishReason == finishReasonContentFilter {
		c.metrics.ObserveGeneration(elapsed, metrics.OutcomeBlocked)
		c.logger.Warn("generation blocked by content filter", "model", c.model)
		return "", fmt.Errorf("%w: reply blocked", ErrGenerationFailed)
	}

	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		c.metrics.ObserveGeneration(elapsed, metrics.OutcomeEmpty)
		return "", fmt.Errorf("%w: empty reply", ErrGenerationFailed)
	}

	c.metrics.ObserveGeneration(elapsed, metrics.OutcomeSuccess)
	c.logger.Debug("generation complete",
		"model", c.model,
		"duration_ms", elapsed.Milliseconds(),
		"finish_reason", choice.FinishReason,
	)

	return text, nil
}
