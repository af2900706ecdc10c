package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupath/readiness/internal/llm/prompts"
	"github.com/edupath/readiness/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds everything the client needs; nothing is read from the
// environment at call time.
type Config struct {
	BaseURL        string
	APIKey         string
	Models         []string // ordered candidates, primary first
	AttemptTimeout time.Duration
	Temperature    float32
}

// Client wraps an OpenAI-compatible API client with an ordered
// model-fallback policy.
type Client struct {
	api *openai.Client
	cfg Config
}

// New creates a new LLM client.
func New(cfg Config) (*Client, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 60 * time.Second
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}, nil
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint check: %w", err)
	}
	return nil
}

// GenerateAssessment sends the normalized scores to the collaborator
// and returns its raw text reply. Each candidate model gets exactly one
// attempt bounded by its own timeout; when every candidate fails the
// last underlying error is surfaced as UpstreamUnavailable.
func (c *Client) GenerateAssessment(ctx context.Context, name string, scores map[string]int, index float64, tier model.Tier) (string, error) {
	userPrompt, err := prompts.BuildAssessPrompt(name, scores, index, tier)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	var lastErr error
	for _, modelName := range c.cfg.Models {
		raw, err := c.attempt(ctx, modelName, userPrompt)
		if err == nil {
			return raw, nil
		}
		slog.Warn("LLM attempt failed", "model", modelName, "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", &model.Error{
		Kind:    model.KindUpstreamUnavailable,
		Message: "all LLM candidates exhausted",
		Err:     lastErr,
	}
}

func (c *Client) attempt(ctx context.Context, modelName, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", modelName, "raw", raw)
	return raw, nil
}
