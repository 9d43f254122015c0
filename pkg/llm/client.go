// Package llm wraps the chat-completion providers behind one small interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/pkg/logger"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var (
	ErrEmptyResponse   = errors.New("empty response from model")
	ErrNotConfigured   = errors.New("llm provider not configured")
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Request is a single system+user completion.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// NewClient builds the configured provider wrapped with request/token limiters.
func NewClient(ctx context.Context, cfg config.LLM, log *logger.Logger) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	var (
		inner Client
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		inner = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case ProviderGemini:
		inner, err = NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case ProviderAnthropic:
		inner = NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return NewLimitedClient(inner, log, cfg.MaxRequestPerMinute, cfg.MaxTokenPerMinute, timeout), nil
}
