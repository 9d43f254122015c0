package llm

import (
	"context"
	"fmt"
	"time"

	"tradepilot/pkg/logger"
	"tradepilot/pkg/ratelimit"

	"golang.org/x/time/rate"
)

// limitedClient serialises calls through a request limiter and a token budget.
type limitedClient struct {
	inner          Client
	log            *logger.Logger
	requestLimiter *rate.Limiter
	tokenLimiter   *ratelimit.TokenLimiter
	maxTokens      int
	timeout        time.Duration
}

func NewLimitedClient(inner Client, log *logger.Logger, maxRequestPerMinute, maxTokenPerMinute int, timeout time.Duration) Client {
	if maxRequestPerMinute <= 0 {
		maxRequestPerMinute = 60
	}
	if maxTokenPerMinute <= 0 {
		maxTokenPerMinute = 100000
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return &limitedClient{
		inner:          inner,
		log:            log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(maxTokenPerMinute),
		maxTokens:      maxTokenPerMinute,
		timeout:        timeout,
	}
}

func (c *limitedClient) Model() string {
	return c.inner.Model()
}

func (c *limitedClient) Complete(ctx context.Context, req Request) (*Response, error) {
	estimated := EstimateTokens(req.System+req.Prompt) + req.MaxTokens

	c.log.DebugContext(ctx, "LLM token estimate",
		logger.IntField("estimated_tokens", estimated),
		logger.IntField("remaining", c.tokenLimiter.GetRemaining()),
	)
	if estimated > c.maxTokens/2 {
		c.log.WarnContext(ctx, "Token estimate exceeds 50% of the limit", logger.IntField("estimated_tokens", estimated))
	}

	if err := c.tokenLimiter.Wait(ctx, estimated); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		c.log.ErrorContext(ctx, "LLM request failed",
			logger.StringField("model", c.inner.Model()),
			logger.DurationField("elapsed", time.Since(start)),
			logger.ErrorField(err),
		)
		return nil, err
	}

	c.log.InfoContext(ctx, "LLM request completed",
		logger.StringField("model", c.inner.Model()),
		logger.IntField("prompt_tokens", resp.PromptTokens),
		logger.IntField("completion_tokens", resp.CompletionTokens),
		logger.DurationField("elapsed", time.Since(start)),
	)
	return resp, nil
}

// EstimateTokens approximates token usage at four characters per token.
func EstimateTokens(text string) int {
	return len(text)/4 + 1
}
