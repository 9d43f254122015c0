package repository

import (
	"context"
	"fmt"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/pkg/llm"
	"tradepilot/pkg/logger"
)

// AIRepository returns the model's raw parsed replies. Callers validate them
// and decide on fallbacks.
type AIRepository interface {
	EstimateValuation(ctx context.Context, input dto.ValuationInput) (*dto.ValuationResult, error)
	ResearchMarket(ctx context.Context, input dto.MarketResearchInput) (*dto.MarketResearch, error)
	AnalyzeListings(ctx context.Context, input dto.ListingAnalysisInput) (*dto.ListingAnalysis, error)
	SummarizeDeal(ctx context.Context, input dto.DealSummaryInput) (string, error)
	DraftMessage(ctx context.Context, input dto.MessageTemplateInput) (string, error)
	Model() string
}

type aiRepository struct {
	client llm.Client
	logger *logger.Logger
}

// NewAIRepository wraps client. A nil client makes every call fail with
// llm.ErrNotConfigured.
func NewAIRepository(client llm.Client, log *logger.Logger) AIRepository {
	return &aiRepository{client: client, logger: log}
}

func (r *aiRepository) Model() string {
	if r.client == nil {
		return ""
	}
	return r.client.Model()
}

func (r *aiRepository) complete(ctx context.Context, req llm.Request) (string, error) {
	if r.client == nil {
		return "", llm.ErrNotConfigured
	}
	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func completeJSON[T any](ctx context.Context, r *aiRepository, req llm.Request, operation string) (*T, error) {
	req.JSON = true
	content, err := r.complete(ctx, req)
	if err != nil {
		r.logger.WarnContext(ctx, "AI request failed", logger.StringField("operation", operation), logger.ErrorField(err))
		return nil, fmt.Errorf("failed to %s: %w", operation, err)
	}

	result, err := llm.ParseJSON[T](content)
	if err != nil {
		r.logger.WarnContext(ctx, "AI reply is not valid JSON",
			logger.StringField("operation", operation),
			logger.StringField("reply", truncateReply(content)),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to parse %s reply: %w", operation, err)
	}
	return &result, nil
}

func (r *aiRepository) EstimateValuation(ctx context.Context, input dto.ValuationInput) (*dto.ValuationResult, error) {
	return completeJSON[dto.ValuationResult](ctx, r, llm.Request{
		System:      systemPromptValuation,
		Prompt:      promptValuation(input),
		Temperature: 0.3,
		MaxTokens:   1000,
	}, "estimate valuation")
}

func (r *aiRepository) ResearchMarket(ctx context.Context, input dto.MarketResearchInput) (*dto.MarketResearch, error) {
	return completeJSON[dto.MarketResearch](ctx, r, llm.Request{
		System:      systemPromptResearch,
		Prompt:      promptMarketResearch(input),
		Temperature: 0.4,
		MaxTokens:   2000,
	}, "research market")
}

func (r *aiRepository) AnalyzeListings(ctx context.Context, input dto.ListingAnalysisInput) (*dto.ListingAnalysis, error) {
	return completeJSON[dto.ListingAnalysis](ctx, r, llm.Request{
		System:      systemPromptListings,
		Prompt:      promptListingAnalysis(input),
		Temperature: 0.3,
		MaxTokens:   1500,
	}, "analyze listings")
}

func (r *aiRepository) SummarizeDeal(ctx context.Context, input dto.DealSummaryInput) (string, error) {
	content, err := r.complete(ctx, llm.Request{
		System:      systemPromptSummary,
		Prompt:      promptDealSummary(input),
		Temperature: 0.5,
		MaxTokens:   500,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "AI deal summary failed", logger.ErrorField(err))
		return "", fmt.Errorf("failed to summarize deal: %w", err)
	}
	return strings.TrimSpace(content), nil
}

func (r *aiRepository) DraftMessage(ctx context.Context, input dto.MessageTemplateInput) (string, error) {
	content, err := r.complete(ctx, llm.Request{
		System:      systemPromptMessage,
		Prompt:      promptMessageTemplate(input),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "AI message draft failed", logger.ErrorField(err))
		return "", fmt.Errorf("failed to draft message: %w", err)
	}
	return strings.TrimSpace(content), nil
}

func truncateReply(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
