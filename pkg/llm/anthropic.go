package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type anthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, baseURL, model string) Client {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &anthropicClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *anthropicClient) Model() string {
	return c.model
}

func (c *anthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	prompt := req.Prompt
	temperature := float32(req.Temperature)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	text := ""
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text = *block.Text
			break
		}
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Content:          text,
		Model:            string(resp.Model),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}, nil
}
