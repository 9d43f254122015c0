package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradepilot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLimitedClient_Complete(t *testing.T) {
	log := &logger.Logger{Logger: zap.NewNop()}

	t.Run("passes request through", func(t *testing.T) {
		mock := NewMockClient(func(ctx context.Context, req Request) (*Response, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return &Response{Content: `{"ok":true}`}, nil
		})
		client := NewLimitedClient(mock, log, 600, 100000, time.Second)

		resp, err := client.Complete(context.Background(), Request{Prompt: "hello", MaxTokens: 10, JSON: true})
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, resp.Content)
		assert.Equal(t, 1, mock.Calls())
		assert.True(t, mock.Requests[0].JSON)
		assert.Equal(t, "mock-model", client.Model())
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := NewMockClient(func(ctx context.Context, req Request) (*Response, error) {
			return nil, errors.New("boom")
		})
		client := NewLimitedClient(mock, log, 600, 100000, time.Second)

		_, err := client.Complete(context.Background(), Request{Prompt: "hello"})
		assert.EqualError(t, err, "boom")
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		mock := NewMockClient(nil)
		client := NewLimitedClient(mock, log, 600, 10, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Complete(ctx, Request{Prompt: "a long prompt that needs more tokens than the budget", MaxTokens: 100})
		assert.Error(t, err)
		assert.Equal(t, 0, mock.Calls())
	})
}
