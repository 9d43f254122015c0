package middleware

import (
	"context"
	"time"

	"gopkg.in/telebot.v3"
)

// WithContext gives every bot update its own bounded context derived from rootCtx.
func WithContext(rootCtx context.Context, timeout time.Duration, handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(rootCtx, timeout)
		defer cancel()

		return handler(ctx, c)
	}
}
