package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
	done     chan struct{}
}

func (r *recordingSender) SendAlert(ctx context.Context, message string) error {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestAlertCore_SendsOnlyFlaggedEntries(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}, 4)}
	core, logs := observer.New(zapcore.DebugLevel)
	log := (&Logger{Logger: zap.New(core)}).WithAlerts(sender, zapcore.WarnLevel)

	log.ErrorContext(context.Background(), "plain error")
	log.ErrorContextWithAlert(context.Background(), "scrape backend down", StringField("host", "carsales.com.au"))

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}

	assert.Equal(t, 2, logs.Len())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "scrape backend down")
	assert.Contains(t, sender.messages[0], "host: carsales.com.au")
	assert.NotContains(t, sender.messages[0], alertFieldKey)
}

func TestFormatAlert(t *testing.T) {
	entry := zapcore.Entry{
		Level:   zapcore.ErrorLevel,
		Message: "valuation failed",
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	msg := FormatAlert(entry, []zapcore.Field{
		zap.String("org", "o-1"),
		zap.Int("attempt", 1),
		zap.Bool(alertFieldKey, true),
	})

	assert.Contains(t, msg, "ERROR Alert")
	assert.Contains(t, msg, "• attempt: 1\n• org: o-1")
	assert.Contains(t, msg, "Time: 2026-01-02 03:04:05")
}
