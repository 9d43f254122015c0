package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"tradepilot/pkg/common"

	"go.uber.org/zap/zapcore"
)

const alertFieldKey = common.KEY_LOG_HOOK_SEND_ALERT

// AlertSender delivers an already formatted alert to operators.
type AlertSender interface {
	SendAlert(ctx context.Context, message string) error
}

type AlertCore struct {
	core     zapcore.Core
	sender   AlertSender
	minLevel zapcore.Level
}

func NewAlertCore(core zapcore.Core, sender AlertSender, minLevel zapcore.Level) *AlertCore {
	return &AlertCore{
		core:     core,
		sender:   sender,
		minLevel: minLevel,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		sender:   a.sender,
		minLevel: a.minLevel,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && hasAlertField(fields) {
		message := FormatAlert(entry, fields)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.sender.SendAlert(ctx, message)
		}()
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func hasAlertField(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == alertFieldKey && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlert renders a log entry as a plain-text operator alert.
func FormatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == alertFieldKey {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚨 %s Alert\n\nMessage: %s\n", entry.Level.CapitalString(), entry.Message))
	if len(keys) > 0 {
		sb.WriteString("\nFields:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
		}
	}
	sb.WriteString(fmt.Sprintf("\nTime: %s", entry.Time.UTC().Format("2006-01-02 15:04:05")))
	return sb.String()
}
