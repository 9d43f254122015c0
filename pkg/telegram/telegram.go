package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"

	"tradepilot/config"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"
)

var ErrAdminChatNotConfigured = errors.New("telegram admin chat not configured")

type userLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TelegramRateLimiter sends bot messages under a global and a per-chat limit.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	userLimiters  map[int64]*userLimiterEntry
	bot           *telebot.Bot
	mu            sync.Mutex
	editMu        sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *TelegramRateLimiter {
	global := cfg.MaxGlobalRequestPerSecond
	if global <= 0 {
		global = 30
	}
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(global), global),
		userLimiters:  make(map[int64]*userLimiterEntry),
	}
}

func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, c.Chat().ID); err != nil {
		return nil, err
	}
	return t.bot.Send(c.Chat(), what, opts...)
}

func (t *TelegramRateLimiter) SendWithoutMsg(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) error {
	_, err := t.Send(ctx, c, what, opts...)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err))
		return err
	}
	return nil
}

// SendMessageUser pushes a message to a chat outside of an update.
func (t *TelegramRateLimiter) SendMessageUser(ctx context.Context, message string, chatID int64, opts ...interface{}) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	if _, err := t.bot.Send(&telebot.Chat{ID: chatID}, message, opts...); err != nil {
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) Edit(ctx context.Context, c telebot.Context, msg *telebot.Message, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, c.Chat().ID); err != nil {
		return nil, err
	}

	t.editMu.Lock()
	defer t.editMu.Unlock()
	return t.bot.Edit(msg, what, opts...)
}

func (t *TelegramRateLimiter) Respond(ctx context.Context, c telebot.Context, resp ...*telebot.CallbackResponse) error {
	if err := t.checkRateLimit(ctx, c.Chat().ID); err != nil {
		return err
	}
	return c.Respond(resp...)
}

// SendAlert delivers an operator alert to the admin chat.
func (t *TelegramRateLimiter) SendAlert(ctx context.Context, message string) error {
	if t.cfg.AdminChatID == 0 {
		return ErrAdminChatNotConfigured
	}
	return t.SendMessageUser(ctx, message, t.cfg.AdminChatID)
}

// NotifyAdmin sends a MarkdownV2 formatted message to the admin chat.
func (t *TelegramRateLimiter) NotifyAdmin(ctx context.Context, message string) error {
	if t.cfg.AdminChatID == 0 {
		return ErrAdminChatNotConfigured
	}
	return t.SendMessageUser(ctx, message, t.cfg.AdminChatID, telebot.ModeMarkdownV2)
}

func (r *TelegramRateLimiter) getUserLimiter(chatID int64) *userLimiterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists := r.userLimiters[chatID]; exists {
		limiter.lastAccess = time.Now()
		return limiter
	}

	perChat := r.cfg.MaxUserRequestPerSecond
	if perChat <= 0 {
		perChat = 1
	}
	entry := &userLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(perChat), perChat),
		lastAccess: time.Now(),
	}
	r.userLimiters[chatID] = entry
	return entry
}

func (r *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	userLimiter := r.getUserLimiter(chatID)

	if err := r.globalLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := userLimiter.limiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for user rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (r *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	interval := r.cfg.RateLimitCleanupDuration
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	r.wg.Add(1)
	utils.GoSafe(func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				r.removeExpired(time.Now())
			}
		}
	})
}

func (r *TelegramRateLimiter) removeExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID, entry := range r.userLimiters {
		if now.Sub(entry.lastAccess) > r.cfg.RatelimitExpireDuration {
			delete(r.userLimiters, chatID)
		}
	}
}

func (r *TelegramRateLimiter) StopCleanupExpired() {
	r.wg.Wait()
	r.log.Info("Telegram rate limiter stopped")
}
