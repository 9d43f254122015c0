package telegram

import (
	"context"
	"time"

	"tradepilot/config"
	"tradepilot/internal/service"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/telegram"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

// TelegramBotHandler is the admin bot. It receives updates through the
// webhook route when a public URL is configured and long polls otherwise.
type TelegramBotHandler struct {
	ctx      context.Context
	cfg      *config.Config
	bot      *telebot.Bot
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	echo     *echo.Echo
	service  *service.Service
	polling  bool
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	echo *echo.Echo,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		bot:      bot,
		telegram: telegram,
		echo:     echo,
		service:  service,
	}
}

func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")
	t.polling = t.cfg.Telegram.WebhookURL == ""
	t.RegisterHandlers()

	if t.polling {
		t.log.Info("Telegram webhook is not configured, using long polling")
		go t.bot.Start()
		return
	}

	t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
	if err := t.bot.SetWebhook(&telebot.Webhook{
		Endpoint: &telebot.WebhookEndpoint{
			PublicURL: t.cfg.Telegram.WebhookURL,
		},
	}); err != nil {
		t.log.ErrorContextWithAlert(t.ctx, "Failed to set telegram webhook", logger.ErrorField(err))
	}
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")
	if !t.polling {
		return
	}

	ctx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
