package telegram

import (
	"context"
	"net/http"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/middleware"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
	tbmiddleware "gopkg.in/telebot.v3/middleware"
)

const webhookPath = "/api/v1/telegram/webhook"

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}

func (t *TelegramBotHandler) RegisterHandlers() {
	if !t.polling {
		t.echo.POST(webhookPath, func(c echo.Context) error {
			var update telebot.Update
			if err := c.Bind(&update); err != nil {
				t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
				return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
			}
			t.bot.ProcessUpdate(update)
			return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
		})
	}

	t.bot.Use(tbmiddleware.Recover(func(err error, _ telebot.Context) {
		t.log.ErrorContextWithAlert(t.ctx, "Telegram handler panicked", logger.ErrorField(err))
	}))

	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/help", t.WithContext(t.handleHelp))
	t.bot.Handle(telebot.OnText, t.WithContext(t.handleTextMessage))

	admin := t.bot.Group()
	admin.Use(tbmiddleware.Whitelist(t.cfg.Telegram.AdminChatID))
	admin.Handle("/pending", t.WithContext(t.handlePending))
	admin.Handle("/approve", t.WithContext(t.handleDecision(model.UserStatusApproved)))
	admin.Handle("/reject", t.WithContext(t.handleDecision(model.UserStatusRejected)))
	admin.Handle("/scheduler", t.WithContext(t.handleScheduler))
	admin.Handle(&btnDetailJob, t.WithContext(t.handleBtnDetailJob))
	admin.Handle(&btnActionRunJob, t.WithContext(t.handleBtnActionRunJob))
	admin.Handle(&btnActionBackToJobList, t.WithContext(t.handleBtnActionBackToJobList))
	admin.Handle(&btnDeleteMessage, t.WithContext(t.handleBtnDeleteMessage))
}

func (t *TelegramBotHandler) handleTextMessage(ctx context.Context, c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	return t.telegram.SendWithoutMsg(ctx, c, "I don't recognise that. Use /help to see the available commands.")
}

func (t *TelegramBotHandler) handlePending(ctx context.Context, c telebot.Context) error {
	msg, err := t.service.TelegramBotService.PendingSignups(ctx)
	if err != nil {
		return t.telegram.SendWithoutMsg(ctx, c, commonErrorInternal)
	}
	return t.telegram.SendWithoutMsg(ctx, c, msg, telebot.ModeMarkdownV2)
}

func (t *TelegramBotHandler) handleDecision(status model.UserStatus) func(ctx context.Context, c telebot.Context) error {
	return func(ctx context.Context, c telebot.Context) error {
		msg, err := t.service.TelegramBotService.DecideSignup(ctx, c.Message().Payload, status, adminName(c.Sender()))
		if err != nil {
			return t.telegram.SendWithoutMsg(ctx, c, commonErrorInternal)
		}
		return t.telegram.SendWithoutMsg(ctx, c, msg, telebot.ModeMarkdownV2)
	}
}

func (t *TelegramBotHandler) handleBtnDeleteMessage(ctx context.Context, c telebot.Context) error {
	if err := t.bot.Delete(c.Message()); err != nil {
		t.log.WarnContext(ctx, "Failed to delete message", logger.ErrorField(err))
	}
	return t.telegram.Respond(ctx, c)
}

func adminName(u *telebot.User) string {
	if u == nil {
		return "telegram"
	}
	if u.Username != "" {
		return "telegram:@" + u.Username
	}
	return "telegram:" + strings.TrimSpace(u.FirstName+" "+u.LastName)
}
