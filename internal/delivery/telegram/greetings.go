package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := `👋 *Welcome to the TradePilot admin bot!*
I let you know when someone signs up and let you approve them from here.

🔧 Commands:

📋 /pending - List signups waiting for approval
✅ /approve <email> - Approve a signup
🚫 /reject <email> - Reject a signup
🔄 /scheduler - Check scheduled jobs and run one manually

🆘 /help - Show the full guide`
	return t.telegram.SendWithoutMsg(ctx, c, message, telebot.ModeMarkdown)
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	message := `❓ *TradePilot admin bot*

New accounts stay pending until an admin approves them. Every signup is posted to this chat with the user's name, email and organization.

🤖 *Commands:*
/pending - Show up to 20 pending signups
/approve <email> - Approve the account with that email
/reject <email> - Reject the account with that email
/scheduler - Show active jobs, recent runs and a button to run one now

💡 *Example:*
/approve dealer@example.com

Admin commands only answer in the configured admin chat.`
	return t.telegram.SendWithoutMsg(ctx, c, message, telebot.ModeMarkdown)
}
