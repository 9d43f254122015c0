package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/telegram"
	"tradepilot/pkg/utils"
)

const pendingListLimit = 20

// TelegramBotService backs the admin bot commands. Replies are MarkdownV2.
type TelegramBotService interface {
	PendingSignups(ctx context.Context) (string, error)
	DecideSignup(ctx context.Context, email string, status model.UserStatus, admin string) (string, error)
}

type telegramBotService struct {
	log         *logger.Logger
	userService UserService
}

func NewTelegramBotService(log *logger.Logger, userService UserService) TelegramBotService {
	return &telegramBotService{
		log:         log,
		userService: userService,
	}
}

func (s *telegramBotService) PendingSignups(ctx context.Context) (string, error) {
	users, err := s.userService.List(ctx, dto.ListUsersRequest{Status: string(model.UserStatusPending)})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list pending users", logger.ErrorField(err))
		return "", err
	}
	if len(users) > pendingListLimit {
		users = users[:pendingListLimit]
	}

	pending := make([]telegram.SignupInfo, 0, len(users))
	for _, u := range users {
		info := telegram.SignupInfo{
			UserID:    u.ID.String(),
			Name:      u.Name,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		}
		if u.Organization != nil {
			info.Organization = u.Organization.Name
		}
		pending = append(pending, info)
	}
	return telegram.FormatPendingList(pending), nil
}

// DecideSignup approves or rejects by email. Unknown or malformed emails
// produce a user-facing reply rather than an error.
func (s *telegramBotService) DecideSignup(ctx context.Context, email string, status model.UserStatus, admin string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		verb := "approve"
		if status == model.UserStatusRejected {
			verb = "reject"
		}
		return utils.EscapeMarkdownV2(fmt.Sprintf("Usage: /%s <email>", verb)), nil
	}

	user, err := s.userService.SetStatusByEmail(ctx, email, status, admin)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return utils.EscapeMarkdownV2(fmt.Sprintf("No user found with email %s", email)), nil
		}
		s.log.ErrorContext(ctx, "Failed to decide signup", logger.ErrorField(err), logger.StringField("status", string(status)))
		return "", err
	}

	icon := "✅"
	if status == model.UserStatusRejected {
		icon = "🚫"
	}
	return fmt.Sprintf("%s %s is now *%s*",
		icon,
		utils.EscapeMarkdownV2(user.Email),
		utils.EscapeMarkdownV2(strings.ToLower(string(user.Status))),
	), nil
}
