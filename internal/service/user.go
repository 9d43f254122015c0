package service

import (
	"context"
	"fmt"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/telegram"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 12

// AdminNotifier delivers MarkdownV2 messages to the admin chat.
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, message string) error
}

type UserService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error)
	Authenticate(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context, req dto.ListUsersRequest) ([]model.User, error)
	Decide(ctx context.Context, admin *model.User, id uuid.UUID, req dto.UserDecisionRequest) (*model.User, error)
	SetStatusByEmail(ctx context.Context, email string, status model.UserStatus, decidedBy string) (*model.User, error)
	GetPreferences(ctx context.Context, user *model.User) (*model.AIPreference, error)
	UpdatePreferences(ctx context.Context, user *model.User, req dto.PreferenceRequest) (*model.AIPreference, error)
}

type userService struct {
	log            *logger.Logger
	validator      *validator.Validate
	uow            repository.UnitOfWork
	userRepo       repository.UserRepository
	orgRepo        repository.OrganizationRepository
	preferenceRepo repository.AIPreferenceRepository
	notifier       AdminNotifier
}

func NewUserService(
	log *logger.Logger,
	v *validator.Validate,
	uow repository.UnitOfWork,
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	preferenceRepo repository.AIPreferenceRepository,
	notifier AdminNotifier,
) UserService {
	return &userService{
		log:            log,
		validator:      v,
		uow:            uow,
		userRepo:       userRepo,
		orgRepo:        orgRepo,
		preferenceRepo: preferenceRepo,
		notifier:       notifier,
	}
}

// Signup creates a FREE organization and a PENDING user, then tells the admin.
func (s *userService) Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.OrganizationName = strings.TrimSpace(req.OrganizationName)
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	email := req.Email

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to look up user", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: an account with this email already exists", apperrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		orgName = strings.TrimSpace(req.Name)
	}
	org := &model.Organization{Name: orgName, Plan: model.PlanFree}
	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		Status:       model.UserStatusPending,
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.orgRepo.Create(ctx, org, opts...); err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}
		user.OrganizationID = org.ID
		if err := s.userRepo.Create(ctx, user, opts...); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		pref := model.DefaultAIPreference(user.ID)
		if err := s.preferenceRepo.Upsert(ctx, &pref, opts...); err != nil {
			return fmt.Errorf("failed to create preferences: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to sign up user", logger.ErrorField(err))
		return nil, err
	}
	user.Organization = org

	s.log.InfoContext(ctx, "User signed up", logger.StringField("user_id", user.ID.String()))
	s.notifySignup(ctx, user)
	return user, nil
}

func (s *userService) notifySignup(ctx context.Context, user *model.User) {
	if s.notifier == nil {
		return
	}
	info := telegram.SignupInfo{
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: utils.TimeNowUTC(),
	}
	if user.Organization != nil {
		info.Organization = user.Organization.Name
	}
	if err := s.notifier.NotifyAdmin(ctx, telegram.FormatSignupNotification(info)); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to notify admin about signup",
			logger.ErrorField(err),
			logger.StringField("user_id", user.ID.String()),
		)
	}
}

// Authenticate resolves the gateway-supplied user id and only admits
// approved users.
func (s *userService) Authenticate(ctx context.Context, userID string) (*model.User, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load user", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", apperrors.ErrUnauthorized)
	}
	switch user.Status {
	case model.UserStatusApproved:
		return user, nil
	case model.UserStatusRejected:
		return nil, fmt.Errorf("%w: account was rejected", apperrors.ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: account is pending approval", apperrors.ErrForbidden)
	}
}

func (s *userService) List(ctx context.Context, req dto.ListUsersRequest) ([]model.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	var param model.GetUserParam
	if req.Status != "" {
		param.Status = utils.ToPointer(model.UserStatus(req.Status))
	}
	users, err := s.userRepo.Get(ctx, param)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list users", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Decide(ctx context.Context, admin *model.User, id uuid.UUID, req dto.UserDecisionRequest) (*model.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
	}
	return s.setStatus(ctx, user, decisionStatus(req.Action), admin.Email)
}

// SetStatusByEmail approves or rejects the account registered under email.
func (s *userService) SetStatusByEmail(ctx context.Context, email string, status model.UserStatus, decidedBy string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user with email %s", apperrors.ErrNotFound, email)
	}
	return s.setStatus(ctx, user, status, decidedBy)
}

func (s *userService) setStatus(ctx context.Context, user *model.User, status model.UserStatus, decidedBy string) (*model.User, error) {
	now := utils.TimeNowUTC()
	if err := s.userRepo.UpdateStatus(ctx, user.ID, status, decidedBy, now); err != nil {
		s.log.ErrorContext(ctx, "Failed to update user status", logger.ErrorField(err), logger.StringField("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = status
	if status == model.UserStatusApproved {
		user.ApprovedAt = &now
		user.ApprovedBy = &decidedBy
	}
	s.log.InfoContext(ctx, "User status changed",
		logger.StringField("user_id", user.ID.String()),
		logger.StringField("status", string(status)),
		logger.StringField("decided_by", decidedBy),
	)
	return user, nil
}

func decisionStatus(action string) model.UserStatus {
	if action == "approve" {
		return model.UserStatusApproved
	}
	return model.UserStatusRejected
}

// GetPreferences returns the stored preferences, creating the defaults on
// first access.
func (s *userService) GetPreferences(ctx context.Context, user *model.User) (*model.AIPreference, error) {
	pref, err := s.preferenceRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if pref != nil {
		return pref, nil
	}

	defaults := model.DefaultAIPreference(user.ID)
	if err := s.preferenceRepo.Upsert(ctx, &defaults); err != nil {
		s.log.ErrorContext(ctx, "Failed to create default preferences", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}
	return &defaults, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, user *model.User, req dto.PreferenceRequest) (*model.AIPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	pref, err := s.GetPreferences(ctx, user)
	if err != nil {
		return nil, err
	}
	if req.TargetMarginPercent != nil {
		pref.TargetMarginPercent = *req.TargetMarginPercent
	}
	if req.MaxDaysInStock != nil {
		pref.MaxDaysInStock = *req.MaxDaysInStock
	}
	if req.RiskTolerance != nil {
		pref.RiskTolerance = model.RiskTolerance(*req.RiskTolerance)
	}
	if req.NegotiationTone != nil {
		pref.NegotiationTone = model.NegotiationTone(*req.NegotiationTone)
	}

	if err := s.preferenceRepo.Upsert(ctx, pref); err != nil {
		s.log.ErrorContext(ctx, "Failed to save preferences", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return pref, nil
}
