package service

import (
	"context"
	"fmt"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type SubscriptionService interface {
	Get(ctx context.Context, user *model.User) (*dto.SubscriptionResponse, error)
	Usage(ctx context.Context, user *model.User) (*dto.UsageStats, error)
	Upgrade(ctx context.Context, user *model.User, req dto.UpgradeRequest) (*dto.UpgradeResponse, error)
}

type subscriptionService struct {
	log       *logger.Logger
	validator *validator.Validate
	orgRepo   repository.OrganizationRepository
	usage     UsageService
}

func NewSubscriptionService(log *logger.Logger, v *validator.Validate, orgRepo repository.OrganizationRepository, usage UsageService) SubscriptionService {
	return &subscriptionService{
		log:       log,
		validator: v,
		orgRepo:   orgRepo,
		usage:     usage,
	}
}

func (s *subscriptionService) Get(ctx context.Context, user *model.User) (*dto.SubscriptionResponse, error) {
	stats, err := s.usage.Stats(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{
		CurrentPlan: stats.Plan,
		Plans:       dto.PlanCatalogue,
		Usage:       stats,
	}, nil
}

func (s *subscriptionService) Usage(ctx context.Context, user *model.User) (*dto.UsageStats, error) {
	return s.usage.Stats(ctx, user.OrganizationID)
}

// Upgrade switches the organization plan. Payment is handled outside this
// service.
func (s *subscriptionService) Upgrade(ctx context.Context, user *model.User, req dto.UpgradeRequest) (*dto.UpgradeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid plan selected", apperrors.ErrInvalidInput)
	}
	plan := model.Plan(req.Plan)
	if !plan.IsValid() {
		return nil, fmt.Errorf("%w: invalid plan selected", apperrors.ErrInvalidInput)
	}

	if err := s.orgRepo.UpdatePlan(ctx, user.OrganizationID, plan); err != nil {
		s.log.ErrorContext(ctx, "Failed to update organization plan", logger.ErrorField(err), logger.StringField("plan", string(plan)))
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	s.usage.InvalidatePlan(user.OrganizationID)

	details := dto.PlanDetails(plan)
	s.log.InfoContext(ctx, "Organization plan changed",
		logger.StringField("organization_id", user.OrganizationID.String()),
		logger.StringField("plan", string(plan)),
	)
	return &dto.UpgradeResponse{
		Message: fmt.Sprintf("Successfully upgraded to %s plan", details.Name),
		Plan:    plan,
		Name:    details.Name,
		Price:   details.Price,
	}, nil
}
