package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/common"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
)

// QuotaExceededError carries the gate verdict that rejected the request.
type QuotaExceededError struct {
	Check dto.UsageCheck
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d used on plan %s", apperrors.ErrQuotaExceeded, e.Check.CurrentUsage, e.Check.Limit, e.Check.Plan)
}

func (e *QuotaExceededError) Unwrap() error {
	return apperrors.ErrQuotaExceeded
}

// UpgradeMessage is the caller-facing hint attached to a rejection.
func (e *QuotaExceededError) UpgradeMessage() string {
	return fmt.Sprintf("You've used all %d analyses for today. Upgrade your plan for more analyses.", e.Check.Limit)
}

// Reservation is an admitted analysis. Commit it when the work succeeds and
// Release it when the work fails.
type Reservation struct {
	OrganizationID uuid.UUID
	Day            time.Time
	Check          dto.UsageCheck
	strict         bool
	done           bool
}

type UsageService interface {
	GetPlan(ctx context.Context, orgID uuid.UUID) (model.Plan, error)
	InvalidatePlan(orgID uuid.UUID)
	Check(ctx context.Context, orgID uuid.UUID) (dto.UsageCheck, error)
	Reserve(ctx context.Context, orgID uuid.UUID) (*Reservation, error)
	Commit(ctx context.Context, res *Reservation) error
	Release(ctx context.Context, res *Reservation)
	Summary(ctx context.Context, orgID uuid.UUID) (dto.UsageSummary, error)
	Stats(ctx context.Context, orgID uuid.UUID) (*dto.UsageStats, error)
}

type usageService struct {
	cfg       *config.Config
	log       *logger.Logger
	orgRepo   repository.OrganizationRepository
	usageRepo repository.UsageRepository
	cache     cache.Cache
	now       func() time.Time
}

func NewUsageService(cfg *config.Config, log *logger.Logger, orgRepo repository.OrganizationRepository, usageRepo repository.UsageRepository, c cache.Cache) UsageService {
	return &usageService{
		cfg:       cfg,
		log:       log,
		orgRepo:   orgRepo,
		usageRepo: usageRepo,
		cache:     c,
		now:       utils.TimeNowUTC,
	}
}

func planCacheKey(orgID uuid.UUID) string {
	return fmt.Sprintf(common.KEY_ORGANIZATION_PLAN, orgID)
}

// GetPlan resolves the organization's plan. Unknown plans map to FREE.
func (s *usageService) GetPlan(ctx context.Context, orgID uuid.UUID) (model.Plan, error) {
	if plan, ok := cache.GetFromCache[model.Plan](s.cache, planCacheKey(orgID)); ok {
		return plan, nil
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get organization", logger.ErrorField(err), logger.StringField("organization_id", orgID.String()))
		return "", fmt.Errorf("failed to get organization: %w", err)
	}

	plan := model.PlanFree
	if org != nil {
		plan = org.Plan.Normalize()
	}
	if s.cache != nil {
		s.cache.Set(planCacheKey(orgID), plan, s.cfg.Cache.PlanExpiration)
	}
	return plan, nil
}

func (s *usageService) InvalidatePlan(orgID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(planCacheKey(orgID))
	}
}

func buildCheck(plan model.Plan, used int) dto.UsageCheck {
	limit := plan.DailyLimit()
	if limit == model.UnlimitedAnalyses {
		return dto.UsageCheck{Allowed: true, CurrentUsage: used, Limit: limit, Remaining: -1, Plan: plan}
	}
	return dto.UsageCheck{
		Allowed:      used < limit,
		CurrentUsage: used,
		Limit:        limit,
		Remaining:    max(0, limit-used),
		Plan:         plan,
	}
}

// Check reads today's counter without creating it.
func (s *usageService) Check(ctx context.Context, orgID uuid.UUID) (dto.UsageCheck, error) {
	plan, err := s.GetPlan(ctx, orgID)
	if err != nil {
		return dto.UsageCheck{}, err
	}

	used, err := s.usageRepo.GetCount(ctx, orgID, utils.DayKey(s.now()))
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get usage count", logger.ErrorField(err), logger.StringField("organization_id", orgID.String()))
		return dto.UsageCheck{}, fmt.Errorf("failed to get usage count: %w", err)
	}
	return buildCheck(plan, used), nil
}

// Reserve admits one analysis or returns a *QuotaExceededError. In strict mode
// the slot is taken atomically up front.
func (s *usageService) Reserve(ctx context.Context, orgID uuid.UUID) (*Reservation, error) {
	day := utils.DayKey(s.now())

	if !s.cfg.Usage.Strict {
		check, err := s.Check(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if !check.Allowed {
			s.log.InfoContext(ctx, "Usage limit reached",
				logger.StringField("organization_id", orgID.String()),
				logger.IntField("usage", check.CurrentUsage),
				logger.IntField("limit", check.Limit),
			)
			return nil, &QuotaExceededError{Check: check}
		}
		return &Reservation{OrganizationID: orgID, Day: day, Check: check}, nil
	}

	plan, err := s.GetPlan(ctx, orgID)
	if err != nil {
		return nil, err
	}

	limit := plan.DailyLimit()
	if limit == model.UnlimitedAnalyses {
		if err := s.usageRepo.Increment(ctx, orgID, day); err != nil {
			return nil, fmt.Errorf("failed to increment usage: %w", err)
		}
		used, err := s.usageRepo.GetCount(ctx, orgID, day)
		if err != nil {
			return nil, fmt.Errorf("failed to get usage count: %w", err)
		}
		return &Reservation{OrganizationID: orgID, Day: day, Check: buildCheck(plan, used), strict: true}, nil
	}

	count, ok, err := s.usageRepo.IncrementIfBelow(ctx, orgID, day, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to reserve usage", logger.ErrorField(err), logger.StringField("organization_id", orgID.String()))
		return nil, fmt.Errorf("failed to reserve usage: %w", err)
	}
	if !ok {
		return nil, &QuotaExceededError{Check: buildCheck(plan, count)}
	}
	return &Reservation{OrganizationID: orgID, Day: day, Check: buildCheck(plan, count), strict: true}, nil
}

// Commit counts the analysis against the day it was admitted on.
func (s *usageService) Commit(ctx context.Context, res *Reservation) error {
	if res == nil || res.done {
		return nil
	}
	res.done = true
	if res.strict {
		return nil
	}
	if err := s.usageRepo.Increment(ctx, res.OrganizationID, res.Day); err != nil {
		s.log.ErrorContext(ctx, "Failed to increment usage", logger.ErrorField(err), logger.StringField("organization_id", res.OrganizationID.String()))
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Release gives a strict reservation back after failed work.
func (s *usageService) Release(ctx context.Context, res *Reservation) {
	if res == nil || res.done {
		return
	}
	res.done = true
	if !res.strict {
		return
	}
	if err := s.usageRepo.Decrement(ctx, res.OrganizationID, res.Day); err != nil {
		s.log.ErrorContext(ctx, "Failed to release usage reservation", logger.ErrorField(err), logger.StringField("organization_id", res.OrganizationID.String()))
	}
}

func (s *usageService) Summary(ctx context.Context, orgID uuid.UUID) (dto.UsageSummary, error) {
	check, err := s.Check(ctx, orgID)
	if err != nil {
		return dto.UsageSummary{}, err
	}
	return summaryFromCheck(check), nil
}

func summaryFromCheck(check dto.UsageCheck) dto.UsageSummary {
	return dto.UsageSummary{
		Used:        check.CurrentUsage,
		Limit:       check.Limit,
		Remaining:   check.Remaining,
		IsUnlimited: check.Limit == model.UnlimitedAnalyses,
		Plan:        check.Plan,
	}
}

// Stats reports today, the last 7 days and the last month by UTC day key.
func (s *usageService) Stats(ctx context.Context, orgID uuid.UUID) (*dto.UsageStats, error) {
	check, err := s.Check(ctx, orgID)
	if err != nil {
		return nil, err
	}

	today := utils.DayKey(s.now())
	week, err := s.usageRepo.SumBetween(ctx, orgID, today.AddDate(0, 0, -7), today)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly usage: %w", err)
	}
	month, err := s.usageRepo.SumBetween(ctx, orgID, today.AddDate(0, -1, 0), today)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly usage: %w", err)
	}

	return &dto.UsageStats{
		Today:       check.CurrentUsage,
		ThisWeek:    week,
		ThisMonth:   month,
		Plan:        check.Plan,
		DailyLimit:  check.Limit,
		Remaining:   check.Remaining,
		IsUnlimited: check.Limit == model.UnlimitedAnalyses,
	}, nil
}

// IsQuotaExceeded unwraps a gate rejection.
func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
