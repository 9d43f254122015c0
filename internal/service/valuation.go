package service

import (
	"context"
	"math"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
)

const (
	defaultHeuristicBase      = 20000
	heuristicConfidence       = 50
	defaultHeuristicMargin    = 15
	heuristicReasoning        = "This is a heuristic estimate. AI valuation unavailable. Based on age, mileage, and asking price."
	unknownOdometerPenalty    = 0.9
	minDepreciationFactor     = 0.5
	depreciationPerYear       = 0.08
	minMileagePenalty         = 0.7
	mileagePenaltyPer200kKm   = 0.3
	mileagePenaltyReferenceKm = 200000
)

// ValuationService always produces a valuation: the model's when it is
// usable, otherwise the heuristic.
type ValuationService interface {
	Valuate(ctx context.Context, input dto.ValuationInput) dto.ValuationResult
}

type valuationService struct {
	log       *logger.Logger
	aiRepo    repository.AIRepository
	validator *validator.Validate
	now       func() time.Time
}

func NewValuationService(log *logger.Logger, aiRepo repository.AIRepository, v *validator.Validate) ValuationService {
	return &valuationService{
		log:       log,
		aiRepo:    aiRepo,
		validator: v,
		now:       utils.TimeNowUTC,
	}
}

func (s *valuationService) Valuate(ctx context.Context, input dto.ValuationInput) dto.ValuationResult {
	result, err := s.aiRepo.EstimateValuation(ctx, input)
	if err != nil {
		s.log.WarnContext(ctx, "AI valuation unavailable, using heuristic", logger.ErrorField(err))
		return FallbackValuation(input, s.now())
	}

	if err := s.validateAIValuation(result); err != nil {
		s.log.WarnContext(ctx, "AI valuation rejected, using heuristic",
			logger.ErrorField(err),
			logger.StringField("vehicle", vehicleLabel(input.Vehicle)),
		)
		return FallbackValuation(input, s.now())
	}

	result.Source = dto.ValuationSourceAI
	return *result
}

func (s *valuationService) validateAIValuation(r *dto.ValuationResult) error {
	for _, v := range []float64{r.FairValueLow, r.FairValueHigh, r.RecommendedBuyPrice, r.TargetSellPrice, r.EstimatedMargin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errNonFiniteValuation
		}
	}
	return s.validator.Struct(r)
}

// FallbackValuation is a pure function of the input and the clock.
func FallbackValuation(input dto.ValuationInput, now time.Time) dto.ValuationResult {
	age := float64(now.Year() - input.Vehicle.Year)
	if age < 0 {
		age = 0
	}

	base := float64(defaultHeuristicBase)
	if input.AskPrice != nil && *input.AskPrice > 0 {
		base = *input.AskPrice
	}

	depreciation := math.Max(minDepreciationFactor, 1-age*depreciationPerYear)
	mileagePenalty := unknownOdometerPenalty
	if odo := input.Vehicle.Odometer; odo != nil && *odo > 0 {
		mileagePenalty = math.Max(minMileagePenalty, 1-float64(*odo)/mileagePenaltyReferenceKm*mileagePenaltyPer200kKm)
	}

	estimate := base * depreciation * mileagePenalty
	low := math.Round(estimate * 0.9)
	high := math.Round(estimate * 1.1)
	buy := math.Round(estimate * 0.85)
	sell := math.Round(estimate * 1.05)

	margin := float64(defaultHeuristicMargin)
	if input.AskPrice != nil && *input.AskPrice > 0 {
		margin = utils.RoundTo((sell-*input.AskPrice) / *input.AskPrice * 100, 1)
	}

	days, risk := 50, 65
	switch {
	case age <= 3:
		days, risk = 21, 25
	case age <= 7:
		days, risk = 35, 45
	}

	recommendation := model.RecommendationMaybe
	if input.AskPrice != nil {
		switch {
		case *input.AskPrice < buy:
			recommendation = model.RecommendationStrongBuy
		case *input.AskPrice > high:
			recommendation = model.RecommendationSkip
		}
	}

	return dto.ValuationResult{
		FairValueLow:        low,
		FairValueHigh:       high,
		RecommendedBuyPrice: buy,
		TargetSellPrice:     sell,
		EstimatedMargin:     margin,
		EstimatedDaysToSell: days,
		RiskScore:           risk,
		Recommendation:      recommendation,
		Confidence:          heuristicConfidence,
		Reasoning:           heuristicReasoning,
		Source:              dto.ValuationSourceHeuristic,
	}
}
