package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/repository"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
)

const (
	researchFreshnessAI       = "AI estimate based on training data (not real-time market data)"
	researchDisclaimerAI      = "These prices are AI-generated estimates based on historical market patterns. For accurate valuations, verify with live listings on carsales.com.au, Redbook, or Glass's Guide."
	researchFreshnessFallback = "Fallback estimate (AI unavailable)"
	researchDisclaimerFallbk  = "AI service unavailable. These are rough estimates only. Please verify with live market data."
	researchFallbackSource    = "Fallback Estimate"
)

// MarketResearchService estimates the market for a vehicle from the model's
// knowledge. It never fails; the result is flagged when it is a fallback.
type MarketResearchService interface {
	Research(ctx context.Context, input dto.MarketResearchInput) dto.MarketResearch
}

type marketResearchService struct {
	log       *logger.Logger
	aiRepo    repository.AIRepository
	validator *validator.Validate
	now       func() time.Time
}

func NewMarketResearchService(log *logger.Logger, aiRepo repository.AIRepository, v *validator.Validate) MarketResearchService {
	return &marketResearchService{
		log:       log,
		aiRepo:    aiRepo,
		validator: v,
		now:       utils.TimeNowUTC,
	}
}

func (s *marketResearchService) Research(ctx context.Context, input dto.MarketResearchInput) dto.MarketResearch {
	research, err := s.aiRepo.ResearchMarket(ctx, input)
	if err != nil {
		s.log.WarnContext(ctx, "AI market research unavailable, using fallback", logger.ErrorField(err))
		return FallbackMarketResearch(input.Vehicle, s.now())
	}
	if err := s.validator.Struct(research); err != nil {
		s.log.WarnContext(ctx, "AI market research rejected, using fallback",
			logger.ErrorField(err),
			logger.StringField("vehicle", vehicleLabel(input.Vehicle)),
		)
		return FallbackMarketResearch(input.Vehicle, s.now())
	}

	research.DataSource = dto.DataSourceAIEstimated
	research.DataFreshness = researchFreshnessAI
	research.Disclaimer = researchDisclaimerAI
	research.Fallback = false
	for i := range research.ComparableListings {
		research.ComparableListings[i].IsEstimated = true
	}
	return *research
}

// FallbackMarketResearch is a rough age-based estimate.
func FallbackMarketResearch(v dto.VehicleInfo, now time.Time) dto.MarketResearch {
	age := now.Year() - v.Year
	base := float64(30000 - age*2500)
	price := math.Max(base, 10000)
	odometer := 50000 + age*12000

	return dto.MarketResearch{
		DataSource:    dto.DataSourceAIEstimated,
		DataFreshness: researchFreshnessFallback,
		Disclaimer:    researchDisclaimerFallbk,
		ComparableListings: []dto.ComparableListing{
			{
				Source:      researchFallbackSource,
				Title:       fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model),
				Price:       price,
				Odometer:    utils.ToPointer(odometer),
				Year:        v.Year,
				Notes:       "Rough estimate - verify with live listings",
				IsEstimated: true,
			},
		},
		MarketSummary: dto.MarketSummary{
			AveragePrice: price,
			PriceRange: dto.ValueRange{
				Low:  math.Max(base*0.85, 8000),
				High: math.Max(base*1.15, 15000),
			},
			AverageOdometer: odometer,
			DemandLevel:     dto.LevelMedium,
			SupplyLevel:     dto.LevelMedium,
			MarketTrend:     dto.TrendStable,
			BestTimeToSell:  "Anytime - market is stable",
			PopularVariants: []string{"Standard"},
		},
		Insights: []string{
			"AI market research unavailable - using rough estimates",
			"Verify prices on carsales.com.au, gumtree.com.au, or autotrader.com.au",
			"Consider using Redbook or Glass's Guide for accurate valuations",
		},
		Fallback: true,
	}
}
