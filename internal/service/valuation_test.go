package service

import (
	"context"
	"math"
	"testing"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valuationClock = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func TestFallbackValuation(t *testing.T) {
	tests := []struct {
		name  string
		input dto.ValuationInput
		want  dto.ValuationResult
	}{
		{
			name: "six year old with unknown odometer",
			input: dto.ValuationInput{
				Vehicle:  dto.VehicleInfo{Year: 2020, Make: "Toyota", Model: "Camry"},
				AskPrice: utils.ToPointer(32000.0),
			},
			want: dto.ValuationResult{
				FairValueLow:        13478,
				FairValueHigh:       16474,
				RecommendedBuyPrice: 12730,
				TargetSellPrice:     15725,
				EstimatedMargin:     -50.9,
				EstimatedDaysToSell: 35,
				RiskScore:           45,
				Recommendation:      model.RecommendationSkip,
			},
		},
		{
			name: "new car priced inside the range",
			input: dto.ValuationInput{
				Vehicle:  dto.VehicleInfo{Year: 2026, Make: "Mazda", Model: "CX-5", Odometer: utils.ToPointer(1000)},
				AskPrice: utils.ToPointer(40000.0),
			},
			want: dto.ValuationResult{
				FairValueLow:        35946,
				FairValueHigh:       43934,
				RecommendedBuyPrice: 33949,
				TargetSellPrice:     41937,
				EstimatedMargin:     4.8,
				EstimatedDaysToSell: 21,
				RiskScore:           25,
				Recommendation:      model.RecommendationMaybe,
			},
		},
		{
			name: "old high mileage without ask price",
			input: dto.ValuationInput{
				Vehicle: dto.VehicleInfo{Year: 2016, Make: "Holden", Model: "Commodore", Odometer: utils.ToPointer(300000)},
			},
			want: dto.ValuationResult{
				FairValueLow:        6300,
				FairValueHigh:       7700,
				RecommendedBuyPrice: 5950,
				TargetSellPrice:     7350,
				EstimatedMargin:     15,
				EstimatedDaysToSell: 50,
				RiskScore:           65,
				Recommendation:      model.RecommendationMaybe,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackValuation(tt.input, valuationClock)

			assert.Equal(t, tt.want.FairValueLow, got.FairValueLow)
			assert.Equal(t, tt.want.FairValueHigh, got.FairValueHigh)
			assert.Equal(t, tt.want.RecommendedBuyPrice, got.RecommendedBuyPrice)
			assert.Equal(t, tt.want.TargetSellPrice, got.TargetSellPrice)
			assert.InDelta(t, tt.want.EstimatedMargin, got.EstimatedMargin, 0.001)
			assert.Equal(t, tt.want.EstimatedDaysToSell, got.EstimatedDaysToSell)
			assert.Equal(t, tt.want.RiskScore, got.RiskScore)
			assert.Equal(t, tt.want.Recommendation, got.Recommendation)
			assert.Equal(t, heuristicConfidence, got.Confidence)
			assert.Equal(t, heuristicReasoning, got.Reasoning)
			assert.Equal(t, dto.ValuationSourceHeuristic, got.Source)
		})
	}
}

func TestFallbackValuation_Deterministic(t *testing.T) {
	input := dto.ValuationInput{
		Vehicle:  dto.VehicleInfo{Year: 2019, Make: "Ford", Model: "Ranger", Odometer: utils.ToPointer(88000)},
		AskPrice: utils.ToPointer(41500.0),
	}
	assert.Equal(t, FallbackValuation(input, valuationClock), FallbackValuation(input, valuationClock))
}

func TestFallbackValuation_Invariants(t *testing.T) {
	v := validator.New()
	for year := 1990; year <= 2026; year += 3 {
		for _, odo := range []*int{nil, utils.ToPointer(0), utils.ToPointer(45000), utils.ToPointer(450000)} {
			for _, ask := range []*float64{nil, utils.ToPointer(5000.0), utils.ToPointer(65000.0)} {
				got := FallbackValuation(dto.ValuationInput{
					Vehicle:  dto.VehicleInfo{Year: year, Make: "Toyota", Model: "Hilux", Odometer: odo},
					AskPrice: ask,
				}, valuationClock)

				require.NoError(t, v.Struct(got))
				assert.LessOrEqual(t, got.RecommendedBuyPrice, got.FairValueLow)
				assert.LessOrEqual(t, got.TargetSellPrice, got.FairValueHigh)
			}
		}
	}
}

func TestValuationService_Valuate(t *testing.T) {
	input := dto.ValuationInput{
		Vehicle:  dto.VehicleInfo{Year: 2020, Make: "Toyota", Model: "Camry"},
		AskPrice: utils.ToPointer(32000.0),
	}
	aiResult := dto.ValuationResult{
		FairValueLow:        27000,
		FairValueHigh:       30500,
		RecommendedBuyPrice: 26000,
		TargetSellPrice:     30000,
		EstimatedMargin:     12.5,
		EstimatedDaysToSell: 28,
		RiskScore:           30,
		Recommendation:      model.RecommendationMaybe,
		Confidence:          72,
		Reasoning:           "Strong demand for hybrid Camry in metro areas.",
	}

	tests := []struct {
		name       string
		ai         *dto.ValuationResult
		wantSource dto.ValuationSource
		wantLow    float64
	}{
		{name: "ai reply used", ai: &aiResult, wantSource: dto.ValuationSourceAI, wantLow: 27000},
		{name: "ai unavailable", ai: nil, wantSource: dto.ValuationSourceHeuristic, wantLow: 13478},
		{
			name: "inverted range rejected",
			ai: func() *dto.ValuationResult {
				r := aiResult
				r.FairValueHigh = 1000
				return &r
			}(),
			wantSource: dto.ValuationSourceHeuristic,
			wantLow:    13478,
		},
		{
			name: "non finite margin rejected",
			ai: func() *dto.ValuationResult {
				r := aiResult
				r.EstimatedMargin = math.NaN()
				return &r
			}(),
			wantSource: dto.ValuationSourceHeuristic,
			wantLow:    13478,
		},
		{
			name: "unknown recommendation rejected",
			ai: func() *dto.ValuationResult {
				r := aiResult
				r.Recommendation = "BUY_NOW"
				return &r
			}(),
			wantSource: dto.ValuationSourceHeuristic,
			wantLow:    13478,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewValuationService(logger.NewNop(), &fakeAIRepo{valuation: tt.ai}, validator.New()).(*valuationService)
			svc.now = fixedClock(valuationClock)

			got := svc.Valuate(context.Background(), input)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantLow, got.FairValueLow)
		})
	}
}
