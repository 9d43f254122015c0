package service

import (
	"context"
	"testing"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackMarketResearch(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		year      int
		wantPrice float64
		wantOdo   int
		wantLow   float64
		wantHigh  float64
	}{
		{name: "six years old", year: 2020, wantPrice: 15000, wantOdo: 122000, wantLow: 12750, wantHigh: 17250},
		{name: "price floor", year: 2000, wantPrice: 10000, wantOdo: 362000, wantLow: 8000, wantHigh: 15000},
		{name: "brand new", year: 2026, wantPrice: 30000, wantOdo: 50000, wantLow: 25500, wantHigh: 34500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackMarketResearch(dto.VehicleInfo{Year: tt.year, Make: "Toyota", Model: "Corolla"}, now)

			assert.True(t, got.Fallback)
			require.Len(t, got.ComparableListings, 1)
			assert.Equal(t, tt.wantPrice, got.ComparableListings[0].Price)
			assert.Equal(t, tt.wantOdo, *got.ComparableListings[0].Odometer)
			assert.True(t, got.ComparableListings[0].IsEstimated)
			assert.Equal(t, tt.wantPrice, got.MarketSummary.AveragePrice)
			assert.InDelta(t, tt.wantLow, got.MarketSummary.PriceRange.Low, 0.001)
			assert.InDelta(t, tt.wantHigh, got.MarketSummary.PriceRange.High, 0.001)
			assert.Equal(t, dto.DataSourceAIEstimated, got.DataSource)
			assert.NoError(t, validator.New().Struct(got))
		})
	}
}

func TestMarketResearchService_Research(t *testing.T) {
	valid := &dto.MarketResearch{
		ComparableListings: []dto.ComparableListing{
			{Source: "carsales.com.au", Title: "2020 Toyota Camry Ascent", Price: 27990, Odometer: utils.ToPointer(61000), Year: 2020},
			{Source: "gumtree.com.au", Title: "2020 Toyota Camry SL", Price: 31500, Year: 2020},
		},
		MarketSummary: dto.MarketSummary{
			AveragePrice:    29745,
			PriceRange:      dto.ValueRange{Low: 27990, High: 31500},
			AverageOdometer: 61000,
			DemandLevel:     dto.LevelHigh,
			SupplyLevel:     dto.LevelMedium,
			MarketTrend:     dto.TrendStable,
		},
		Insights: []string{"Hybrid variants sell faster"},
	}

	tests := []struct {
		name         string
		ai           *dto.MarketResearch
		wantFallback bool
		wantCount    int
	}{
		{name: "ai reply used", ai: valid, wantCount: 2},
		{name: "ai unavailable", wantFallback: true, wantCount: 1},
		{name: "empty comparables rejected", ai: &dto.MarketResearch{MarketSummary: valid.MarketSummary}, wantFallback: true, wantCount: 1},
		{
			name: "bad demand level rejected",
			ai: &dto.MarketResearch{
				ComparableListings: valid.ComparableListings,
				MarketSummary: dto.MarketSummary{
					PriceRange:  dto.ValueRange{Low: 1, High: 2},
					DemandLevel: "VERY_HIGH",
					SupplyLevel: dto.LevelLow,
					MarketTrend: dto.TrendRising,
				},
			},
			wantFallback: true,
			wantCount:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMarketResearchService(logger.NewNop(), &fakeAIRepo{research: tt.ai}, validator.New())

			got := svc.Research(context.Background(), dto.MarketResearchInput{
				Vehicle: dto.VehicleInfo{Year: 2020, Make: "Toyota", Model: "Camry"},
			})
			assert.Equal(t, tt.wantFallback, got.Fallback)
			assert.Len(t, got.ComparableListings, tt.wantCount)
			assert.Equal(t, dto.DataSourceAIEstimated, got.DataSource)
			for _, c := range got.ComparableListings {
				assert.True(t, c.IsEstimated)
			}
		})
	}
}
