package service

import (
	"context"
	"testing"
	"time"

	"tradepilot/internal/model"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 12, 0, 0, 0, time.UTC)
}

func statsDeals() []model.Deal {
	return []model.Deal{
		{
			Status:              model.DealStatusSold,
			AIRecommendation:    utils.ToPointer(model.RecommendationStrongBuy),
			ActualPurchasePrice: utils.ToPointer(20000.0),
			ActualSellPrice:     utils.ToPointer(25000.0),
			ReconditioningCost:  utils.ToPointer(1000.0),
			OtherCosts:          utils.ToPointer(500.0),
			AcquiredAt:          utils.ToPointer(day(time.January, 1)),
			SoldAt:              utils.ToPointer(day(time.January, 31)),
			CreatedAt:           day(time.January, 1),
		},
		{
			Status:              model.DealStatusSold,
			ActualPurchasePrice: utils.ToPointer(10000.0),
			ActualSellPrice:     utils.ToPointer(11000.0),
			AcquiredAt:          utils.ToPointer(day(time.February, 1)),
			SoldAt:              utils.ToPointer(day(time.February, 11)),
			CreatedAt:           day(time.February, 27),
		},
		{
			Status:           model.DealStatusListed,
			AIRecommendation: utils.ToPointer(model.RecommendationSkip),
			CreatedAt:        day(time.February, 28),
		},
		{Status: model.DealStatusLost, CreatedAt: day(time.January, 5)},
		{Status: model.DealStatusSourced, CreatedAt: day(time.February, 25)},
	}
}

func TestComputeDashboardStats(t *testing.T) {
	stats := ComputeDashboardStats(statsDeals(), day(time.March, 1))

	assert.Equal(t, 5, stats.TotalDealsReviewed)
	assert.Equal(t, 3, stats.TotalDealsBought)
	assert.Equal(t, 2, stats.TotalDealsSold)
	assert.Equal(t, 66.7, stats.WinRate)
	assert.Equal(t, 13.8, stats.AverageGrossMargin)
	assert.Equal(t, 20, stats.AverageDaysInStock)
	assert.Equal(t, 4500.0, stats.TotalProfit)
	assert.Equal(t, 2, stats.ActiveDeals)
	assert.Equal(t, 3, stats.RecentDeals)
	assert.Equal(t, map[string]int{"SOLD": 2, "LISTED": 1, "LOST": 1, "SOURCED": 1}, stats.DealsByStatus)
	assert.Equal(t, map[string]int{"STRONG_BUY": 1, "SKIP": 1, recommendationPending: 3}, stats.DealsByRecommendation)
}

func TestComputeDashboardStats_Empty(t *testing.T) {
	stats := ComputeDashboardStats(nil, day(time.March, 1))

	assert.Zero(t, stats.TotalDealsReviewed)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.AverageGrossMargin)
	assert.Zero(t, stats.TotalProfit)
	assert.NotNil(t, stats.DealsByStatus)
}

func TestStatsService_Dashboard(t *testing.T) {
	repo := newFakeDealRepo()
	repo.list = statsDeals()
	svc := NewStatsService(logger.NewNop(), repo).(*statsService)
	svc.now = fixedClock(day(time.March, 1))
	user := &model.User{ID: uuid.New(), OrganizationID: uuid.New()}

	stats, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user.OrganizationID, repo.param.OrganizationID)
	assert.Equal(t, 5, stats.TotalDealsReviewed)
}
