package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"
)

const recommendationPending = "PENDING"

type StatsService interface {
	Dashboard(ctx context.Context, user *model.User) (*dto.DashboardStats, error)
}

type statsService struct {
	log      *logger.Logger
	dealRepo repository.DealRepository
	now      func() time.Time
}

func NewStatsService(log *logger.Logger, dealRepo repository.DealRepository) StatsService {
	return &statsService{
		log:      log,
		dealRepo: dealRepo,
		now:      utils.TimeNowUTC,
	}
}

func (s *statsService) Dashboard(ctx context.Context, user *model.User) (*dto.DashboardStats, error) {
	deals, err := s.dealRepo.Get(ctx, model.GetDealParam{OrganizationID: user.OrganizationID, SortDesc: true})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load deals for stats", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get deals: %w", err)
	}
	stats := ComputeDashboardStats(deals, s.now())
	return &stats, nil
}

// ComputeDashboardStats reduces an organization's deals to dashboard figures.
// Margin, profit and days in stock only count sold deals with the needed prices
// and dates.
func ComputeDashboardStats(deals []model.Deal, now time.Time) dto.DashboardStats {
	stats := dto.DashboardStats{
		TotalDealsReviewed:    len(deals),
		DealsByStatus:         map[string]int{},
		DealsByRecommendation: map[string]int{},
	}

	var (
		margins    []float64
		days       []int
		profit     float64
		recentFrom = now.AddDate(0, 0, -7)
	)
	for i := range deals {
		d := &deals[i]
		stats.DealsByStatus[string(d.Status)]++
		rec := recommendationPending
		if d.AIRecommendation != nil {
			rec = string(*d.AIRecommendation)
		}
		stats.DealsByRecommendation[rec]++

		if !d.CreatedAt.Before(recentFrom) {
			stats.RecentDeals++
		}
		if d.Status != model.DealStatusSold && d.Status != model.DealStatusLost {
			stats.ActiveDeals++
		}
		if isBought(d.Status) {
			stats.TotalDealsBought++
		}
		if d.Status != model.DealStatusSold {
			continue
		}

		stats.TotalDealsSold++
		if d.ActualPurchasePrice != nil && d.ActualSellPrice != nil && *d.ActualPurchasePrice > 0 && *d.ActualSellPrice > 0 {
			costs := utils.Deref(d.ReconditioningCost) + utils.Deref(d.OtherCosts)
			dealProfit := *d.ActualSellPrice - *d.ActualPurchasePrice - costs
			profit += dealProfit
			margins = append(margins, dealProfit / *d.ActualPurchasePrice * 100)
		}
		if d.AcquiredAt != nil && d.SoldAt != nil {
			days = append(days, int(d.SoldAt.Sub(*d.AcquiredAt).Hours()/24))
		}
	}

	if stats.TotalDealsBought > 0 {
		stats.WinRate = utils.RoundTo(float64(stats.TotalDealsSold)/float64(stats.TotalDealsBought)*100, 1)
	}
	if len(margins) > 0 {
		total := 0.0
		for _, m := range margins {
			total += m
		}
		stats.AverageGrossMargin = utils.RoundTo(total/float64(len(margins)), 1)
	}
	if len(days) > 0 {
		total := 0
		for _, d := range days {
			total += d
		}
		stats.AverageDaysInStock = int(math.Round(float64(total) / float64(len(days))))
	}
	stats.TotalProfit = math.Round(profit)
	return stats
}

func isBought(status model.DealStatus) bool {
	for _, s := range model.BoughtDealStatuses {
		if status == s {
			return true
		}
	}
	return false
}
