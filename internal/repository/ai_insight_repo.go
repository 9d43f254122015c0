package repository

import (
	"context"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AIInsightRepository interface {
	Create(ctx context.Context, insight *model.AIInsight, opts ...utils.DBOption) error
	ListByDeal(ctx context.Context, dealID uuid.UUID, insightType *model.InsightType, opts ...utils.DBOption) ([]model.AIInsight, error)
}

type aiInsightRepository struct {
	db *gorm.DB
}

func NewAIInsightRepository(db *gorm.DB) AIInsightRepository {
	return &aiInsightRepository{db: db}
}

func (r *aiInsightRepository) Create(ctx context.Context, insight *model.AIInsight, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(insight).Error
}

func (r *aiInsightRepository) ListByDeal(ctx context.Context, dealID uuid.UUID, insightType *model.InsightType, opts ...utils.DBOption) ([]model.AIInsight, error) {
	var insights []model.AIInsight
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Where("deal_id = ?", dealID)
	if insightType != nil {
		db = db.Where("type = ?", *insightType)
	}
	if err := db.Order("created_at DESC").Find(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}
