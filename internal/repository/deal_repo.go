package repository

import (
	"context"
	"errors"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var dealSortColumns = map[string]string{
	"created_at": "deals.created_at",
	"updated_at": "deals.updated_at",
	"ask_price":  "deals.ask_price",
}

type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error
	GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Deal, error)
	Get(ctx context.Context, param model.GetDealParam, opts ...utils.DBOption) ([]model.Deal, error)
	GetOpenWithSource(ctx context.Context, limit int, opts ...utils.DBOption) ([]model.Deal, error)
	Update(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error
	Delete(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) error
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(deal).Error
}

// GetByID loads a deal of the organization with its vehicle and insights.
func (r *dealRepository) GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Deal, error) {
	var deal model.Deal
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Preload("Vehicle").
		Preload("Insights", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) Get(ctx context.Context, param model.GetDealParam, opts ...utils.DBOption) ([]model.Deal, error) {
	var deals []model.Deal
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Deal{}).
		Preload("Vehicle").
		Where("deals.organization_id = ?", param.OrganizationID)

	if len(param.Statuses) > 0 {
		db = db.Where("deals.status IN ?", param.Statuses)
	}
	if param.Recommendation != nil {
		db = db.Where("deals.ai_recommendation = ?", *param.Recommendation)
	}
	if param.CreatedAfter != nil {
		db = db.Where("deals.created_at >= ?", *param.CreatedAfter)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}

	column, ok := dealSortColumns[param.SortBy]
	if !ok {
		column = dealSortColumns["created_at"]
	}
	db = utils.WithOrder(column, param.SortDesc)(db)

	if err := db.Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// GetOpenWithSource returns deals of every organization that are still being
// negotiated and have a listing URL to re-check, least recently updated first.
func (r *dealRepository) GetOpenWithSource(ctx context.Context, limit int, opts ...utils.DBOption) ([]model.Deal, error) {
	var deals []model.Deal
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("status IN ?", model.OpenDealStatuses).
		Where("source_url IS NOT NULL AND source_url <> ''").
		Order("updated_at ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) Update(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Omit("Vehicle", "Insights").
		Save(deal).Error
}

func (r *dealRepository) Delete(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("deal_id = ?", id).Delete(&model.AIInsight{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ? AND organization_id = ?", id, orgID).Delete(&model.Deal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
