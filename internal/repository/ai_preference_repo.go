package repository

import (
	"context"
	"errors"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AIPreferenceRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.AIPreference, error)
	Upsert(ctx context.Context, pref *model.AIPreference, opts ...utils.DBOption) error
}

type aiPreferenceRepository struct {
	db *gorm.DB
}

func NewAIPreferenceRepository(db *gorm.DB) AIPreferenceRepository {
	return &aiPreferenceRepository{db: db}
}

func (r *aiPreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.AIPreference, error) {
	var pref model.AIPreference
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *aiPreferenceRepository) Upsert(ctx context.Context, pref *model.AIPreference, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"target_margin_percent",
				"max_days_in_stock",
				"risk_tolerance",
				"negotiation_tone",
				"updated_at",
			}),
		}).
		Create(pref).Error
}
