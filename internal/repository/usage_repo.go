package repository

import (
	"context"
	"errors"
	"time"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepository interface {
	GetCount(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) (int, error)
	Increment(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error
	IncrementIfBelow(ctx context.Context, orgID uuid.UUID, day time.Time, limit int, opts ...utils.DBOption) (count int, ok bool, err error)
	Decrement(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error
	SumBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time, opts ...utils.DBOption) (int, error)
	DeleteOlderThan(ctx context.Context, day time.Time, opts ...utils.DBOption) (int64, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// GetCount reads the counter for one UTC day. A missing row counts as zero.
func (r *usageRepository) GetCount(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) (int, error) {
	var record model.UsageRecord
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("organization_id = ? AND date = ?", orgID, utils.DayKey(day)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.AnalysisCount, nil
}

// Increment creates the day's row or bumps it by one.
func (r *usageRepository) Increment(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	now := utils.TimeNowUTC()
	record := model.UsageRecord{
		OrganizationID: orgID,
		Date:           utils.DayKey(day),
		AnalysisCount:  1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"analysis_count": gorm.Expr("usage_records.analysis_count + 1"),
				"updated_at":     now,
			}),
		}).
		Create(&record).Error
}

// IncrementIfBelow reserves one slot only while the counter is under limit.
// The conditional upsert runs as a single statement, so concurrent callers
// cannot push the counter past limit.
func (r *usageRepository) IncrementIfBelow(ctx context.Context, orgID uuid.UUID, day time.Time, limit int, opts ...utils.DBOption) (int, bool, error) {
	if limit <= 0 {
		count, err := r.GetCount(ctx, orgID, day, opts...)
		return count, false, err
	}

	now := utils.TimeNowUTC()
	var counts []int
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Raw(`
		INSERT INTO usage_records (organization_id, date, analysis_count, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (organization_id, date) DO UPDATE
		SET analysis_count = usage_records.analysis_count + 1, updated_at = EXCLUDED.updated_at
		WHERE usage_records.analysis_count < ?
		RETURNING analysis_count`,
		orgID, utils.DayKey(day), now, now, limit,
	).Scan(&counts).Error
	if err != nil {
		return 0, false, err
	}
	if len(counts) == 0 {
		count, err := r.GetCount(ctx, orgID, day, opts...)
		return count, false, err
	}
	return counts[0], true, nil
}

// Decrement releases a reserved slot, never going below zero.
func (r *usageRepository) Decrement(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.UsageRecord{}).
		Where("organization_id = ? AND date = ?", orgID, utils.DayKey(day)).
		Updates(map[string]interface{}{
			"analysis_count": gorm.Expr("GREATEST(analysis_count - 1, 0)"),
			"updated_at":     utils.TimeNowUTC(),
		}).Error
}

// SumBetween totals the counters of days in [from, to].
func (r *usageRepository) SumBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time, opts ...utils.DBOption) (int, error) {
	var total int
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.UsageRecord{}).
		Select("COALESCE(SUM(analysis_count), 0)").
		Where("organization_id = ? AND date >= ? AND date <= ?", orgID, utils.DayKey(from), utils.DayKey(to)).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *usageRepository) DeleteOlderThan(ctx context.Context, day time.Time, opts ...utils.DBOption) (int64, error) {
	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("date < ?", utils.DayKey(day)).
		Delete(&model.UsageRecord{})
	return result.RowsAffected, result.Error
}
