package repository

import (
	"context"
	"errors"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.Organization, error)
	Create(ctx context.Context, org *model.Organization, opts ...utils.DBOption) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan, opts ...utils.DBOption) error
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

// GetByID returns nil without error when the organization does not exist.
func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.Organization, error) {
	var org model.Organization
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("id = ?", id).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(org).Error
}

func (r *organizationRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan, opts ...utils.DBOption) error {
	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Organization{}).
		Where("id = ?", id).
		Update("plan", plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
