package repository

import (
	"context"
	"errors"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle, opts ...utils.DBOption) error
	GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Vehicle, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(vehicle).Error
}

func (r *vehicleRepository) GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}
