package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error)
	GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error)
	Get(ctx context.Context, param model.GetUserParam, opts ...utils.DBOption) ([]model.User, error)
	Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, decidedBy string, decidedAt time.Time, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Organization").Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Organization").Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) Get(ctx context.Context, param model.GetUserParam, opts ...utils.DBOption) ([]model.User, error) {
	var users []model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Preload("Organization")

	if param.Status != nil {
		tx = tx.Where("status = ?", *param.Status)
	}
	if param.Email != nil {
		tx = tx.Where("LOWER(email) = ?", strings.ToLower(*param.Email))
	}
	if param.Limit != nil {
		tx = tx.Limit(*param.Limit)
	}

	if err := tx.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(user).Error
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, decidedBy string, decidedAt time.Time, opts ...utils.DBOption) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if status == model.UserStatusApproved {
		updates["approved_at"] = decidedAt
		updates["approved_by"] = decidedBy
	}

	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
