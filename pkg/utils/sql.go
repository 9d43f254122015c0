package utils

import (
	"fmt"

	"gorm.io/gorm"
)

type DBOption func(*gorm.DB) *gorm.DB

func ApplyOptions(db *gorm.DB, opts ...DBOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func WithTx(tx *gorm.DB) DBOption {
	return func(_ *gorm.DB) *gorm.DB {
		return tx
	}
}

func WithPreload(column string, args ...interface{}) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(column, args...)
	}
}

func WithOrder(column string, desc bool) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		direction := "ASC"
		if desc {
			direction = "DESC"
		}
		return db.Order(fmt.Sprintf("%s %s", column, direction))
	}
}
