package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan string

const (
	PlanFree     Plan = "FREE"
	PlanBasic    Plan = "BASIC"
	PlanPremium  Plan = "PREMIUM"
	PlanBusiness Plan = "BUSINESS"
)

// UnlimitedAnalyses is the daily limit sentinel for plans without a quota.
const UnlimitedAnalyses = -1

var planDailyLimits = map[Plan]int{
	PlanFree:     3,
	PlanBasic:    10,
	PlanPremium:  100,
	PlanBusiness: UnlimitedAnalyses,
}

// Normalize maps unknown or empty plans to the lowest tier.
func (p Plan) Normalize() Plan {
	if _, ok := planDailyLimits[p]; ok {
		return p
	}
	return PlanFree
}

func (p Plan) IsValid() bool {
	_, ok := planDailyLimits[p]
	return ok
}

func (p Plan) DailyLimit() int {
	return planDailyLimits[p.Normalize()]
}

func (p Plan) IsUnlimited() bool {
	return p.DailyLimit() == UnlimitedAnalyses
}

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Plan      Plan      `gorm:"type:varchar(20);not null;default:FREE" json:"plan"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
