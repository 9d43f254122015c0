package model

import (
	"time"

	"github.com/google/uuid"
)

type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "LOW"
	RiskToleranceMedium RiskTolerance = "MEDIUM"
	RiskToleranceHigh   RiskTolerance = "HIGH"
)

type NegotiationTone string

const (
	TonePolite NegotiationTone = "POLITE"
	ToneFirm   NegotiationTone = "FIRM"
	ToneUrgent NegotiationTone = "URGENT"
	ToneCasual NegotiationTone = "CASUAL"
)

type AIPreference struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TargetMarginPercent float64         `gorm:"not null;default:15" json:"target_margin_percent"`
	MaxDaysInStock      int             `gorm:"not null;default:45" json:"max_days_in_stock"`
	RiskTolerance       RiskTolerance   `gorm:"type:varchar(20);not null;default:MEDIUM" json:"risk_tolerance"`
	NegotiationTone     NegotiationTone `gorm:"type:varchar(20);not null;default:POLITE" json:"negotiation_tone"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AIPreference) TableName() string {
	return "ai_preferences"
}

// DefaultAIPreference is what a user gets before saving any preference.
func DefaultAIPreference(userID uuid.UUID) AIPreference {
	return AIPreference{
		UserID:              userID,
		TargetMarginPercent: 15,
		MaxDaysInStock:      45,
		RiskTolerance:       RiskToleranceMedium,
		NegotiationTone:     TonePolite,
	}
}
