package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InsightType string

const (
	InsightPricingExplanation InsightType = "PRICING_EXPLANATION"
	InsightDealSummary        InsightType = "DEAL_SUMMARY"
	InsightMessageTemplate    InsightType = "MESSAGE_TEMPLATE"
)

type AIInsight struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DealID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"deal_id"`
	Type      InsightType    `gorm:"type:varchar(40);not null" json:"type"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	Model     string         `gorm:"type:varchar(100)" json:"model"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}

func (i *AIInsight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
