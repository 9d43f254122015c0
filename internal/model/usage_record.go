package model

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord counts analyses per organization per UTC calendar day.
type UsageRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_org_date" json:"organization_id"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_usage_org_date" json:"date"`
	AnalysisCount  int       `gorm:"not null;default:0" json:"analysis_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
