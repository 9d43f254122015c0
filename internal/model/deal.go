package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealStatus string

const (
	DealStatusSourced        DealStatus = "SOURCED"
	DealStatusContacted      DealStatus = "CONTACTED"
	DealStatusOffered        DealStatus = "OFFERED"
	DealStatusAcquired       DealStatus = "ACQUIRED"
	DealStatusReconditioning DealStatus = "RECONDITIONING"
	DealStatusListed         DealStatus = "LISTED"
	DealStatusSold           DealStatus = "SOLD"
	DealStatusLost           DealStatus = "LOST"
)

// OpenDealStatuses are the statuses still in negotiation with the seller.
var OpenDealStatuses = []DealStatus{DealStatusSourced, DealStatusContacted, DealStatusOffered}

// BoughtDealStatuses are the statuses after the vehicle was acquired.
var BoughtDealStatuses = []DealStatus{DealStatusAcquired, DealStatusReconditioning, DealStatusListed, DealStatusSold}

type Recommendation string

const (
	RecommendationStrongBuy Recommendation = "STRONG_BUY"
	RecommendationMaybe     Recommendation = "MAYBE"
	RecommendationSkip      Recommendation = "SKIP"
)

type Deal struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"organization_id"`
	VehicleID           uuid.UUID       `gorm:"type:uuid;not null" json:"vehicle_id"`
	CreatedByID         *uuid.UUID      `gorm:"type:uuid" json:"created_by_id,omitempty"`
	SourceURL           *string         `gorm:"type:text" json:"source_url,omitempty"`
	SourceSite          *string         `gorm:"type:varchar(100)" json:"source_site,omitempty"`
	Status              DealStatus      `gorm:"type:varchar(20);not null;default:SOURCED;index" json:"status"`
	AskPrice            *float64        `json:"ask_price,omitempty"`
	NegotiatedPrice     *float64        `json:"negotiated_price,omitempty"`
	ActualPurchasePrice *float64        `json:"actual_purchase_price,omitempty"`
	ActualSellPrice     *float64        `json:"actual_sell_price,omitempty"`
	ReconditioningCost  *float64        `json:"reconditioning_cost,omitempty"`
	OtherCosts          *float64        `json:"other_costs,omitempty"`
	EstimatedFairLow    *float64        `json:"estimated_fair_low,omitempty"`
	EstimatedFairHigh   *float64        `json:"estimated_fair_high,omitempty"`
	TargetSellPrice     *float64        `json:"target_sell_price,omitempty"`
	EstimatedMargin     *float64        `json:"estimated_margin,omitempty"`
	EstimatedDaysToSell *int            `json:"estimated_days_to_sell,omitempty"`
	RiskScore           *int            `json:"risk_score,omitempty"`
	AIRecommendation    *Recommendation `gorm:"column:ai_recommendation;type:varchar(20)" json:"ai_recommendation,omitempty"`
	Notes               *string         `gorm:"type:text" json:"notes,omitempty"`
	AcquiredAt          *time.Time      `json:"acquired_at,omitempty"`
	ListedAt            *time.Time      `json:"listed_at,omitempty"`
	SoldAt              *time.Time      `json:"sold_at,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle  *Vehicle    `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Insights []AIInsight `gorm:"foreignKey:DealID" json:"insights,omitempty"`
}

func (Deal) TableName() string {
	return "deals"
}

func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the deal is still being negotiated.
func (d *Deal) IsOpen() bool {
	for _, s := range OpenDealStatuses {
		if d.Status == s {
			return true
		}
	}
	return false
}

// StampStatus records the first time a deal reaches acquired, listed or sold.
func (d *Deal) StampStatus(now time.Time) {
	switch d.Status {
	case DealStatusAcquired:
		if d.AcquiredAt == nil {
			d.AcquiredAt = &now
		}
	case DealStatusListed:
		if d.ListedAt == nil {
			d.ListedAt = &now
		}
	case DealStatusSold:
		if d.SoldAt == nil {
			d.SoldAt = &now
		}
	}
}

type GetDealParam struct {
	OrganizationID uuid.UUID
	Statuses       []DealStatus
	Recommendation *Recommendation
	SortBy         string
	SortDesc       bool
	CreatedAfter   *time.Time
	Limit          *int
}
