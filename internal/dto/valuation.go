package dto

import (
	"tradepilot/internal/model"
)

type ValuationSource string

const (
	ValuationSourceAI        ValuationSource = "ai"
	ValuationSourceHeuristic ValuationSource = "heuristic"
)

type VehicleInfo struct {
	Year         int    `json:"year" validate:"required,gte=1900,lte=2030"`
	Make         string `json:"make" validate:"required,max=100"`
	Model        string `json:"model" validate:"required,max=100"`
	Variant      string `json:"variant,omitempty" validate:"max=100"`
	Odometer     *int   `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	OdometerMin  *int   `json:"odometer_min,omitempty" validate:"omitempty,gte=0"`
	OdometerMax  *int   `json:"odometer_max,omitempty" validate:"omitempty,gte=0"`
	Transmission string `json:"transmission,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	BodyType     string `json:"body_type,omitempty"`
	Colour       string `json:"colour,omitempty"`
}

// HasOdometerRange is true when both range bounds are set.
func (v VehicleInfo) HasOdometerRange() bool {
	return v.OdometerMin != nil && v.OdometerMax != nil && *v.OdometerMin > 0 && *v.OdometerMax > 0
}

type MarketData struct {
	ComparablePrices   []float64 `json:"comparable_prices,omitempty"`
	AverageMarketPrice *float64  `json:"average_market_price,omitempty"`
	AverageOdometer    *int      `json:"average_odometer,omitempty"`
	ListingsFound      int       `json:"listings_found"`
}

type ValuationInput struct {
	Vehicle             VehicleInfo
	AskPrice            *float64
	Location            string
	Market              *MarketData
	TargetMarginPercent *float64
}

// ValuationResult is checked with these tags before an AI reply is trusted.
type ValuationResult struct {
	FairValueLow        float64              `json:"fair_value_low" validate:"gt=0"`
	FairValueHigh       float64              `json:"fair_value_high" validate:"gtefield=FairValueLow"`
	RecommendedBuyPrice float64              `json:"recommended_buy_price" validate:"gt=0"`
	TargetSellPrice     float64              `json:"target_sell_price" validate:"gtefield=RecommendedBuyPrice"`
	EstimatedMargin     float64              `json:"estimated_margin" validate:"gte=-100,lte=1000"`
	EstimatedDaysToSell int                  `json:"estimated_days_to_sell" validate:"gte=0,lte=3650"`
	RiskScore           int                  `json:"risk_score" validate:"gte=0,lte=100"`
	Recommendation      model.Recommendation `json:"recommendation" validate:"oneof=STRONG_BUY MAYBE SKIP"`
	Confidence          int                  `json:"confidence" validate:"gte=0,lte=100"`
	Reasoning           string               `json:"reasoning" validate:"required"`
	Source              ValuationSource      `json:"source"`
}
