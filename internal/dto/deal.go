package dto

import (
	"tradepilot/internal/model"
)

type CreateDealRequest struct {
	Vehicle    DealVehicleRequest `json:"vehicle" validate:"required"`
	SourceURL  *string            `json:"source_url,omitempty" validate:"omitempty,url"`
	SourceSite *string            `json:"source_site,omitempty" validate:"omitempty,max=100"`
	AskPrice   *float64           `json:"ask_price,omitempty" validate:"omitempty,gt=0"`
	Notes      *string            `json:"notes,omitempty"`
}

type DealVehicleRequest struct {
	Year         int     `json:"year" validate:"required,gte=1900,lte=2030"`
	Make         string  `json:"make" validate:"required,max=100"`
	Model        string  `json:"model" validate:"required,max=100"`
	Variant      *string `json:"variant,omitempty" validate:"omitempty,max=100"`
	Odometer     *int    `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	Transmission *string `json:"transmission,omitempty" validate:"omitempty,oneof=AUTOMATIC MANUAL CVT DCT OTHER"`
	FuelType     *string `json:"fuel_type,omitempty" validate:"omitempty,oneof=PETROL DIESEL HYBRID ELECTRIC LPG OTHER"`
	BodyType     *string `json:"body_type,omitempty" validate:"omitempty,oneof=SEDAN HATCHBACK SUV WAGON UTE COUPE CONVERTIBLE VAN OTHER"`
	Colour       *string `json:"colour,omitempty" validate:"omitempty,max=50"`
}

type UpdateDealRequest struct {
	Status              *string  `json:"status,omitempty" validate:"omitempty,oneof=SOURCED CONTACTED OFFERED ACQUIRED RECONDITIONING LISTED SOLD LOST"`
	AskPrice            *float64 `json:"ask_price,omitempty" validate:"omitempty,gt=0"`
	NegotiatedPrice     *float64 `json:"negotiated_price,omitempty" validate:"omitempty,gt=0"`
	ActualPurchasePrice *float64 `json:"actual_purchase_price,omitempty" validate:"omitempty,gt=0"`
	ActualSellPrice     *float64 `json:"actual_sell_price,omitempty" validate:"omitempty,gt=0"`
	ReconditioningCost  *float64 `json:"reconditioning_cost,omitempty" validate:"omitempty,gte=0"`
	OtherCosts          *float64 `json:"other_costs,omitempty" validate:"omitempty,gte=0"`
	Notes               *string  `json:"notes,omitempty"`
}

type ListDealsRequest struct {
	Status         string `query:"status" validate:"omitempty,oneof=SOURCED CONTACTED OFFERED ACQUIRED RECONDITIONING LISTED SOLD LOST"`
	Recommendation string `query:"recommendation" validate:"omitempty,oneof=STRONG_BUY MAYBE SKIP"`
	SortBy         string `query:"sort_by" validate:"omitempty,oneof=created_at ask_price updated_at"`
	SortOrder      string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type DealMessageRequest struct {
	MessageType      string   `json:"message_type" validate:"required,oneof=inquiry offer followup"`
	Tone             string   `json:"tone" validate:"omitempty,oneof=polite firm urgent casual"`
	SellerName       string   `json:"seller_name,omitempty" validate:"max=100"`
	RecommendedOffer *float64 `json:"recommended_offer,omitempty" validate:"omitempty,gt=0"`
}

type DealValuationResponse struct {
	Deal      *model.Deal     `json:"deal"`
	Valuation ValuationResult `json:"valuation"`
	Usage     *UsageSummary   `json:"usage,omitempty"`
}

type DealInsightResponse struct {
	Insight *model.AIInsight `json:"insight"`
}

// DealSummaryInput is what the summary prompt is built from.
type DealSummaryInput struct {
	Vehicle         *model.Vehicle
	AskPrice        *float64
	FairValueLow    *float64
	FairValueHigh   *float64
	EstimatedMargin *float64
	RiskScore       *int
}

// MessageTemplateInput is what the seller message prompt is built from.
type MessageTemplateInput struct {
	Vehicle          *model.Vehicle
	AskPrice         *float64
	RecommendedOffer *float64
	MessageType      string
	Tone             string
	SellerName       string
}

type DashboardStats struct {
	TotalDealsReviewed    int            `json:"total_deals_reviewed"`
	TotalDealsBought      int            `json:"total_deals_bought"`
	TotalDealsSold        int            `json:"total_deals_sold"`
	WinRate               float64        `json:"win_rate"`
	AverageGrossMargin    float64        `json:"average_gross_margin"`
	AverageDaysInStock    int            `json:"average_days_in_stock"`
	TotalProfit           float64        `json:"total_profit"`
	ActiveDeals           int            `json:"active_deals"`
	DealsByStatus         map[string]int `json:"deals_by_status"`
	DealsByRecommendation map[string]int `json:"deals_by_recommendation"`
	RecentDeals           int            `json:"recent_deals"`
}
