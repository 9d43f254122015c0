package dto

type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Median  float64 `json:"median"`
	Average float64 `json:"average"`
}

type OdometerRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Average int `json:"average"`
}

type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type SellerTypeCount struct {
	Dealer  int `json:"dealer"`
	Private int `json:"private"`
	Unknown int `json:"unknown"`
}

// MarketMetrics summarizes priced listings only.
type MarketMetrics struct {
	Count         int             `json:"count"`
	PriceRange    PriceRange      `json:"price_range"`
	OdometerRange *OdometerRange  `json:"odometer_range,omitempty"`
	YearRange     *YearRange      `json:"year_range,omitempty"`
	SellerTypes   SellerTypeCount `json:"seller_types"`
	Locations     []string        `json:"locations"`
}

type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

type Trend string

const (
	TrendRising  Trend = "RISING"
	TrendStable  Trend = "STABLE"
	TrendFalling Trend = "FALLING"
)

const DataSourceAIEstimated = "ai-estimated"

type ComparableListing struct {
	Source      string  `json:"source" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Odometer    *int    `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	Year        int     `json:"year" validate:"gte=1900,lte=2100"`
	Notes       string  `json:"notes,omitempty"`
	IsEstimated bool    `json:"is_estimated"`
}

type ValueRange struct {
	Low  float64 `json:"low" validate:"gte=0"`
	High float64 `json:"high" validate:"gtefield=Low"`
}

type MarketSummary struct {
	AveragePrice    float64    `json:"average_price" validate:"gte=0"`
	PriceRange      ValueRange `json:"price_range"`
	AverageOdometer int        `json:"average_odometer" validate:"gte=0"`
	DemandLevel     Level      `json:"demand_level" validate:"oneof=HIGH MEDIUM LOW"`
	SupplyLevel     Level      `json:"supply_level" validate:"oneof=HIGH MEDIUM LOW"`
	MarketTrend     Trend      `json:"market_trend" validate:"oneof=RISING STABLE FALLING"`
	BestTimeToSell  string     `json:"best_time_to_sell"`
	PopularVariants []string   `json:"popular_variants"`
}

// MarketResearch is an estimate of the market, never live data.
type MarketResearch struct {
	DataSource         string              `json:"data_source"`
	DataFreshness      string              `json:"data_freshness"`
	Disclaimer         string              `json:"disclaimer"`
	ComparableListings []ComparableListing `json:"comparable_listings" validate:"required,min=1,dive"`
	MarketSummary      MarketSummary       `json:"market_summary"`
	Insights           []string            `json:"insights"`
	Fallback           bool                `json:"fallback"`
}

type PriceRecommendation struct {
	FairMarketValue float64 `json:"fair_market_value"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	Confidence      string  `json:"confidence"`
}

// ListingAnalysis is the model's read of real scraped listings.
type ListingAnalysis struct {
	Summary             string               `json:"summary,omitempty"`
	MarketPosition      string               `json:"market_position,omitempty"`
	PriceAnalysis       string               `json:"price_analysis,omitempty"`
	PriceRecommendation *PriceRecommendation `json:"price_recommendation,omitempty"`
	BestDeals           []string             `json:"best_deals,omitempty"`
	Overpriced          []string             `json:"overpriced,omitempty"`
	Opportunities       []string             `json:"opportunities,omitempty"`
	Risks               []string             `json:"risks,omitempty"`
	NegotiationTips     []string             `json:"negotiation_tips,omitempty"`
	Recommendations     []string             `json:"recommendations,omitempty"`
	NegotiationLeverage string               `json:"negotiation_leverage,omitempty"`
}

type MarketResearchInput struct {
	Vehicle       VehicleInfo
	ReferenceURLs []string
}

type ListingAnalysisInput struct {
	Listings []ListingRecord
	Metrics  *MarketMetrics
	Vehicle  *VehicleContext
	AskPrice *float64
}
