package dto

import (
	"time"
)

type ListingOrigin string

const (
	ListingOriginScraped      ListingOrigin = "scraped"
	ListingOriginAIResearched ListingOrigin = "ai-researched"
)

type AnalyzeRequest struct {
	VehicleInfo
	AskPrice *float64 `json:"ask_price,omitempty" validate:"omitempty,gt=0"`
	URLs     []string `json:"urls,omitempty" validate:"max=10"`
	Discover bool     `json:"discover"`
}

type AnalyzedVehicle struct {
	Year     int      `json:"year"`
	Make     string   `json:"make"`
	Model    string   `json:"model"`
	Variant  string   `json:"variant,omitempty"`
	AskPrice *float64 `json:"ask_price,omitempty"`
}

// AnalyzedListing is a scraped or AI-researched comparable shown to the caller.
type AnalyzedListing struct {
	URL          string        `json:"url"`
	Source       string        `json:"source"`
	Status       ListingOrigin `json:"status"`
	Title        string        `json:"title"`
	Price        *float64      `json:"price,omitempty"`
	Year         *int          `json:"year,omitempty"`
	Odometer     *int          `json:"odometer,omitempty"`
	Location     string        `json:"location,omitempty"`
	Seller       string        `json:"seller,omitempty"`
	SellerType   SellerType    `json:"seller_type,omitempty"`
	Condition    string        `json:"condition,omitempty"`
	Transmission string        `json:"transmission,omitempty"`
	FuelType     string        `json:"fuel_type,omitempty"`
	Description  string        `json:"description,omitempty"`
	Features     []string      `json:"features,omitempty"`
	ScrapedAt    *time.Time    `json:"scraped_at,omitempty"`
}

type ScrapingStats struct {
	Total        int `json:"total"`
	Success      int `json:"success"`
	Blocked      int `json:"blocked"`
	Scraped      int `json:"scraped"`
	AIResearched int `json:"ai_researched"`
}

type ScrapedAnalysis struct {
	Metrics    *MarketMetrics   `json:"metrics"`
	Analysis   *ListingAnalysis `json:"analysis"`
	DataSource string           `json:"data_source"`
	Disclaimer string           `json:"disclaimer"`
}

type MarketResearchView struct {
	Summary  MarketSummary `json:"summary"`
	Insights []string      `json:"insights"`
}

type AnalyzeResponse struct {
	Vehicle         AnalyzedVehicle    `json:"vehicle"`
	ScrapedListings []AnalyzedListing  `json:"scraped_listings"`
	ScrapingStats   ScrapingStats      `json:"scraping_stats"`
	ScrapedAnalysis *ScrapedAnalysis   `json:"scraped_analysis,omitempty"`
	DiscoveredURLs  []DiscoveredURL    `json:"discovered_urls,omitempty"`
	DataSource      string             `json:"data_source"`
	DataFreshness   string             `json:"data_freshness"`
	Disclaimer      string             `json:"disclaimer"`
	ScrapingErrors  []string           `json:"scraping_errors,omitempty"`
	ScrapingNote    string             `json:"scraping_note,omitempty"`
	MarketResearch  MarketResearchView `json:"market_research"`
	Valuation       ValuationResult    `json:"valuation"`
	Usage           UsageSummary       `json:"usage"`
}
