package dto

import (
	"time"
)

type FetchStatus string

const (
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusBlocked FetchStatus = "blocked"
	FetchStatusError   FetchStatus = "error"
)

type SellerType string

const (
	SellerTypeDealer  SellerType = "dealer"
	SellerTypePrivate SellerType = "private"
	SellerTypeUnknown SellerType = "unknown"
)

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Odometer struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// ListingRecord is one extracted listing. A successful record always has a
// title or a price; a failed one carries only its URL, source, status and error.
type ListingRecord struct {
	URL          string      `json:"url"`
	Source       string      `json:"source"`
	Status       FetchStatus `json:"status"`
	Title        string      `json:"title,omitempty"`
	Price        *Price      `json:"price,omitempty"`
	Year         *int        `json:"year,omitempty"`
	Odometer     *Odometer   `json:"odometer,omitempty"`
	Location     string      `json:"location,omitempty"`
	SellerName   string      `json:"seller_name,omitempty"`
	SellerType   SellerType  `json:"seller_type,omitempty"`
	Condition    string      `json:"condition,omitempty"`
	Transmission string      `json:"transmission,omitempty"`
	FuelType     string      `json:"fuel_type,omitempty"`
	BodyType     string      `json:"body_type,omitempty"`
	Colour       string      `json:"colour,omitempty"`
	Description  string      `json:"description,omitempty"`
	Features     []string    `json:"features,omitempty"`
	RawContent   string      `json:"raw_content,omitempty"`
	ScrapedAt    time.Time   `json:"scraped_at"`
	Error        string      `json:"error,omitempty"`
}

func (l ListingRecord) HasPrice() bool {
	return l.Price != nil && l.Price.Amount > 0
}

// FetchResult is the outcome of fetching one URL, before extraction.
type FetchResult struct {
	URL        string        `json:"url"`
	Source     string        `json:"source"`
	Status     FetchStatus   `json:"status"`
	Content    string        `json:"-"`
	PageTitle  string        `json:"page_title,omitempty"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

type FailedURL struct {
	URL    string      `json:"url"`
	Status FetchStatus `json:"status"`
	Error  string      `json:"error"`
}

// ScrapeBatchResult keeps successes and failures in input order.
type ScrapeBatchResult struct {
	Listings       []ListingRecord `json:"listings"`
	Failures       []FailedURL     `json:"failures"`
	TotalRequested int             `json:"total_requested"`
	ValidURLCount  int             `json:"valid_url_count"`
	InvalidCount   int             `json:"invalid_count"`
	TotalScraped   int             `json:"total_scraped"`
	TotalFailed    int             `json:"total_failed"`
}

// BlockedCount counts failures caused by bot defenses.
func (r *ScrapeBatchResult) BlockedCount() int {
	n := 0
	for _, f := range r.Failures {
		if f.Status == FetchStatusBlocked {
			n++
		}
	}
	return n
}

// ProgressFunc receives the number of processed valid URLs after each batch.
type ProgressFunc func(completed, total int)

type ScrapeRequest struct {
	URLs           []string        `json:"urls" validate:"required,min=1,max=10"`
	VehicleContext *VehicleContext `json:"vehicle_context,omitempty"`
}

type VehicleContext struct {
	Year        int      `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2030"`
	Make        string   `json:"make,omitempty"`
	Model       string   `json:"model,omitempty"`
	AskingPrice *float64 `json:"asking_price,omitempty" validate:"omitempty,gt=0"`
}

type ScrapeResponse struct {
	Result   *ScrapeBatchResult `json:"result"`
	Metrics  *MarketMetrics     `json:"metrics"`
	Analysis *ListingAnalysis   `json:"analysis,omitempty"`
	Usage    *UsageSummary      `json:"usage,omitempty"`
}

type DiscoveredURL struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"`
}
