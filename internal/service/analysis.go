package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/market"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/internal/scraper"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
)

const (
	scrapedDataSource    = "Web scraping (primary) + AI Market Research (supplementary)"
	scrapedDataFreshness = "Real-time scraped data"
	scrapedDisclaimer    = "Primary analysis based on real scraped data. AI research supplements where needed."
	scrapedOnlySource    = "Real-time web scraping"
	scrapedOnlyNote      = "Based on actual data scraped from provided URLs"
	allBlockedNote       = "Web scraping was blocked by all sites. Analysis uses AI market research instead. This is common for Australian car sites which have strong anti-bot protections."
)

// AnalysisService runs the full market analysis behind the usage gate.
type AnalysisService interface {
	Analyze(ctx context.Context, user *model.User, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	Scrape(ctx context.Context, user *model.User, req dto.ScrapeRequest) (*dto.ScrapeResponse, error)
}

type analysisService struct {
	cfg            *config.Config
	log            *logger.Logger
	validator      *validator.Validate
	usage          UsageService
	valuation      ValuationService
	research       MarketResearchService
	scraper        scraper.BatchScraper
	discoverer     scraper.URLDiscoverer
	aiRepo         repository.AIRepository
	preferenceRepo repository.AIPreferenceRepository
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	v *validator.Validate,
	usage UsageService,
	valuation ValuationService,
	research MarketResearchService,
	batchScraper scraper.BatchScraper,
	discoverer scraper.URLDiscoverer,
	aiRepo repository.AIRepository,
	preferenceRepo repository.AIPreferenceRepository,
) AnalysisService {
	return &analysisService{
		cfg:            cfg,
		log:            log,
		validator:      v,
		usage:          usage,
		valuation:      valuation,
		research:       research,
		scraper:        batchScraper,
		discoverer:     discoverer,
		aiRepo:         aiRepo,
		preferenceRepo: preferenceRepo,
	}
}

func (s *analysisService) Analyze(ctx context.Context, user *model.User, req dto.AnalyzeRequest) (resp *dto.AnalyzeResponse, err error) {
	reservation, err := s.usage.Reserve(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.usage.Release(ctx, reservation)
		}
	}()

	if req.Year == 0 || strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("%w: year, make, and model are required", apperrors.ErrInvalidInput)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	ctx = logger.NewContext(ctx, s.log.With(
		logger.StringField("organization_id", user.OrganizationID.String()),
		logger.StringField("vehicle", vehicleLabel(req.VehicleInfo)),
	))

	urls := nonBlank(req.URLs)
	var discovered []dto.DiscoveredURL
	if len(urls) == 0 && req.Discover && s.discoverer != nil {
		discovered = s.discoverer.Discover(ctx, req.Year, req.Make, req.Model, s.maxURLs())
		for _, d := range discovered {
			urls = append(urls, d.URL)
		}
	}
	if len(urls) > s.maxURLs() {
		urls = urls[:s.maxURLs()]
	}

	var (
		batch           dto.ScrapeBatchResult
		metrics         *dto.MarketMetrics
		listingAnalysis *dto.ListingAnalysis
		scrapingErrors  []string
	)
	if len(urls) > 0 {
		s.log.InfoContext(ctx, "Scraping listings for analysis", logger.IntField("urls", len(urls)))
		batch = s.scraper.ScrapeBatch(ctx, urls, s.cfg.Scraper.AnalyzeConcurrency, nil)
		metrics = market.Aggregate(batch.Listings)
		for _, f := range batch.Failures {
			scrapingErrors = append(scrapingErrors, fmt.Sprintf("%s: %s", hostOrURL(f.URL), f.Error))
		}
		if len(batch.Listings) > 0 {
			listingAnalysis = s.analyzeListings(ctx, dto.ListingAnalysisInput{
				Listings: batch.Listings,
				Metrics:  metrics,
				Vehicle:  &dto.VehicleContext{Year: req.Year, Make: req.Make, Model: req.Model, AskingPrice: req.AskPrice},
				AskPrice: req.AskPrice,
			})
		}
	}

	research := s.research.Research(ctx, dto.MarketResearchInput{Vehicle: req.VehicleInfo, ReferenceURLs: urls})

	valuation := s.valuation.Valuate(ctx, dto.ValuationInput{
		Vehicle:             req.VehicleInfo,
		AskPrice:            req.AskPrice,
		Market:              combineMarketData(batch.Listings, research),
		TargetMarginPercent: s.targetMargin(ctx, user),
	})

	if err := s.usage.Commit(ctx, reservation); err != nil {
		s.log.ErrorContext(ctx, "Analysis completed but usage was not recorded", logger.ErrorField(err))
	}
	usage := s.usageAfterCommit(ctx, reservation)

	resp = &dto.AnalyzeResponse{
		Vehicle: dto.AnalyzedVehicle{
			Year:     req.Year,
			Make:     req.Make,
			Model:    req.Model,
			Variant:  req.Variant,
			AskPrice: req.AskPrice,
		},
		ScrapedListings: buildAnalyzedListings(batch.Listings, research.ComparableListings),
		ScrapingStats: dto.ScrapingStats{
			Total:        len(batch.Listings) + len(research.ComparableListings),
			Success:      len(batch.Listings) + len(research.ComparableListings),
			Blocked:      batch.TotalFailed,
			Scraped:      len(batch.Listings),
			AIResearched: len(research.ComparableListings),
		},
		DiscoveredURLs: discovered,
		ScrapingErrors: scrapingErrors,
		MarketResearch: dto.MarketResearchView{
			Summary:  research.MarketSummary,
			Insights: research.Insights,
		},
		Valuation: valuation,
		Usage:     usage,
	}

	if len(batch.Listings) > 0 {
		resp.ScrapedAnalysis = &dto.ScrapedAnalysis{
			Metrics:    metrics,
			Analysis:   listingAnalysis,
			DataSource: scrapedOnlySource,
			Disclaimer: scrapedOnlyNote,
		}
		resp.DataSource = scrapedDataSource
		resp.DataFreshness = scrapedDataFreshness
		resp.Disclaimer = scrapedDisclaimer
	} else {
		resp.DataSource = research.DataSource
		resp.DataFreshness = research.DataFreshness
		resp.Disclaimer = research.Disclaimer
		if len(scrapingErrors) > 0 {
			resp.ScrapingNote = allBlockedNote
		}
	}

	s.log.InfoContext(ctx, "Analysis completed",
		logger.IntField("scraped", len(batch.Listings)),
		logger.IntField("failed", batch.TotalFailed),
		logger.StringField("recommendation", string(valuation.Recommendation)),
		logger.StringField("valuation_source", string(valuation.Source)),
	)
	return resp, nil
}

func (s *analysisService) Scrape(ctx context.Context, user *model.User, req dto.ScrapeRequest) (resp *dto.ScrapeResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	urls := nonBlank(req.URLs)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: at least one URL is required", apperrors.ErrInvalidInput)
	}
	if len(urls) > s.maxURLs() {
		return nil, fmt.Errorf("%w: maximum %d URLs allowed per request", apperrors.ErrInvalidInput, s.maxURLs())
	}

	reservation, err := s.usage.Reserve(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.usage.Release(ctx, reservation)
		}
	}()

	batch := s.scraper.ScrapeBatch(ctx, urls, s.cfg.Scraper.Concurrency, func(completed, total int) {
		s.log.InfoContext(ctx, "Scrape progress", logger.IntField("completed", completed), logger.IntField("total", total))
	})
	metrics := market.Aggregate(batch.Listings)

	resp = &dto.ScrapeResponse{Result: &batch, Metrics: metrics}
	if len(batch.Listings) > 0 {
		input := dto.ListingAnalysisInput{Listings: batch.Listings, Metrics: metrics, Vehicle: req.VehicleContext}
		if req.VehicleContext != nil {
			input.AskPrice = req.VehicleContext.AskingPrice
		}
		resp.Analysis = s.analyzeListings(ctx, input)
	}

	if err := s.usage.Commit(ctx, reservation); err != nil {
		s.log.ErrorContext(ctx, "Scrape completed but usage was not recorded", logger.ErrorField(err))
	}
	usage := s.usageAfterCommit(ctx, reservation)
	resp.Usage = &usage
	return resp, nil
}

// usageAfterCommit never fails a finished run; it falls back to the snapshot
// taken at admission.
func (s *analysisService) usageAfterCommit(ctx context.Context, reservation *Reservation) dto.UsageSummary {
	usage, err := s.usage.Summary(ctx, reservation.OrganizationID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to refresh usage summary", logger.ErrorField(err))
		return summaryFromCheck(reservation.Check)
	}
	return usage
}

func (s *analysisService) analyzeListings(ctx context.Context, input dto.ListingAnalysisInput) *dto.ListingAnalysis {
	analysis, err := s.aiRepo.AnalyzeListings(ctx, input)
	if err != nil {
		s.log.WarnContext(ctx, "Listing analysis unavailable", logger.ErrorField(err))
		return nil
	}
	return analysis
}

func (s *analysisService) targetMargin(ctx context.Context, user *model.User) *float64 {
	if s.preferenceRepo == nil {
		return nil
	}
	pref, err := s.preferenceRepo.GetByUserID(ctx, user.ID)
	if err != nil || pref == nil {
		return nil
	}
	return utils.ToPointer(pref.TargetMarginPercent)
}

func (s *analysisService) maxURLs() int {
	if s.cfg.Scraper.MaxURLsPerRequest > 0 {
		return s.cfg.Scraper.MaxURLsPerRequest
	}
	return 10
}

// combineMarketData merges scraped and researched comparables. Averages fall
// back to the research summary when no values are known.
func combineMarketData(listings []dto.ListingRecord, research dto.MarketResearch) *dto.MarketData {
	prices := market.Prices(listings)
	var odometers []int
	for _, l := range listings {
		if l.Odometer != nil && l.Odometer.Value > 0 {
			odometers = append(odometers, l.Odometer.Value)
		}
	}
	for _, c := range research.ComparableListings {
		prices = append(prices, c.Price)
		if c.Odometer != nil && *c.Odometer > 0 {
			odometers = append(odometers, *c.Odometer)
		}
	}

	data := &dto.MarketData{
		ComparablePrices: prices,
		ListingsFound:    len(listings) + len(research.ComparableListings),
	}

	avgPrice := research.MarketSummary.AveragePrice
	if len(prices) > 0 {
		total := 0.0
		for _, p := range prices {
			total += p
		}
		avgPrice = math.Round(total / float64(len(prices)))
	}
	data.AverageMarketPrice = &avgPrice

	avgOdo := research.MarketSummary.AverageOdometer
	if len(odometers) > 0 {
		total := 0
		for _, o := range odometers {
			total += o
		}
		avgOdo = int(math.Round(float64(total) / float64(len(odometers))))
	}
	data.AverageOdometer = &avgOdo

	return data
}

func buildAnalyzedListings(scraped []dto.ListingRecord, researched []dto.ComparableListing) []dto.AnalyzedListing {
	out := make([]dto.AnalyzedListing, 0, len(scraped)+len(researched))
	for _, l := range scraped {
		item := dto.AnalyzedListing{
			URL:          l.URL,
			Source:       hostOrURL(l.URL),
			Status:       dto.ListingOriginScraped,
			Title:        l.Title,
			Year:         l.Year,
			Location:     l.Location,
			Seller:       l.SellerName,
			SellerType:   l.SellerType,
			Condition:    l.Condition,
			Transmission: l.Transmission,
			FuelType:     l.FuelType,
			Description:  l.Description,
			Features:     l.Features,
			ScrapedAt:    utils.ToPointer(l.ScrapedAt),
		}
		if item.Title == "" {
			item.Title = "Unknown"
		}
		if l.HasPrice() {
			item.Price = utils.ToPointer(l.Price.Amount)
		}
		if l.Odometer != nil {
			item.Odometer = utils.ToPointer(l.Odometer.Value)
		}
		out = append(out, item)
	}
	for _, c := range researched {
		out = append(out, dto.AnalyzedListing{
			URL:      "https://" + strings.TrimPrefix(c.Source, "www."),
			Source:   c.Source,
			Status:   dto.ListingOriginAIResearched,
			Title:    c.Title,
			Price:    utils.ToPointer(c.Price),
			Year:     utils.ToPointer(c.Year),
			Odometer: c.Odometer,
		})
	}
	return out
}

func nonBlank(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func hostOrURL(raw string) string {
	if host := utils.Hostname(raw); host != "" {
		return host
	}
	return raw
}
