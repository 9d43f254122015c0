package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/internal/scraper"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"
)

const defaultRefreshLimit = 50

type DealListingRefreshPayload struct {
	Limit       int `json:"limit"`
	Concurrency int `json:"concurrency"`
}

type DealListingRefreshResult struct {
	DealID   string   `json:"deal_id"`
	URL      string   `json:"url"`
	Status   string   `json:"status"`
	OldPrice *float64 `json:"old_price,omitempty"`
	NewPrice *float64 `json:"new_price,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// DealListingRefreshStrategy re-scrapes the source listing of open deals and
// records the seller's current asking price.
type DealListingRefreshStrategy struct {
	cfg      *config.Config
	log      *logger.Logger
	dealRepo repository.DealRepository
	scraper  scraper.BatchScraper
}

func NewDealListingRefreshStrategy(cfg *config.Config, log *logger.Logger, dealRepo repository.DealRepository, batchScraper scraper.BatchScraper) JobExecutionStrategy {
	return &DealListingRefreshStrategy{
		cfg:      cfg,
		log:      log,
		dealRepo: dealRepo,
		scraper:  batchScraper,
	}
}

func (s *DealListingRefreshStrategy) GetType() JobType {
	return JobTypeDealListingRefresh
}

func (s *DealListingRefreshStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	var payload DealListingRefreshPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
			return failed(fmt.Sprintf("failed to unmarshal job payload: %v", err), fmt.Errorf("failed to unmarshal job payload: %w", err))
		}
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultRefreshLimit
	}
	if payload.Concurrency <= 0 {
		payload.Concurrency = s.cfg.Scraper.Concurrency
	}

	deals, err := s.dealRepo.GetOpenWithSource(ctx, payload.Limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load open deals", logger.ErrorField(err))
		return failed(fmt.Sprintf("failed to load open deals: %v", err), fmt.Errorf("failed to load open deals: %w", err))
	}
	if len(deals) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no open deals with a source url"}, nil
	}

	urls := make([]string, 0, len(deals))
	for _, d := range deals {
		urls = append(urls, *d.SourceURL)
	}

	batch := s.scraper.ScrapeBatch(ctx, urls, payload.Concurrency, func(completed, total int) {
		s.log.DebugContext(ctx, "Deal listing refresh progress", logger.IntField("completed", completed), logger.IntField("total", total))
	})

	listings := make(map[string]dto.ListingRecord, len(batch.Listings))
	for _, l := range batch.Listings {
		listings[l.URL] = l
	}
	failures := make(map[string]dto.FailedURL, len(batch.Failures))
	for _, f := range batch.Failures {
		failures[f.URL] = f
	}

	var (
		results              = make([]DealListingRefreshResult, 0, len(deals))
		hasError, hasSuccess bool
	)
	for i := range deals {
		if !utils.ShouldContinue(ctx, s.log) {
			s.log.InfoContext(ctx, "Received stop signal, deal listing refresh stopped")
			hasError = true
			break
		}
		deal := &deals[i]
		url := *deal.SourceURL
		res := DealListingRefreshResult{DealID: deal.ID.String(), URL: url, OldPrice: deal.AskPrice}

		listing, ok := listings[url]
		switch {
		case !ok:
			res.Status = string(dto.FetchStatusError)
			if f, found := failures[url]; found {
				res.Status = string(f.Status)
				res.Error = f.Error
			}
			hasError = true
		case !listing.HasPrice():
			res.Status = "no_price"
			hasSuccess = true
		case deal.AskPrice != nil && math.Abs(*deal.AskPrice-listing.Price.Amount) < 0.5:
			res.Status = "unchanged"
			hasSuccess = true
		default:
			deal.AskPrice = utils.ToPointer(listing.Price.Amount)
			if err := s.dealRepo.Update(ctx, deal); err != nil {
				s.log.ErrorContext(ctx, "Failed to update deal ask price", logger.ErrorField(err), logger.StringField("deal_id", res.DealID))
				res.Status = string(dto.FetchStatusError)
				res.Error = err.Error()
				hasError = true
				break
			}
			res.Status = "updated"
			res.NewPrice = deal.AskPrice
			hasSuccess = true
		}
		results = append(results, res)
	}

	s.log.InfoContext(ctx, "Deal listing refresh completed",
		logger.IntField("deals", len(deals)),
		logger.IntField("scraped", batch.TotalScraped),
		logger.IntField("failed", batch.TotalFailed),
	)

	out, err := json.Marshal(results)
	if err != nil {
		return failed(fmt.Sprintf("failed to marshal results: %v", err), fmt.Errorf("failed to marshal results: %w", err))
	}

	switch {
	case hasError && hasSuccess:
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(out)}, nil
	case hasError:
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(out)}, nil
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(out)}, nil
}
