package scraper

import (
	"context"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 3

// BatchScraper scrapes URL lists without failing.
type BatchScraper interface {
	ScrapeBatch(ctx context.Context, urls []string, concurrency int, progress dto.ProgressFunc) dto.ScrapeBatchResult
}

// Orchestrator runs a Fetcher and the Extractor over URL lists in fixed-size
// sequential batches.
type Orchestrator struct {
	fetcher     Fetcher
	extractor   *Extractor
	log         *logger.Logger
	concurrency int
	delay       time.Duration
	now         func() time.Time
}

func NewOrchestrator(fetcher Fetcher, extractor *Extractor, cfg config.Scraper, log *logger.Logger) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &Orchestrator{
		fetcher:     fetcher,
		extractor:   extractor,
		log:         log,
		concurrency: concurrency,
		delay:       cfg.BatchDelay,
		now:         utils.TimeNowUTC,
	}
}

// ScrapeBatch never fails: every non-blank input URL ends up either in
// Listings or in Failures, in input order. concurrency <= 0 uses the
// configured default.
func (o *Orchestrator) ScrapeBatch(ctx context.Context, urls []string, concurrency int, progress dto.ProgressFunc) dto.ScrapeBatchResult {
	if concurrency <= 0 {
		concurrency = o.concurrency
	}

	result := dto.ScrapeBatchResult{
		Listings: []dto.ListingRecord{},
		Failures: []dto.FailedURL{},
	}

	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		result.TotalRequested++
		if _, err := ValidateURL(raw); err != nil {
			result.InvalidCount++
			result.Failures = append(result.Failures, dto.FailedURL{
				URL:    raw,
				Status: dto.FetchStatusError,
				Error:  ErrInvalidURL.Error(),
			})
			continue
		}
		valid = append(valid, raw)
	}
	result.ValidURLCount = len(valid)

	o.log.InfoContext(ctx, "Starting batch scrape",
		logger.StringField("backend", o.fetcher.Name()),
		logger.IntField("valid_urls", len(valid)),
		logger.IntField("invalid_urls", result.InvalidCount),
		logger.IntField("concurrency", concurrency),
	)

	for start := 0; start < len(valid); start += concurrency {
		end := start + concurrency
		if end > len(valid) {
			end = len(valid)
		}

		listings := o.runBatch(ctx, valid[start:end])
		for _, l := range listings {
			if l.Status == dto.FetchStatusSuccess {
				result.Listings = append(result.Listings, l)
				continue
			}
			result.Failures = append(result.Failures, dto.FailedURL{
				URL:    l.URL,
				Status: l.Status,
				Error:  l.Error,
			})
		}

		if progress != nil {
			progress(end, len(valid))
		}

		if end < len(valid) && o.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.delay):
			}
		}
	}

	result.TotalScraped = len(result.Listings)
	result.TotalFailed = len(result.Failures)

	o.log.InfoContext(ctx, "Batch scrape finished",
		logger.IntField("scraped", result.TotalScraped),
		logger.IntField("failed", result.TotalFailed),
		logger.IntField("blocked", result.BlockedCount()),
	)
	return result
}

// runBatch fetches every URL of one batch concurrently and returns records
// in the batch's order.
func (o *Orchestrator) runBatch(ctx context.Context, batch []string) []dto.ListingRecord {
	records := make([]dto.ListingRecord, len(batch))

	var g errgroup.Group
	for i, rawURL := range batch {
		i, rawURL := i, rawURL
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("Recovered panic while scraping",
						logger.StringField("url", rawURL),
						logger.Field("panic", r),
					)
					records[i] = o.extractor.Build(failedResult(rawURL, dto.FetchStatusError, "internal scraper error", time.Now()), o.now())
				}
			}()

			if ctx.Err() != nil {
				records[i] = o.extractor.Build(failedResult(rawURL, dto.FetchStatusError, "request cancelled", time.Now()), o.now())
				return nil
			}
			records[i] = o.extractor.Build(o.fetcher.Fetch(ctx, rawURL), o.now())
			return nil
		})
	}
	_ = g.Wait()

	return records
}
