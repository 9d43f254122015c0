package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/market"
	"tradepilot/internal/scraper"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/logger"

	"github.com/spf13/cobra"
)

var scrapeOpts struct {
	urls         []string
	year         int
	vehicleMake  string
	vehicleModel string
	discover     bool
	concurrency  int
}

// scrapeCmd runs the scraping pipeline without the database so operators can
// check what a site returns.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape listing URLs and print listings and market metrics as JSON",
	RunE:  runScrape,
}

type scrapeOutput struct {
	Discovered []dto.DiscoveredURL   `json:"discovered,omitempty"`
	Result     dto.ScrapeBatchResult `json:"result"`
	Metrics    *dto.MarketMetrics    `json:"metrics,omitempty"`
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fetcher, err := scraper.NewFetcher(cfg, log)
	if err != nil {
		return err
	}
	orchestrator := scraper.NewOrchestrator(fetcher, scraper.NewExtractor(cfg.Scraper), cfg.Scraper, log)

	var out scrapeOutput
	urls := append([]string{}, scrapeOpts.urls...)
	if len(urls) == 0 && scrapeOpts.discover {
		if scrapeOpts.year == 0 || strings.TrimSpace(scrapeOpts.vehicleMake) == "" || strings.TrimSpace(scrapeOpts.vehicleModel) == "" {
			return fmt.Errorf("--year, --make and --model are required with --discover")
		}
		discovery := scraper.NewDiscovery(cfg.Discovery, cfg.Scraper, cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval), cfg.Cache.DiscoveryExpiration, log)
		out.Discovered = discovery.Discover(cmd.Context(), scrapeOpts.year, scrapeOpts.vehicleMake, scrapeOpts.vehicleModel, cfg.Discovery.MaxURLs)
		for _, d := range out.Discovered {
			urls = append(urls, d.URL)
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("at least one --url is required")
	}

	concurrency := scrapeOpts.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Scraper.Concurrency
	}
	out.Result = orchestrator.ScrapeBatch(cmd.Context(), urls, concurrency, func(completed, total int) {
		log.Info("Scrape progress", logger.IntField("completed", completed), logger.IntField("total", total))
	})
	if len(out.Result.Listings) > 0 {
		out.Metrics = market.Aggregate(out.Result.Listings)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeOpts.urls, "url", nil, "listing URL to scrape, repeatable")
	scrapeCmd.Flags().IntVar(&scrapeOpts.year, "year", 0, "vehicle year used for discovery")
	scrapeCmd.Flags().StringVar(&scrapeOpts.vehicleMake, "make", "", "vehicle make used for discovery")
	scrapeCmd.Flags().StringVar(&scrapeOpts.vehicleModel, "model", "", "vehicle model used for discovery")
	scrapeCmd.Flags().BoolVar(&scrapeOpts.discover, "discover", false, "search known marketplaces when no --url is given")
	scrapeCmd.Flags().IntVar(&scrapeOpts.concurrency, "concurrency", 0, "parallel fetches per batch")
}
