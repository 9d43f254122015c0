package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/common"
	"tradepilot/pkg/logger"

	"github.com/gocolly/colly/v2"
)

const (
	defaultSearchURL    = "https://html.duckduckgo.com/html/"
	defaultDiscoveryMax = 10
)

var uddgRegex = regexp.MustCompile(`uddg=([^&]+)`)

// knownCarSites are the listing sites discovery keeps results for.
var knownCarSites = []string{
	"carsales.com.au",
	"gumtree.com.au",
	"autotrader.com.au",
	"carsguide.com.au",
	"drive.com.au",
	"pickles.com.au",
	"manheim.com.au",
	"graysauctions.com",
	"facebook.com/marketplace",
	"carfact.com.au",
}

type siteSearch struct {
	source string
	title  string
	build  func(year int, vehicleMake, vehicleModel, makeSlug, modelSlug, query string) string
}

var siteSearches = []siteSearch{
	{"carsales.com.au", "Carsales", func(_ int, _, _, mk, md, q string) string {
		return fmt.Sprintf("https://www.carsales.com.au/cars/%s/%s/?q=%s", mk, md, q)
	}},
	{"gumtree.com.au", "Gumtree", func(_ int, _, _, mk, md, q string) string {
		return fmt.Sprintf("https://www.gumtree.com.au/s-cars-vans-utes/%s+%s/k0c18320?search=%s", mk, md, q)
	}},
	{"autotrader.com.au", "AutoTrader", func(_ int, _, _, mk, md, _ string) string {
		return fmt.Sprintf("https://www.autotrader.com.au/cars/%s/%s", mk, md)
	}},
	{"carsguide.com.au", "CarsGuide", func(_ int, _, _, mk, md, _ string) string {
		return fmt.Sprintf("https://www.carsguide.com.au/buy-a-car/%s/%s", mk, md)
	}},
	{"drive.com.au", "Drive", func(year int, vehicleMake, vehicleModel, _, _, _ string) string {
		return fmt.Sprintf("https://www.drive.com.au/cars-for-sale/?make=%s&model=%s&year=%d",
			url.QueryEscape(vehicleMake), url.QueryEscape(vehicleModel), year)
	}},
	{"pickles.com.au", "Pickles Auctions", func(_ int, _, _, _, _, q string) string {
		return fmt.Sprintf("https://www.pickles.com.au/cars/search?q=%s", q)
	}},
}

// URLDiscoverer finds candidate listing URLs for a vehicle.
type URLDiscoverer interface {
	Discover(ctx context.Context, year int, vehicleMake, vehicleModel string, max int) []dto.DiscoveredURL
}

type Discovery struct {
	cfg        config.Discovery
	userAgents []string
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *logger.Logger
}

func NewDiscovery(cfg config.Discovery, scraperCfg config.Scraper, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Discovery {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = defaultDiscoveryMax
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Discovery{
		cfg:        cfg,
		userAgents: scraperCfg.UserAgents,
		cache:      c,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// Discover searches the web for listings of the vehicle and pads the result
// with site-search pages of the major listing sites. It never fails.
func (d *Discovery) Discover(ctx context.Context, year int, vehicleMake, vehicleModel string, max int) []dto.DiscoveredURL {
	if max <= 0 {
		max = d.cfg.MaxURLs
	}
	query := fmt.Sprintf("%d %s %s for sale Australia", year, vehicleMake, vehicleModel)
	cacheKey := fmt.Sprintf(common.KEY_DISCOVERY_RESULT, strings.ToLower(query), max)
	if cached, ok := cache.GetFromCache[[]dto.DiscoveredURL](d.cache, cacheKey); ok {
		return cached
	}

	found := d.search(ctx, query)
	found = append(found, SiteSearchURLs(year, vehicleMake, vehicleModel)...)

	seen := make(map[string]bool)
	out := make([]dto.DiscoveredURL, 0, max)
	for _, u := range found {
		if seen[u.URL] {
			continue
		}
		seen[u.URL] = true
		out = append(out, u)
		if len(out) == max {
			break
		}
	}

	d.log.InfoContext(ctx, "Discovered listing URLs",
		logger.StringField("query", query),
		logger.IntField("count", len(out)),
	)

	if d.cache != nil && len(out) > 0 {
		d.cache.Set(cacheKey, out, d.cacheTTL)
	}
	return out
}

func (d *Discovery) search(ctx context.Context, query string) []dto.DiscoveredURL {
	if ctx.Err() != nil {
		return nil
	}

	c := colly.NewCollector(
		colly.UserAgent(pickUserAgent(d.userAgents)),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(d.cfg.Timeout)

	var results []dto.DiscoveredURL
	c.OnHTML("a.result__a", func(e *colly.HTMLElement) {
		target := decodeResultLink(e.Attr("href"))
		if target == "" {
			return
		}
		source, ok := matchKnownSite(target)
		if !ok {
			return
		}
		results = append(results, dto.DiscoveredURL{
			URL:    target,
			Title:  strings.TrimSpace(e.Text),
			Source: source,
		})
	})

	searchURL := d.cfg.SearchURL + "?q=" + url.QueryEscape(query)
	if err := c.Visit(searchURL); err != nil {
		d.log.WarnContext(ctx, "Search engine discovery failed",
			logger.StringField("query", query),
			logger.ErrorField(err),
		)
		return nil
	}
	return results
}

// decodeResultLink unwraps the search engine's redirect link.
func decodeResultLink(href string) string {
	if m := uddgRegex.FindStringSubmatch(href); m != nil {
		decoded, err := url.QueryUnescape(m[1])
		if err != nil {
			return ""
		}
		return decoded
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

func matchKnownSite(rawURL string) (string, bool) {
	lower := strings.ToLower(rawURL)
	for _, site := range knownCarSites {
		if strings.Contains(lower, site) {
			return site, true
		}
	}
	return "", false
}

// SiteSearchURLs builds the search result pages of the major listing sites.
func SiteSearchURLs(year int, vehicleMake, vehicleModel string) []dto.DiscoveredURL {
	makeSlug := slug(vehicleMake)
	modelSlug := slug(vehicleModel)
	query := url.QueryEscape(fmt.Sprintf("%d %s %s", year, vehicleMake, vehicleModel))

	out := make([]dto.DiscoveredURL, 0, len(siteSearches))
	for _, s := range siteSearches {
		out = append(out, dto.DiscoveredURL{
			URL:    s.build(year, vehicleMake, vehicleModel, makeSlug, modelSlug, query),
			Title:  fmt.Sprintf("%d %s %s on %s", year, vehicleMake, vehicleModel, s.title),
			Source: s.source,
		})
	}
	return out
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
