package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/httpclient"
	"tradepilot/pkg/logger"
)

const hostedScrapeEndpoint = "/v1/scrape"

type hostedScrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	WaitFor         int      `json:"waitFor,omitempty"`
	Timeout         int      `json:"timeout,omitempty"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type hostedScrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Content  string `json:"content"`
		HTML     string `json:"html"`
		Metadata struct {
			Title      string `json:"title"`
			StatusCode int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

type hostedFetcher struct {
	client  httpclient.HTTPClient
	cfg     config.HostedScraper
	scraper config.Scraper
	log     *logger.Logger
}

// NewHostedFetcher delegates rendering to a hosted scraping API that
// returns page markdown.
func NewHostedFetcher(cfg config.HostedScraper, scraperCfg config.Scraper, log *logger.Logger) Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &hostedFetcher{
		client:  httpclient.New(strings.TrimRight(cfg.BaseURL, "/"), timeout, cfg.APIKey),
		cfg:     cfg,
		scraper: scraperCfg,
		log:     log,
	}
}

func (f *hostedFetcher) Name() string {
	return BackendHosted
}

func (f *hostedFetcher) Fetch(ctx context.Context, rawURL string) dto.FetchResult {
	started := time.Now()
	if _, err := ValidateURL(rawURL); err != nil {
		return failedResult(rawURL, dto.FetchStatusError, err.Error(), started)
	}

	body := hostedScrapeRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		WaitFor:         f.cfg.WaitFor,
		Timeout:         f.cfg.PageTimeout,
		OnlyMainContent: f.cfg.OnlyMainContent,
	}

	var out hostedScrapeResponse
	resp, err := f.client.Post(ctx, hostedScrapeEndpoint, body, nil, &out)
	if err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, describeFetchError(err, f.cfg.Timeout), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	if !resp.IsSuccess() {
		status, reason, _ := classifyHTTPStatus(resp.StatusCode)
		res := failedResult(rawURL, status, fmt.Sprintf("hosted scraper: %s", reason), started)
		res.HTTPStatus = resp.StatusCode
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = "hosted scraper reported failure"
		}
		res := failedResult(rawURL, dto.FetchStatusError, reason, started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	res := dto.FetchResult{
		URL:        rawURL,
		Source:     SourceDomain(rawURL),
		PageTitle:  out.Data.Metadata.Title,
		HTTPStatus: out.Data.Metadata.StatusCode,
	}
	if out.Data.Metadata.StatusCode != 0 {
		if status, reason, ok := classifyHTTPStatus(out.Data.Metadata.StatusCode); !ok {
			res.Status = status
			res.Error = reason
			res.Duration = time.Since(started)
			logFetch(ctx, f.log, f.Name(), res)
			return res
		}
	}

	content := firstNonEmpty(out.Data.Markdown, out.Data.Content)
	if content == "" && out.Data.HTML != "" {
		text, title, err := HTMLToText(out.Data.HTML)
		if err == nil {
			content = text
			if res.PageTitle == "" {
				res.PageTitle = title
			}
		}
	}

	res = classifyContent(res, content, f.scraper.MinContentLength)
	res.Duration = time.Since(started)
	logFetch(ctx, f.log, f.Name(), res)
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
