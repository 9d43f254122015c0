package scraper

import (
	"context"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/ratelimit"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type directFetcher struct {
	client     *resty.Client
	cfg        config.Scraper
	log        *logger.Logger
	domainRate *ratelimit.LimiterStore
}

// NewDirectFetcher requests pages itself with browser-like headers.
func NewDirectFetcher(cfg config.Scraper, log *logger.Logger) Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	perDomain := rate.Inf
	if cfg.MaxRequestPerDomainPerSecond > 0 {
		perDomain = rate.Limit(cfg.MaxRequestPerDomainPerSecond)
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-AU,en;q=0.9").
		SetHeader("Cache-Control", "no-cache")

	return &directFetcher{
		client:     client,
		cfg:        cfg,
		log:        log,
		domainRate: ratelimit.NewLimiterStore(perDomain, 1),
	}
}

func (f *directFetcher) Name() string {
	return BackendDirect
}

func (f *directFetcher) Fetch(ctx context.Context, rawURL string) dto.FetchResult {
	started := time.Now()
	u, err := ValidateURL(rawURL)
	if err != nil {
		return failedResult(rawURL, dto.FetchStatusError, err.Error(), started)
	}

	if err := f.domainRate.Wait(ctx, u.Hostname()); err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, describeFetchError(err, f.cfg.Timeout), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", pickUserAgent(f.cfg.UserAgents)).
		Get(u.String())
	if err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, describeFetchError(err, f.cfg.Timeout), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	res := dto.FetchResult{
		URL:        rawURL,
		Source:     SourceDomain(rawURL),
		HTTPStatus: resp.StatusCode(),
	}
	if status, reason, ok := classifyHTTPStatus(resp.StatusCode()); !ok {
		res.Status = status
		res.Error = reason
		res.Duration = time.Since(started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	content := resp.String()
	if isHTML(resp.Header().Get("Content-Type"), content) {
		text, title, err := HTMLToText(content)
		if err != nil {
			res.Status = dto.FetchStatusError
			res.Error = "failed to parse HTML: " + err.Error()
			res.Duration = time.Since(started)
			logFetch(ctx, f.log, f.Name(), res)
			return res
		}
		content = text
		res.PageTitle = title
	}

	res = classifyContent(res, content, f.cfg.MinContentLength)
	res.Duration = time.Since(started)
	logFetch(ctx, f.log, f.Name(), res)
	return res
}

func isHTML(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}
