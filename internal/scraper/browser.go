package scraper

import (
	"context"
	"fmt"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"

	"github.com/chromedp/chromedp"
)

type browserFetcher struct {
	cfg     config.Browser
	scraper config.Scraper
	log     *logger.Logger
}

// NewBrowserFetcher renders pages in headless Chrome for sites that need
// JavaScript. Each fetch runs in its own browser process.
func NewBrowserFetcher(cfg config.Browser, scraperCfg config.Scraper, log *logger.Logger) Fetcher {
	if cfg.WaitFor <= 0 {
		cfg.WaitFor = 3 * time.Second
	}
	if scraperCfg.Timeout <= 0 {
		scraperCfg.Timeout = 30 * time.Second
	}
	return &browserFetcher{cfg: cfg, scraper: scraperCfg, log: log}
}

func (f *browserFetcher) Name() string {
	return BackendBrowser
}

func (f *browserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(pickUserAgent(f.scraper.UserAgents)),
	)
	if f.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.cfg.ExecPath))
	}
	return opts
}

func (f *browserFetcher) Fetch(ctx context.Context, rawURL string) dto.FetchResult {
	started := time.Now()
	u, err := ValidateURL(rawURL)
	if err != nil {
		return failedResult(rawURL, dto.FetchStatusError, err.Error(), started)
	}

	timeout := f.scraper.Timeout + f.cfg.WaitFor
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(runCtx, f.allocatorOptions()...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	var (
		html  string
		title string
	)
	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(u.String()))
	if err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, describeFetchError(err, timeout), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	res := dto.FetchResult{
		URL:    rawURL,
		Source: SourceDomain(rawURL),
	}
	if resp != nil {
		res.HTTPStatus = int(resp.Status)
		if status, reason, ok := classifyHTTPStatus(res.HTTPStatus); !ok {
			res.Status = status
			res.Error = reason
			res.Duration = time.Since(started)
			logFetch(ctx, f.log, f.Name(), res)
			return res
		}
	}

	err = chromedp.Run(tabCtx,
		chromedp.Sleep(f.cfg.WaitFor),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, fmt.Sprintf("failed to render page: %s", describeFetchError(err, timeout)), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}

	text, docTitle, err := HTMLToText(html)
	if err != nil {
		res := failedResult(rawURL, dto.FetchStatusError, "failed to parse HTML: "+err.Error(), started)
		logFetch(ctx, f.log, f.Name(), res)
		return res
	}
	res.PageTitle = firstNonEmpty(title, docTitle)

	res = classifyContent(res, text, f.scraper.MinContentLength)
	res.Duration = time.Since(started)
	logFetch(ctx, f.log, f.Name(), res)
	return res
}
