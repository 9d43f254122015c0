package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"
)

const (
	BackendDirect  = "direct"
	BackendHosted  = "hosted"
	BackendBrowser = "browser"

	defaultMinContentLength = 50
)

var ErrInvalidURL = errors.New("invalid URL")

var botMarkers = []string{"captcha", "robot", "blocked"}

// Fetcher retrieves one URL. Failures are reported in the result, never as errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) dto.FetchResult
	Name() string
}

// NewFetcher builds the backend selected by scraper.backend.
func NewFetcher(cfg *config.Config, log *logger.Logger) (Fetcher, error) {
	switch strings.ToLower(cfg.Scraper.Backend) {
	case BackendDirect, "":
		return NewDirectFetcher(cfg.Scraper, log), nil
	case BackendHosted:
		if cfg.HostedScraper.BaseURL == "" || cfg.HostedScraper.APIKey == "" {
			return nil, fmt.Errorf("hosted scraper requires base_url and api_key")
		}
		return NewHostedFetcher(cfg.HostedScraper, cfg.Scraper, log), nil
	case BackendBrowser:
		return NewBrowserFetcher(cfg.Browser, cfg.Scraper, log), nil
	default:
		return nil, fmt.Errorf("unknown scraper backend %q", cfg.Scraper.Backend)
	}
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// SourceDomain is the hostname without a leading www.
func SourceDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// classifyHTTPStatus maps non-2xx codes; ok is false when the fetch failed.
func classifyHTTPStatus(code int) (status dto.FetchStatus, reason string, ok bool) {
	switch {
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		return dto.FetchStatusBlocked, fmt.Sprintf("access denied (HTTP %d)", code), false
	case code < 200 || code >= 300:
		return dto.FetchStatusError, fmt.Sprintf("HTTP %d", code), false
	default:
		return dto.FetchStatusSuccess, "", true
	}
}

// hasBotChallenge reports challenge-page markers in extracted text.
func hasBotChallenge(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range botMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// classifyContent applies the bot-marker and minimum-length rules to a
// page that was fetched with a 2xx status.
func classifyContent(res dto.FetchResult, content string, minLength int) dto.FetchResult {
	if minLength <= 0 {
		minLength = defaultMinContentLength
	}
	switch {
	case hasBotChallenge(content):
		res.Status = dto.FetchStatusBlocked
		res.Error = "bot detection triggered"
	case len(strings.TrimSpace(content)) < minLength:
		res.Status = dto.FetchStatusError
		res.Error = fmt.Sprintf("insufficient content scraped (%d chars), site may be blocking", len(strings.TrimSpace(content)))
	default:
		res.Status = dto.FetchStatusSuccess
		res.Content = content
	}
	return res
}

// describeFetchError turns a transport error into a short reason.
func describeFetchError(err error, timeout time.Duration) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("request timed out after %s", timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func failedResult(rawURL string, status dto.FetchStatus, reason string, started time.Time) dto.FetchResult {
	return dto.FetchResult{
		URL:      rawURL,
		Source:   SourceDomain(rawURL),
		Status:   status,
		Error:    reason,
		Duration: time.Since(started),
	}
}

func pickUserAgent(agents []string) string {
	if len(agents) == 0 {
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return agents[rand.Intn(len(agents))]
}

func logFetch(ctx context.Context, log *logger.Logger, backend string, res dto.FetchResult) {
	if res.Status == dto.FetchStatusSuccess {
		log.DebugContext(ctx, "Fetched listing page",
			logger.StringField("backend", backend),
			logger.StringField("url", res.URL),
			logger.IntField("http_status", res.HTTPStatus),
			logger.DurationField("duration", res.Duration),
		)
		return
	}
	log.WarnContext(ctx, "Failed to fetch listing page",
		logger.StringField("backend", backend),
		logger.StringField("url", res.URL),
		logger.StringField("status", string(res.Status)),
		logger.StringField("error", res.Error),
		logger.DurationField("duration", res.Duration),
	)
}
