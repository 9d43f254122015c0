package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu      sync.Mutex
	delays  map[string]time.Duration
	results map[string]dto.FetchResult
	calls   []string
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) dto.FetchResult {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	delay := s.delays[rawURL]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if res, ok := s.results[rawURL]; ok {
		return res
	}
	return dto.FetchResult{
		URL:     rawURL,
		Source:  SourceDomain(rawURL),
		Status:  dto.FetchStatusSuccess,
		Content: "# Listing " + rawURL + "\n\n$10,000",
	}
}

func newTestOrchestrator(f Fetcher, cfg config.Scraper) *Orchestrator {
	return NewOrchestrator(f, NewExtractor(cfg), cfg, logger.NewNop())
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	srv := newListingSite(t)
	cfg := config.Scraper{Timeout: 200 * time.Millisecond, Concurrency: 2}
	o := newTestOrchestrator(NewDirectFetcher(cfg, logger.NewNop()), cfg)

	urls := []string{
		srv.URL + "/ratelimited?a=1",
		srv.URL + "/ok?a=1",
		srv.URL + "/slow",
		srv.URL + "/ratelimited?a=2",
		srv.URL + "/ok?a=2",
	}

	result := o.ScrapeBatch(context.Background(), urls, 0, nil)

	assert.Equal(t, 2, result.TotalScraped)
	assert.Equal(t, 3, result.TotalFailed)
	assert.Equal(t, 5, result.ValidURLCount)
	assert.Equal(t, 2, result.BlockedCount())

	require.Len(t, result.Listings, 2)
	assert.Equal(t, urls[1], result.Listings[0].URL)
	assert.Equal(t, urls[4], result.Listings[1].URL)
	for _, l := range result.Listings {
		require.NotNil(t, l.Price)
		assert.Equal(t, 29990.0, l.Price.Amount)
	}

	require.Len(t, result.Failures, 3)
	assert.Equal(t, urls[0], result.Failures[0].URL)
	assert.Equal(t, dto.FetchStatusBlocked, result.Failures[0].Status)
	assert.Equal(t, urls[2], result.Failures[1].URL)
	assert.Equal(t, dto.FetchStatusError, result.Failures[1].Status)
	assert.Equal(t, urls[3], result.Failures[2].URL)
	assert.Equal(t, dto.FetchStatusBlocked, result.Failures[2].Status)
	for _, f := range result.Failures {
		assert.NotEmpty(t, f.Error)
	}
	assert.NotEqual(t, result.Failures[0].Error, result.Failures[1].Error)
}

func TestOrchestrator_InvalidURLs(t *testing.T) {
	stub := &stubFetcher{}
	o := newTestOrchestrator(stub, config.Scraper{Concurrency: 3})

	urls := []string{"https://a.test/1", "not-a-url", "", "   ", "mailto:x@y.z", "https://a.test/2"}
	result := o.ScrapeBatch(context.Background(), urls, 0, nil)

	assert.Equal(t, 4, result.TotalRequested)
	assert.Equal(t, 2, result.ValidURLCount)
	assert.Equal(t, 2, result.InvalidCount)
	assert.Equal(t, 2, result.TotalScraped)
	assert.Equal(t, 2, result.TotalFailed)
	assert.Equal(t, result.ValidURLCount+result.InvalidCount, len(result.Listings)+len(result.Failures))
	for _, f := range result.Failures {
		assert.Equal(t, "invalid URL", f.Error)
	}
	assert.ElementsMatch(t, []string{"https://a.test/1", "https://a.test/2"}, stub.calls)
}

func TestOrchestrator_PreservesOrderAndReportsProgress(t *testing.T) {
	stub := &stubFetcher{
		delays: map[string]time.Duration{
			"https://a.test/1": 60 * time.Millisecond,
			"https://a.test/4": 40 * time.Millisecond,
		},
		results: map[string]dto.FetchResult{
			"https://a.test/3": {URL: "https://a.test/3", Status: dto.FetchStatusBlocked, Error: "access denied (HTTP 403)"},
			"https://a.test/6": {URL: "https://a.test/6", Status: dto.FetchStatusError, Error: "HTTP 404"},
		},
	}
	o := newTestOrchestrator(stub, config.Scraper{BatchDelay: 10 * time.Millisecond})

	urls := []string{
		"https://a.test/1", "https://a.test/2", "https://a.test/3",
		"https://a.test/4", "https://a.test/5", "https://a.test/6",
		"https://a.test/7",
	}

	var progress [][2]int
	result := o.ScrapeBatch(context.Background(), urls, 2, func(completed, total int) {
		progress = append(progress, [2]int{completed, total})
	})

	var scraped []string
	for _, l := range result.Listings {
		scraped = append(scraped, l.URL)
	}
	assert.Equal(t, []string{"https://a.test/1", "https://a.test/2", "https://a.test/4", "https://a.test/5", "https://a.test/7"}, scraped)

	var failed []string
	for _, f := range result.Failures {
		failed = append(failed, f.URL)
	}
	assert.Equal(t, []string{"https://a.test/3", "https://a.test/6"}, failed)

	assert.Equal(t, [][2]int{{2, 7}, {4, 7}, {6, 7}, {7, 7}}, progress)
}

func TestOrchestrator_BatchesRunSequentially(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	cfg := config.Scraper{Concurrency: 2}
	o := newTestOrchestrator(NewDirectFetcher(cfg, logger.NewNop()), cfg)

	urls := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		urls = append(urls, srv.URL+"/listing/"+string(rune('a'+i)))
	}
	result := o.ScrapeBatch(context.Background(), urls, 0, nil)

	assert.Equal(t, 6, result.TotalScraped)
	assert.LessOrEqual(t, maxSeen, 2)
}

func TestOrchestrator_EmptyInput(t *testing.T) {
	o := newTestOrchestrator(&stubFetcher{}, config.Scraper{})
	result := o.ScrapeBatch(context.Background(), nil, 0, nil)

	assert.NotNil(t, result.Listings)
	assert.NotNil(t, result.Failures)
	assert.Zero(t, result.TotalScraped)
	assert.Zero(t, result.TotalFailed)
}
