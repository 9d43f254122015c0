package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><head><title>2020 Toyota Camry</title></head><body>
<h1>2020 Toyota Camry SX</h1>
<div class="price">$29,990</div>
<p>Automatic petrol sedan with 61,000 km, one owner, located in Melbourne.</p>
</body></html>`

func newListingSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/ratelimited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/captcha", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Please complete the CAPTCHA to prove you are human</h1><p>Checking your browser before accessing the site.</p></body></html>`))
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Hi</body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectFetcher_Fetch(t *testing.T) {
	srv := newListingSite(t)
	f := NewDirectFetcher(config.Scraper{Timeout: 200 * time.Millisecond}, logger.NewNop())

	tests := []struct {
		name       string
		url        string
		wantStatus dto.FetchStatus
		wantError  string
	}{
		{name: "success", url: srv.URL + "/ok", wantStatus: dto.FetchStatusSuccess},
		{name: "403 is blocked", url: srv.URL + "/forbidden", wantStatus: dto.FetchStatusBlocked, wantError: "access denied (HTTP 403)"},
		{name: "429 is blocked", url: srv.URL + "/ratelimited", wantStatus: dto.FetchStatusBlocked, wantError: "access denied (HTTP 429)"},
		{name: "500 is error", url: srv.URL + "/broken", wantStatus: dto.FetchStatusError, wantError: "HTTP 500"},
		{name: "timeout is error", url: srv.URL + "/slow", wantStatus: dto.FetchStatusError, wantError: "request timed out"},
		{name: "challenge page is blocked", url: srv.URL + "/captcha", wantStatus: dto.FetchStatusBlocked, wantError: "bot detection triggered"},
		{name: "short content is error", url: srv.URL + "/short", wantStatus: dto.FetchStatusError, wantError: "insufficient content"},
		{name: "invalid scheme", url: "ftp://example.com/car", wantStatus: dto.FetchStatusError, wantError: "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Fetch(context.Background(), tt.url)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.url, res.URL)
			if tt.wantStatus == dto.FetchStatusSuccess {
				assert.Empty(t, res.Error)
				assert.Contains(t, res.Content, "# 2020 Toyota Camry SX")
				assert.Equal(t, "2020 Toyota Camry", res.PageTitle)
				assert.Equal(t, http.StatusOK, res.HTTPStatus)
				return
			}
			assert.Contains(t, res.Error, tt.wantError)
			assert.Empty(t, res.Content)
		})
	}
}

func TestDirectFetcher_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	f := NewDirectFetcher(config.Scraper{UserAgents: []string{"test-agent/1.0"}}, logger.NewNop())
	res := f.Fetch(context.Background(), srv.URL)

	require.Equal(t, dto.FetchStatusSuccess, res.Status)
	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, "en-AU,en;q=0.9", gotLang)
}

func TestHostedFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus dto.FetchStatus
		wantError  string
		wantTitle  string
	}{
		{
			name:       "markdown returned",
			status:     http.StatusOK,
			body:       `{"success":true,"data":{"markdown":"# 2021 Mazda CX-5 Touring\n\n$34,990\n\n52,000 km automatic petrol SUV","metadata":{"title":"Mazda CX-5","statusCode":200}}}`,
			wantStatus: dto.FetchStatusSuccess,
			wantTitle:  "Mazda CX-5",
		},
		{
			name:       "unsuccessful flag",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"page load failed"}`,
			wantStatus: dto.FetchStatusError,
			wantError:  "page load failed",
		},
		{
			name:       "target site blocked",
			status:     http.StatusOK,
			body:       `{"success":true,"data":{"markdown":"","metadata":{"statusCode":403}}}`,
			wantStatus: dto.FetchStatusBlocked,
			wantError:  "access denied (HTTP 403)",
		},
		{
			name:       "api rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"success":false}`,
			wantStatus: dto.FetchStatusBlocked,
			wantError:  "hosted scraper: access denied (HTTP 429)",
		},
		{
			name:       "thin content",
			status:     http.StatusOK,
			body:       `{"success":true,"data":{"markdown":"Loading...","metadata":{"statusCode":200}}}`,
			wantStatus: dto.FetchStatusError,
			wantError:  "insufficient content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotPath = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewHostedFetcher(config.HostedScraper{BaseURL: srv.URL, APIKey: "secret"}, config.Scraper{}, logger.NewNop())
			res := f.Fetch(context.Background(), "https://www.carsales.com.au/cars/details/1")

			assert.Equal(t, "Bearer secret", gotAuth)
			assert.Equal(t, hostedScrapeEndpoint, gotPath)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, "carsales.com.au", res.Source)
			if tt.wantStatus == dto.FetchStatusSuccess {
				assert.Equal(t, tt.wantTitle, res.PageTitle)
				assert.True(t, strings.HasPrefix(res.Content, "# 2021 Mazda"))
				return
			}
			assert.Contains(t, res.Error, tt.wantError)
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://www.gumtree.com.au/s-ad/1", false},
		{"http://example.com", false},
		{"  https://example.com/x  ", false},
		{"not a url", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"/relative/path", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ValidateURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSourceDomain(t *testing.T) {
	assert.Equal(t, "carsales.com.au", SourceDomain("https://www.carsales.com.au/cars/1"))
	assert.Equal(t, "gumtree.com.au", SourceDomain("https://gumtree.com.au/x"))
	assert.Equal(t, "unknown", SourceDomain("::"))
}

func TestNewFetcher(t *testing.T) {
	cfg := &config.Config{}

	cfg.Scraper.Backend = ""
	f, err := NewFetcher(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, BackendDirect, f.Name())

	cfg.Scraper.Backend = BackendHosted
	_, err = NewFetcher(cfg, logger.NewNop())
	assert.Error(t, err)

	cfg.HostedScraper = config.HostedScraper{BaseURL: "https://api.example.com", APIKey: "k"}
	f, err = NewFetcher(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, BackendHosted, f.Name())

	cfg.Scraper.Backend = BackendBrowser
	f, err = NewFetcher(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, BackendBrowser, f.Name())

	cfg.Scraper.Backend = "carrier-pigeon"
	_, err = NewFetcher(cfg, logger.NewNop())
	assert.Error(t, err)
}
