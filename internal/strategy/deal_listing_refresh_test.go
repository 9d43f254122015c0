package strategy

import (
	"context"
	"encoding/json"
	"testing"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDeal(url string, ask *float64) model.Deal {
	return model.Deal{
		ID:        uuid.New(),
		Status:    model.DealStatusContacted,
		SourceURL: utils.ToPointer(url),
		AskPrice:  ask,
	}
}

func TestDealListingRefreshStrategy_Execute(t *testing.T) {
	const (
		changed   = "https://www.carsales.com.au/cars/details/1"
		same      = "https://www.carsales.com.au/cars/details/2"
		blocked   = "https://www.gumtree.com.au/s-ad/3"
		priceless = "https://www.drive.com.au/cars-for-sale/4"
	)
	dealRepo := &fakeDealRepo{open: []model.Deal{
		openDeal(changed, utils.ToPointer(32000.0)),
		openDeal(same, utils.ToPointer(27500.0)),
		openDeal(blocked, nil),
		openDeal(priceless, utils.ToPointer(19990.0)),
	}}
	scraper := &fakeScraper{result: dto.ScrapeBatchResult{
		Listings: []dto.ListingRecord{
			{URL: changed, Status: dto.FetchStatusSuccess, Price: &dto.Price{Amount: 29990, Currency: "AUD"}},
			{URL: same, Status: dto.FetchStatusSuccess, Price: &dto.Price{Amount: 27500, Currency: "AUD"}},
			{URL: priceless, Status: dto.FetchStatusSuccess, Title: "2018 Mazda 3"},
		},
		Failures: []dto.FailedURL{
			{URL: blocked, Status: dto.FetchStatusBlocked, Error: "access denied (HTTP 403)"},
		},
		TotalScraped: 3,
		TotalFailed:  1,
	}}
	cfg := &config.Config{Scraper: config.Scraper{Concurrency: 3}}

	s := NewDealListingRefreshStrategy(cfg, logger.NewNop(), dealRepo, scraper)
	res, err := s.Execute(context.Background(), &model.Job{ID: 2, Payload: []byte(`{"limit": 10}`)})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_PARTIAL_SUCCESS), res.ExitCode)
	assert.Equal(t, []string{changed, same, blocked, priceless}, scraper.urls)
	assert.Equal(t, 3, scraper.concurrency)

	require.Len(t, dealRepo.updated, 1)
	assert.Equal(t, 29990.0, *dealRepo.updated[0].AskPrice)

	var out []DealListingRefreshResult
	require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
	require.Len(t, out, 4)
	assert.Equal(t, "updated", out[0].Status)
	assert.Equal(t, 32000.0, *out[0].OldPrice)
	assert.Equal(t, 29990.0, *out[0].NewPrice)
	assert.Equal(t, "unchanged", out[1].Status)
	assert.Equal(t, "blocked", out[2].Status)
	assert.Equal(t, "access denied (HTTP 403)", out[2].Error)
	assert.Equal(t, "no_price", out[3].Status)
}

func TestDealListingRefreshStrategy_NoDeals(t *testing.T) {
	s := NewDealListingRefreshStrategy(&config.Config{}, logger.NewNop(), &fakeDealRepo{}, &fakeScraper{})

	res, err := s.Execute(context.Background(), &model.Job{})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SKIPPED), res.ExitCode)
	assert.Equal(t, JobTypeDealListingRefresh, s.GetType())
}

func TestDealListingRefreshStrategy_Cancelled(t *testing.T) {
	url := "https://www.carsales.com.au/cars/details/1"
	dealRepo := &fakeDealRepo{open: []model.Deal{openDeal(url, utils.ToPointer(32000.0))}}
	scraper := &fakeScraper{result: dto.ScrapeBatchResult{
		Listings: []dto.ListingRecord{{URL: url, Status: dto.FetchStatusSuccess, Price: &dto.Price{Amount: 29990, Currency: "AUD"}}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewDealListingRefreshStrategy(&config.Config{}, logger.NewNop(), dealRepo, scraper)
	res, err := s.Execute(ctx, &model.Job{})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_FAILED), res.ExitCode)
	assert.Empty(t, dealRepo.updated)
}
