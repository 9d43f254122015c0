package market

import (
	"testing"

	"tradepilot/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestFormatListings(t *testing.T) {
	assert.Equal(t, "No listings were scraped.", FormatListings(nil))

	l := listing(28990, withOdometer(45000), withYear(2019), withLocation("Sydney"))
	l.URL = "https://www.carsales.com.au/1"
	l.Title = "2019 Toyota Camry"
	l.SellerName = "Western Toyota"
	l.SellerType = dto.SellerTypeDealer
	l.Features = []string{"Reverse camera", "Cruise control"}

	out := FormatListings([]dto.ListingRecord{l})
	assert.Contains(t, out, "# Scraped listings (1)")
	assert.Contains(t, out, "## 1. 2019 Toyota Camry")
	assert.Contains(t, out, "- Price: $28,990 AUD")
	assert.Contains(t, out, "- Odometer: 45,000 km")
	assert.Contains(t, out, "- Seller: Western Toyota (dealer)")
	assert.Contains(t, out, "- Features: Reverse camera, Cruise control")
	assert.NotContains(t, out, "Transmission")
}

func TestFormatMetrics(t *testing.T) {
	assert.Equal(t, "No priced listings available.", FormatMetrics(nil))

	m := Aggregate([]dto.ListingRecord{
		listing(20000, withOdometer(50000), withSeller(dto.SellerTypePrivate)),
		listing(30000, withOdometer(70000), withLocation("Perth")),
	})
	out := FormatMetrics(m)
	assert.Contains(t, out, "- Priced listings: 2")
	assert.Contains(t, out, "min $20,000, median $20,000, average $25,000, max $30,000")
	assert.Contains(t, out, "- Odometer: 50,000 to 70,000 km, average 60,000 km")
	assert.Contains(t, out, "0 dealer, 1 private, 1 unknown")
	assert.Contains(t, out, "- Locations: Perth")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,568", FormatMoney(1234567.6, ""))
	assert.Equal(t, "$950 AUD", FormatMoney(950, "AUD"))
}
