// Package market reduces scraped listings to summary statistics and renders
// them for model prompts.
package market

import (
	"math"
	"sort"
	"strings"

	"tradepilot/internal/dto"
)

// Aggregate summarizes listings that carry a price. It returns nil when none do.
func Aggregate(listings []dto.ListingRecord) *dto.MarketMetrics {
	priced := make([]dto.ListingRecord, 0, len(listings))
	for _, l := range listings {
		if l.HasPrice() {
			priced = append(priced, l)
		}
	}
	if len(priced) == 0 {
		return nil
	}

	prices := make([]float64, 0, len(priced))
	var odometers, years []int
	metrics := &dto.MarketMetrics{
		Count:     len(priced),
		Locations: []string{},
	}
	seenLocation := make(map[string]bool)

	for _, l := range priced {
		prices = append(prices, l.Price.Amount)
		if l.Odometer != nil && l.Odometer.Value > 0 {
			odometers = append(odometers, l.Odometer.Value)
		}
		if l.Year != nil {
			years = append(years, *l.Year)
		}

		switch l.SellerType {
		case dto.SellerTypeDealer:
			metrics.SellerTypes.Dealer++
		case dto.SellerTypePrivate:
			metrics.SellerTypes.Private++
		default:
			metrics.SellerTypes.Unknown++
		}

		loc := strings.TrimSpace(l.Location)
		if loc != "" && !seenLocation[strings.ToLower(loc)] {
			seenLocation[strings.ToLower(loc)] = true
			metrics.Locations = append(metrics.Locations, loc)
		}
	}

	sort.Float64s(prices)
	metrics.PriceRange = dto.PriceRange{
		Min:     prices[0],
		Max:     prices[len(prices)-1],
		Median:  prices[(len(prices)-1)/2],
		Average: clamp(math.Round(sum(prices)/float64(len(prices))), prices[0], prices[len(prices)-1]),
	}

	if len(odometers) > 0 {
		sort.Ints(odometers)
		total := 0
		for _, o := range odometers {
			total += o
		}
		metrics.OdometerRange = &dto.OdometerRange{
			Min:     odometers[0],
			Max:     odometers[len(odometers)-1],
			Average: int(math.Round(float64(total) / float64(len(odometers)))),
		}
	}

	if len(years) > 0 {
		sort.Ints(years)
		metrics.YearRange = &dto.YearRange{Min: years[0], Max: years[len(years)-1]}
	}

	return metrics
}

// Prices returns the defined prices of listings in input order.
func Prices(listings []dto.ListingRecord) []float64 {
	out := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.HasPrice() {
			out = append(out, l.Price.Amount)
		}
	}
	return out
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Rounding can push the mean of fractional prices past an extreme.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
