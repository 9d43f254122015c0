package market

import (
	"fmt"
	"math"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/pkg/utils"
)

const maxPromptDescription = 500

// FormatListings renders scraped listings as markdown for a model prompt.
func FormatListings(listings []dto.ListingRecord) string {
	if len(listings) == 0 {
		return "No listings were scraped."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Scraped listings (%d)\n\n", len(listings)))

	for i, l := range listings {
		title := l.Title
		if title == "" {
			title = "Untitled listing"
		}
		sb.WriteString(fmt.Sprintf("## %d. %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("- URL: %s\n", l.URL))
		if l.Price != nil {
			sb.WriteString(fmt.Sprintf("- Price: %s\n", FormatMoney(l.Price.Amount, l.Price.Currency)))
		}
		if l.Year != nil {
			sb.WriteString(fmt.Sprintf("- Year: %d\n", *l.Year))
		}
		if l.Odometer != nil {
			sb.WriteString(fmt.Sprintf("- Odometer: %s %s\n", utils.FormatThousands(l.Odometer.Value), l.Odometer.Unit))
		}
		writeOptional(&sb, "Condition", l.Condition)
		writeOptional(&sb, "Transmission", l.Transmission)
		writeOptional(&sb, "Fuel", l.FuelType)
		writeOptional(&sb, "Body", l.BodyType)
		writeOptional(&sb, "Colour", l.Colour)
		writeOptional(&sb, "Location", l.Location)
		if l.SellerName != "" {
			sb.WriteString(fmt.Sprintf("- Seller: %s (%s)\n", l.SellerName, l.SellerType))
		} else if l.SellerType != "" && l.SellerType != dto.SellerTypeUnknown {
			sb.WriteString(fmt.Sprintf("- Seller type: %s\n", l.SellerType))
		}
		if len(l.Features) > 0 {
			sb.WriteString(fmt.Sprintf("- Features: %s\n", strings.Join(l.Features, ", ")))
		}
		if l.Description != "" {
			desc := utils.Truncate(l.Description, maxPromptDescription)
			if desc != l.Description {
				desc += "..."
			}
			sb.WriteString(fmt.Sprintf("\n%s\n", desc))
		}
		sb.WriteString("\n---\n\n")
	}

	return sb.String()
}

// FormatMetrics renders aggregate metrics as a short prompt block.
func FormatMetrics(m *dto.MarketMetrics) string {
	if m == nil {
		return "No priced listings available."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- Priced listings: %d\n", m.Count))
	sb.WriteString(fmt.Sprintf("- Price: min %s, median %s, average %s, max %s\n",
		FormatMoney(m.PriceRange.Min, ""),
		FormatMoney(m.PriceRange.Median, ""),
		FormatMoney(m.PriceRange.Average, ""),
		FormatMoney(m.PriceRange.Max, ""),
	))
	if m.OdometerRange != nil {
		sb.WriteString(fmt.Sprintf("- Odometer: %s to %s km, average %s km\n",
			utils.FormatThousands(m.OdometerRange.Min),
			utils.FormatThousands(m.OdometerRange.Max),
			utils.FormatThousands(m.OdometerRange.Average),
		))
	}
	if m.YearRange != nil {
		sb.WriteString(fmt.Sprintf("- Years: %d to %d\n", m.YearRange.Min, m.YearRange.Max))
	}
	sb.WriteString(fmt.Sprintf("- Sellers: %d dealer, %d private, %d unknown\n",
		m.SellerTypes.Dealer, m.SellerTypes.Private, m.SellerTypes.Unknown))
	if len(m.Locations) > 0 {
		sb.WriteString(fmt.Sprintf("- Locations: %s\n", strings.Join(m.Locations, ", ")))
	}
	return sb.String()
}

// FormatMoney renders whole dollars with separators, e.g. "$28,990 AUD".
func FormatMoney(amount float64, currency string) string {
	s := "$" + utils.FormatThousands(int(math.Round(amount)))
	if currency != "" {
		s += " " + currency
	}
	return s
}

func writeOptional(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("- %s: %s\n", label, value))
}
