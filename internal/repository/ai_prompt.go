package repository

import (
	"fmt"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/internal/market"
	"tradepilot/pkg/utils"
)

const (
	systemPromptValuation = "You are a car valuation expert AI. Always respond with valid JSON only."
	systemPromptResearch  = "You are an expert Australian car market research agent with deep knowledge of carsales.com.au, gumtree, autotrader, and auction house pricing. Always respond with valid JSON only."
	systemPromptListings  = "You are a professional car trading advisor. Always respond with valid JSON. Base all recommendations on the provided market data."
	systemPromptSummary   = "You are a helpful car trading assistant. Be concise and practical."
	systemPromptMessage   = "You are helping a car trader write messages to sellers. Be professional but human."
)

var messageTypeDescriptions = map[string]string{
	"inquiry":  "initial inquiry about the vehicle",
	"offer":    "making an offer on the vehicle",
	"followup": "following up on a previous inquiry",
}

func km(n int) string {
	return utils.FormatThousands(n) + " km"
}

func dollars(v float64) string {
	return market.FormatMoney(v, "")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// odometerDescription describes a single reading or a min/max range.
func odometerDescription(v dto.VehicleInfo, unknown string) string {
	switch {
	case v.HasOdometerRange():
		return fmt.Sprintf("%s - %s range", utils.FormatThousands(*v.OdometerMin), km(*v.OdometerMax))
	case v.Odometer != nil && *v.Odometer > 0:
		return km(*v.Odometer)
	case v.OdometerMin != nil && *v.OdometerMin > 0:
		return "Minimum " + km(*v.OdometerMin)
	case v.OdometerMax != nil && *v.OdometerMax > 0:
		return "Maximum " + km(*v.OdometerMax)
	}
	return unknown
}

func promptValuation(input dto.ValuationInput) string {
	var sb strings.Builder
	v := input.Vehicle

	sb.WriteString("You are an expert car valuation AI for the Australian used car market. Analyze this vehicle and provide pricing recommendations for a professional car trader.\n\n")
	sb.WriteString("Vehicle Details:\n")
	sb.WriteString(fmt.Sprintf("- Year: %d\n", v.Year))
	sb.WriteString(fmt.Sprintf("- Make: %s\n", v.Make))
	sb.WriteString(fmt.Sprintf("- Model: %s\n", v.Model))
	sb.WriteString(fmt.Sprintf("- Variant: %s\n", orDefault(v.Variant, "Standard")))
	sb.WriteString(fmt.Sprintf("- Odometer: %s\n", odometerDescription(v, "Unknown")))
	sb.WriteString(fmt.Sprintf("- Transmission: %s\n", orDefault(v.Transmission, "Unknown")))
	sb.WriteString(fmt.Sprintf("- Fuel Type: %s\n", orDefault(v.FuelType, "Unknown")))
	sb.WriteString(fmt.Sprintf("- Body Type: %s\n", orDefault(v.BodyType, "Unknown")))
	if input.AskPrice != nil && *input.AskPrice > 0 {
		sb.WriteString(fmt.Sprintf("- Asking Price: %s\n", dollars(*input.AskPrice)))
	} else {
		sb.WriteString("- Asking Price: Not specified\n")
	}
	sb.WriteString(fmt.Sprintf("- Location: %s\n", orDefault(input.Location, "Australia")))
	if input.TargetMarginPercent != nil {
		sb.WriteString(fmt.Sprintf("- Trader's Target Margin: %.0f%%\n", *input.TargetMarginPercent))
	}

	if m := input.Market; m != nil && m.ListingsFound > 0 {
		sb.WriteString(fmt.Sprintf("\nLIVE MARKET DATA (from %d listings):\n", m.ListingsFound))
		if m.AverageMarketPrice != nil {
			sb.WriteString(fmt.Sprintf("- Average Market Price: %s\n", dollars(*m.AverageMarketPrice)))
		} else {
			sb.WriteString("- Average Market Price: N/A\n")
		}
		if len(m.ComparablePrices) > 0 {
			prices := make([]string, 0, len(m.ComparablePrices))
			for _, p := range m.ComparablePrices {
				prices = append(prices, dollars(p))
			}
			sb.WriteString(fmt.Sprintf("- Comparable Prices Found: %s\n", strings.Join(prices, ", ")))
		} else {
			sb.WriteString("- Comparable Prices Found: N/A\n")
		}
		if m.AverageOdometer != nil {
			sb.WriteString(fmt.Sprintf("- Average Odometer in Market: %s\n", km(*m.AverageOdometer)))
		} else {
			sb.WriteString("- Average Odometer in Market: N/A\n")
		}
		sb.WriteString("\nUse this market data to inform your valuation.\n")
	}

	if v.HasOdometerRange() {
		sb.WriteString(fmt.Sprintf("\nIMPORTANT: The user is looking at vehicles within the %s - %s odometer range. Base your valuation on vehicles within this mileage bracket for accuracy.\n",
			utils.FormatThousands(*v.OdometerMin), km(*v.OdometerMax)))
	}

	sb.WriteString(`
Provide your analysis in the following JSON format:
{
  "fair_value_low": <number - low end of fair market value in AUD>,
  "fair_value_high": <number - high end of fair market value in AUD>,
  "recommended_buy_price": <number - maximum price a trader should pay for good margin>,
  "target_sell_price": <number - realistic selling price for a trader>,
  "estimated_margin": <number - expected profit margin percentage>,
  "estimated_days_to_sell": <number - expected days to sell>,
  "risk_score": <number 0-100 - higher means more risky>,
  "recommendation": <"STRONG_BUY" | "MAYBE" | "SKIP">,
  "confidence": <number 0-100 - confidence in this valuation>,
  "reasoning": "<string - 2-3 sentences explaining the recommendation>"
}

Consider:
1. Current market conditions in Australia
2. This vehicle's popularity and demand
3. Typical depreciation patterns
4. Seasonal factors
5. Reconditioning costs (~$500-$2000 typical)
6. Trading costs (transport, advertising, etc.)
7. Target margin of 10-20% for traders

Respond ONLY with valid JSON, no other text.`)

	return sb.String()
}

func promptMarketResearch(input dto.MarketResearchInput) string {
	var sb strings.Builder
	v := input.Vehicle

	sb.WriteString("You are an expert Australian car market research agent. Research the current market for this vehicle and provide detailed market intelligence.\n\n")
	sb.WriteString("VEHICLE TO RESEARCH:\n")
	sb.WriteString(fmt.Sprintf("- Year: %d\n", v.Year))
	sb.WriteString(fmt.Sprintf("- Make: %s\n", v.Make))
	sb.WriteString(fmt.Sprintf("- Model: %s\n", v.Model))
	sb.WriteString(fmt.Sprintf("- Variant: %s\n", orDefault(v.Variant, "Any")))
	sb.WriteString(fmt.Sprintf("- Odometer: %s\n", odometerDescription(v, "Not specified")))
	sb.WriteString(fmt.Sprintf("- Transmission: %s\n", orDefault(v.Transmission, "Any")))
	sb.WriteString(fmt.Sprintf("- Fuel Type: %s\n", orDefault(v.FuelType, "Any")))
	sb.WriteString(fmt.Sprintf("- Body Type: %s\n", orDefault(v.BodyType, "Any")))

	if len(input.ReferenceURLs) > 0 {
		sb.WriteString("\nThe user has referenced these Australian car listing sites for context (use your knowledge of typical listings on these platforms):\n")
		for i, u := range input.ReferenceURLs {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, u))
		}
	}
	if v.HasOdometerRange() {
		sb.WriteString(fmt.Sprintf("\nIMPORTANT: Focus your research on vehicles with odometer readings between %s and %s.\n",
			km(*v.OdometerMin), km(*v.OdometerMax)))
	}

	sb.WriteString(`
Based on your knowledge of the Australian used car market (carsales.com.au, gumtree.com.au, autotrader.com.au, facebook marketplace, dealer sites, auction houses like Pickles, Manheim, etc.), provide:

1. COMPARABLE LISTINGS: Generate 5-8 realistic comparable listings that would typically be found in the Australian market right now. Include a mix from different sources.
2. MARKET SUMMARY: Analyze overall market conditions for this vehicle.
3. INSIGHTS: Provide 3-5 actionable insights for a car trader.

Respond in this exact JSON format:
{
  "comparable_listings": [
    {"source": "carsales.com.au", "title": "2020 Toyota Camry Ascent Sport Auto", "price": 28990, "odometer": 45000, "year": 2020, "notes": "Dealer listing, includes warranty"}
  ],
  "market_summary": {
    "average_price": 27500,
    "price_range": {"low": 24000, "high": 32000},
    "average_odometer": 55000,
    "demand_level": "HIGH",
    "supply_level": "MEDIUM",
    "market_trend": "STABLE",
    "best_time_to_sell": "Spring/Summer for this model",
    "popular_variants": ["Ascent Sport", "SX", "SL"]
  },
  "insights": ["This model holds value well due to Toyota reliability reputation"]
}

Be realistic with Australian market prices (in AUD). Your knowledge has a training cutoff date, so be conservative with pricing and acknowledge market volatility.

Respond ONLY with valid JSON, no other text.`)

	return sb.String()
}

func promptListingAnalysis(input dto.ListingAnalysisInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert car market analyst helping car traders make profitable decisions. Analyze these scraped car listings and provide actionable insights.\n\n")
	sb.WriteString(market.FormatListings(input.Listings))
	sb.WriteString("\n")
	sb.WriteString(market.FormatMetrics(input.Metrics))

	if c := input.Vehicle; c != nil && (c.Year > 0 || c.Make != "" || c.Model != "") {
		sb.WriteString("\n# Vehicle the trader is evaluating\n")
		if c.Year > 0 {
			sb.WriteString(fmt.Sprintf("- Year: %d\n", c.Year))
		}
		writeIfSet(&sb, "Make", c.Make)
		writeIfSet(&sb, "Model", c.Model)
	}
	if input.AskPrice != nil && *input.AskPrice > 0 {
		sb.WriteString(fmt.Sprintf("- Asking price: %s\n", dollars(*input.AskPrice)))
	}

	sb.WriteString(`
Provide a comprehensive analysis in the following JSON format:
{
  "summary": "Brief 2-3 sentence market overview",
  "market_position": "How this vehicle segment is performing (hot/stable/declining)",
  "price_analysis": "How the asking prices compare across the listings",
  "price_recommendation": {
    "fair_market_value": <number - estimated fair market value based on scraped data>,
    "buy_price": <number - maximum price to pay for a good deal>,
    "sell_price": <number - optimal selling price for quick sale with profit>,
    "confidence": "high/medium/low based on data quality"
  },
  "best_deals": ["Listings priced below the market"],
  "overpriced": ["Listings priced above the market"],
  "opportunities": ["3-5 specific opportunities you see in this market data"],
  "risks": ["2-4 risks or red flags to watch for"],
  "negotiation_tips": ["3-4 specific negotiation strategies based on market conditions"],
  "recommendations": ["Concrete next steps for the trader"],
  "negotiation_leverage": "What gives the buyer leverage with these sellers"
}

Base your recommendations on the actual scraped data. Be specific with numbers and actionable advice.`)

	return sb.String()
}

func promptDealSummary(input dto.DealSummaryInput) string {
	var sb strings.Builder
	v := input.Vehicle

	sb.WriteString("You are an AI assistant for a car trader. Generate a concise deal summary for this vehicle.\n\n")
	sb.WriteString(fmt.Sprintf("Vehicle: %s\n", v.DisplayName()))
	if v.Odometer != nil && *v.Odometer > 0 {
		sb.WriteString(fmt.Sprintf("Odometer: %s\n", km(*v.Odometer)))
	} else {
		sb.WriteString("Odometer: Unknown\n")
	}
	sb.WriteString(fmt.Sprintf("Transmission: %s\n", enumOrUnknown(v.Transmission)))
	sb.WriteString(fmt.Sprintf("Fuel: %s\n", enumOrUnknown(v.FuelType)))
	if input.AskPrice != nil {
		sb.WriteString(fmt.Sprintf("Asking Price: %s\n", dollars(*input.AskPrice)))
	} else {
		sb.WriteString("Asking Price: Not specified\n")
	}
	if input.FairValueLow != nil && input.FairValueHigh != nil {
		sb.WriteString(fmt.Sprintf("Fair Value Range: %s - %s\n", dollars(*input.FairValueLow), dollars(*input.FairValueHigh)))
	} else {
		sb.WriteString("Fair Value Range: Not calculated\n")
	}
	if input.EstimatedMargin != nil {
		sb.WriteString(fmt.Sprintf("Estimated Margin: %.1f%%\n", *input.EstimatedMargin))
	} else {
		sb.WriteString("Estimated Margin: Unknown\n")
	}
	if input.RiskScore != nil {
		sb.WriteString(fmt.Sprintf("Risk Score: %d/100\n", *input.RiskScore))
	} else {
		sb.WriteString("Risk Score: Unknown\n")
	}

	sb.WriteString(`
Write a brief 3-4 sentence summary covering:
1. Whether this looks like a good deal
2. Key pros and cons
3. What to watch out for
4. Suggested action

Keep it practical and trader-focused.`)

	return sb.String()
}

func promptMessageTemplate(input dto.MessageTemplateInput) string {
	var sb strings.Builder
	v := input.Vehicle

	sb.WriteString(fmt.Sprintf("Generate a %s %s message for this vehicle:\n\n", orDefault(input.Tone, "polite"), messageTypeDescriptions[input.MessageType]))
	sb.WriteString(fmt.Sprintf("Vehicle: %d %s %s\n", v.Year, v.Make, v.Model))
	if input.AskPrice != nil {
		sb.WriteString(fmt.Sprintf("Asking Price: %s\n", dollars(*input.AskPrice)))
	} else {
		sb.WriteString("Asking Price: Not listed\n")
	}
	if input.RecommendedOffer != nil {
		sb.WriteString(fmt.Sprintf("Offer Amount: %s\n", dollars(*input.RecommendedOffer)))
	}
	if input.SellerName != "" {
		sb.WriteString(fmt.Sprintf("Seller Name: %s\n", input.SellerName))
	}

	sb.WriteString("\nWrite a professional but friendly message suitable for SMS/email. Keep it under 150 words.\n")
	sb.WriteString("Don't use overly formal language. Sound like a real person.")

	return sb.String()
}

func writeIfSet(sb *strings.Builder, label, value string) {
	if value != "" {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", label, value))
	}
}

func enumOrUnknown[T ~string](v *T) string {
	if v == nil || *v == "" {
		return "Unknown"
	}
	return string(*v)
}
