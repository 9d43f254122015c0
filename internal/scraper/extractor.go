package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/pkg/utils"
)

const (
	defaultMaxTitleLength    = 200
	defaultMaxRawContent     = 5000
	maxDescriptionLength     = 1000
	maxFeatures              = 15
	errCouldNotExtractFields = "could not extract listing data"
)

var (
	priceRegex    = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{2})?)`)
	yearRegex     = regexp.MustCompile(`\b(199\d|20[0-2]\d)\b`)
	odometerRegex = regexp.MustCompile(`(?i)([\d,]+)\s*(?:kms|km|kilometres|kilometers)\b`)
	headingRegex  = regexp.MustCompile(`(?m)^#{1,6}\s*(.+?)\s*$`)
	boldRegex     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	locationRegex = regexp.MustCompile(`\b(?i:(Sydney|Melbourne|Brisbane|Perth|Adelaide|Hobart|Darwin|Canberra))\b|\b(NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\b`)
	colourRegex   = regexp.MustCompile(`(?i)\b(?:colou?r|paint)\s*:?\s*(white|black|silver|grey|gray|blue|red|green|yellow|orange|brown|beige|gold|purple|bronze|maroon)\b`)
	sellerRegex   = regexp.MustCompile(`(?im)^\W*(?:sold by|seller|dealer name)\s*:\s*(.{2,80}?)\s*$`)
	featureRegex  = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+(.{3,80})$`)
)

type keywordRule struct {
	pattern *regexp.Regexp
	value   string
}

var transmissionRules = []keywordRule{
	{regexp.MustCompile(`(?i)automatic|\bauto\b`), "Automatic"},
	{regexp.MustCompile(`(?i)manual`), "Manual"},
	{regexp.MustCompile(`(?i)\bcvt\b`), "CVT"},
}

var fuelRules = []keywordRule{
	{regexp.MustCompile(`(?i)petrol|gasoline`), "Petrol"},
	{regexp.MustCompile(`(?i)diesel`), "Diesel"},
	{regexp.MustCompile(`(?i)electric\b`), "Electric"},
	{regexp.MustCompile(`(?i)hybrid`), "Hybrid"},
}

var bodyRules = []keywordRule{
	{regexp.MustCompile(`(?i)\bsuv\b`), "SUV"},
	{regexp.MustCompile(`(?i)\bsedan\b`), "Sedan"},
	{regexp.MustCompile(`(?i)\bhatchback\b|\bhatch\b`), "Hatchback"},
	{regexp.MustCompile(`(?i)\bute\b|\bpickup\b`), "Ute"},
	{regexp.MustCompile(`(?i)\bwagon\b`), "Wagon"},
	{regexp.MustCompile(`(?i)\bcoupe\b`), "Coupe"},
	{regexp.MustCompile(`(?i)\bconvertible\b|\bcabriolet\b`), "Convertible"},
	{regexp.MustCompile(`(?i)\bvan\b`), "Van"},
}

var (
	dealerRegex  = regexp.MustCompile(`(?i)dealer|dealership`)
	privateRegex = regexp.MustCompile(`(?i)private\s*(?:seller|sale)`)
	newRegex     = regexp.MustCompile(`(?i)\bnew\b`)
	usedRegex    = regexp.MustCompile(`(?i)used|pre-owned|second[\s-]*hand`)
)

// Extractor turns unstructured page text into listing fields. It never fails:
// fields it cannot detect are left empty.
type Extractor struct {
	currency       string
	maxTitleLength int
	maxRawContent  int
}

func NewExtractor(cfg config.Scraper) *Extractor {
	e := &Extractor{
		currency:       cfg.DefaultCurrency,
		maxTitleLength: defaultMaxTitleLength,
		maxRawContent:  cfg.MaxRawContentLength,
	}
	if e.currency == "" {
		e.currency = "AUD"
	}
	if e.maxRawContent <= 0 {
		e.maxRawContent = defaultMaxRawContent
	}
	return e
}

// Parse detects listing fields in content. URL, status and timestamps are
// left for the caller.
func (e *Extractor) Parse(content string) dto.ListingRecord {
	var rec dto.ListingRecord

	if m := priceRegex.FindStringSubmatch(content); m != nil {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil && amount > 0 {
			rec.Price = &dto.Price{Amount: amount, Currency: e.currency}
		}
	}

	if m := yearRegex.FindStringSubmatch(content); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			rec.Year = &year
		}
	}

	if m := odometerRegex.FindStringSubmatch(content); m != nil {
		if km, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			rec.Odometer = &dto.Odometer{Value: km, Unit: "km"}
		}
	}

	rec.Transmission = firstMatch(transmissionRules, content)
	rec.FuelType = firstMatch(fuelRules, content)
	rec.BodyType = firstMatch(bodyRules, content)

	switch {
	case dealerRegex.MatchString(content):
		rec.SellerType = dto.SellerTypeDealer
	case privateRegex.MatchString(content):
		rec.SellerType = dto.SellerTypePrivate
	default:
		rec.SellerType = dto.SellerTypeUnknown
	}

	switch {
	case newRegex.MatchString(content) && !usedRegex.MatchString(content):
		rec.Condition = "New"
	case usedRegex.MatchString(content):
		rec.Condition = "Used"
	}

	rec.Title = e.parseTitle(content)

	if m := locationRegex.FindStringSubmatch(content); m != nil {
		if m[1] != "" {
			rec.Location = m[1]
		} else {
			rec.Location = m[2]
		}
	}

	if m := colourRegex.FindStringSubmatch(content); m != nil {
		rec.Colour = strings.ToLower(m[1])
	}

	if m := sellerRegex.FindStringSubmatch(content); m != nil {
		rec.SellerName = strings.Trim(m[1], "*_ ")
	}

	rec.Features = parseFeatures(content)
	rec.Description = parseDescription(content)

	return rec
}

func (e *Extractor) parseTitle(content string) string {
	var title string
	if m := headingRegex.FindStringSubmatch(content); m != nil {
		title = m[1]
	} else if m := boldRegex.FindStringSubmatch(content); m != nil {
		title = m[1]
	}
	title = strings.TrimSpace(strings.Trim(utils.SafeText(title), "*_# "))
	return utils.Truncate(title, e.maxTitleLength)
}

// Build turns a fetch outcome into a ListingRecord. A fetched page with
// neither a title nor a price is downgraded to an error.
func (e *Extractor) Build(res dto.FetchResult, scrapedAt time.Time) dto.ListingRecord {
	if res.Status != dto.FetchStatusSuccess {
		errMsg := res.Error
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return dto.ListingRecord{
			URL:       res.URL,
			Source:    res.Source,
			Status:    res.Status,
			ScrapedAt: scrapedAt,
			Error:     errMsg,
		}
	}

	rec := e.Parse(res.Content)
	if rec.Title == "" && res.PageTitle != "" {
		rec.Title = utils.Truncate(strings.TrimSpace(res.PageTitle), e.maxTitleLength)
	}

	if rec.Title == "" && rec.Price == nil {
		return dto.ListingRecord{
			URL:       res.URL,
			Source:    res.Source,
			Status:    dto.FetchStatusError,
			ScrapedAt: scrapedAt,
			Error:     errCouldNotExtractFields,
		}
	}

	rec.URL = res.URL
	rec.Source = res.Source
	rec.Status = dto.FetchStatusSuccess
	rec.RawContent = utils.Truncate(res.Content, e.maxRawContent)
	rec.ScrapedAt = scrapedAt
	return rec
}

func firstMatch(rules []keywordRule, content string) string {
	for _, r := range rules {
		if r.pattern.MatchString(content) {
			return r.value
		}
	}
	return ""
}

func parseFeatures(content string) []string {
	matches := featureRegex.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	features := make([]string, 0, len(matches))
	for _, m := range matches {
		f := strings.TrimSpace(strings.Trim(m[1], "*_"))
		if f == "" || seen[f] || priceRegex.MatchString(f) {
			continue
		}
		seen[f] = true
		features = append(features, f)
		if len(features) == maxFeatures {
			break
		}
	}
	return features
}

// parseDescription picks the first prose paragraph of the page.
func parseDescription(content string) string {
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) < 80 || strings.HasPrefix(para, "#") || strings.HasPrefix(para, "-") || strings.HasPrefix(para, "*") {
			continue
		}
		return utils.Truncate(strings.Join(strings.Fields(para), " "), maxDescriptionLength)
	}
	return ""
}
