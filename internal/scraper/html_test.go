package scraper

import (
	"testing"

	"tradepilot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>2018 Ford Ranger XLT | Example Cars</title><meta name="robots" content="index"></head>
<body>
<script>var tracking = "captcha";</script>
<h1>2018 Ford Ranger XLT</h1>
<div class="listing-price">$41,500</div>
<div class="odometer-reading">88,200</div>
<ul><li>Tow bar</li><li><strong>Canopy</strong></li></ul>
<p>Diesel dual cab in Brisbane.</p>
</body>
</html>`

	text, title, err := HTMLToText(page)
	require.NoError(t, err)

	assert.Equal(t, "2018 Ford Ranger XLT | Example Cars", title)
	assert.Contains(t, text, "Price: $41,500")
	assert.Contains(t, text, "Odometer: 88,200 km")
	assert.Contains(t, text, "# 2018 Ford Ranger XLT")
	assert.Contains(t, text, "- Tow bar")
	assert.Contains(t, text, "**Canopy**")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "robots")
	assert.NotContains(t, text, "\n\n\n")

	rec := NewExtractor(config.Scraper{}).Parse(text)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 41500.0, rec.Price.Amount)
	require.NotNil(t, rec.Odometer)
	assert.Equal(t, 88200, rec.Odometer.Value)
	assert.Equal(t, "Diesel", rec.FuelType)
	assert.Equal(t, "Brisbane", rec.Location)
}

func TestHTMLToText_ItempropContent(t *testing.T) {
	text, _, err := HTMLToText(`<html><body><span itemprop="price" content="23990">Call us</span></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, text, "Price: $23990")
}
