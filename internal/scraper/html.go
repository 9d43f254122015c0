package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	digitsRegex  = regexp.MustCompile(`\d[\d,]*(?:\.\d{2})?`)
)

var priceSelectors = []string{`[itemprop="price"]`, `[class*="price"]`, `[class*="amount"]`}

var odometerSelectors = []string{`[class*="odometer"]`, `[class*="kilomet"]`, `[class*="mileage"]`}

// HTMLToText renders an HTML page as markdown-like text the Extractor can read.
// Structured price and odometer hints found by selector are prepended so they
// win over incidental amounts in the body.
func HTMLToText(html string) (text string, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, svg, iframe, template, head").Remove()

	var hints []string
	if price := selectorHint(doc, priceSelectors); price != "" {
		hints = append(hints, "Price: $"+price)
	}
	if km := selectorHint(doc, odometerSelectors); km != "" {
		hints = append(hints, "Odometer: "+km+" km")
	}

	var sb strings.Builder
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	renderNode(root, &sb)

	body := normalizeText(sb.String())
	if len(hints) > 0 {
		body = strings.Join(hints, "\n") + "\n\n" + body
	}
	return body, title, nil
}

func selectorHint(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		raw, ok := node.Attr("content")
		if !ok || strings.TrimSpace(raw) == "" {
			raw = node.Text()
		}
		if m := digitsRegex.FindString(raw); m != "" && m != "0" {
			return m
		}
	}
	return ""
}

func renderNode(sel *goquery.Selection, sb *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); name {
		case "#text":
			if t := collapseSpace(s.Text()); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if t := collapseSpace(s.Text()); t != "" {
				level := int(name[1] - '0')
				sb.WriteString("\n\n" + strings.Repeat("#", level) + " " + t + "\n\n")
			}
		case "strong", "b":
			if t := collapseSpace(s.Text()); t != "" {
				sb.WriteString("**" + t + "** ")
			}
		case "li":
			sb.WriteString("\n- ")
			renderNode(s, sb)
		case "br":
			sb.WriteString("\n")
		case "p", "div", "section", "article", "header", "footer", "main", "ul", "ol", "table", "tr", "dl", "dt", "dd":
			sb.WriteString("\n\n")
			renderNode(s, sb)
			sb.WriteString("\n\n")
		case "#comment":
		default:
			renderNode(s, sb)
		}
	})
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	out := multiNewline.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}
