package scraper

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dining-planner/internal/catalog"
	"dining-planner/internal/metrics"

	"github.com/PuerkitoBio/goquery"
)

var (
	numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)
	amountRe = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*(mg|g)\b`)
)

// labelCell maps a nutrient cell in the specs table to a NutritionInfo
// field. Only amounts in the expected unit are accepted.
type labelCell struct {
	pattern *regexp.Regexp
	unit    string
	set     func(n *catalog.NutritionInfo, v float64)
}

var labelCells = []labelCell{
	{regexp.MustCompile(`(?i)Total Fat`), "g", func(n *catalog.NutritionInfo, v float64) { n.TotalFatG = &v }},
	{regexp.MustCompile(`(?i)Sat(urated|\.)?\s*Fat`), "g", func(n *catalog.NutritionInfo, v float64) { n.SatFatG = &v }},
	{regexp.MustCompile(`(?i)Cholesterol`), "mg", func(n *catalog.NutritionInfo, v float64) { n.CholesterolMg = &v }},
	{regexp.MustCompile(`(?i)Sodium`), "mg", func(n *catalog.NutritionInfo, v float64) { n.SodiumMg = &v }},
	{regexp.MustCompile(`(?i)Tot(al|\.)?\s*Carb`), "g", func(n *catalog.NutritionInfo, v float64) { n.TotalCarbG = &v }},
	{regexp.MustCompile(`(?i)Dietary Fiber`), "g", func(n *catalog.NutritionInfo, v float64) { n.DietaryFiberG = &v }},
	{regexp.MustCompile(`(?i)Protein`), "g", func(n *catalog.NutritionInfo, v float64) { n.ProteinG = &v }},
}

func parseNumber(s string) (float64, bool) {
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseAmount(s string) (float64, string, bool) {
	m := amountRe.FindStringSubmatch(strings.ReplaceAll(s, ",", ""))
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.ToLower(m[2]), true
}

// ParseLabel extracts nutrition facts from a label document.
func ParseLabel(r io.Reader) (*catalog.NutritionInfo, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label document: %w", err)
	}

	facts := doc.Find("#facts")
	specs := doc.Find("#specs")
	if facts.Length() == 0 && specs.Length() == 0 {
		return nil, ErrMalformedLabel
	}

	out := &catalog.NutritionInfo{}

	facts.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := collapse(p.Text())
		if strings.HasPrefix(strings.ToLower(text), "serving size") {
			out.ServingSize = strings.TrimSpace(text[len("serving size"):])
			return false
		}
		return true
	})

	if cal := collapse(facts.Find("p.strong").First().Text()); strings.Contains(strings.ToLower(cal), "calories") {
		if v, ok := parseNumber(cal); ok {
			out.Calories = &v
		}
	}

	var cells []string
	specs.Find("table td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, collapse(td.Text()))
	})
	for _, lc := range labelCells {
		for _, cell := range cells {
			if !lc.pattern.MatchString(cell) {
				continue
			}
			if v, unit, ok := parseAmount(cell); ok && unit == lc.unit {
				lc.set(out, v)
			}
			break
		}
	}

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := collapse(p.Text())
		if strings.HasPrefix(strings.ToUpper(text), "INGREDIENTS:") {
			out.Ingredients = strings.TrimSpace(text[len("INGREDIENTS:"):])
			return false
		}
		return true
	})

	return out, nil
}

// LabelKey returns the cache key for a label URL.
func LabelKey(link string) string {
	sum := sha1.Sum([]byte(link))
	return hex.EncodeToString(sum[:]) + ".json"
}

// FetchLabel returns the nutrition facts behind link. Parsed labels are
// cached as JSON; an unreadable cache entry is treated as a miss.
func (c *Client) FetchLabel(ctx context.Context, link string) (*catalog.NutritionInfo, error) {
	key := LabelKey(link)

	if data, ok := c.labels.Get(key, c.labelTTL); ok {
		var info catalog.NutritionInfo
		if err := json.Unmarshal(data, &info); err == nil {
			c.metrics.ObserveFetch(metrics.KindLabel, metrics.OutcomeCacheHit, 0)
			return &info, nil
		}
		c.logger.Debug("discarding unreadable label cache entry", "key", key)
	}

	html, err := c.fetchLabelDocument(ctx, link)
	if err != nil {
		return nil, err
	}

	info, err := ParseLabel(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse label %s: %w", link, err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal label: %w", err)
	}
	if err := c.labels.Put(key, data); err != nil {
		c.logger.Debug("cache write failed", "kind", metrics.KindLabel, "key", key, "error", err)
	}
	return info, nil
}

func (c *Client) fetchLabelDocument(ctx context.Context, link string) ([]byte, error) {
	start := time.Now()
	html, err := c.fetch(ctx, link)
	if err != nil {
		c.metrics.ObserveFetch(metrics.KindLabel, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to fetch label %s: %w", link, err)
	}
	c.metrics.ObserveFetch(metrics.KindLabel, metrics.OutcomeFetched, time.Since(start))
	return html, nil
}
