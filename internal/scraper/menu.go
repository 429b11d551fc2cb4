package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"dining-planner/internal/catalog"
	"dining-planner/internal/metrics"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

type location struct {
	number string
	name   string
}

var locations = map[catalog.Campus]location{
	catalog.CampusLivingston: {number: "03", name: "Livingston Dining Commons"},
	catalog.CampusAtrium:     {number: "13", name: "The Atrium"},
}

// Items whose names contain any of these are build-your-own stations rather
// than plannable food.
var blacklist = []string{"build", "custom", "create your own"}

const sectionSelector = "h1,h2,h3,h4,legend,.category,.menu-category,.menuCat,.station"

var (
	portionRe    = regexp.MustCompile(`(?i)portion\s*(?:size)?\s*[:\-]\s*([^|]+)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ISODate formats date as YYYY-MM-DD.
func ISODate(date time.Time) string {
	return date.Format("2006-01-02")
}

// portalDate formats date the way the portal expects, M/D/YYYY without
// leading zeros.
func portalDate(date time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(date.Month()), date.Day(), date.Year())
}

// MenuURL builds the listing URL for one campus, date and meal. Breakfast is
// the portal's default view and carries no activeMeal parameter.
func MenuURL(base *url.URL, campus catalog.Campus, date time.Time, meal catalog.Meal) (string, error) {
	loc, ok := locations[campus]
	if !ok {
		return "", fmt.Errorf("unknown campus %q", campus)
	}

	query := "locationNum=" + url.QueryEscape(loc.number) +
		"&locationName=" + url.QueryEscape(loc.name) +
		"&dtdate=" + url.QueryEscape(portalDate(date)) +
		"&sName=Rutgers+University+Dining"
	if meal != catalog.Breakfast {
		query += "&activeMeal=" + url.QueryEscape(string(meal))
	}

	ref := &url.URL{Path: "pickmenu.aspx", RawQuery: query}
	return base.ResolveReference(ref).String(), nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func isBlacklisted(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range blacklist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func resolveLink(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimLeft(href, "/"))
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	return base.ResolveReference(ref).String(), true
}

func sectionName(raw string) string {
	name := collapse(raw)
	if strings.EqualFold(name, "menu") {
		return ""
	}
	return name
}

// detectSection looks for a section heading near a fieldset: its own
// legend, the closest preceding heading sibling, then any heading in the
// parent. The result is best-effort and may be empty.
func detectSection(fs *goquery.Selection) string {
	if legend := strings.TrimSpace(fs.Find("legend").First().Text()); legend != "" {
		return sectionName(legend)
	}
	if prev := strings.TrimSpace(fs.PrevAllFiltered(sectionSelector).First().Text()); prev != "" {
		return sectionName(prev)
	}
	if parent := strings.TrimSpace(fs.Parent().Find(sectionSelector).First().Text()); parent != "" {
		return sectionName(parent)
	}
	return ""
}

// ParseMenu extracts food items from a menu listing document. Links are
// resolved against base.
func ParseMenu(r io.Reader, base *url.URL, campus catalog.Campus, meal catalog.Meal, isoDate string) ([]catalog.FoodItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu document: %w", err)
	}

	var items []catalog.FoodItem
	doc.Find("fieldset").Each(func(_ int, fs *goquery.Selection) {
		name := strings.TrimSpace(fs.Find(".col-1 label").First().Text())
		if name == "" || isBlacklisted(name) {
			return
		}

		href, ok := fs.Find(".col-3 a").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		link, ok := resolveLink(base, href)
		if !ok {
			return
		}

		var portion string
		if m := portionRe.FindStringSubmatch(collapse(fs.Text())); m != nil {
			portion = strings.TrimSpace(m[1])
		} else {
			portion = collapse(fs.Find(".col-2").Text())
		}

		items = append(items, catalog.FoodItem{
			Campus:      string(campus),
			Meal:        string(meal),
			Section:     detectSection(fs),
			Name:        name,
			Link:        link,
			Date:        isoDate,
			PortionSize: portion,
		})
	})

	return catalog.Dedupe(items), nil
}

// ScrapeMeal returns the items listed for one campus, date and meal. The
// listing document is cached under campus_date_meal.html.
func (c *Client) ScrapeMeal(ctx context.Context, campus catalog.Campus, date time.Time, meal catalog.Meal) ([]catalog.FoodItem, error) {
	menuURL, err := MenuURL(c.baseURL, campus, date, meal)
	if err != nil {
		return nil, err
	}

	isoDate := ISODate(date)
	key := fmt.Sprintf("%s_%s_%s.html", campus, isoDate, meal)

	html, err := c.cached(ctx, metrics.KindMenu, c.menus, c.menuTTL, key, menuURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s menu: %w", campus, meal, err)
	}

	return ParseMenu(bytes.NewReader(html), c.baseURL, campus, meal, isoDate)
}

// ScrapeAll scrapes every meal of every campus concurrently. A listing that
// fails is logged and skipped; an error is returned only when every listing
// failed.
func (c *Client) ScrapeAll(ctx context.Context, date time.Time, campuses []catalog.Campus) ([]catalog.FoodItem, error) {
	lists := make([][]catalog.FoodItem, len(campuses)*len(catalog.Meals))

	var (
		mu       sync.Mutex
		failures int
		firstErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	for ci, campus := range campuses {
		for mi, meal := range catalog.Meals {
			slot := ci*len(catalog.Meals) + mi
			g.Go(func() error {
				items, err := c.ScrapeMeal(gctx, campus, date, meal)
				if err != nil {
					c.logger.Warn("menu scrape failed", "campus", campus, "meal", meal, "error", err)
					mu.Lock()
					failures++
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return nil
				}
				lists[slot] = items
				return nil
			})
		}
	}
	_ = g.Wait()

	if len(lists) > 0 && failures == len(lists) {
		return nil, fmt.Errorf("failed to scrape any menu: %w", firstErr)
	}

	var all []catalog.FoodItem
	for _, items := range lists {
		all = append(all, items...)
	}
	return catalog.Dedupe(all), nil
}
