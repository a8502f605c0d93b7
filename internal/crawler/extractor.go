package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/helpers"
	"sjsage522/carwatcher/internal/criteria"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/store"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a search results document into new, matching listings.
// It never mutates the seen set, so extracting the same document twice
// against the same set yields the same result.
type Extractor struct {
	selectors config.SiteSelectors
	criteria  criteria.Criteria
	resolve   func(href string) string
	log       *logger.Logger
	now       func() time.Time
}

// NewExtractor creates an extractor for the given selectors and filter
func NewExtractor(selectors config.SiteSelectors, c criteria.Criteria, resolve func(string) string, log *logger.Logger) *Extractor {
	if resolve == nil {
		resolve = func(href string) string { return href }
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		selectors: selectors,
		criteria:  c,
		resolve:   resolve,
		log:       log,
		now:       time.Now,
	}
}

// Extract runs the row strategy and falls back to the link strategy when no
// listing rows are recognized. A page without any table yields nothing.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document, seen SeenChecker, detail DetailFunc) []Listing {
	table, err := e.locateTable(doc)
	if err != nil {
		e.log.Info().Err(err).Msg("Could not find listings table")
		return nil
	}

	if rows, selector := e.locateRows(table); rows != nil {
		e.log.Debug().
			Str("selector", selector).
			Int("rows", rows.Length()).
			Msg("Using row strategy")
		return e.fromRows(rows, seen)
	}

	links := doc.Find(e.selectors.ListingLink)
	if links.Length() == 0 {
		e.log.Info().
			Err(scerrors.NewExtractionMiss("extractor", "no listing rows or links found")).
			Msg("Nothing to extract")
		return nil
	}

	e.log.Debug().Int("links", links.Length()).Msg("Using link strategy")
	return e.fromLinks(ctx, links, seen, detail)
}

// locateTable walks the table selector chain, falling back to the last table
func (e *Extractor) locateTable(doc *goquery.Document) (*goquery.Selection, error) {
	for _, selector := range e.selectors.Tables {
		if table := doc.Find(selector).First(); table.Length() > 0 {
			return table, nil
		}
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, scerrors.NewExtractionMiss("extractor", "no table in document")
	}
	return tables.Last(), nil
}

func (e *Extractor) locateRows(table *goquery.Selection) (*goquery.Selection, string) {
	for _, selector := range e.selectors.Rows {
		if rows := table.Find(selector); rows.Length() > 0 {
			return rows, selector
		}
	}
	return nil, ""
}

func (e *Extractor) fromRows(rows *goquery.Selection, seen SeenChecker) []Listing {
	var listings []Listing
	emitted := make(map[string]struct{})

	rows.Each(func(i int, row *goquery.Selection) {
		listing, err := e.parseRow(row)
		if err != nil {
			e.log.Warn().Err(err).Int("row", i).Msg("Skipping malformed listing row")
			return
		}
		if listing == nil || e.skip(listing.ID, seen, emitted) {
			return
		}
		if !e.accept(*listing) {
			return
		}
		emitted[listing.ID] = struct{}{}
		listings = append(listings, *listing)
	})

	return listings
}

// parseRow returns nil without an error for rows that are not listings
func (e *Extractor) parseRow(row *goquery.Selection) (*Listing, error) {
	id := strings.TrimSpace(row.AttrOr("id", ""))
	if id == "" {
		if onclick, ok := row.Attr("onclick"); ok {
			id, _ = helpers.AfterMarker(onclick, e.selectors.DetailMarker, `'"`)
		}
	}
	if id == "" {
		return nil, nil
	}

	cells := row.Find(e.selectors.Cell)
	if cells.Length() < e.selectors.MinCells {
		return nil, nil
	}

	titleCell := cells.FilterFunction(func(_ int, cell *goquery.Selection) bool {
		return cell.Find("a").Length() > 0
	}).First()
	if titleCell.Length() == 0 {
		return nil, scerrors.NewListing("extractor", fmt.Sprintf("row %s has no title link", id), nil)
	}

	// Every cell contributes, empty ones included
	texts := cells.Map(func(_ int, cell *goquery.Selection) string {
		return strings.TrimSpace(cell.Text())
	})

	return &Listing{
		ID:        id,
		Title:     strings.TrimSpace(titleCell.Text()),
		URL:       e.resolve(titleCell.Find("a").First().AttrOr("href", "")),
		Details:   strings.Join(texts, " "),
		Price:     e.findPrice(cells),
		Timestamp: store.Now(e.now()),
	}, nil
}

// findPrice scans cells from the last one backwards for a currency marker
func (e *Extractor) findPrice(cells *goquery.Selection) string {
	for i := cells.Length() - 1; i >= 0; i-- {
		text := strings.TrimSpace(cells.Eq(i).Text())
		for _, marker := range e.selectors.CurrencyMarkers {
			if strings.Contains(text, marker) {
				return text
			}
		}
	}
	return ""
}

func (e *Extractor) fromLinks(ctx context.Context, links *goquery.Selection, seen SeenChecker, detail DetailFunc) []Listing {
	var listings []Listing
	emitted := make(map[string]struct{})

	links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		href := link.AttrOr("href", "")
		id, ok := helpers.AfterMarker(href, e.selectors.DetailMarker, "?#")
		if !ok || e.skip(id, seen, emitted) {
			return true
		}
		// The same listing is usually linked from both its thumbnail and its title
		emitted[id] = struct{}{}

		listing, err := e.parseDetail(ctx, id, e.resolve(href), detail)
		if err != nil {
			e.log.Warn().Err(err).Str("id", id).Msg("Skipping listing detail")
			return true
		}
		if e.accept(listing) {
			listings = append(listings, listing)
		}
		return true
	})

	return listings
}

func (e *Extractor) parseDetail(ctx context.Context, id, url string, detail DetailFunc) (Listing, error) {
	if detail == nil {
		return Listing{}, scerrors.NewListing("extractor", "no detail loader configured", nil)
	}

	doc, err := detail(ctx, url)
	if err != nil {
		return Listing{}, scerrors.NewListing("extractor", fmt.Sprintf("failed to load detail page %s", url), err)
	}

	title := strings.TrimSpace(doc.Find(e.selectors.DetailTitle).First().Text())
	if title == "" {
		title = e.selectors.FallbackTitle
	}

	labels := doc.Find(e.selectors.DetailLabels)
	values := doc.Find(e.selectors.DetailValues)
	var details strings.Builder
	for i := 0; i < labels.Length() && i < values.Length(); i++ {
		fmt.Fprintf(&details, "%s: %s, ",
			strings.TrimSpace(labels.Eq(i).Text()),
			strings.TrimSpace(values.Eq(i).Text()))
	}

	return Listing{
		ID:        id,
		Title:     title,
		URL:       url,
		Details:   details.String(),
		Price:     strings.TrimSpace(doc.Find(e.selectors.DetailPrice).First().Text()),
		Timestamp: store.Now(e.now()),
	}, nil
}

func (e *Extractor) skip(id string, seen SeenChecker, emitted map[string]struct{}) bool {
	if _, ok := emitted[id]; ok {
		return true
	}
	return seen != nil && seen.Contains(id)
}

func (e *Extractor) accept(listing Listing) bool {
	result := e.criteria.Evaluate(listing.Details)
	if !result.OK() {
		e.log.Debug().
			Str("id", listing.ID).
			Strs("failed", result.Failed()).
			Msg("Listing does not meet criteria")
		return false
	}
	return true
}
