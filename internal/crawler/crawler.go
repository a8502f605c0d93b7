package crawler

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"

	"sjsage522/carwatcher/internal"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/store"
)

// SiteCrawler fetches the search results page and extracts unseen listings
type SiteCrawler struct {
	BaseCrawler
	Provider      string
	DebugPagePath string

	extractor *Extractor
	seen      store.SeenStore
	log       *logger.Logger

	// fetchFunc loads the search results page, replaceable in tests
	fetchFunc func(ctx context.Context) (io.Reader, error)
	// detailFunc loads a listing detail page for the link strategy
	detailFunc DetailFunc
}

// NewSiteCrawler creates a crawler bound to the shared cache, fetcher and seen store
func NewSiteCrawler(cfg CrawlerConfig, deps internal.Dependencies) (*SiteCrawler, error) {
	origin, err := url.Parse(cfg.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, scerrors.NewConfiguration("invalid site origin "+cfg.Origin, err)
	}
	if deps.Fetcher == nil || deps.Store == nil {
		return nil, scerrors.NewConfiguration("crawler requires a fetcher and a seen store", nil)
	}

	log := logger.ForCrawler(cfg.Provider)
	c := &SiteCrawler{
		BaseCrawler: BaseCrawler{
			URL:       cfg.URL,
			Origin:    origin,
			CacheKey:  cfg.CacheKey,
			CacheSvc:  deps.Cache,
			BlockTime: cfg.BlockTime,
			Fetcher:   deps.Fetcher,
		},
		Provider:      cfg.Provider,
		DebugPagePath: cfg.DebugPagePath,
		seen:          deps.Store,
		log:           log,
	}
	c.extractor = NewExtractor(cfg.Selectors, cfg.Criteria, c.ResolveURL, log)
	c.fetchFunc = func(ctx context.Context) (io.Reader, error) {
		return c.fetchWithCache(ctx, c.URL)
	}
	c.detailFunc = c.fetchDocument

	return c, nil
}

// FetchListings runs one extraction pass and marks every returned listing seen.
// Marks live in memory until the store is persisted.
func (c *SiteCrawler) FetchListings(ctx context.Context) ([]Listing, error) {
	c.log.Info().Str("url", c.URL).Msg("Checking for new listings")

	body, err := c.fetchFunc(ctx)
	if err != nil {
		return nil, err
	}

	if c.DebugPagePath != "" {
		body, err = c.dumpPage(body)
		if err != nil {
			return nil, err
		}
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	listings := c.extractor.Extract(ctx, doc, c.seen, c.detailFunc)
	for i := range listings {
		listings[i].Provider = c.Provider
		c.seen.MarkSeen(listings[i].ID, listings[i].Timestamp)
	}

	c.log.Info().Int("count", len(listings)).Msg("Extraction finished")
	if logger.IsDebugEnabled() && len(listings) > 0 {
		c.log.Debug().Interface("listing", listings[0]).Msg("First new listing")
	}
	return listings, nil
}

// dumpPage writes the raw search page for offline selector debugging
func (c *SiteCrawler) dumpPage(body io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, scerrors.NewFetch(c.Provider, "failed to read response body", err)
	}
	if err := os.WriteFile(c.DebugPagePath, data, 0o644); err != nil {
		c.log.Warn().Err(err).Str("path", c.DebugPagePath).Msg("Failed to write debug page")
	}
	return bytes.NewReader(data), nil
}

// GetName returns the crawler's name
func (c *SiteCrawler) GetName() string {
	return c.Provider + "Crawler"
}

// GetProvider returns the provider name
func (c *SiteCrawler) GetProvider() string {
	return c.Provider
}
