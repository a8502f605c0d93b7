package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"sjsage522/carwatcher/helpers"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL       string
	Origin    *url.URL
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Fetcher   helpers.PageFetcher
}

// fetchWithCache fetches a URL unless the site is blocked, and blocks it after a rate limit
func (c *BaseCrawler) fetchWithCache(ctx context.Context, target string) (io.Reader, error) {
	// Check if the crawler is rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, scerrors.NewRateLimit(c.CacheKey, c.BlockTime)
		}
	}

	body, err := c.Fetcher.FetchPage(ctx, target)
	if err != nil {
		if c.CacheSvc != nil && c.CacheKey != "" && scerrors.IsType(err, scerrors.ErrorTypeRateLimit) {
			c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", c.BlockTime/time.Second)), c.BlockTime)
		}
		return nil, err
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, scerrors.NewParse("crawler", "failed to parse HTML", err)
	}
	return doc, nil
}

// fetchDocument fetches and parses a page in one step
func (c *BaseCrawler) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := c.fetchWithCache(ctx, target)
	if err != nil {
		return nil, err
	}
	return c.createDocument(body)
}

// ResolveURL makes href absolute against the site origin
func (c *BaseCrawler) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || c.Origin == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.Origin.ResolveReference(ref).String()
}
