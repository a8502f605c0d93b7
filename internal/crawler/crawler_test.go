package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal"
	"sjsage522/carwatcher/internal/criteria"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSearchURL = "https://www.ss.com/lv/transport/cars/bmw/3-series/filter/?year_min=2003&year_max=2008"

func newTestCrawler(t *testing.T, fetcher *mockFetcher) (*SiteCrawler, *store.JSONStore) {
	t.Helper()
	seen := store.NewJSONStore(filepath.Join(t.TempDir(), "seen.json"), logger.Nop())

	c, err := NewSiteCrawler(CrawlerConfig{
		URL:       testSearchURL,
		Origin:    "https://www.ss.com",
		CacheKey:  "www.ss.com_rate_limited",
		BlockTime: time.Minute,
		Provider:  "www.ss.com",
		Selectors: config.DefaultSelectors(),
		Criteria:  criteria.Default(),
	}, internal.Dependencies{
		Cache:   NewMockCacheService(),
		Store:   seen,
		Fetcher: fetcher,
	})
	require.NoError(t, err)
	c.extractor.now = func() time.Time { return fixedNow }
	return c, seen
}

func TestSiteCrawlerFetchListings(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages[testSearchURL] = rowsPage
	c, seen := newTestCrawler(t, fetcher)

	listings, err := c.FetchListings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "www.ss.com", listings[0].Provider)

	// Returned listings are marked seen in memory only
	assert.True(t, seen.Contains("tr_1001"))
	assert.True(t, seen.Contains("tr_1003"))
	assert.False(t, seen.Contains("tr_1002"))
	assert.Equal(t, "2024-03-01 12:30:00", seen.Snapshot()["tr_1001"])

	// The next cycle over the same page finds nothing new
	listings, err = c.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestSiteCrawlerLinkStrategyUsesFetcher(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages[testSearchURL] = linksPage
	fetcher.pages["https://www.ss.com/msg/lv/bmw/aaa.html"] = matchingDetailPage
	fetcher.pages["https://www.ss.com/msg/lv/bmw/ccc.html"] = petrolDetailPage
	c, seen := newTestCrawler(t, fetcher)

	listings, err := c.FetchListings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "lv/bmw/aaa.html", listings[0].ID)
	assert.True(t, seen.Contains("lv/bmw/aaa.html"))
	assert.False(t, seen.Contains("lv/bmw/ccc.html"))
	assert.Equal(t, 1, fetcher.callCount("https://www.ss.com/msg/lv/bmw/bbb.html"))
}

func TestSiteCrawlerFetchError(t *testing.T) {
	fetcher := newMockFetcher()
	c, seen := newTestCrawler(t, fetcher)

	listings, err := c.FetchListings(context.Background())
	require.Error(t, err)
	assert.True(t, scerrors.IsType(err, scerrors.ErrorTypeFetch))
	assert.Nil(t, listings)
	assert.Empty(t, seen.Snapshot())
}

func TestSiteCrawlerNoTable(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages[testSearchURL] = noTablePage
	c, _ := newTestCrawler(t, fetcher)

	listings, err := c.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestSiteCrawlerDumpsDebugPage(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages[testSearchURL] = rowsPage
	c, _ := newTestCrawler(t, fetcher)
	c.DebugPagePath = filepath.Join(t.TempDir(), "debug_page.html")

	listings, err := c.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	data, err := os.ReadFile(c.DebugPagePath)
	require.NoError(t, err)
	assert.Equal(t, rowsPage, string(data))
}

func TestNewSiteCrawlerValidation(t *testing.T) {
	deps := internal.Dependencies{
		Store:   store.NewJSONStore(filepath.Join(t.TempDir(), "seen.json"), logger.Nop()),
		Fetcher: newMockFetcher(),
	}

	_, err := NewSiteCrawler(CrawlerConfig{Origin: "not a url"}, deps)
	require.Error(t, err)
	assert.True(t, scerrors.IsFatal(err))

	_, err = NewSiteCrawler(CrawlerConfig{Origin: "https://www.ss.com"}, internal.Dependencies{})
	require.Error(t, err)
	assert.True(t, scerrors.IsFatal(err))

	c, err := NewSiteCrawler(CrawlerConfig{Origin: "https://www.ss.com", Provider: "www.ss.com"}, deps)
	require.NoError(t, err)
	assert.Equal(t, "www.ss.comCrawler", c.GetName())
	assert.Equal(t, "www.ss.com", c.GetProvider())
}
