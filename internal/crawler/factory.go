package crawler

import (
	"net/url"
	"strconv"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal"
	scerrors "sjsage522/carwatcher/pkg/errors"
)

// CreateCrawler builds the site crawler from the application configuration
func CreateCrawler(cfg *config.Config, deps internal.Dependencies) (*SiteCrawler, error) {
	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		return nil, scerrors.NewConfiguration("failed to load selectors", err)
	}

	searchURL, err := BuildSearchURL(cfg)
	if err != nil {
		return nil, err
	}

	origin, err := url.Parse(cfg.SiteOrigin)
	if err != nil {
		return nil, scerrors.NewConfiguration("invalid site origin", err)
	}

	return NewSiteCrawler(CrawlerConfig{
		URL:           searchURL,
		Origin:        cfg.SiteOrigin,
		CacheKey:      origin.Hostname() + "_rate_limited",
		BlockTime:     cfg.RateLimitBlock,
		Provider:      origin.Hostname(),
		Selectors:     selectors,
		Criteria:      cfg.Criteria,
		DebugPagePath: cfg.DebugPagePath,
	}, deps)
}

// BuildSearchURL appends the year range and fixed filter parameters to the search URL
func BuildSearchURL(cfg *config.Config) (string, error) {
	u, err := url.Parse(cfg.SearchURL)
	if err != nil {
		return "", scerrors.NewConfiguration("invalid search url", err)
	}

	query := u.Query()
	query.Set("year_min", strconv.Itoa(cfg.Criteria.YearMin))
	query.Set("year_max", strconv.Itoa(cfg.Criteria.YearMax))

	for key, value := range cfg.SearchParams {
		if value != "" {
			query.Set(key, value)
		}
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
