package crawler

import (
	"context"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/criteria"

	"github.com/PuerkitoBio/goquery"
)

// Listing represents one classified advertisement found during a cycle
type Listing struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Details   string `json:"details"`
	Price     string `json:"price,omitempty"`
	Timestamp string `json:"timestamp"`
	Provider  string `json:"provider"`
}

// Crawler interface defines the contract for all crawler implementations
type Crawler interface {
	// FetchListings retrieves new, matching listings and marks them seen
	FetchListings(ctx context.Context) ([]Listing, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// SeenChecker answers whether a listing identifier was already reported
type SeenChecker interface {
	Contains(id string) bool
}

// DetailFunc loads and parses a single listing detail page
type DetailFunc func(ctx context.Context, url string) (*goquery.Document, error)

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	URL           string
	Origin        string
	CacheKey      string
	BlockTime     time.Duration
	Provider      string
	Selectors     config.SiteSelectors
	Criteria      criteria.Criteria
	DebugPagePath string
}
