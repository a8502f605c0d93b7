package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteSelectors describes where listings live on the classifieds pages.
// Every list is an ordered fallback chain: the first selector that matches wins.
type SiteSelectors struct {
	// Search results page
	Tables      []string `yaml:"tables"`
	Rows        []string `yaml:"rows"`
	Cell        string   `yaml:"cell"`
	MinCells    int      `yaml:"min_cells"`
	ListingLink string   `yaml:"listing_link"`
	// Path segment that marks a listing detail URL, e.g. "/msg/"
	DetailMarker string `yaml:"detail_marker"`
	// Substrings that identify the price cell
	CurrencyMarkers []string `yaml:"currency_markers"`

	// Detail page
	DetailTitle   string `yaml:"detail_title"`
	DetailLabels  string `yaml:"detail_labels"`
	DetailValues  string `yaml:"detail_values"`
	DetailPrice   string `yaml:"detail_price"`
	FallbackTitle string `yaml:"fallback_title"`
}

// DefaultSelectors returns the selector chains for ss.com search and detail pages
func DefaultSelectors() SiteSelectors {
	return SiteSelectors{
		Tables: []string{
			"table.filter_tbl",
			`form[name="filter_frm"] table`,
			"table#filter_tbl",
			"table#page_main",
			"table.d1",
		},
		Rows: []string{
			"tr[id]",
			"tr.tr-line",
			"tr.r",
			`tr[onclick*="window.open"]`,
			"tr.d1",
		},
		Cell:            "td",
		MinCells:        4,
		ListingLink:     `a[href*="/msg/"]`,
		DetailMarker:    "/msg/",
		CurrencyMarkers: []string{"€"},
		DetailTitle:     "h1",
		DetailLabels:    "tr.d1 td.ads_opt",
		DetailValues:    "tr.d1 td.ads_opt_b",
		DetailPrice:     "span.ads_price",
		FallbackTitle:   "BMW 3-Series",
	}
}

// LoadSelectors reads a YAML override file on top of DefaultSelectors.
// An empty path returns the defaults unchanged.
func LoadSelectors(filePath string) (SiteSelectors, error) {
	selectors := DefaultSelectors()
	if filePath == "" {
		return selectors, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return selectors, fmt.Errorf("failed to read selectors file: %w", err)
	}

	// Keys absent from the document keep their default values
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return selectors, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(&selectors); err != nil {
		return selectors, err
	}
	return selectors, nil
}

// validateSelectors checks the minimal set of selectors
func validateSelectors(s *SiteSelectors) error {
	if len(s.Rows) == 0 {
		return fmt.Errorf("rows is required")
	}
	if s.Cell == "" {
		return fmt.Errorf("cell is required")
	}
	if s.ListingLink == "" || s.DetailMarker == "" {
		return fmt.Errorf("listing_link and detail_marker are required")
	}
	if len(s.CurrencyMarkers) == 0 {
		return fmt.Errorf("currency_markers is required")
	}
	return nil
}
