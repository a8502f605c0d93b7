// Package criteria decides whether a listing's free-form detail text matches
// the configured year range and keyword categories.
//
// Matching is a case-insensitive substring search over the whole text, not a
// field-aware comparison: a keyword that appears in an unrelated column still
// counts as a hit.
package criteria

import (
	"fmt"
	"strconv"
	"strings"
)

// Criteria is the immutable filter a listing must satisfy to be reported.
type Criteria struct {
	Label        string
	YearMin      int
	YearMax      int
	Fuel         []string
	Transmission []string
	Body         []string
}

// Result records the outcome of each predicate.
type Result struct {
	Year         bool
	Fuel         bool
	Transmission bool
	Body         bool
}

// OK is the logical AND of all predicates.
func (r Result) OK() bool {
	return r.Year && r.Fuel && r.Transmission && r.Body
}

// Failed lists the names of the predicates that did not hold.
func (r Result) Failed() []string {
	var failed []string
	if !r.Year {
		failed = append(failed, "year")
	}
	if !r.Fuel {
		failed = append(failed, "fuel")
	}
	if !r.Transmission {
		failed = append(failed, "transmission")
	}
	if !r.Body {
		failed = append(failed, "body")
	}
	return failed
}

// Default returns the diesel / manual / wagon criteria for 2003-2008.
func Default() Criteria {
	return New("BMW 3-Series", 2003, 2008,
		[]string{"dīzelis", "diesel"},
		[]string{"manuāla", "manual"},
		[]string{"universāls", "universal", "wagon", "touring"},
	)
}

// New builds a Criteria value. Keyword sets are copied and lowercased so later
// mutation of the arguments cannot leak into a running filter.
func New(label string, yearMin, yearMax int, fuel, transmission, body []string) Criteria {
	return Criteria{
		Label:        label,
		YearMin:      yearMin,
		YearMax:      yearMax,
		Fuel:         normalizeKeywords(fuel),
		Transmission: normalizeKeywords(transmission),
		Body:         normalizeKeywords(body),
	}
}

// WithYears returns a copy with a different year range.
func (c Criteria) WithYears(yearMin, yearMax int) Criteria {
	c.YearMin = yearMin
	c.YearMax = yearMax
	return c
}

// Validate checks that the range is sane and every keyword category is populated.
func (c Criteria) Validate() error {
	if c.YearMin < 1 || c.YearMax < 1 {
		return fmt.Errorf("year range %d-%d must be positive", c.YearMin, c.YearMax)
	}
	if c.YearMin > c.YearMax {
		return fmt.Errorf("year_min %d is greater than year_max %d", c.YearMin, c.YearMax)
	}
	if len(c.Fuel) == 0 {
		return fmt.Errorf("fuel keywords are required")
	}
	if len(c.Transmission) == 0 {
		return fmt.Errorf("transmission keywords are required")
	}
	if len(c.Body) == 0 {
		return fmt.Errorf("body keywords are required")
	}
	return nil
}

// Matches reports whether detailsText satisfies every predicate.
func (c Criteria) Matches(detailsText string) bool {
	return c.Evaluate(detailsText).OK()
}

// Evaluate runs all four predicates so callers can log which ones failed.
func (c Criteria) Evaluate(detailsText string) Result {
	text := strings.ToLower(detailsText)
	return Result{
		Year:         c.hasYear(text),
		Fuel:         containsAny(text, c.Fuel),
		Transmission: containsAny(text, c.Transmission),
		Body:         containsAny(text, c.Body),
	}
}

// Describe renders the criteria for report headings.
func (c Criteria) Describe() string {
	var b strings.Builder
	if c.Label != "" {
		b.WriteString(c.Label)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "years %d-%d", c.YearMin, c.YearMax)
	fmt.Fprintf(&b, ", fuel: %s", strings.Join(c.Fuel, "/"))
	fmt.Fprintf(&b, ", transmission: %s", strings.Join(c.Transmission, "/"))
	fmt.Fprintf(&b, ", body: %s", strings.Join(c.Body, "/"))
	return b.String()
}

func (c Criteria) hasYear(text string) bool {
	for year := c.YearMin; year <= c.YearMax; year++ {
		if strings.Contains(text, strconv.Itoa(year)) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
