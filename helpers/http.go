package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"

	scerrors "sjsage522/carwatcher/pkg/errors"
)

// DefaultUserAgent mimics a desktop Chrome; the site rejects non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageFetcher loads a page and returns its body decoded to UTF-8
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (io.Reader, error)
}

// Fetcher performs GET requests with a fixed browser-like header set.
// It never retries; the scheduler decides when to try again.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher whose requests are bounded by timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: DefaultUserAgent,
	}
}

// FetchPage sends an HTTP GET request with browser headers,
// converts the response body to UTF-8 (if needed), and returns it as an io.Reader.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, scerrors.NewFetch("fetcher", "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "lv-LV,lv;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	// Send the request
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, scerrors.NewFetch("fetcher", "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := resp.Header.Get("Retry-After")
		return nil, scerrors.New(scerrors.ErrorTypeRateLimit, "fetcher",
			fmt.Sprintf("rate limited; retry after %q", retryAfter), nil)
	}

	// Check for other error status codes
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scerrors.NewFetch("fetcher",
			fmt.Sprintf("fetch %s unexpected status code: %d", url, resp.StatusCode), nil)
	}

	// Read the entire response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scerrors.NewFetch("fetcher", "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, scerrors.NewFetch("fetcher", "failed to read converted UTF-8 body", err)
	}

	return &buf, nil
}

// Probe issues a single GET and reports the status code; used as a startup connectivity check
func (f *Fetcher) Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
