package crawler

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

// mockFetcher serves canned pages keyed by URL
type mockFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *mockFetcher) FetchPage(ctx context.Context, url string) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)

	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	if page, ok := m.pages[url]; ok {
		return strings.NewReader(page), nil
	}
	return nil, scerrors.NewFetch("mock", "unexpected status code: 404", nil)
}

func (m *mockFetcher) callCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == url {
			n++
		}
	}
	return n
}

// seenSet is a read-only SeenChecker for extractor tests
type seenSet map[string]bool

func (s seenSet) Contains(id string) bool {
	return s[id]
}
