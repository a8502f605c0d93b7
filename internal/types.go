package internal

import (
	"sjsage522/carwatcher/helpers"
	"sjsage522/carwatcher/services/cache"
	"sjsage522/carwatcher/services/store"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache   cache.CacheService
	Store   store.SeenStore
	Fetcher helpers.PageFetcher
}
