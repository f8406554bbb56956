// imageprovider.go: Package imageprovider provides functionality for fetching and caching bird images.
package imageprovider

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/logging"
	"github.com/tphakala/birdwalk/internal/observability"
)

// ErrImageNotFound is returned by providers when no image exists for a title.
var ErrImageNotFound = stderrors.New("image not found")

// ImageProvider defines the interface for fetching a thumbnail URL by page title.
type ImageProvider interface {
	Fetch(ctx context.Context, pageTitle string) (string, error)
}

// BirdImage represents a resolved bird image.
type BirdImage struct {
	URL            string    `json:"url"`
	ScientificName string    `json:"scientificName,omitempty"`
	CommonName     string    `json:"commonName"`
	CachedAt       time.Time `json:"cachedAt"`
}

// cacheEntry wraps a resolution result so that "no image exists" is itself a
// cached value, distinct from "not looked up yet".
type cacheEntry struct {
	image *BirdImage // nil means resolution failed for every candidate name
}

// BirdImageCache resolves display images for species and memoizes the results,
// negative ones included, for the process lifetime. Concurrent lookups for the
// same species share one underlying fetch.
type BirdImageCache struct {
	provider ImageProvider
	dataMap  sync.Map // cache key -> *cacheEntry
	group    singleflight.Group
	metrics  *observability.ImageProviderMetrics
	store    datastore.Interface // optional persistence across restarts
	logger   *slog.Logger
	debug    bool
}

// InitCache initializes a new BirdImageCache with the given ImageProvider.
// store may be nil, in which case results live only in memory.
func InitCache(provider ImageProvider, metrics *observability.ImageProviderMetrics, store datastore.Interface, debug bool) *BirdImageCache {
	c := &BirdImageCache{
		provider: provider,
		metrics:  metrics,
		store:    store,
		logger:   logging.ForService("imageprovider"),
		debug:    debug,
	}

	if store != nil {
		if err := c.loadCachedImages(); err != nil {
			c.logger.Warn("failed to load persisted image cache", "error", err)
		}
	}

	return c
}

// SetImageProvider allows setting a custom ImageProvider for testing purposes.
func (c *BirdImageCache) SetImageProvider(provider ImageProvider) {
	c.provider = provider
}

// CacheKey builds the memoization key for a species. The scientific name is
// preferred and defaults to the empty string when absent.
func CacheKey(scientificName, commonName string) string {
	return scientificName + "|" + commonName
}

// Get resolves a display image for the species. It returns nil when no image
// could be found; that outcome is cached and will not be retried for the rest
// of the process lifetime. Get never returns an error: every failure degrades
// to a nil result.
func (c *BirdImageCache) Get(ctx context.Context, commonName, scientificName string) *BirdImage {
	key := CacheKey(scientificName, commonName)

	if cached, ok := c.dataMap.Load(key); ok {
		if c.metrics != nil {
			c.metrics.CacheHits.Inc()
		}
		return cached.(*cacheEntry).image
	}

	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}

	// Concurrent callers for the same key share one resolution; only the
	// first caller runs the fetch.
	result, _, shared := c.group.Do(key, func() (any, error) {
		// A racing caller may have settled the entry between the map
		// check and the singleflight join.
		if cached, ok := c.dataMap.Load(key); ok {
			return cached.(*cacheEntry), nil
		}

		entry := c.resolve(ctx, key, commonName, scientificName)
		c.dataMap.Store(key, entry)
		c.saveToStore(key, commonName, scientificName, entry)
		return entry, nil
	})
	if shared && c.metrics != nil {
		c.metrics.SharedInFlight.Inc()
	}

	return result.(*cacheEntry).image
}

// resolve tries each candidate page title in order and returns the first
// image found. All failures, transient or permanent, produce a negative entry.
func (c *BirdImageCache) resolve(ctx context.Context, key, commonName, scientificName string) *cacheEntry {
	if c.provider == nil {
		return &cacheEntry{}
	}

	for _, title := range candidateTitles(scientificName, commonName) {
		url, err := c.provider.Fetch(ctx, title)
		if err != nil {
			if !stderrors.Is(err, ErrImageNotFound) {
				if c.metrics != nil {
					c.metrics.DownloadErrors.Inc()
				}
				c.logger.Warn("image fetch failed, trying next candidate",
					"title", title,
					"error", err)
			}
			continue
		}

		if c.metrics != nil {
			c.metrics.Downloads.Inc()
		}
		if c.debug {
			c.logger.Debug("image resolved",
				"key", key,
				"title", title,
				"url", url)
		}
		return &cacheEntry{image: &BirdImage{
			URL:            url,
			ScientificName: scientificName,
			CommonName:     commonName,
			CachedAt:       time.Now(),
		}}
	}

	if c.metrics != nil {
		c.metrics.NegativeResults.Inc()
	}
	if c.debug {
		c.logger.Debug("no image found for any candidate name", "key", key)
	}
	return &cacheEntry{}
}

// candidateTitles returns the page titles to try, scientific name first in
// sentence case, then the common name as-is.
func candidateTitles(scientificName, commonName string) []string {
	titles := make([]string, 0, 2)
	if scientificName != "" {
		titles = append(titles, SentenceCase(scientificName))
	}
	if commonName != "" {
		titles = append(titles, commonName)
	}
	return titles
}

// SentenceCase lowercases the string and capitalizes the first letter, the
// form Wikipedia uses for scientific name page titles ("Turdus migratorius").
func SentenceCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// loadCachedImages seeds the in-memory cache from the persisted table.
func (c *BirdImageCache) loadCachedImages() error {
	entries, err := c.store.GetAllImageCaches()
	if err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		entry := &cacheEntry{}
		if !e.NotFound {
			entry.image = &BirdImage{
				URL:            e.URL,
				ScientificName: e.ScientificName,
				CommonName:     e.CommonName,
				CachedAt:       e.CachedAt,
			}
		}
		c.dataMap.Store(e.SpeciesKey, entry)
	}

	if c.debug {
		c.logger.Debug("loaded persisted image cache", "entries", len(entries))
	}
	return nil
}

// saveToStore persists a settled resolution result, negative ones included.
func (c *BirdImageCache) saveToStore(key, commonName, scientificName string, entry *cacheEntry) {
	if c.store == nil {
		return
	}

	record := &datastore.ImageCache{
		SpeciesKey:     key,
		ScientificName: scientificName,
		CommonName:     commonName,
		NotFound:       entry.image == nil,
		CachedAt:       time.Now(),
	}
	if entry.image != nil {
		record.URL = entry.image.URL
		record.CachedAt = entry.image.CachedAt
	}

	if err := c.store.SaveImageCache(record); err != nil {
		c.logger.Warn("failed to persist image cache entry",
			"key", key,
			"error", err)
	}
}
