// Package observability provides Prometheus metrics for the application's
// caches and search pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ImageProviderMetrics tracks image resolution cache behavior.
type ImageProviderMetrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	Downloads       prometheus.Counter
	DownloadErrors  prometheus.Counter
	NegativeResults prometheus.Counter
	SharedInFlight  prometheus.Counter
}

// TaxonomyMetrics tracks species lookup cache behavior.
type TaxonomyMetrics struct {
	SnapshotFetches prometheus.Counter
	FetchErrors     prometheus.Counter
	Searches        prometheus.Counter
}

// SearchMetrics tracks the composite search pipeline.
type SearchMetrics struct {
	DebounceFires   prometheus.Counter
	CoalescedInputs prometheus.Counter
	Errors          prometheus.Counter
}

// Metrics aggregates all metric groups and owns their registry.
type Metrics struct {
	Registry      *prometheus.Registry
	ImageProvider *ImageProviderMetrics
	Taxonomy      *TaxonomyMetrics
	Search        *SearchMetrics
}

// NewMetrics creates and registers all application metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	imageProvider := &ImageProviderMetrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_cache_hits_total",
			Help: "Number of image lookups served from the memoized cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_cache_misses_total",
			Help: "Number of image lookups that required a provider fetch.",
		}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_downloads_total",
			Help: "Number of image URLs resolved from the provider.",
		}),
		DownloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_download_errors_total",
			Help: "Number of provider fetches that failed.",
		}),
		NegativeResults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_negative_results_total",
			Help: "Number of species cached as having no image.",
		}),
		SharedInFlight: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_imageprovider_shared_inflight_total",
			Help: "Number of lookups that joined an in-flight request for the same key.",
		}),
	}
	registry.MustRegister(
		imageProvider.CacheHits, imageProvider.CacheMisses,
		imageProvider.Downloads, imageProvider.DownloadErrors,
		imageProvider.NegativeResults, imageProvider.SharedInFlight,
	)

	taxonomy := &TaxonomyMetrics{
		SnapshotFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_taxonomy_snapshot_fetches_total",
			Help: "Number of full taxonomy snapshot fetches issued.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_taxonomy_fetch_errors_total",
			Help: "Number of taxonomy snapshot fetches that failed.",
		}),
		Searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_taxonomy_searches_total",
			Help: "Number of species autocomplete searches served.",
		}),
	}
	registry.MustRegister(taxonomy.SnapshotFetches, taxonomy.FetchErrors, taxonomy.Searches)

	search := &SearchMetrics{
		DebounceFires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_search_debounce_fires_total",
			Help: "Number of composite search fetches triggered after debounce.",
		}),
		CoalescedInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_search_coalesced_inputs_total",
			Help: "Number of query updates coalesced away by the debounce window.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdwalk_search_errors_total",
			Help: "Number of composite search fetches that failed.",
		}),
	}
	registry.MustRegister(search.DebounceFires, search.CoalescedInputs, search.Errors)

	return &Metrics{
		Registry:      registry,
		ImageProvider: imageProvider,
		Taxonomy:      taxonomy,
		Search:        search,
	}
}
