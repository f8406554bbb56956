package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birdwalk/internal/errors"
	"github.com/tphakala/birdwalk/internal/logging"
	"github.com/tphakala/birdwalk/internal/observability"
)

// Package-level logger specific to the taxonomy service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "taxonomy.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "taxonomy", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize taxonomy file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "taxonomy")
		closeLogger = func() error { return nil }
	}
}

// Client provides species autocomplete backed by the species reference API.
// The full taxonomy is fetched at most once per process lifetime and retained
// in a snapshot slot; a failed fetch is not cached, so the next call retries.
type Client struct {
	config     Config
	httpClient *http.Client
	snapshots  *cache.Cache // locale -> []Species, no expiration
	fetchMu    sync.Mutex   // serializes snapshot fetches
	metrics    *observability.TaxonomyMetrics
	warnedOnce sync.Once // missing API key is logged once
}

// NewClient creates a new taxonomy client. A missing API key is not an error:
// the client stays usable and every search degrades to an empty result.
func NewClient(config Config, metrics *observability.TaxonomyMetrics) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Locale == "" {
		config.Locale = DefaultConfig().Locale
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxResults == 0 {
		config.MaxResults = DefaultConfig().MaxResults
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		snapshots: cache.New(cache.NoExpiration, cache.NoExpiration),
		metrics:   metrics,
	}

	logger.Info("taxonomy client initialized",
		"base_url", config.BaseURL,
		"locale", config.Locale,
		"api_key_configured", config.APIKey != "")

	return client
}

// Close cleans up client resources
func (c *Client) Close() {
	logger.Info("closing taxonomy client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing taxonomy logger: %v", err)
		}
	}
}

// SearchSpecies returns up to the configured maximum of species whose common
// or scientific name contains the query, case-insensitively. Queries shorter
// than MinQueryLength return empty without triggering a fetch. All failures
// degrade to an empty result; the next call is the retry mechanism.
func (c *Client) SearchSpecies(ctx context.Context, query string) []Species {
	if len(query) < MinQueryLength {
		return []Species{}
	}

	if c.config.APIKey == "" {
		c.warnedOnce.Do(func() {
			logger.Warn("species reference API key not configured, autocomplete disabled")
		})
		return []Species{}
	}

	taxonomy, err := c.getTaxonomy(ctx)
	if err != nil {
		logger.Error("taxonomy fetch failed, returning empty result",
			"query", query,
			"error", err)
		return []Species{}
	}

	if c.metrics != nil {
		c.metrics.Searches.Inc()
	}

	needle := strings.ToLower(query)
	results := []Species{}
	for i := range taxonomy {
		if strings.Contains(strings.ToLower(taxonomy[i].CommonName), needle) ||
			strings.Contains(strings.ToLower(taxonomy[i].ScientificName), needle) {
			results = append(results, taxonomy[i])
			if len(results) >= c.config.MaxResults {
				break
			}
		}
	}

	return results
}

// getTaxonomy returns the cached taxonomy snapshot, fetching it on first use.
// Concurrent first callers share one fetch; a failed fetch leaves the slot
// empty so a later call retries.
func (c *Client) getTaxonomy(ctx context.Context) ([]Species, error) {
	if cached, found := c.snapshots.Get(c.config.Locale); found {
		if taxonomy, ok := cached.([]Species); ok {
			return taxonomy, nil
		}
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// Another caller may have populated the slot while we waited.
	if cached, found := c.snapshots.Get(c.config.Locale); found {
		if taxonomy, ok := cached.([]Species); ok {
			return taxonomy, nil
		}
	}

	if c.metrics != nil {
		c.metrics.SnapshotFetches.Inc()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	// The reference API defaults to CSV, fmt=json must be explicit.
	url := fmt.Sprintf("%s/ref/taxonomy/ebird?fmt=json", c.config.BaseURL)
	if c.config.Locale != "" {
		url = fmt.Sprintf("%s&locale=%s", url, c.config.Locale)
	}

	var taxonomy []Species
	if err := c.doRequest(reqCtx, url, &taxonomy); err != nil {
		if c.metrics != nil {
			c.metrics.FetchErrors.Inc()
		}
		return nil, err
	}

	c.snapshots.Set(c.config.Locale, taxonomy, cache.NoExpiration)

	logger.Info("taxonomy snapshot cached",
		"locale", c.config.Locale,
		"entries", len(taxonomy))

	return taxonomy, nil
}

// doRequest performs an authenticated GET and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("taxonomy").
			Build()
	}

	req.Header.Set("X-eBirdApiToken", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("taxonomy API request failed",
			"error", err,
			"url", url)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("taxonomy").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("taxonomy").
			Build()
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if jsonErr := json.Unmarshal(bodyBytes, &apiErr); jsonErr != nil {
			apiErr.Detail = string(bodyBytes)
		}
		apiErr.Status = resp.StatusCode

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			logger.Error("taxonomy API authentication failed",
				"status_code", resp.StatusCode,
				"url", url,
				"message", "check the species reference API key in the configuration")
		} else {
			logger.Warn("taxonomy API error response",
				"status_code", resp.StatusCode,
				"detail", apiErr.Detail,
				"url", url)
		}

		return errors.Newf("taxonomy API error (status %d): %s", resp.StatusCode, apiErr.Detail).
			Category(categoryForStatus(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", url).
			Component("taxonomy").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			logger.Error("failed to parse taxonomy API response",
				"error", err,
				"url", url,
				"response_size", len(bodyBytes))
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", url).
				Component("taxonomy").
				Build()
		}
	}

	return nil
}

// categoryForStatus maps HTTP status codes to error categories.
func categoryForStatus(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
