// wikipedia.go: Wikipedia implementation of the ImageProvider interface.
package imageprovider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/antonholmquist/jason"
	"golang.org/x/time/rate"

	"github.com/tphakala/birdwalk/internal/errors"
	"github.com/tphakala/birdwalk/internal/logging"
)

const (
	wikiProviderName = "wikimedia"

	wikiAPIEndpoint = "https://en.wikipedia.org/w/api.php"

	// User-Agent constants following Wikimedia robot policy
	// https://foundation.wikimedia.org/wiki/Policy:Wikimedia_Foundation_User-Agent_Policy
	userAgentName    = "BirdWalk"
	userAgentLibrary = "Go-HTTP-Client"

	// notFoundPageID is how the MediaWiki query API reports a missing page
	// inside the pages map.
	notFoundPageID = "-1"
)

// wikiMediaProvider implements the ImageProvider interface for Wikipedia.
type wikiMediaProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
	thumbSize  int
	userAgent  string
	logger     *slog.Logger
	debug      bool
}

// WikipediaOption configures the Wikipedia provider.
type WikipediaOption func(*wikiMediaProvider)

// WithEndpoint overrides the MediaWiki API endpoint, used by tests.
func WithEndpoint(endpoint string) WikipediaOption {
	return func(p *wikiMediaProvider) {
		p.endpoint = endpoint
	}
}

// WithDebug enables debug logging for the provider.
func WithDebug(debug bool) WikipediaOption {
	return func(p *wikiMediaProvider) {
		p.debug = debug
	}
}

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(client *http.Client) WikipediaOption {
	return func(p *wikiMediaProvider) {
		p.httpClient = client
	}
}

// NewWikiMediaProvider creates a Wikipedia-backed image provider. contact is
// the contact URL embedded in the user agent per the Wikimedia robot policy;
// thumbSize is the requested thumbnail width in pixels.
func NewWikiMediaProvider(contact string, thumbSize int, appVersion string, opts ...WikipediaOption) ImageProvider {
	p := &wikiMediaProvider{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(10), 1), // Wikimedia asks for modest request rates
		endpoint:  wikiAPIEndpoint,
		thumbSize: thumbSize,
		userAgent: buildUserAgent(appVersion, contact),
		logger:    logging.ForService("imageprovider.wikipedia"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// buildUserAgent constructs a user-agent string that complies with Wikimedia's
// robot policy: <client name>/<version> (<contact information>) <library>/<version>
func buildUserAgent(appVersion, contact string) string {
	if appVersion == "" {
		appVersion = "unknown"
	}
	return fmt.Sprintf("%s/%s (%s) %s/%s",
		userAgentName, appVersion, contact, userAgentLibrary, runtime.Version())
}

// Fetch queries the MediaWiki API for the page's lead thumbnail and returns
// its URL. It returns ErrImageNotFound when the page does not exist or has
// no thumbnail.
func (p *wikiMediaProvider) Fetch(ctx context.Context, pageTitle string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", errors.Newf("rate limiter wait: %w", err).
			Category(errors.CategoryImageFetch).
			Context("provider", wikiProviderName).
			Component("imageprovider").
			Build()
	}

	query := url.Values{}
	query.Set("action", "query")
	query.Set("format", "json")
	query.Set("prop", "pageimages")
	query.Set("piprop", "thumbnail")
	query.Set("pithumbsize", fmt.Sprintf("%d", p.thumbSize))
	query.Set("redirects", "1")
	query.Set("titles", pageTitle)

	requestURL := p.endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return "", errors.Newf("failed to create request: %w", err).
			Category(errors.CategoryImageFetch).
			Context("provider", wikiProviderName).
			Context("title", pageTitle).
			Component("imageprovider").
			Build()
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Newf("wikipedia request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("provider", wikiProviderName).
			Context("title", pageTitle).
			Component("imageprovider").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("wikipedia API error response",
			"status_code", resp.StatusCode,
			"title", pageTitle,
			"response_preview", string(body))
		return "", errors.Newf("wikipedia API error (status %d)", resp.StatusCode).
			Category(errors.CategoryNetwork).
			Context("provider", wikiProviderName).
			Context("status_code", resp.StatusCode).
			Context("title", pageTitle).
			Component("imageprovider").
			Build()
	}

	return p.parseThumbnail(resp.Body, pageTitle)
}

// parseThumbnail extracts the thumbnail URL from a MediaWiki query response.
// The pages object is keyed by page ID; "-1" means the page does not exist.
func (p *wikiMediaProvider) parseThumbnail(body io.Reader, pageTitle string) (string, error) {
	v, err := jason.NewObjectFromReader(body)
	if err != nil {
		return "", errors.Newf("failed to parse wikipedia response: %w", err).
			Category(errors.CategoryFileParsing).
			Context("provider", wikiProviderName).
			Context("title", pageTitle).
			Component("imageprovider").
			Build()
	}

	pages, err := v.GetObject("query", "pages")
	if err != nil {
		return "", errors.Newf("unexpected wikipedia response shape: %w", err).
			Category(errors.CategoryFileParsing).
			Context("provider", wikiProviderName).
			Context("title", pageTitle).
			Component("imageprovider").
			Build()
	}

	for pageID, pageValue := range pages.Map() {
		if pageID == notFoundPageID {
			if p.debug {
				p.logger.Debug("wikipedia page not found", "title", pageTitle)
			}
			return "", ErrImageNotFound
		}

		page, err := pageValue.Object()
		if err != nil {
			continue
		}
		thumbURL, err := page.GetString("thumbnail", "source")
		if err != nil || thumbURL == "" {
			// Page exists but carries no lead image.
			continue
		}
		return thumbURL, nil
	}

	return "", ErrImageNotFound
}
