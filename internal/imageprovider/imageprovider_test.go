package imageprovider_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/imageprovider"
)

// mockImageProvider is a mock implementation of the ImageProvider interface
type mockImageProvider struct {
	mu           sync.Mutex
	fetchCounter int
	titles       []string
	fetchDelay   time.Duration
	failWith     error // returned for every fetch when set
}

func (m *mockImageProvider) Fetch(ctx context.Context, pageTitle string) (string, error) {
	m.mu.Lock()
	m.fetchCounter++
	m.titles = append(m.titles, pageTitle)
	m.mu.Unlock()

	if m.fetchDelay > 0 {
		time.Sleep(m.fetchDelay)
	}

	if m.failWith != nil {
		return "", m.failWith
	}
	return fmt.Sprintf("http://example.com/%s.jpg", pageTitle), nil
}

func (m *mockImageProvider) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCounter
}

// mockStore implements only the image cache persistence methods.
type mockStore struct {
	datastore.Interface
	mu      sync.Mutex
	entries map[string]datastore.ImageCache
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string]datastore.ImageCache)}
}

func (m *mockStore) SaveImageCache(entry *datastore.ImageCache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[entry.SpeciesKey] = *entry
	return nil
}

func (m *mockStore) GetImageCache(speciesKey string) (*datastore.ImageCache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[speciesKey]; ok {
		return &entry, nil
	}
	return nil, errors.New("record not found")
}

func (m *mockStore) GetAllImageCaches() ([]datastore.ImageCache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]datastore.ImageCache, 0, len(m.entries))
	for _, entry := range m.entries {
		all = append(all, entry)
	}
	return all, nil
}

func TestGetResolvesAndCaches(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	img := cache.Get(context.Background(), "American Robin", "Turdus migratorius")
	require.NotNil(t, img)
	assert.Equal(t, "http://example.com/Turdus migratorius.jpg", img.URL)
	assert.Equal(t, "American Robin", img.CommonName)

	// Second lookup is served from memory.
	again := cache.Get(context.Background(), "American Robin", "Turdus migratorius")
	require.NotNil(t, again)
	assert.Equal(t, img.URL, again.URL)
	assert.Equal(t, 1, provider.fetchCount(), "cached lookup must not refetch")
}

func TestGetTriesScientificNameFirst(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	cache.Get(context.Background(), "American Robin", "TURDUS MIGRATORIUS")

	require.NotEmpty(t, provider.titles)
	assert.Equal(t, "Turdus migratorius", provider.titles[0],
		"scientific name must be tried first, in sentence case")
}

func TestGetFallsBackToCommonName(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{failWith: imageprovider.ErrImageNotFound}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	img := cache.Get(context.Background(), "American Robin", "Turdus migratorius")
	assert.Nil(t, img)
	assert.Equal(t, []string{"Turdus migratorius", "American Robin"}, provider.titles)
}

func TestGetCachesNegativeResult(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{failWith: imageprovider.ErrImageNotFound}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	img := cache.Get(context.Background(), "Ghost Bird", "Avis phantasma")
	assert.Nil(t, img)

	fetchesAfterFirst := provider.fetchCount()
	assert.Nil(t, cache.Get(context.Background(), "Ghost Bird", "Avis phantasma"))
	assert.Equal(t, fetchesAfterFirst, provider.fetchCount(),
		"negative result must be cached, not retried")
}

func TestGetCachesTransientFailureAsNegative(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{failWith: errors.New("connection refused")}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	assert.Nil(t, cache.Get(context.Background(), "American Robin", "Turdus migratorius"))

	fetches := provider.fetchCount()
	assert.Nil(t, cache.Get(context.Background(), "American Robin", "Turdus migratorius"))
	assert.Equal(t, fetches, provider.fetchCount(),
		"transient failures settle as cached negative entries")
}

func TestGetDeduplicatesConcurrentLookups(t *testing.T) {
	t.Parallel()

	provider := &mockImageProvider{fetchDelay: 50 * time.Millisecond}
	cache := imageprovider.InitCache(provider, nil, nil, false)

	const callers = 10
	urls := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img := cache.Get(context.Background(), "American Robin", "Turdus migratorius")
			if img != nil {
				urls[i] = img.URL
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, provider.fetchCount(), "concurrent lookups must share one fetch")
	for i := 1; i < callers; i++ {
		assert.Equal(t, urls[0], urls[i], "all callers must observe the same result")
	}
}

func TestGetWithoutProvider(t *testing.T) {
	t.Parallel()

	cache := imageprovider.InitCache(nil, nil, nil, false)
	assert.Nil(t, cache.Get(context.Background(), "American Robin", "Turdus migratorius"))
}

func TestCachePersistsResults(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	provider := &mockImageProvider{}
	cache := imageprovider.InitCache(provider, nil, store, false)

	img := cache.Get(context.Background(), "American Robin", "Turdus migratorius")
	require.NotNil(t, img)

	miss := &mockImageProvider{failWith: imageprovider.ErrImageNotFound}
	cache.SetImageProvider(miss)
	assert.Nil(t, cache.Get(context.Background(), "Ghost Bird", "Avis phantasma"))

	// A fresh cache over the same store must serve both entries, the
	// negative one included, without touching the provider.
	untouchable := &mockImageProvider{failWith: errors.New("should not be called")}
	reloaded := imageprovider.InitCache(untouchable, nil, store, false)

	restored := reloaded.Get(context.Background(), "American Robin", "Turdus migratorius")
	require.NotNil(t, restored)
	assert.Equal(t, img.URL, restored.URL)
	assert.Nil(t, reloaded.Get(context.Background(), "Ghost Bird", "Avis phantasma"))
	assert.Equal(t, 0, untouchable.fetchCount(), "persisted entries must not refetch")
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Turdus migratorius|American Robin",
		imageprovider.CacheKey("Turdus migratorius", "American Robin"))
	assert.Equal(t, "|American Robin", imageprovider.CacheKey("", "American Robin"))
}

func TestSentenceCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"turdus migratorius", "Turdus migratorius"},
		{"TURDUS MIGRATORIUS", "Turdus migratorius"},
		{"  Haliaeetus leucocephalus  ", "Haliaeetus leucocephalus"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, imageprovider.SentenceCase(tt.input), "input %q", tt.input)
	}
}
