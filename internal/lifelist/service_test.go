package lifelist_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/lifelist"
)

// mockStore implements only the datastore method the service uses; calling
// anything else panics through the embedded nil interface.
type mockStore struct {
	datastore.Interface
	rows []datastore.SightingWithWalk
	err  error
}

func (m *mockStore) GetAllSightings(userID string) ([]datastore.SightingWithWalk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func TestServiceRefreshRebuildsFromScratch(t *testing.T) {
	t.Parallel()

	store := &mockStore{rows: testRows()}
	svc := lifelist.NewService(store, "en")

	lifers := svc.Refresh("default", lifelist.SortRecentDesc)
	require.Len(t, lifers, 3)

	// Dropping a species from the store must drop it from the next build.
	store.rows = store.rows[:2]
	lifers = svc.Refresh("default", lifelist.SortRecentDesc)
	require.Len(t, lifers, 2)
	assert.Equal(t, []string{"amerob", "baleag"}, speciesCodes(lifers))
}

func TestServiceRefreshKeepsPreviousListOnError(t *testing.T) {
	t.Parallel()

	store := &mockStore{rows: testRows()}
	svc := lifelist.NewService(store, "en")

	good := svc.Refresh("default", lifelist.SortRecentDesc)
	require.Len(t, good, 3)

	store.err = errors.New("database locked")
	stale := svc.Refresh("default", lifelist.SortRecentDesc)
	assert.Equal(t, good, stale, "a failed refresh must return the previous list")
	assert.Equal(t, good, svc.Lifers())

	// Recovery picks up fresh data again.
	store.err = nil
	store.rows = store.rows[:1]
	fresh := svc.Refresh("default", lifelist.SortRecentDesc)
	require.Len(t, fresh, 1)
}

func TestServiceRefreshErrorBeforeFirstBuild(t *testing.T) {
	t.Parallel()

	store := &mockStore{err: errors.New("database locked")}
	svc := lifelist.NewService(store, "en")

	lifers := svc.Refresh("default", lifelist.SortRecentDesc)
	assert.Empty(t, lifers, "no previous list means an empty result")
}

func TestServiceFallsBackToEnglishCollation(t *testing.T) {
	t.Parallel()

	store := &mockStore{rows: testRows()}
	svc := lifelist.NewService(store, "not-a-locale")

	lifers := svc.Refresh("default", lifelist.SortNameAsc)
	require.Len(t, lifers, 3)
	assert.Equal(t, "Alder Flycatcher", lifers[0].CommonName)
}
