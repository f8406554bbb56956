package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tphakala/birdwalk/internal/conf"
)

// createDatabase initializes a temporary database for testing purposes.
func createDatabase(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"

	store := New(settings)
	require.NoError(t, store.Open(), "Failed to open database")

	t.Cleanup(func() {
		assert.NoError(t, store.Close(), "Failed to close datastore")
	})

	return store
}

// seedWalk stores a walk with the given sightings and returns it.
func seedWalk(t *testing.T, store Interface, userID, name, date string, sightings ...Sighting) Walk {
	t.Helper()

	walk := Walk{UserID: userID, Name: name, Date: date, StartTime: "07:00"}
	require.NoError(t, store.SaveWalk(&walk))

	for i := range sightings {
		sightings[i].WalkID = walk.ID
		require.NoError(t, store.SaveSighting(&sightings[i]))
	}
	return walk
}

func TestWalkCRUD(t *testing.T) {
	store := createDatabase(t)

	walk := Walk{
		UserID:    "default",
		Name:      "River Loop",
		Date:      "2026-08-20",
		StartTime: "07:30",
		Notes:     "clear morning",
	}
	require.NoError(t, store.SaveWalk(&walk))
	require.NotZero(t, walk.ID)

	got, err := store.GetWalk(walk.ID)
	require.NoError(t, err)
	assert.Equal(t, "River Loop", got.Name)
	assert.Equal(t, "2026-08-20", got.Date)

	require.NoError(t, store.UpdateWalk(walk.ID, map[string]any{"name": "River Loop (extended)"}))
	got, err = store.GetWalk(walk.ID)
	require.NoError(t, err)
	assert.Equal(t, "River Loop (extended)", got.Name)

	require.NoError(t, store.DeleteWalk(walk.ID))
	_, err = store.GetWalk(walk.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateWalkNotFound(t *testing.T) {
	store := createDatabase(t)

	err := store.UpdateWalk(9999, map[string]any{"name": "nope"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetWalksScopedToUserNewestFirst(t *testing.T) {
	store := createDatabase(t)

	seedWalk(t, store, "alice", "City Park", "2026-05-12")
	seedWalk(t, store, "alice", "River Loop", "2026-08-20")
	seedWalk(t, store, "bob", "Marsh Trail", "2026-07-04")

	walks, err := store.GetWalks("alice")
	require.NoError(t, err)
	require.Len(t, walks, 2)
	assert.Equal(t, "River Loop", walks[0].Name)
	assert.Equal(t, "City Park", walks[1].Name)
}

func TestDeleteWalkRemovesSightings(t *testing.T) {
	store := createDatabase(t)

	walk := seedWalk(t, store, "default", "River Loop", "2026-08-20",
		Sighting{SpeciesCode: "amerob", CommonName: "American Robin",
			Timestamp: "2026-08-20T08:15:00Z", ObservationType: ObservationSeen},
		Sighting{SpeciesCode: "baleag", CommonName: "Bald Eagle",
			Timestamp: "2026-08-20T07:50:00Z", ObservationType: ObservationSeen},
	)

	require.NoError(t, store.DeleteWalk(walk.ID))

	sightings, err := store.GetSightingsByWalk(walk.ID)
	require.NoError(t, err)
	assert.Empty(t, sightings)
}

func TestSightingCRUD(t *testing.T) {
	store := createDatabase(t)

	walk := seedWalk(t, store, "default", "River Loop", "2026-08-20")

	sighting := Sighting{
		WalkID:          walk.ID,
		SpeciesCode:     "amerob",
		CommonName:      "American Robin",
		ScientificName:  "Turdus migratorius",
		Timestamp:       "2026-08-20T08:15:00Z",
		ObservationType: ObservationHeard,
	}
	require.NoError(t, store.SaveSighting(&sighting))
	require.NotZero(t, sighting.ID)

	got, err := store.GetSighting(sighting.ID)
	require.NoError(t, err)
	assert.Equal(t, "amerob", got.SpeciesCode)
	assert.Equal(t, ObservationHeard, got.ObservationType)

	require.NoError(t, store.UpdateSighting(sighting.ID, map[string]any{"observation_type": ObservationSeen}))
	got, err = store.GetSighting(sighting.ID)
	require.NoError(t, err)
	assert.Equal(t, ObservationSeen, got.ObservationType)

	require.NoError(t, store.DeleteSighting(sighting.ID))
	_, err = store.GetSighting(sighting.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateSightingNotFound(t *testing.T) {
	store := createDatabase(t)

	err := store.UpdateSighting(9999, map[string]any{"notes": "nope"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetSightingsByWalkNewestFirst(t *testing.T) {
	store := createDatabase(t)

	walk := seedWalk(t, store, "default", "River Loop", "2026-08-20",
		Sighting{SpeciesCode: "baleag", CommonName: "Bald Eagle",
			Timestamp: "2026-08-20T07:50:00Z", ObservationType: ObservationSeen},
		Sighting{SpeciesCode: "amerob", CommonName: "American Robin",
			Timestamp: "2026-08-20T08:15:00Z", ObservationType: ObservationSeen},
	)

	sightings, err := store.GetSightingsByWalk(walk.ID)
	require.NoError(t, err)
	require.Len(t, sightings, 2)
	assert.Equal(t, "amerob", sightings[0].SpeciesCode)
	assert.Equal(t, "baleag", sightings[1].SpeciesCode)
}

func TestGetAllSightingsJoinsWalks(t *testing.T) {
	store := createDatabase(t)

	seedWalk(t, store, "alice", "City Park", "2026-05-12",
		Sighting{SpeciesCode: "amerob", CommonName: "American Robin",
			Timestamp: "2026-05-12T06:45:00Z", ObservationType: ObservationSeen})
	seedWalk(t, store, "alice", "River Loop", "2026-08-20",
		Sighting{SpeciesCode: "amerob", CommonName: "American Robin",
			Timestamp: "2026-08-20T08:15:00Z", ObservationType: ObservationSeen},
		Sighting{SpeciesCode: "baleag", CommonName: "Bald Eagle",
			Timestamp: "2026-08-20T07:50:00Z", ObservationType: ObservationSeen})
	seedWalk(t, store, "bob", "Marsh Trail", "2026-07-04",
		Sighting{SpeciesCode: "aldfly", CommonName: "Alder Flycatcher",
			Timestamp: "2026-07-04T09:30:00Z", ObservationType: ObservationHeard})

	rows, err := store.GetAllSightings("alice")
	require.NoError(t, err)
	require.Len(t, rows, 3, "other users' sightings must not leak in")

	// Newest first, with walk context attached.
	assert.Equal(t, "amerob", rows[0].SpeciesCode)
	assert.Equal(t, "River Loop", rows[0].WalkName)
	assert.Equal(t, "2026-08-20", rows[0].WalkDate)
	assert.Equal(t, "baleag", rows[1].SpeciesCode)
	assert.Equal(t, "City Park", rows[2].WalkName)
}

func TestImageCacheRoundTrip(t *testing.T) {
	store := createDatabase(t)

	entry := &ImageCache{
		SpeciesKey:     "Turdus migratorius|American Robin",
		ScientificName: "Turdus migratorius",
		CommonName:     "American Robin",
		URL:            "https://upload.wikimedia.org/robin.jpg",
		CachedAt:       time.Now().UTC(),
	}
	require.NoError(t, store.SaveImageCache(entry))

	got, err := store.GetImageCache(entry.SpeciesKey)
	require.NoError(t, err)
	assert.Equal(t, entry.URL, got.URL)
	assert.False(t, got.NotFound)

	// Saving again for the same key replaces the entry.
	require.NoError(t, store.SaveImageCache(&ImageCache{
		SpeciesKey:     entry.SpeciesKey,
		ScientificName: entry.ScientificName,
		CommonName:     entry.CommonName,
		NotFound:       true,
		CachedAt:       time.Now().UTC(),
	}))

	all, err := store.GetAllImageCaches()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].NotFound)
}
