package lifelist

import (
	"log/slog"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/logging"
)

// Service computes life lists from the datastore and retains the last
// successfully built list. A failed refresh leaves the previous list
// untouched, so callers always see the most recent good data.
type Service struct {
	ds       datastore.Interface
	collator *collate.Collator
	logger   *slog.Logger

	mu     sync.RWMutex
	lifers []Lifer
}

// NewService creates a life-list service. locale selects the collation used
// for name sorting; an unrecognized locale falls back to English.
func NewService(ds datastore.Interface, locale string) *Service {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	return &Service{
		ds:       ds,
		collator: collate.New(tag),
		logger:   logging.ForService("lifelist"),
	}
}

// Refresh rebuilds the life list from the user's full sighting set and
// returns it. The aggregation always re-runs from scratch; there is no
// incremental path. On a datastore failure the previous list is returned
// unchanged (fail-stale) and the error is only logged.
func (s *Service) Refresh(userID string, spec SortSpec) []Lifer {
	rows, err := s.ds.GetAllSightings(userID)
	if err != nil {
		s.logger.Error("life list refresh failed, retaining previous list",
			"user_id", userID,
			"error", err)
		return s.Lifers()
	}

	lifers := Build(rows, spec, s.collator)

	s.mu.Lock()
	s.lifers = lifers
	s.mu.Unlock()

	return lifers
}

// Lifers returns the last successfully built life list.
func (s *Service) Lifers() []Lifer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifers
}
