// Package lifelist builds a user's life list: one summary entry per distinct
// species ever sighted, with per-species statistics.
package lifelist

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"

	"github.com/tphakala/birdwalk/internal/datastore"
)

// SightingDetail is one sighting of a species inside a Lifer entry.
type SightingDetail struct {
	ID        uint   `json:"id"`
	Timestamp string `json:"timestamp"`
	WalkID    uint   `json:"walkId"`
	WalkName  string `json:"walkName"`
	WalkDate  string `json:"walkDate"`
}

// Lifer is one species a user has ever recorded, summarized across all walks.
// TotalSightings always equals len(Sightings) and MostRecentSighting is the
// maximum timestamp across them.
type Lifer struct {
	SpeciesCode        string           `json:"speciesCode"`
	CommonName         string           `json:"commonName"`
	ScientificName     string           `json:"scientificName,omitempty"`
	MostRecentSighting string           `json:"mostRecentSighting"`
	TotalSightings     int              `json:"totalSightings"`
	Sightings          []SightingDetail `json:"sightings"`
}

// SortSpec selects the ordering of a built life list.
type SortSpec int

const (
	SortRecentDesc SortSpec = iota // most recent sighting first (default)
	SortRecentAsc
	SortNameAsc // common name, locale-aware
	SortNameDesc
	SortCountDesc // total sightings, highest first
	SortCountAsc
)

// ParseSortSpec maps the API's sort parameter to a SortSpec. An empty value
// selects the default ordering.
func ParseSortSpec(s string) (SortSpec, error) {
	switch s {
	case "", "recent_desc":
		return SortRecentDesc, nil
	case "recent_asc":
		return SortRecentAsc, nil
	case "name_asc":
		return SortNameAsc, nil
	case "name_desc":
		return SortNameDesc, nil
	case "count_desc":
		return SortCountDesc, nil
	case "count_asc":
		return SortCountAsc, nil
	default:
		return SortRecentDesc, fmt.Errorf("unknown sort option: %q", s)
	}
}

// Build groups the flat sighting rows into one Lifer per distinct species code
// and sorts the result per spec. The grouping is order-independent; ties keep
// the order the grouping pass produced. collator may be nil, in which case
// name sorts fall back to byte order.
func Build(rows []datastore.SightingWithWalk, spec SortSpec, collator *collate.Collator) []Lifer {
	lifers := []Lifer{}
	index := make(map[string]int)

	for i := range rows {
		row := &rows[i]
		detail := SightingDetail{
			ID:        row.ID,
			Timestamp: row.Timestamp,
			WalkID:    row.WalkID,
			WalkName:  row.WalkName,
			WalkDate:  row.WalkDate,
		}

		pos, seen := index[row.SpeciesCode]
		if !seen {
			lifers = append(lifers, Lifer{
				SpeciesCode:        row.SpeciesCode,
				CommonName:         row.CommonName,
				ScientificName:     row.ScientificName,
				MostRecentSighting: row.Timestamp,
				TotalSightings:     1,
				Sightings:          []SightingDetail{detail},
			})
			index[row.SpeciesCode] = len(lifers) - 1
			continue
		}

		lifer := &lifers[pos]
		lifer.TotalSightings++
		lifer.Sightings = append(lifer.Sightings, detail)
		// ISO-8601 strings compare correctly lexicographically.
		if row.Timestamp > lifer.MostRecentSighting {
			lifer.MostRecentSighting = row.Timestamp
		}
	}

	sortLifers(lifers, spec, collator)
	return lifers
}

// sortLifers orders the list in place. SliceStable keeps ties in grouping order.
func sortLifers(lifers []Lifer, spec SortSpec, collator *collate.Collator) {
	compareNames := func(a, b string) int {
		if collator != nil {
			return collator.CompareString(a, b)
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	sort.SliceStable(lifers, func(i, j int) bool {
		switch spec {
		case SortRecentDesc:
			return lifers[i].MostRecentSighting > lifers[j].MostRecentSighting
		case SortRecentAsc:
			return lifers[i].MostRecentSighting < lifers[j].MostRecentSighting
		case SortNameAsc:
			return compareNames(lifers[i].CommonName, lifers[j].CommonName) < 0
		case SortNameDesc:
			return compareNames(lifers[i].CommonName, lifers[j].CommonName) > 0
		case SortCountDesc:
			return lifers[i].TotalSightings > lifers[j].TotalSightings
		case SortCountAsc:
			return lifers[i].TotalSightings < lifers[j].TotalSightings
		default:
			return false
		}
	})
}
