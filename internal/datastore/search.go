// search.go: substring search queries over walks and sightings
package datastore

import (
	"fmt"
	"strings"
)

// minQueryLength is the shortest query either search will run; shorter
// queries return empty without touching the database.
const minQueryLength = 2

// SearchWalks finds a user's walks whose name contains the query,
// case-insensitively, with their sighting counts. Results are ordered
// newest first.
func (ds *DataStore) SearchWalks(userID, query string, limit int) ([]WalkSummary, error) {
	if len(query) < minQueryLength {
		return []WalkSummary{}, nil
	}

	var results []WalkSummary
	pattern := "%" + strings.ToLower(query) + "%"

	err := ds.DB.Table("walks").
		Select("walks.id, walks.name, walks.date, COUNT(sightings.id) as sighting_count").
		Joins("LEFT JOIN sightings ON sightings.walk_id = walks.id").
		Where("walks.user_id = ? AND LOWER(walks.name) LIKE ?", userID, pattern).
		Group("walks.id").
		Order("walks.date DESC, walks.start_time DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error searching walks: %w", err)
	}

	if results == nil {
		results = []WalkSummary{}
	}
	return results, nil
}

// SearchSpecies finds distinct species a user has sighted whose common or
// scientific name contains the query, case-insensitively, each with the
// distinct walks the species was recorded on.
func (ds *DataStore) SearchSpecies(userID, query string, limit int) ([]SpeciesSummary, error) {
	if len(query) < minQueryLength {
		return []SpeciesSummary{}, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"

	var rows []struct {
		SpeciesCode string
		CommonName  string
		WalkID      uint
		WalkName    string
		WalkDate    string
	}

	err := ds.DB.Table("sightings").
		Select("sightings.species_code, sightings.common_name, "+
			"walks.id as walk_id, walks.name as walk_name, walks.date as walk_date").
		Joins("INNER JOIN walks ON walks.id = sightings.walk_id").
		Where("walks.user_id = ? AND (LOWER(sightings.common_name) LIKE ? OR LOWER(sightings.scientific_name) LIKE ?)",
			userID, pattern, pattern).
		Group("sightings.species_code, sightings.common_name, walks.id, walks.name, walks.date").
		Order("sightings.species_code, walks.date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error searching species: %w", err)
	}

	// Group walk rows per species, preserving query order.
	results := []SpeciesSummary{}
	index := make(map[string]int)
	for i := range rows {
		row := &rows[i]
		pos, ok := index[row.SpeciesCode]
		if !ok {
			if len(results) >= limit {
				continue
			}
			results = append(results, SpeciesSummary{
				SpeciesCode: row.SpeciesCode,
				CommonName:  row.CommonName,
			})
			pos = len(results) - 1
			index[row.SpeciesCode] = pos
		}
		results[pos].Walks = append(results[pos].Walks, WalkRef{
			ID:   row.WalkID,
			Name: row.WalkName,
			Date: row.WalkDate,
		})
	}

	return results, nil
}
