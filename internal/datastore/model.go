// model.go this code defines the data model for the application
package datastore

import "time"

// Walk represents a single birding outing, the unit sightings are grouped under.
type Walk struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index:idx_walks_userid"`
	Name      string `gorm:"index:idx_walks_name"`
	Date      string `gorm:"index:idx_walks_date"` // YYYY-MM-DD
	StartTime string // HH:MM
	Notes     string `gorm:"type:text"`
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time

	Sightings []Sighting `gorm:"foreignKey:WalkID;constraint:OnDelete:CASCADE"`
}

// Sighting represents one recorded observation of a species during a walk.
// Timestamp is an ISO-8601 UTC string; lexicographic order equals
// chronological order, which the life-list aggregation relies on.
type Sighting struct {
	ID              uint   `gorm:"primaryKey"`
	WalkID          uint   `gorm:"index;not null"`
	SpeciesCode     string `gorm:"index:idx_sightings_code"`
	CommonName      string `gorm:"index:idx_sightings_comname"`
	ScientificName  string `gorm:"index:idx_sightings_sciname"`
	Timestamp       string `gorm:"index:idx_sightings_timestamp"`
	ObservationType string `gorm:"type:varchar(10)"` // "seen" or "heard"
	Notes           string `gorm:"type:text"`
	Latitude        *float64
	Longitude       *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Observation type values for Sighting.ObservationType.
const (
	ObservationSeen  = "seen"
	ObservationHeard = "heard"
)

// ImageCache represents a persisted species image resolution result.
// NotFound entries record that no image exists for the species so the
// lookup is not repeated.
type ImageCache struct {
	ID             uint   `gorm:"primaryKey"`
	SpeciesKey     string `gorm:"uniqueIndex;not null"` // scientificName|commonName
	ScientificName string
	CommonName     string
	URL            string
	NotFound       bool
	CachedAt       time.Time `gorm:"index"`
}

// SightingWithWalk is a sighting joined with its parent walk's name and date,
// the row shape the life-list aggregation consumes.
type SightingWithWalk struct {
	ID              uint   `json:"id"`
	WalkID          uint   `json:"walkId"`
	WalkName        string `json:"walkName"`
	WalkDate        string `json:"walkDate"`
	SpeciesCode     string `json:"speciesCode"`
	CommonName      string `json:"commonName"`
	ScientificName  string `json:"scientificName,omitempty"`
	Timestamp       string `json:"timestamp"`
	ObservationType string `json:"observationType"`
}

// WalkSummary is a walk search result with its sighting count.
type WalkSummary struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	SightingCount int    `json:"sightingCount"`
}

// WalkRef identifies a walk a species was seen on.
type WalkRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// SpeciesSummary is a species search result with the distinct walks the
// species was recorded on.
type SpeciesSummary struct {
	SpeciesCode string    `json:"speciesCode"`
	CommonName  string    `json:"commonName"`
	Walks       []WalkRef `json:"walks"`
}
