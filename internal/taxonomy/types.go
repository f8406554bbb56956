// Package taxonomy provides a client for the species reference API with a
// process-lifetime snapshot cache for autocomplete searches.
package taxonomy

import "time"

// Species represents a single entry from the species reference taxonomy.
type Species struct {
	SpeciesCode    string `json:"speciesCode"`
	CommonName     string `json:"comName"`
	ScientificName string `json:"sciName"`
}

// Config holds configuration for the taxonomy client
type Config struct {
	APIKey     string        `json:"api_key"`
	BaseURL    string        `json:"base_url"`
	Locale     string        `json:"locale"`
	Timeout    time.Duration `json:"timeout"`
	MaxResults int           `json:"max_results"`
}

// Error represents a taxonomy API error response
type Error struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	return e.Detail
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.ebird.org/v2",
		Locale:     "en",
		Timeout:    30 * time.Second,
		MaxResults: 20,
	}
}

// MinQueryLength is the shortest query SearchSpecies will serve; shorter
// queries return empty without triggering a snapshot fetch.
const MinQueryLength = 2
