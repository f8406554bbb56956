package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a settings struct that passes validation; tests
// mutate one field at a time.
func validSettings() *Settings {
	s := &Settings{}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "birdwalk.db"
	s.WebServer.Enabled = true
	s.WebServer.Port = "8080"
	s.Realtime.Search.DebounceMS = 300
	s.Realtime.Search.MaxResults = 20
	s.Realtime.Thumbnails.Enabled = true
	s.Realtime.Thumbnails.Size = 400
	return s
}

func TestValidateSettingsAccepted(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejected(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantMsg string
	}{
		{
			name: "both databases enabled",
			mutate: func(s *Settings) {
				s.Output.MySQL.Enabled = true
			},
			wantMsg: "only one of sqlite and mysql",
		},
		{
			name: "no database enabled",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = false
			},
			wantMsg: "one of sqlite or mysql must be enabled",
		},
		{
			name: "sqlite without path",
			mutate: func(s *Settings) {
				s.Output.SQLite.Path = ""
			},
			wantMsg: "output.sqlite.path",
		},
		{
			name: "webserver without port",
			mutate: func(s *Settings) {
				s.WebServer.Port = ""
			},
			wantMsg: "webserver.port",
		},
		{
			name: "negative debounce",
			mutate: func(s *Settings) {
				s.Realtime.Search.DebounceMS = -1
			},
			wantMsg: "debouncems",
		},
		{
			name: "zero max results",
			mutate: func(s *Settings) {
				s.Realtime.Search.MaxResults = 0
			},
			wantMsg: "maxresults",
		},
		{
			name: "zero thumbnail size",
			mutate: func(s *Settings) {
				s.Realtime.Thumbnails.Size = 0
			},
			wantMsg: "thumbnails.size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateSettingsJoinsAllErrors(t *testing.T) {
	s := validSettings()
	s.Output.SQLite.Enabled = false
	s.Realtime.Search.MaxResults = 0

	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite or mysql")
	assert.Contains(t, err.Error(), "maxresults")
}
