// conf/validate.go settings validation
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded settings for configuration mistakes that
// would fail later in confusing ways.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		errs = append(errs, fmt.Errorf("output: only one of sqlite and mysql may be enabled"))
	}
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		errs = append(errs, fmt.Errorf("output: one of sqlite or mysql must be enabled"))
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		errs = append(errs, fmt.Errorf("output.sqlite.path must not be empty"))
	}

	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		errs = append(errs, fmt.Errorf("webserver.port must not be empty"))
	}

	if settings.Realtime.Search.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("realtime.search.debouncems must not be negative"))
	}
	if settings.Realtime.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("realtime.search.maxresults must be positive"))
	}

	if settings.Realtime.Thumbnails.Enabled && settings.Realtime.Thumbnails.Size <= 0 {
		errs = append(errs, fmt.Errorf("realtime.thumbnails.size must be positive"))
	}

	return errors.Join(errs...)
}
