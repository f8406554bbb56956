// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BirdWalk")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/birdwalk.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.host", "0.0.0.0")
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "birdwalk.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "birdwalk")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "birdwalk")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("taxonomy.apikey", "")
	viper.SetDefault("taxonomy.baseurl", "https://api.ebird.org/v2")
	viper.SetDefault("taxonomy.locale", "en")

	viper.SetDefault("realtime.thumbnails.enabled", true)
	viper.SetDefault("realtime.thumbnails.size", 400)
	viper.SetDefault("realtime.thumbnails.useragent", "https://github.com/tphakala/birdwalk")
	viper.SetDefault("realtime.thumbnails.debug", false)

	viper.SetDefault("realtime.search.debouncems", 300)
	viper.SetDefault("realtime.search.maxresults", 20)
}
