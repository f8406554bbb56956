package main

import (
	"fmt"
	"os"

	"github.com/tphakala/birdwalk/cmd"
	"github.com/tphakala/birdwalk/internal/conf"
	"github.com/tphakala/birdwalk/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command execution error: %v\n", err)
		os.Exit(1)
	}
}
