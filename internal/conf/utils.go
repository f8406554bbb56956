// conf/utils.go various util functions for configuration package
package conf

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaultConfigPaths returns the default config paths for the application.
// The working directory is checked first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user config directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(configDir, "birdwalk"),
	}, nil
}

// FindConfigFile locates the active config.yaml, searching the default paths.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range configPaths {
		configPath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", fmt.Errorf("config file not found in %v", configPaths)
}

// GetBasePath expands a possibly relative directory path and ensures it exists.
func GetBasePath(path string) string {
	basePath := path
	if !filepath.IsAbs(basePath) {
		wd, err := os.Getwd()
		if err == nil {
			basePath = filepath.Join(wd, basePath)
		}
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		fmt.Printf("Error creating directory %s: %v\n", basePath, err)
	}

	return basePath
}
