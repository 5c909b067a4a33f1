package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".letterboxd-sync"

// Settings represents the YAML configuration structure
type Settings struct {
	Username   string `yaml:"username"`
	ContentDir string `yaml:"content_dir"`
	FeedURL    string `yaml:"feed_url"`
}

func defaultSettings() *Settings {
	return &Settings{
		ContentDir: "movies",
		FeedURL:    "https://letterboxd.com/%s/rss/",
	}
}

// loadSettings loads settings from the YAML file, falling back to defaults
// when the file does not exist
func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	settings := defaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	if settings.ContentDir == "" {
		settings.ContentDir = defaultSettings().ContentDir
	}
	if settings.FeedURL == "" {
		settings.FeedURL = defaultSettings().FeedURL
	}

	return settings, nil
}

// settingsPath returns the path to the settings file in the config directory
func settingsPath() string {
	return filepath.Join(defaultConfigDir, "settings.yaml")
}

// ensureConfigExists creates the config directory and a default settings
// file on first run
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := settingsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		defaults := `username: ""
content_dir: movies
feed_url: https://letterboxd.com/%s/rss/
`
		if err := os.WriteFile(path, []byte(defaults), 0644); err != nil {
			return fmt.Errorf("writing default settings: %w", err)
		}
	}

	return nil
}

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}
