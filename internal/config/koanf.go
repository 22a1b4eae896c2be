// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trackatlas/config.yaml",
	"/etc/trackatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "sport.db",
		},
		Tracks: TracksConfig{
			Dir:      "tracks",
			CacheDir: "tracks",
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
		},
		TileProvider: TileProviderConfig{
			APIKey:        "",
			URLTemplate:   "",
			FetchTimeout:  10 * time.Second,
			RetryAttempts: 2,
		},
		Render: RenderConfig{
			LabelFontPath: "",
			DataFontPath:  "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads the configuration from defaults, an optional YAML file and
// environment variables, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps flat environment variable names onto nested koanf
// config paths. Unmapped variables are skipped so that unrelated
// environment noise never pollutes the configuration.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		"DUCKDB_PATH": "database.path",

		"TRACKS_DIR":      "tracks.dir",
		"TRACKS_CACHE_DIR": "tracks.cache_dir",

		"HTTP_HOST":    "server.host",
		"HTTP_PORT":    "server.port",
		"HTTP_TIMEOUT": "server.timeout",

		// THUNDERFOREST_API_KEY is the variable the site has always used
		// to switch to the paid provider.
		"THUNDERFOREST_API_KEY": "tile_provider.api_key",
		"TILE_URL_TEMPLATE":     "tile_provider.url_template",
		"TILE_FETCH_TIMEOUT":    "tile_provider.fetch_timeout",
		"TILE_RETRY_ATTEMPTS":   "tile_provider.retry_attempts",

		"LABEL_FONT_PATH": "render.label_font_path",
		"DATA_FONT_PATH":  "render.data_font_path",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
