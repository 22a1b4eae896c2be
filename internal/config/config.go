// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package config loads and validates the Trackatlas configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an
// optional YAML config file, then environment variables. Precedence is
// ENV > file > defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// FreeTileURLTemplate is the tile URL used when no provider API key is
// configured. No attribution line is rendered for it.
const FreeTileURLTemplate = "https://a.tile.openstreetmap.org/{z}/{x}/{y}.png"

// PaidTileURLTemplate is the tile URL used when a Thunderforest API key is
// configured. The key is appended as a query parameter.
const PaidTileURLTemplate = "https://tile.thunderforest.com/atlas/{z}/{x}/{y}.png?apikey="

// PaidTileAttribution is burned into rendered maps built from the paid
// provider.
const PaidTileAttribution = "Maps © Thunderforest, Data © OpenStreetMap contributors"

// Config is the root configuration for the Trackatlas server.
type Config struct {
	Database     DatabaseConfig     `koanf:"database"`
	Tracks       TracksConfig       `koanf:"tracks"`
	Server       ServerConfig       `koanf:"server"`
	TileProvider TileProviderConfig `koanf:"tile_provider"`
	Render       RenderConfig       `koanf:"render"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// DatabaseConfig points at the pre-populated analytical DuckDB database.
// The database is opened read-only; Trackatlas never writes to it.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// TracksConfig locates the GPX track files and the rendered-map cache.
type TracksConfig struct {
	// Dir holds one {id}.gpx or {id}.gpx.gz file per activity.
	Dir string `koanf:"dir" validate:"required"`

	// CacheDir holds one rendered {id}.png per activity. Deleting a file
	// invalidates that activity's cached map.
	CacheDir string `koanf:"cache_dir" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// TileProviderConfig configures the base-map tile provider used by the
// map compositor.
type TileProviderConfig struct {
	// APIKey selects the paid provider when non-empty.
	APIKey string `koanf:"api_key"`

	// URLTemplate overrides the provider URL entirely. {z}, {x} and {y}
	// are substituted per tile. Leave empty to derive the URL from APIKey.
	URLTemplate string `koanf:"url_template"`

	// FetchTimeout bounds a single tile fetch, including the retry.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// RetryAttempts is the total number of attempts per tile.
	RetryAttempts int `koanf:"retry_attempts" validate:"min=1,max=5"`
}

// RenderConfig holds font assets for map label rendering. Empty paths fall
// back to the embedded Go fonts.
type RenderConfig struct {
	LabelFontPath string `koanf:"label_font_path"`
	DataFontPath  string `koanf:"data_font_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ResolveURLTemplate resolves the effective tile URL template: an explicit
// override wins, then the paid provider when an API key is present,
// otherwise the free provider.
func (c *TileProviderConfig) ResolveURLTemplate() string {
	if c.URLTemplate != "" {
		return c.URLTemplate
	}
	if c.APIKey != "" {
		return PaidTileURLTemplate + c.APIKey
	}
	return FreeTileURLTemplate
}

// Attribution returns the attribution line to burn into rendered maps, or
// an empty string when the free provider is in use.
func (c *TileProviderConfig) Attribution() string {
	if c.URLTemplate == "" && c.APIKey != "" {
		return PaidTileAttribution
	}
	return ""
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
