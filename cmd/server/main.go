// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package main is the entry point for the Trackatlas server.
//
// Trackatlas serves a personal GPS activity archive: rendered per-track
// maps and tile-exploration statistics computed from GPX files and a
// DuckDB activity database.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf sources (defaults, config.yaml, env)
//  2. Database: read-only DuckDB with the activity details view
//  3. Track store: GPX files resolved by activity ID
//  4. Explorer aggregator: visited-tile statistics over all tracks
//  5. Compositor: fonts, tile provider client, render cache
//  6. HTTP server: chi router with graceful shutdown on SIGINT/SIGTERM
//
// # Configuration
//
// The tile provider defaults to the free OpenStreetMap servers. Setting
// THUNDERFOREST_API_KEY switches to the paid provider and adds the
// required attribution to rendered maps; TILE_URL_TEMPLATE overrides
// the template entirely.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hbecker/trackatlas/internal/api"
	"github.com/hbecker/trackatlas/internal/config"
	"github.com/hbecker/trackatlas/internal/database"
	"github.com/hbecker/trackatlas/internal/explorer"
	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/render"
	"github.com/hbecker/trackatlas/internal/rendercache"
	"github.com/hbecker/trackatlas/internal/tracks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("tracks_dir", cfg.Tracks.Dir).
		Str("cache_dir", cfg.Tracks.CacheDir).
		Msg("Starting Trackatlas")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open activity database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store := tracks.NewStore(cfg.Tracks, db)
	agg := explorer.New(store)

	fonts, err := render.LoadFonts(cfg.Render.LabelFontPath, cfg.Render.DataFontPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load fonts")
	}

	fetcher := render.NewFetcher(&cfg.TileProvider)
	compositor := render.NewCompositor(fetcher, fonts, cfg.TileProvider.Attribution())
	logging.Info().
		Str("tile_template", cfg.TileProvider.ResolveURLTemplate()).
		Msg("Map compositor ready")

	cache, err := rendercache.New(cfg.Tracks.CacheDir, store, compositor)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize render cache")
	}

	handler := api.NewHandler(agg, cache, db.Ping)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
