// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // some providers serve JPEG tiles
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/paulmach/orb/maptile"

	"github.com/hbecker/trackatlas/internal/config"
	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/metrics"
)

// ErrTileFetch marks a basemap tile that could not be retrieved after
// all retries, or a fetch rejected by the open circuit breaker.
var ErrTileFetch = errors.New("tile fetch failed")

const fetchUserAgent = "trackatlas/1.0"

// TileSource yields basemap tile images for composition.
type TileSource interface {
	Fetch(ctx context.Context, tile maptile.Tile) (image.Image, error)
}

// Fetcher downloads tiles from the configured provider. A circuit
// breaker sheds requests while the provider is failing so a broken
// upstream cannot stall every render.
type Fetcher struct {
	client   *http.Client
	template string
	attempts int
	cb       *gobreaker.CircuitBreaker[image.Image]
}

// NewFetcher builds a tile fetcher for the provider in cfg.
func NewFetcher(cfg *config.TileProviderConfig) *Fetcher {
	cbName := "tile-provider"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[image.Image](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Tile provider circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &Fetcher{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		template: cfg.ResolveURLTemplate(),
		attempts: cfg.RetryAttempts,
		cb:       cb,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// URL expands the provider template for one tile.
func (f *Fetcher) URL(tile maptile.Tile) string {
	url := strings.Replace(f.template, "{z}", strconv.Itoa(int(tile.Z)), 1)
	url = strings.Replace(url, "{x}", strconv.FormatUint(uint64(tile.X), 10), 1)
	return strings.Replace(url, "{y}", strconv.FormatUint(uint64(tile.Y), 10), 1)
}

// Fetch downloads and decodes one tile, retrying transient failures.
func (f *Fetcher) Fetch(ctx context.Context, tile maptile.Tile) (image.Image, error) {
	img, err := f.cb.Execute(func() (image.Image, error) {
		return f.fetchWithRetry(ctx, tile)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("Tile fetch rejected by circuit breaker")
		}
		return nil, fmt.Errorf("%w: %d/%d/%d: %v", ErrTileFetch, tile.Z, tile.X, tile.Y, err)
	}
	return img, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, tile maptile.Tile) (image.Image, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 200 * time.Millisecond):
			}
		}

		img, err := f.fetchOnce(ctx, tile)
		if err == nil {
			return img, nil
		}
		lastErr = err
		logging.Debug().
			Err(err).
			Int("attempt", attempt).
			Uint32("x", tile.X).
			Uint32("y", tile.Y).
			Msg("Tile fetch attempt failed")
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, tile maptile.Tile) (image.Image, error) {
	start := time.Now()
	img, err := f.doFetch(ctx, tile)
	metrics.RecordTileFetch(time.Since(start), err)
	return img, err
}

func (f *Fetcher) doFetch(ctx context.Context, tile maptile.Tile) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(tile), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

var _ TileSource = (*Fetcher)(nil)
