// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package explorer aggregates visited map tiles across all tracked
// activities and answers exploration queries.
//
// The visited set per zoom level is the union of the tile covers of every
// track in the store. The union is associative and commutative, so tracks
// are folded in parallel and merged in arbitrary order; callers never
// observe a partially-merged set. Tile sets are rebuilt per query, never
// persisted.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/errgroup"

	"github.com/hbecker/trackatlas/internal/metrics"
	"github.com/hbecker/trackatlas/internal/models"
	"github.com/hbecker/trackatlas/internal/tilegrid"
)

// ErrInvalidBoundingBox indicates malformed region parameters on an
// unexplored-tiles query.
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// TrackSource is the slice of the track store the aggregator needs.
type TrackSource interface {
	ActivityIDs(ctx context.Context) ([]int64, error)
	LoadTrack(ctx context.Context, id int64) (*models.Track, error)
}

// Aggregator computes visited-tile sets and derived views.
type Aggregator struct {
	source TrackSource

	// workers bounds the parallel per-track fold.
	workers int
}

// New creates an aggregator over the given track source.
func New(source TrackSource) *Aggregator {
	return &Aggregator{
		source:  source,
		workers: runtime.NumCPU(),
	}
}

// visitStats folds every track into a per-tile visit count. A tile's
// count is the number of distinct tracks that crossed it, matching the
// visited_count bookkeeping of the tile pipeline.
func (a *Aggregator) visitStats(ctx context.Context, zoom maptile.Zoom) (map[maptile.Tile]int, error) {
	if err := tilegrid.ValidateZoom(zoom); err != nil {
		return nil, err
	}

	ids, err := a.source.ActivityIDs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		counts = make(map[maptile.Tile]int)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, id := range ids {
		g.Go(func() error {
			track, err := a.source.LoadTrack(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load track %d: %w", id, err)
			}

			cover, err := tilegrid.TilesFor(track.Line, zoom)
			if err != nil {
				return fmt.Errorf("failed to tile track %d: %w", id, err)
			}

			mu.Lock()
			for tile, ok := range cover {
				if ok {
					counts[tile]++
				}
			}
			mu.Unlock()
			metrics.ExplorerTracksFolded.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return counts, nil
}

// VisitedTiles returns the union of tile covers of every stored track at
// the given zoom level.
func (a *Aggregator) VisitedTiles(ctx context.Context, zoom maptile.Zoom) (maptile.Set, error) {
	start := time.Now()
	counts, err := a.visitStats(ctx, zoom)
	if err != nil {
		return nil, err
	}
	metrics.ExplorerQueryDuration.WithLabelValues("visited").Observe(time.Since(start).Seconds())

	set := maptile.Set{}
	for tile := range counts {
		set[tile] = true
	}
	return set, nil
}

// Unexplored returns every tile intersecting the bounding box spanned by
// sw and ne that no track has ever visited. An empty result is a valid
// empty collection, not an error.
func (a *Aggregator) Unexplored(ctx context.Context, sw, ne orb.Point, zoom maptile.Zoom) (maptile.Set, error) {
	if err := tilegrid.ValidateZoom(zoom); err != nil {
		return nil, err
	}
	if sw[0] >= ne[0] || sw[1] >= ne[1] {
		return nil, fmt.Errorf("sw %v must lie south-west of ne %v: %w", sw, ne, ErrInvalidBoundingBox)
	}

	start := time.Now()
	bbox := orb.Bound{Min: sw, Max: ne}
	inScope, err := tilegrid.BoundingBoxTiles(bbox, zoom)
	if err != nil {
		return nil, err
	}

	visited, err := a.VisitedTiles(ctx, zoom)
	if err != nil {
		return nil, err
	}

	diff := tilegrid.Difference(inScope, visited)
	metrics.ExplorerQueryDuration.WithLabelValues("unexplored").Observe(time.Since(start).Seconds())
	return diff, nil
}
