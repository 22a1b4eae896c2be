// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package explorer

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/hbecker/trackatlas/internal/metrics"
	"github.com/hbecker/trackatlas/internal/tilegrid"
)

// Tiles returns the raw-tile view of the visited set: one point feature
// per visited tile, carrying the tile address and its visit count.
func (a *Aggregator) Tiles(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error) {
	start := time.Now()
	counts, err := a.visitStats(ctx, zoom)
	if err != nil {
		return nil, err
	}

	fc := newCollection(zoom)
	set := maptile.Set{}
	for tile := range counts {
		set[tile] = true
	}
	for _, tile := range sortedTiles(set) {
		f := geojson.NewFeature(tile.Bound().Center())
		f.Properties = geojson.Properties{
			"x":             int(tile.X),
			"y":             int(tile.Y),
			"zoom":          int(tile.Z),
			"visited_count": counts[tile],
		}
		fc.Append(f)
	}

	metrics.ExplorerQueryDuration.WithLabelValues("tiles").Observe(time.Since(start).Seconds())
	return fc, nil
}

// Squares returns one polygon feature per visited tile. Tiles that form
// the north-west corner of a largest fully-visited square are annotated
// with the square's side length.
func (a *Aggregator) Squares(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error) {
	start := time.Now()
	visited, err := a.VisitedTiles(ctx, zoom)
	if err != nil {
		return nil, err
	}

	size, corners := maxSquare(visited)
	corner := make(map[maptile.Tile]bool, len(corners))
	for _, t := range corners {
		corner[t] = true
	}

	fc := newCollection(zoom)
	for _, tile := range sortedTiles(visited) {
		f := geojson.NewFeature(tilegrid.TileToPolygon(tile))
		f.Properties = geojson.Properties{
			"x":    int(tile.X),
			"y":    int(tile.Y),
			"zoom": int(tile.Z),
		}
		if corner[tile] {
			f.Properties["max_square"] = true
			f.Properties["max_square_size"] = size
		}
		fc.Append(f)
	}

	metrics.ExplorerQueryDuration.WithLabelValues("squares").Observe(time.Since(start).Seconds())
	return fc, nil
}

// Clusters returns one multi-polygon feature per cluster of visited
// tiles (see clusterTiles for the adjacency rule).
func (a *Aggregator) Clusters(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error) {
	start := time.Now()
	visited, err := a.VisitedTiles(ctx, zoom)
	if err != nil {
		return nil, err
	}

	fc := newCollection(zoom)
	for _, cluster := range clusterTiles(visited) {
		geom := make(orb.MultiPolygon, 0, len(cluster.Tiles))
		for _, tile := range cluster.Tiles {
			geom = append(geom, tilegrid.TileToPolygon(tile))
		}
		f := geojson.NewFeature(geom)
		f.Properties = geojson.Properties{
			"cluster_index": cluster.Index,
			"tile_count":    len(cluster.Tiles),
		}
		fc.Append(f)
	}

	metrics.ExplorerQueryDuration.WithLabelValues("clusters").Observe(time.Since(start).Seconds())
	return fc, nil
}

// UnexploredCollection returns the unexplored tiles within the bounding
// box as polygon features.
func (a *Aggregator) UnexploredCollection(ctx context.Context, sw, ne orb.Point, zoom maptile.Zoom) (*geojson.FeatureCollection, error) {
	set, err := a.Unexplored(ctx, sw, ne, zoom)
	if err != nil {
		return nil, err
	}

	fc := newCollection(zoom)
	for _, tile := range sortedTiles(set) {
		f := geojson.NewFeature(tilegrid.TileToPolygon(tile))
		f.Properties = geojson.Properties{
			"x":    int(tile.X),
			"y":    int(tile.Y),
			"zoom": int(tile.Z),
		}
		fc.Append(f)
	}
	return fc, nil
}

// newCollection builds an empty feature collection keyed by the queried
// zoom level.
func newCollection(zoom maptile.Zoom) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{"zoom": int(zoom)}
	return fc
}
