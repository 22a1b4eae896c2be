// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package tilegrid implements slippy-map tiling math over orb/maptile.
//
// All functions are pure. Tiles follow the standard Web-Mercator slippy
// scheme: a point exactly on a tile boundary belongs to the tile east or
// south of the boundary (half-open intervals, higher tile index).
//
// Exploration semantics are defined for exactly two zoom levels: 14 for
// region overviews and 17 for street-level detail. Every other zoom is
// rejected with ErrUnsupportedZoom, never rounded.
package tilegrid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
)

// Supported exploration zoom levels.
const (
	ZoomRegion maptile.Zoom = 14
	ZoomStreet maptile.Zoom = 17
)

// SupportedZooms lists the zoom levels exploration queries accept.
var SupportedZooms = []maptile.Zoom{ZoomRegion, ZoomStreet}

// ErrUnsupportedZoom indicates a zoom level outside the supported set.
var ErrUnsupportedZoom = errors.New("unsupported zoom level")

// ValidateZoom rejects zoom levels outside the supported set.
func ValidateZoom(z maptile.Zoom) error {
	for _, s := range SupportedZooms {
		if z == s {
			return nil
		}
	}
	return fmt.Errorf("zoom %d: %w", z, ErrUnsupportedZoom)
}

// ParseZoom parses a zoom level from its string form and validates it.
// Non-numeric input fails with ErrUnsupportedZoom like any other
// unsupported value.
func ParseZoom(s string) (maptile.Zoom, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("zoom %q: %w", s, ErrUnsupportedZoom)
	}
	z := maptile.Zoom(n)
	if err := ValidateZoom(z); err != nil {
		return 0, err
	}
	return z, nil
}

// TileFor maps a geographic (lon, lat) point to the tile containing it.
func TileFor(p orb.Point, z maptile.Zoom) (maptile.Tile, error) {
	if err := ValidateZoom(z); err != nil {
		return maptile.Tile{}, err
	}
	return maptile.At(p, z), nil
}

// TilesFor rasterizes a geometry into the set of tiles it intersects.
// An empty geometry produces an empty set, not an error.
func TilesFor(geom orb.Geometry, z maptile.Zoom) (maptile.Set, error) {
	if err := ValidateZoom(z); err != nil {
		return nil, err
	}
	// Segment-based covering misses degenerate linestrings.
	if ls, ok := geom.(orb.LineString); ok {
		switch len(ls) {
		case 0:
			return maptile.Set{}, nil
		case 1:
			return maptile.Set{maptile.At(ls[0], z): true}, nil
		}
	}

	set, err := tilecover.Geometry(geom, z)
	if err != nil {
		return nil, fmt.Errorf("failed to cover geometry: %w", err)
	}
	return set, nil
}

// BoundingBoxTiles enumerates every tile intersecting the given bounding
// box. A tile partially inside the box is included.
func BoundingBoxTiles(b orb.Bound, z maptile.Zoom) (maptile.Set, error) {
	if err := ValidateZoom(z); err != nil {
		return nil, err
	}

	set, err := tilecover.Geometry(b, z)
	if err != nil {
		return nil, fmt.Errorf("failed to cover bounding box: %w", err)
	}
	return set, nil
}

// TileToPolygon returns the tile's bounding geometry as a closed polygon
// ring, suitable for GeoJSON rendering.
func TileToPolygon(t maptile.Tile) orb.Polygon {
	b := t.Bound()
	return orb.Polygon{orb.Ring{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}}
}

// Union merges src into dst in place and returns dst. The operation is
// commutative over repeated application, so per-track sets can be merged
// in any order.
func Union(dst, src maptile.Set) maptile.Set {
	if dst == nil {
		dst = maptile.Set{}
	}
	for t, ok := range src {
		if ok {
			dst[t] = true
		}
	}
	return dst
}

// Difference returns every tile in a that is not in b.
func Difference(a, b maptile.Set) maptile.Set {
	out := maptile.Set{}
	for t, ok := range a {
		if ok && !b[t] {
			out[t] = true
		}
	}
	return out
}
