// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package explorer

import (
	"sort"

	"github.com/paulmach/orb/maptile"
)

// Edge-neighbor offsets (east, south, west, north).
var (
	dx = [4]int32{1, 0, -1, 0}
	dy = [4]int32{0, 1, 0, -1}
)

// Cluster is a connected group of visited tiles reported as one region.
type Cluster struct {
	// Index is the 1-based cluster label, assigned in deterministic
	// (x, y) scan order.
	Index int

	// Tiles are the member tiles, in (x, y) order.
	Tiles []maptile.Tile
}

// clusterTiles labels clusters in a visited set.
//
// A tile is cluster-eligible only when all four of its edge neighbors are
// also visited; clusters are the 4-connected components of the eligible
// tiles. This is the interior-tile rule of the tile-exploration game: a
// lone ribbon of tiles along a route never forms a cluster.
func clusterTiles(visited maptile.Set) []Cluster {
	tiles := sortedTiles(visited)

	eligible := func(t maptile.Tile) bool {
		if !visited[t] {
			return false
		}
		for d := 0; d < 4; d++ {
			if !visited[neighbor(t, d)] {
				return false
			}
		}
		return true
	}

	labels := make(map[maptile.Tile]int)
	var clusters []Cluster

	for _, tile := range tiles {
		if _, done := labels[tile]; done || !eligible(tile) {
			continue
		}

		// Depth-first walk of one component, iterative to stay safe on
		// continent-sized exploration sets.
		index := len(clusters) + 1
		var members []maptile.Tile
		stack := []maptile.Tile{tile}
		labels[tile] = index
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, cur)

			for d := 0; d < 4; d++ {
				next := neighbor(cur, d)
				if _, seen := labels[next]; seen || !eligible(next) {
					continue
				}
				labels[next] = index
				stack = append(stack, next)
			}
		}

		sortTiles(members)
		clusters = append(clusters, Cluster{Index: index, Tiles: members})
	}

	return clusters
}

func neighbor(t maptile.Tile, direction int) maptile.Tile {
	return maptile.Tile{
		X: uint32(int32(t.X) + dx[direction]),
		Y: uint32(int32(t.Y) + dy[direction]),
		Z: t.Z,
	}
}

func sortedTiles(set maptile.Set) []maptile.Tile {
	tiles := make([]maptile.Tile, 0, len(set))
	for t, ok := range set {
		if ok {
			tiles = append(tiles, t)
		}
	}
	sortTiles(tiles)
	return tiles
}

func sortTiles(tiles []maptile.Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].X != tiles[j].X {
			return tiles[i].X < tiles[j].X
		}
		return tiles[i].Y < tiles[j].Y
	})
}
