// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package explorer

import "github.com/paulmach/orb/maptile"

// maxSquare finds the largest fully-visited axis-aligned squares in the
// set. It returns the side length in tiles and the north-west corner tile
// of every square of that size. An empty set yields size 0.
//
// The classic maximum-size sub-matrix dynamic program, evaluated sparsely
// over the tile set: side(t) = 1 + min(side(E), side(S), side(SE)).
func maxSquare(visited maptile.Set) (int, []maptile.Tile) {
	side := make(map[maptile.Tile]int, len(visited))

	var solve func(t maptile.Tile) int
	solve = func(t maptile.Tile) int {
		if !visited[t] {
			return 0
		}
		if s, done := side[t]; done {
			return s
		}
		east := solve(maptile.Tile{X: t.X + 1, Y: t.Y, Z: t.Z})
		south := solve(maptile.Tile{X: t.X, Y: t.Y + 1, Z: t.Z})
		diag := solve(maptile.Tile{X: t.X + 1, Y: t.Y + 1, Z: t.Z})

		s := 1 + min(east, south, diag)
		side[t] = s
		return s
	}

	best := 0
	for _, tile := range sortedTiles(visited) {
		if s := solve(tile); s > best {
			best = s
		}
	}

	var corners []maptile.Tile
	if best > 0 {
		for _, tile := range sortedTiles(visited) {
			if side[tile] == best {
				corners = append(corners, tile)
			}
		}
	}
	return best, corners
}
