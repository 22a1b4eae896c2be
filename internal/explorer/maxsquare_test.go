// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package explorer

import (
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestMaxSquareEmpty(t *testing.T) {
	size, corners := maxSquare(make(maptile.Set))
	if size != 0 || len(corners) != 0 {
		t.Errorf("expected size 0 and no corners, got size %d with %d corners", size, len(corners))
	}
}

func TestMaxSquareSingleTile(t *testing.T) {
	size, corners := maxSquare(block(100, 100, 1, 1))
	if size != 1 {
		t.Fatalf("expected size 1, got %d", size)
	}
	if len(corners) != 1 || corners[0] != maptile.New(100, 100, 14) {
		t.Errorf("unexpected corners %v", corners)
	}
}

func TestMaxSquareFullBlock(t *testing.T) {
	size, corners := maxSquare(block(100, 100, 3, 3))
	if size != 3 {
		t.Fatalf("expected size 3, got %d", size)
	}
	if len(corners) != 1 || corners[0] != maptile.New(100, 100, 14) {
		t.Errorf("expected single corner at (100,100), got %v", corners)
	}
}

func TestMaxSquareRectangleHasMultipleCorners(t *testing.T) {
	// A 2x4 strip holds three distinct 2x2 squares.
	size, corners := maxSquare(block(100, 100, 4, 2))
	if size != 2 {
		t.Fatalf("expected size 2, got %d", size)
	}
	if len(corners) != 3 {
		t.Fatalf("expected 3 corners, got %v", corners)
	}
	for i, want := range []maptile.Tile{
		maptile.New(100, 100, 14),
		maptile.New(101, 100, 14),
		maptile.New(102, 100, 14),
	} {
		if corners[i] != want {
			t.Errorf("corner %d: expected %v, got %v", i, want, corners[i])
		}
	}
}

func TestMaxSquareIgnoresHole(t *testing.T) {
	visited := block(100, 100, 3, 3)
	delete(visited, maptile.New(101, 101, 14))

	size, _ := maxSquare(visited)
	if size != 1 {
		t.Errorf("expected size 1 with punched centre, got %d", size)
	}
}

func TestMaxSquareDisjointRegions(t *testing.T) {
	// The larger of two regions wins.
	visited := merge(block(100, 100, 2, 2), block(500, 500, 3, 3))

	size, corners := maxSquare(visited)
	if size != 3 {
		t.Fatalf("expected size 3, got %d", size)
	}
	if len(corners) != 1 || corners[0] != maptile.New(500, 500, 14) {
		t.Errorf("expected corner at (500,500), got %v", corners)
	}
}
