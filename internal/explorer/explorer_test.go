// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package explorer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"

	"github.com/hbecker/trackatlas/internal/models"
	"github.com/hbecker/trackatlas/internal/tilegrid"
)

// fakeSource is an in-memory track source.
type fakeSource struct {
	ids    []int64
	tracks map[int64]orb.LineString
}

func newFakeSource(tracks map[int64]orb.LineString, order ...int64) *fakeSource {
	ids := order
	if len(ids) == 0 {
		for id := range tracks {
			ids = append(ids, id)
		}
	}
	return &fakeSource{ids: ids, tracks: tracks}
}

func (s *fakeSource) ActivityIDs(_ context.Context) ([]int64, error) {
	return s.ids, nil
}

func (s *fakeSource) LoadTrack(_ context.Context, id int64) (*models.Track, error) {
	line, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("no track %d", id)
	}
	return &models.Track{ActivityID: id, Line: line}, nil
}

var (
	berlinLine  = orb.LineString{{13.40, 52.52}, {13.41, 52.53}}
	potsdamLine = orb.LineString{{13.05, 52.39}, {13.07, 52.40}}
)

func TestVisitedTilesEmptyStore(t *testing.T) {
	agg := New(newFakeSource(nil))

	set, err := agg.VisitedTiles(context.Background(), tilegrid.ZoomRegion)
	if err != nil {
		t.Fatalf("VisitedTiles failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty visited set, got %d tiles", len(set))
	}
}

func TestVisitedTilesUnsupportedZoom(t *testing.T) {
	agg := New(newFakeSource(nil))
	if _, err := agg.VisitedTiles(context.Background(), 15); !errors.Is(err, tilegrid.ErrUnsupportedZoom) {
		t.Errorf("expected ErrUnsupportedZoom, got %v", err)
	}
}

func TestVisitedTilesOrderIndependent(t *testing.T) {
	tracks := map[int64]orb.LineString{
		1: berlinLine,
		2: potsdamLine,
		3: {{13.40, 52.52}},
	}

	forward := New(newFakeSource(tracks, 1, 2, 3))
	reverse := New(newFakeSource(tracks, 3, 2, 1))

	a, err := forward.VisitedTiles(context.Background(), tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}
	b, err := reverse.VisitedTiles(context.Background(), tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("fold order changed result size: %d vs %d", len(a), len(b))
	}
	for tile := range a {
		if !b[tile] {
			t.Errorf("tile %v missing from reversed fold", tile)
		}
	}
}

func TestVisitedTilesIncludesEveryTrack(t *testing.T) {
	agg := New(newFakeSource(map[int64]orb.LineString{
		1: berlinLine,
		2: potsdamLine,
	}))

	set, err := agg.VisitedTiles(context.Background(), tilegrid.ZoomRegion)
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []orb.Point{berlinLine[0], potsdamLine[0]} {
		tile, err := tilegrid.TileFor(p, tilegrid.ZoomRegion)
		if err != nil {
			t.Fatal(err)
		}
		if !set[tile] {
			t.Errorf("tile %v for point %v missing from union", tile, p)
		}
	}
}

func TestUnexploredEmptyStoreIsFullBBox(t *testing.T) {
	agg := New(newFakeSource(nil))
	sw := orb.Point{13.0, 52.0}
	ne := orb.Point{13.1, 52.1}

	unexplored, err := agg.Unexplored(context.Background(), sw, ne, tilegrid.ZoomStreet)
	if err != nil {
		t.Fatalf("Unexplored failed: %v", err)
	}

	inScope, err := tilegrid.BoundingBoxTiles(orb.Bound{Min: sw, Max: ne}, tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}

	if len(unexplored) != len(inScope) {
		t.Fatalf("expected all %d in-scope tiles unexplored, got %d", len(inScope), len(unexplored))
	}
	for tile := range inScope {
		if !unexplored[tile] {
			t.Errorf("in-scope tile %v missing from unexplored set", tile)
		}
	}
}

func TestUnexploredDisjointAndExhaustive(t *testing.T) {
	agg := New(newFakeSource(map[int64]orb.LineString{1: berlinLine}))
	sw := orb.Point{13.39, 52.51}
	ne := orb.Point{13.42, 52.54}
	ctx := context.Background()

	unexplored, err := agg.Unexplored(ctx, sw, ne, tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}
	visited, err := agg.VisitedTiles(ctx, tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}
	inScope, err := tilegrid.BoundingBoxTiles(orb.Bound{Min: sw, Max: ne}, tilegrid.ZoomStreet)
	if err != nil {
		t.Fatal(err)
	}

	// No tile is both explored and unexplored.
	for tile := range unexplored {
		if visited[tile] {
			t.Errorf("tile %v reported both visited and unexplored", tile)
		}
	}

	// The partition is exhaustive: in-scope = unexplored ∪ (in-scope ∩ visited).
	for tile := range inScope {
		if !unexplored[tile] && !visited[tile] {
			t.Errorf("in-scope tile %v in neither partition", tile)
		}
	}
	for tile := range unexplored {
		if !inScope[tile] {
			t.Errorf("unexplored tile %v outside the queried bounding box", tile)
		}
	}

	// The track crosses the box, so both partitions are non-empty.
	if len(unexplored) == 0 {
		t.Error("expected some unexplored tiles")
	}
	if len(unexplored) == len(inScope) {
		t.Error("expected some visited tiles inside the box")
	}
}

func TestUnexploredInvalidBoundingBox(t *testing.T) {
	agg := New(newFakeSource(nil))

	tests := []struct {
		name   string
		sw, ne orb.Point
	}{
		{"sw east of ne", orb.Point{13.2, 52.0}, orb.Point{13.1, 52.1}},
		{"sw north of ne", orb.Point{13.0, 52.2}, orb.Point{13.1, 52.1}},
		{"degenerate", orb.Point{13.0, 52.0}, orb.Point{13.0, 52.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Unexplored(context.Background(), tt.sw, tt.ne, tilegrid.ZoomStreet)
			if !errors.Is(err, ErrInvalidBoundingBox) {
				t.Errorf("expected ErrInvalidBoundingBox, got %v", err)
			}
		})
	}
}

func TestUnexploredUnsupportedZoom(t *testing.T) {
	agg := New(newFakeSource(nil))
	_, err := agg.Unexplored(context.Background(), orb.Point{13.0, 52.0}, orb.Point{13.1, 52.1}, 12)
	if !errors.Is(err, tilegrid.ErrUnsupportedZoom) {
		t.Errorf("expected ErrUnsupportedZoom, got %v", err)
	}
}
