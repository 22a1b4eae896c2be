// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package tracks

import (
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/hbecker/trackatlas/internal/config"
	"github.com/hbecker/trackatlas/internal/database"
)

const gpxTwoPoints = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trackatlas-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <trkseg>
      <trkpt lat="52.52" lon="13.40"></trkpt>
      <trkpt lat="52.53" lon="13.41"></trkpt>
    </trkseg>
  </trk>
</gpx>`

const gpxEmpty = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trackatlas-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <trkseg></trkseg>
  </trk>
</gpx>`

func writeGPX(t *testing.T, dir string, id int64, content string, compress bool) {
	t.Helper()

	if compress {
		path := filepath.Join(dir, fmt.Sprintf("%d.gpx.gz", id))
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = f.Close() }()
		gz := gzip.NewWriter(f)
		if _, err := gz.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.gpx", id))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()

	conn, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open in-memory duckdb: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	stmts := []string{
		`CREATE TABLE activities (
			id BIGINT, name VARCHAR, activity_type VARCHAR,
			distance DOUBLE, elevation_gain DOUBLE, pace VARCHAR, duration VARCHAR
		)`,
		`INSERT INTO activities VALUES (42, 'Morning ride', 'cycling', 1.4, 12, '4:00', '00:05:30')`,
		`CREATE VIEW v_activity_details AS SELECT * FROM activities`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	store := NewStore(config.TracksConfig{Dir: dir, CacheDir: dir}, database.NewFromConn(conn))
	return store, dir
}

func TestLoadTrackGzipped(t *testing.T) {
	store, dir := newTestStore(t)
	writeGPX(t, dir, 42, gpxTwoPoints, true)

	track, err := store.LoadTrack(context.Background(), 42)
	if err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}

	want := orb.LineString{{13.40, 52.52}, {13.41, 52.53}}
	if len(track.Line) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(track.Line))
	}
	for i := range want {
		if track.Line[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, track.Line[i], want[i])
		}
	}
}

func TestLoadTrackPlain(t *testing.T) {
	store, dir := newTestStore(t)
	writeGPX(t, dir, 42, gpxTwoPoints, false)

	track, err := store.LoadTrack(context.Background(), 42)
	if err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}
	if len(track.Line) != 2 {
		t.Errorf("expected 2 points, got %d", len(track.Line))
	}
}

func TestLoadTrackEmptyIsNotAnError(t *testing.T) {
	store, dir := newTestStore(t)
	writeGPX(t, dir, 7, gpxEmpty, true)

	track, err := store.LoadTrack(context.Background(), 7)
	if err != nil {
		t.Fatalf("LoadTrack on empty track failed: %v", err)
	}
	if !track.Empty() {
		t.Errorf("expected empty track, got %d points", len(track.Line))
	}
}

func TestLoadTrackNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadTrack(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadJoinsMetadata(t *testing.T) {
	store, dir := newTestStore(t)
	writeGPX(t, dir, 42, gpxTwoPoints, true)

	track, meta, err := store.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if track.ActivityID != 42 {
		t.Errorf("expected track for activity 42, got %d", track.ActivityID)
	}
	if meta.Name != "Morning ride" {
		t.Errorf("unexpected metadata name %q", meta.Name)
	}
}

func TestLoadMissingMetadataIsNotFound(t *testing.T) {
	store, dir := newTestStore(t)
	// Track file exists but the database has no record for it.
	writeGPX(t, dir, 100, gpxTwoPoints, true)

	_, _, err := store.Load(context.Background(), 100)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for metadata-less track, got %v", err)
	}
}

func TestActivityIDs(t *testing.T) {
	store, dir := newTestStore(t)
	writeGPX(t, dir, 42, gpxTwoPoints, true)
	writeGPX(t, dir, 7, gpxEmpty, false)
	writeGPX(t, dir, 100, gpxTwoPoints, true)

	// Foreign files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.gpx"), []byte("<gpx/>"), 0o600); err != nil {
		t.Fatal(err)
	}

	ids, err := store.ActivityIDs(context.Background())
	if err != nil {
		t.Fatalf("ActivityIDs failed: %v", err)
	}

	want := []int64{7, 42, 100}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}
