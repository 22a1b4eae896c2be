// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package tracks implements the read-only track store.
//
// Tracks are stored as one {id}.gpx or {id}.gpx.gz file per activity in a
// single directory; activity metadata comes from the analytical database.
// The store owns raw track bytes only for the scope of a single lookup.
package tracks

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/hbecker/trackatlas/internal/config"
	"github.com/hbecker/trackatlas/internal/database"
	"github.com/hbecker/trackatlas/internal/models"
)

// ErrNotFound indicates no track or metadata exists for the requested
// activity identifier.
var ErrNotFound = errors.New("track not found")

// Store reads GPS tracks from the tracks directory and joins them with
// metadata from the analytical database.
type Store struct {
	dir string
	db  *database.DB
}

// NewStore creates a track store over the configured tracks directory.
func NewStore(cfg config.TracksConfig, db *database.DB) *Store {
	return &Store{dir: cfg.Dir, db: db}
}

// trackFile resolves the on-disk file for an activity, preferring the
// gzipped form the exporter produces.
func (s *Store) trackFile(id int64) (string, bool) {
	for _, name := range []string{
		fmt.Sprintf("%d.gpx.gz", id),
		fmt.Sprintf("%d.gpx", id),
	} {
		path := filepath.Join(s.dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadTrack loads the point sequence for one activity, or ErrNotFound when
// no track file exists. A track file with zero points is a valid, empty
// track, not an error.
func (s *Store) LoadTrack(ctx context.Context, id int64) (*models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := s.trackFile(id)
	if !ok {
		return nil, fmt.Errorf("activity %d: %w", id, ErrNotFound)
	}

	line, err := readGPX(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track %d: %w", id, err)
	}

	return &models.Track{ActivityID: id, Line: line}, nil
}

// Load returns the track and metadata for one activity. A missing track
// file or a missing metadata record both surface as ErrNotFound.
func (s *Store) Load(ctx context.Context, id int64) (*models.Track, *models.ActivityMetadata, error) {
	track, err := s.LoadTrack(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	meta, err := s.db.ActivityDetails(ctx, id)
	if errors.Is(err, database.ErrActivityNotFound) {
		return nil, nil, fmt.Errorf("activity %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	return track, meta, nil
}

// ActivityIDs lists every activity identifier with a track file, in
// ascending order.
func (s *Store) ActivityIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks directory %s: %w", s.dir, err)
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		name = strings.TrimSuffix(name, ".gz")
		if !strings.HasSuffix(name, ".gpx") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".gpx"), 10, 64)
		if err != nil {
			// Foreign files in the tracks directory are ignored.
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// readGPX parses a plain or gzipped GPX file into a (lon, lat) line string.
func readGPX(path string) (orb.LineString, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := gpx.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var line orb.LineString
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				line = append(line, orb.Point{p.Longitude, p.Latitude})
			}
		}
	}
	return line, nil
}
