// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package rendercache persists composed activity maps as one PNG per
// activity. The file's presence is the cache: deleting it forces a
// re-render on the next request, which is the operator's invalidation
// knob.
package rendercache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/metrics"
	"github.com/hbecker/trackatlas/internal/models"
)

// Renderer composes the map image for one activity.
type Renderer interface {
	Render(ctx context.Context, track *models.Track, meta *models.ActivityMetadata) ([]byte, error)
}

// Loader resolves an activity's track and display metadata.
type Loader interface {
	Load(ctx context.Context, id int64) (*models.Track, *models.ActivityMetadata, error)
}

// Cache serves rendered maps, rendering on miss. Concurrent misses for
// the same activity are collapsed into a single render.
type Cache struct {
	dir      string
	loader   Loader
	renderer Renderer
	group    singleflight.Group
}

// New builds a cache backed by dir, creating it if needed.
func New(dir string, loader Loader, renderer Renderer) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create render cache dir: %w", err)
	}
	return &Cache{dir: dir, loader: loader, renderer: renderer}, nil
}

func (c *Cache) path(id int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d.png", id))
}

// GetOrRender returns the cached PNG for an activity, rendering and
// persisting it first on a cache miss. Failed renders leave no file
// behind, so the next request retries.
func (c *Cache) GetOrRender(ctx context.Context, id int64) ([]byte, error) {
	if data, err := os.ReadFile(c.path(id)); err == nil {
		metrics.CacheHits.WithLabelValues("render").Inc()
		return data, nil
	}
	metrics.CacheMisses.WithLabelValues("render").Inc()

	data, err, _ := c.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// Another caller in this flight may have just written the file.
		if data, err := os.ReadFile(c.path(id)); err == nil {
			return data, nil
		}
		return c.renderAndPersist(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (c *Cache) renderAndPersist(ctx context.Context, id int64) ([]byte, error) {
	track, meta, err := c.loader.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := c.renderer.Render(ctx, track, meta)
	if err != nil {
		return nil, err
	}

	if err := c.persist(id, data); err != nil {
		return nil, err
	}
	logging.Info().Int64("activity_id", id).Int("bytes", len(data)).Msg("Cached rendered map")
	return data, nil
}

// persist writes to a temp file in the same directory and renames it
// into place, so readers only ever see complete images.
func (c *Cache) persist(id int64, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, fmt.Sprintf(".%d-*.png.tmp", id))
	if err != nil {
		return fmt.Errorf("create temp render file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write render file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close render file: %w", err)
	}
	if err := os.Rename(tmpName, c.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish render file: %w", err)
	}
	return nil
}
