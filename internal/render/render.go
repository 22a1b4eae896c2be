// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/errgroup"

	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/metrics"
	"github.com/hbecker/trackatlas/internal/models"
)

// ErrEmptyTrack marks a render request for a track with no points.
var ErrEmptyTrack = errors.New("track has no points")

// Canvas geometry. The bottom band holds four stat labels starting at
// the left margin, one column every 250px.
const (
	canvasWidth  = 1000
	canvasHeight = 1000
	canvasMargin = 20
	labelColumns = 250

	tileSize         = 256
	fitPadding       = 10
	maxFitZoom       = maptile.Zoom(17)
	fetchConcurrency = 8 // concurrent tile downloads per render
	trackWidth       = 4
	trackColor       = "#CD5C5C"
	labelFill        = "#778899"
	labelStroke      = "#FFFFFF"
)

// Compositor renders an activity track over fetched basemap tiles.
type Compositor struct {
	tiles       TileSource
	fonts       *FontSet
	attribution string
}

// NewCompositor builds a compositor drawing from the given tile source.
// The attribution string is painted in the bottom-right corner when
// non-empty.
func NewCompositor(tiles TileSource, fonts *FontSet, attribution string) *Compositor {
	return &Compositor{tiles: tiles, fonts: fonts, attribution: attribution}
}

// Render composes the PNG map for one activity: basemap tiles, the
// track polyline, and the metadata labels along the bottom edge.
func (c *Compositor) Render(ctx context.Context, track *models.Track, meta *models.ActivityMetadata) ([]byte, error) {
	start := time.Now()
	out, err := c.render(ctx, track, meta)
	switch {
	case errors.Is(err, ErrEmptyTrack):
		metrics.RecordRender("empty_track", time.Since(start))
	case errors.Is(err, ErrTileFetch):
		metrics.RecordRender("tile_fetch_failed", time.Since(start))
	case err != nil:
		metrics.RecordRender("error", time.Since(start))
	default:
		metrics.RecordRender("success", time.Since(start))
	}
	return out, err
}

func (c *Compositor) render(ctx context.Context, track *models.Track, meta *models.ActivityMetadata) ([]byte, error) {
	if track.Empty() {
		return nil, ErrEmptyTrack
	}

	vp := fitViewport(track.Bound())
	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if err := c.drawBasemap(ctx, dc, vp); err != nil {
		return nil, err
	}
	drawTrack(dc, vp, track.Line)
	c.drawLabels(dc, meta)
	c.drawAttribution(dc)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}

	logging.Debug().
		Int64("activity_id", track.ActivityID).
		Int("zoom", int(vp.zoom)).
		Int("bytes", buf.Len()).
		Msg("Composed activity map")
	return buf.Bytes(), nil
}

// viewport maps geographic coordinates onto the canvas: a zoom level
// and the world-pixel coordinate of the canvas origin.
type viewport struct {
	zoom    maptile.Zoom
	originX float64
	originY float64
}

// pixel projects a point into canvas coordinates.
func (v viewport) pixel(p orb.Point) (float64, float64) {
	f := maptile.Fraction(p, v.zoom)
	return f[0]*tileSize - v.originX, f[1]*tileSize - v.originY
}

// fitViewport picks the highest zoom at which the track's bounding box
// fits the canvas, then centres the box.
func fitViewport(bound orb.Bound) viewport {
	zoom := maptile.Zoom(0)
	for z := maxFitZoom; z > 0; z-- {
		minF := maptile.Fraction(orb.Point{bound.Min[0], bound.Max[1]}, z)
		maxF := maptile.Fraction(orb.Point{bound.Max[0], bound.Min[1]}, z)
		w := (maxF[0] - minF[0]) * tileSize
		h := (maxF[1] - minF[1]) * tileSize
		if w <= canvasWidth-2*fitPadding && h <= canvasHeight-2*fitPadding {
			zoom = z
			break
		}
	}

	center := maptile.Fraction(bound.Center(), zoom)
	return viewport{
		zoom:    zoom,
		originX: center[0]*tileSize - canvasWidth/2,
		originY: center[1]*tileSize - canvasHeight/2,
	}
}

// drawBasemap fetches every tile intersecting the viewport and paints
// it onto the canvas. Any failed tile aborts the render.
func (c *Compositor) drawBasemap(ctx context.Context, dc *gg.Context, vp viewport) error {
	n := uint32(1) << vp.zoom
	txMin := int(math.Floor(vp.originX / tileSize))
	tyMin := int(math.Floor(vp.originY / tileSize))
	txMax := int(math.Floor((vp.originX + canvasWidth - 1) / tileSize))
	tyMax := int(math.Floor((vp.originY + canvasHeight - 1) / tileSize))

	type placed struct {
		img  image.Image
		x, y int
	}

	var mu sync.Mutex
	var tiles []placed

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for tx := txMin; tx <= txMax; tx++ {
		for ty := tyMin; ty <= tyMax; ty++ {
			if ty < 0 || ty >= int(n) {
				continue // above or below the mercator world
			}
			// Wrap the x axis across the antimeridian.
			wx := uint32(((tx % int(n)) + int(n)) % int(n))
			tile := maptile.New(wx, uint32(ty), vp.zoom)
			px := tx*tileSize - int(math.Round(vp.originX))
			py := ty*tileSize - int(math.Round(vp.originY))

			g.Go(func() error {
				img, err := c.tiles.Fetch(gctx, tile)
				if err != nil {
					return err
				}
				mu.Lock()
				tiles = append(tiles, placed{img: img, x: px, y: py})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, t := range tiles {
		dc.DrawImage(t.img, t.x, t.y)
	}
	return nil
}

func drawTrack(dc *gg.Context, vp viewport, line orb.LineString) {
	dc.SetHexColor(trackColor)
	dc.SetLineWidth(trackWidth)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	x, y := vp.pixel(line[0])
	if len(line) == 1 {
		dc.DrawPoint(x, y, trackWidth)
		dc.Fill()
		return
	}
	dc.MoveTo(x, y)
	for _, p := range line[1:] {
		px, py := vp.pixel(p)
		dc.LineTo(px, py)
	}
	dc.Stroke()
}

// drawLabels paints the headline (name and distance) along the top
// edge and the four header/value stat pairs along the bottom edge.
func (c *Compositor) drawLabels(dc *gg.Context, meta *models.ActivityMetadata) {
	name, distance := headline(meta)
	dc.SetFontFace(c.fonts.Label)
	drawOutlinedString(dc, name, canvasMargin, canvasMargin+labelFontSize)
	dc.SetFontFace(c.fonts.Data)
	drawOutlinedString(dc, distance, canvasMargin, canvasMargin+labelFontSize+dataFontSize*1.25)

	headerY := float64(canvasHeight - canvasMargin - dataFontSize)
	valueY := float64(canvasHeight - canvasMargin)
	for i, label := range statLabels(meta) {
		x := float64(canvasMargin + i*labelColumns)
		dc.SetFontFace(c.fonts.Label)
		drawOutlinedString(dc, label.Header, x, headerY)
		dc.SetFontFace(c.fonts.Data)
		drawOutlinedString(dc, label.Value, x, valueY)
	}
}

func (c *Compositor) drawAttribution(dc *gg.Context) {
	if c.attribution == "" {
		return
	}
	dc.SetFontFace(c.fonts.Attribution)
	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(c.attribution, canvasWidth-6, canvasHeight-4, 1, 0)
}

// drawOutlinedString strokes the text in white before filling it, so
// labels stay readable over any basemap.
func drawOutlinedString(dc *gg.Context, s string, x, y float64) {
	dc.SetHexColor(labelStroke)
	for dx := -2.0; dx <= 2; dx++ {
		for dy := -2.0; dy <= 2; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawString(s, x+dx, y+dy)
		}
	}
	dc.SetHexColor(labelFill)
	dc.DrawString(s, x, y)
}
