// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/models"
	"github.com/hbecker/trackatlas/internal/tilegrid"
)

// ExplorerService answers tile-exploration queries.
type ExplorerService interface {
	Tiles(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error)
	Squares(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error)
	Clusters(ctx context.Context, zoom maptile.Zoom) (*geojson.FeatureCollection, error)
	UnexploredCollection(ctx context.Context, sw, ne orb.Point, zoom maptile.Zoom) (*geojson.FeatureCollection, error)
}

// MapService serves rendered activity maps.
type MapService interface {
	GetOrRender(ctx context.Context, id int64) ([]byte, error)
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	explorer ExplorerService
	maps     MapService
	ready    func(ctx context.Context) error
}

// NewHandler wires the handler. ready reports backend readiness for
// the health endpoint and may be nil.
func NewHandler(explorer ExplorerService, maps MapService, ready func(ctx context.Context) error) *Handler {
	return &Handler{explorer: explorer, maps: maps, ready: ready}
}

// Explorer serves GET /explorer/{zoom}/{feature}.json. Unknown zooms
// and feature types 404 before any aggregation work happens.
func (h *Handler) Explorer(w http.ResponseWriter, r *http.Request) {
	zoom, err := tilegrid.ParseZoom(chi.URLParam(r, "zoom"))
	if err != nil {
		respondNotFound(w)
		return
	}

	var fc *geojson.FeatureCollection
	switch feature := chi.URLParam(r, "feature"); feature {
	case "tiles":
		fc, err = h.explorer.Tiles(r.Context(), zoom)
	case "squares":
		fc, err = h.explorer.Squares(r.Context(), zoom)
	case "clusters":
		fc, err = h.explorer.Clusters(r.Context(), zoom)
	default:
		respondNotFound(w)
		return
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Explorer query failed")
		respondNotFound(w)
		return
	}

	respondJSON(w, http.StatusOK, contentTypeGeoJSON, fc)
}

// Unexplored serves POST /unexplored. The form carries the bounding
// box corners as WKT points plus the zoom; the response downloads as a
// GeoJSON attachment.
func (h *Handler) Unexplored(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondNotFound(w)
		return
	}

	sw, err := wkt.UnmarshalPoint(r.PostFormValue("sw"))
	if err != nil {
		respondNotFound(w)
		return
	}
	ne, err := wkt.UnmarshalPoint(r.PostFormValue("ne"))
	if err != nil {
		respondNotFound(w)
		return
	}
	zoom, err := tilegrid.ParseZoom(r.PostFormValue("zoom"))
	if err != nil {
		respondNotFound(w)
		return
	}

	fc, err := h.explorer.UnexploredCollection(r.Context(), sw, ne, zoom)
	if err != nil {
		logging.Warn().Err(err).Msg("Unexplored query failed")
		respondNotFound(w)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="unexplored.json"`)
	respondJSON(w, http.StatusOK, contentTypeGeoJSON, fc)
}

// ActivityMap serves GET /map/{activityID}.png from the render cache.
func (h *Handler) ActivityMap(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil {
		respondNotFound(w)
		return
	}

	data, err := h.maps.GetOrRender(r.Context(), id)
	if err != nil {
		logging.Warn().Err(err).Int64("activity_id", id).Msg("Map render failed")
		respondNotFound(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write map response")
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, "application/json", models.APIResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// HealthReady reports backend readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logging.Warn().Err(err).Msg("Readiness check failed")
			respondJSON(w, http.StatusServiceUnavailable, "application/json", models.APIResponse{
				Status:    "unavailable",
				Timestamp: time.Now().UTC(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, "application/json", models.APIResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
