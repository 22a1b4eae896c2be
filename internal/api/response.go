// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package api exposes the HTTP surface: explorer GeoJSON feature
// queries, unexplored-region lookups, and rendered activity maps.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/models"
)

const contentTypeGeoJSON = "application/geo+json"

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, contentType string, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondNotFound is the single error shape of the API. Invalid input,
// missing activities, and upstream failures all collapse into it so
// the surface leaks nothing about which case occurred.
func respondNotFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, "application/json", models.APIResponse{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error: &models.APIError{
			Code:    "NOT_FOUND",
			Message: "not found",
		},
	})
}
