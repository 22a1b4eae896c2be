// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with a correlation ID, honouring one
// supplied by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// instrument records request metrics and an access log line per
// request, labelled by the matched route pattern rather than the raw
// path to keep metric cardinality bounded.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, endpoint, ww.Status(), duration)

		logging.Debug().
			Str("method", r.Method).
			Str("endpoint", endpoint).
			Int("status", ww.Status()).
			Dur("duration", duration).
			Str("request_id", w.Header().Get(requestIDHeader)).
			Msg("Request handled")
	})
}
