// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package database provides read-only access to the pre-populated
// analytical DuckDB database.
//
// The database is an external, already-populated artifact: Trackatlas
// queries its views (v_activity_details) and never writes to it. Schema
// and view definitions are owned by the data pipeline, not by this server.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hbecker/trackatlas/internal/config"
	"github.com/hbecker/trackatlas/internal/logging"
	"github.com/hbecker/trackatlas/internal/models"
)

// ErrActivityNotFound indicates no metadata record exists for the
// requested activity identifier.
var ErrActivityNotFound = errors.New("activity not found")

// DB wraps the read-only DuckDB connection.
type DB struct {
	conn *sql.DB
}

// New opens the analytical database read-only and verifies the connection.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf("%s?access_mode=read_only", cfg.Path)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.Path, err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Analytical database opened read-only")
	return &DB{conn: conn}, nil
}

// NewFromConn wraps an existing connection. Used by tests that build an
// in-memory database.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is still usable. The readiness probe
// calls this per request.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// ActivityDetails returns the metadata record for one activity from the
// v_activity_details view, or ErrActivityNotFound.
func (db *DB) ActivityDetails(ctx context.Context, id int64) (*models.ActivityMetadata, error) {
	const query = `
		SELECT id, name, activity_type, distance, elevation_gain, pace, duration
		FROM v_activity_details
		WHERE id = ?`

	var (
		meta    models.ActivityMetadata
		rawType string
	)
	row := db.conn.QueryRowContext(ctx, query, id)
	err := row.Scan(&meta.ID, &meta.Name, &rawType, &meta.Distance, &meta.ElevationGain, &meta.Pace, &meta.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %d: %w", id, ErrActivityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity %d: %w", id, err)
	}

	meta.Type = models.ParseActivityType(rawType)
	return &meta, nil
}
