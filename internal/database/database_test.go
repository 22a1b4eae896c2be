// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/hbecker/trackatlas/internal/models"
)

// newTestDB builds an in-memory DuckDB with the v_activity_details view
// the production database provides.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open in-memory duckdb: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	stmts := []string{
		`CREATE TABLE activities (
			id BIGINT PRIMARY KEY,
			name VARCHAR,
			activity_type VARCHAR,
			distance DOUBLE,
			elevation_gain DOUBLE,
			pace VARCHAR,
			duration VARCHAR
		)`,
		`INSERT INTO activities VALUES
			(42, 'Morning ride', 'cycling', 1.4, 12, '4:00', '00:05:30'),
			(43, 'Evening run', 'running', 10.2, 80, '5:12', '00:53:04'),
			(44, 'Mystery workout', 'rowing', 5.0, 0, '0:00', '00:20:00')`,
		`CREATE VIEW v_activity_details AS SELECT * FROM activities`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	return NewFromConn(conn)
}

func TestActivityDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	meta, err := db.ActivityDetails(ctx, 42)
	if err != nil {
		t.Fatalf("ActivityDetails(42) failed: %v", err)
	}

	if meta.ID != 42 {
		t.Errorf("expected id 42, got %d", meta.ID)
	}
	if meta.Type != models.ActivityCycling {
		t.Errorf("expected cycling, got %v", meta.Type)
	}
	if meta.Name != "Morning ride" {
		t.Errorf("unexpected name %q", meta.Name)
	}
	if meta.Distance != 1.4 {
		t.Errorf("expected distance 1.4, got %v", meta.Distance)
	}
	if meta.Pace != "4:00" || meta.Duration != "00:05:30" {
		t.Errorf("unexpected pace/duration %q %q", meta.Pace, meta.Duration)
	}
}

func TestActivityDetailsUnknownType(t *testing.T) {
	db := newTestDB(t)

	meta, err := db.ActivityDetails(context.Background(), 44)
	if err != nil {
		t.Fatalf("ActivityDetails(44) failed: %v", err)
	}
	if meta.Type != models.ActivityUnknown {
		t.Errorf("expected unknown type for unmapped sport, got %v", meta.Type)
	}
}

func TestActivityDetailsNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.ActivityDetails(context.Background(), 999)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound, got %v", err)
	}
}
