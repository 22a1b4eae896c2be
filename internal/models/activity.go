// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package models defines the shared data types of the Trackatlas core.
package models

import (
	"strings"

	"github.com/paulmach/orb"
)

// ActivityType is the sport category of a tracked activity.
type ActivityType string

const (
	ActivityCycling  ActivityType = "cycling"
	ActivityRunning  ActivityType = "running"
	ActivitySwimming ActivityType = "swimming"
	ActivityUnknown  ActivityType = "unknown"
)

// ParseActivityType maps a raw database value onto an ActivityType.
// Unrecognized values become ActivityUnknown, never an error; the analytical
// database is free to grow new sports before this server learns about them.
func ParseActivityType(raw string) ActivityType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cycling":
		return ActivityCycling
	case "running":
		return ActivityRunning
	case "swimming":
		return ActivitySwimming
	default:
		return ActivityUnknown
	}
}

// Label returns the human-readable form used on rendered maps, e.g.
// "Cycling".
func (t ActivityType) Label() string {
	s := string(t)
	if s == "" {
		s = string(ActivityUnknown)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ActivityMetadata is one activity's display record, mapped from the
// v_activity_details view with named, typed fields. An activity identifier
// determines at most one metadata record.
type ActivityMetadata struct {
	ID            int64
	Type          ActivityType
	Name          string
	Distance      float64 // kilometers
	ElevationGain float64 // meters
	Pace          string  // pre-formatted, e.g. "4:00"
	Duration      string  // pre-formatted, e.g. "00:05:30"
}

// Track is the ordered point sequence of one activity. Points are
// (longitude, latitude) pairs; the sequence is immutable once loaded.
type Track struct {
	ActivityID int64
	Line       orb.LineString
}

// Empty reports whether the track has no points.
func (t *Track) Empty() bool {
	return len(t.Line) == 0
}

// Bound returns the geographic bounding box of the track.
func (t *Track) Bound() orb.Bound {
	return t.Line.Bound()
}
