// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package render

import (
	"fmt"
	"math"

	"github.com/hbecker/trackatlas/internal/models"
)

// statLabel is one header/value pair drawn along the bottom edge.
type statLabel struct {
	Header string
	Value  string
}

// statLabels builds the four bottom-edge labels for an activity.
func statLabels(meta *models.ActivityMetadata) []statLabel {
	return []statLabel{
		{Header: "Type", Value: meta.Type.Label()},
		{Header: "Elevation", Value: formatElevation(meta.ElevationGain)},
		{Header: "Pace", Value: formatPace(meta.Pace)},
		{Header: "Duration", Value: meta.Duration},
	}
}

// headline returns the two top-edge values: the activity name and the
// formatted distance.
func headline(meta *models.ActivityMetadata) (string, string) {
	return meta.Name, formatDistance(meta.Distance)
}

func formatDistance(km float64) string {
	return fmt.Sprintf("%.2fkm", km)
}

func formatElevation(meters float64) string {
	return fmt.Sprintf("%dm", int(math.Round(meters)))
}

func formatPace(pace string) string {
	if pace == "" {
		return "-"
	}
	return pace + "/km"
}
