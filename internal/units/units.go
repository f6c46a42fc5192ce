// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package units converts between the metric values stored in traces and the
// imperial values printed in reports.
package units

import (
	"fmt"
	"time"
)

// MetersPerMile is the rounded conversion used by every report.
const MetersPerMile = 1609.0

// FeetPerMeter converts altitude meters to feet.
const FeetPerMeter = 3.28084

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 {
	return m * FeetPerMeter
}

// MinSec formats d as "m:ss", truncating fractional seconds.
func MinSec(d time.Duration) string {
	total := int64(d / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d", sign, total/60, total%60)
}

// HMS formats d as "h:mm:ss", truncating fractional seconds.
func HMS(d time.Duration) string {
	total := int64(d / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}

// Seconds converts a floating point second count to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
