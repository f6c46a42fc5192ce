// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package validation wraps go-playground/validator with a shared instance,
// the Waytrace tags and readable messages. Configuration, CLI flag values
// and new waypoints are checked through it.
//
// Custom tags:
//
//	waypointid  non-empty, no whitespace, no ':' or ','
//	            (':' joins path IDs and ',' separates CSV columns)
//	framesize   "WxH" with positive integers, e.g. "4x3"
//
// Failures come back as Errors, one FieldError per broken rule:
//
//	var ves validation.Errors
//	if errors.As(err, &ves) {
//	    fmt.Println(ves[0].Field, ves[0].Tag)
//	}
package validation
