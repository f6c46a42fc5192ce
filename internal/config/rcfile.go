// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// rcMappings maps legacy ~/.trace.rc keys to koanf paths.
var rcMappings = map[string]string{
	"waypoints_file": "waypoints.file",
	"path_csv_file":  "paths.csv_file",
	"map_api_key":    "tiles.api_key",
	"tiles_url":      "tiles.url",
	"tile_cache":     "tiles.cache_dir",
}

// rcParser is a koanf.Parser for the flat "key = value" rc file.
// Lines starting with '#' and blank lines are ignored; unknown keys are
// dropped. A value wrapped in matching single or double quotes loses them.
type rcParser struct{}

// RCParser returns the koanf parser for ~/.trace.rc files.
func RCParser() *rcParser {
	return &rcParser{}
}

// Unmarshal parses rc bytes into a nested koanf map.
func (p *rcParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	sc := bufio.NewScanner(bytes.NewReader(b))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("rc line %d: expected key = value", lineNo)
		}
		path, known := rcMappings[strings.TrimSpace(key)]
		if !known {
			continue
		}
		setNested(out, path, unquote(strings.TrimSpace(value)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rc: %w", err)
	}
	return out, nil
}

// Marshal writes the known keys of a nested koanf map back in rc form.
func (p *rcParser) Marshal(m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(rcMappings))
	for k := range rcMappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		v, ok := getNested(m, rcMappings[k])
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "%s = %v\n", k, v)
	}
	return buf.Bytes(), nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func setNested(m map[string]interface{}, path string, v interface{}) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = v
}

func getNested(m map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]interface{})
		if !ok {
			return nil, false
		}
		m = child
	}
	v, ok := m[parts[len(parts)-1]]
	return v, ok
}
