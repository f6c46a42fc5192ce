// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/tile"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// ErrNoExtent is returned when neither traces nor waypoints give a map area.
var ErrNoExtent = errors.New("nothing to plot")

// PlanFromTraces returns the extent covering the union of the traces'
// bounding boxes.
func PlanFromTraces(acts []*trace.Activity, zoom, buffer int) (tile.Extent, error) {
	box := geo.EmptyBBox()
	for _, a := range acts {
		box = box.Union(a.BBox())
	}
	if box.IsEmpty() {
		return tile.Extent{}, ErrNoExtent
	}
	return tile.ExtentFor(box, zoom, buffer)
}

// PlanFromWaypoints returns the extent covering the given waypoints.
func PlanFromWaypoints(store *waypoint.Store, ids []string, zoom, buffer int) (tile.Extent, error) {
	if len(ids) == 0 {
		return tile.Extent{}, ErrNoExtent
	}
	box, err := store.BBox(ids)
	if err != nil {
		return tile.Extent{}, err
	}
	return tile.ExtentFor(box, zoom, buffer)
}

// StartGroup lists the traces that start on one tile.
type StartGroup struct {
	Tile  tile.Tile
	Files []string
}

// StartTiles groups traces by the tile of their first positioned
// trackpoint. Traces without a position are left out. Groups are ordered by
// tile name and files within a group by path.
func StartTiles(acts []*trace.Activity, zoom int) []StartGroup {
	byTile := make(map[tile.Tile][]string)
	for _, a := range acts {
		c, err := a.StartCoord()
		if err != nil {
			continue
		}
		t := tile.FromCoord(c, zoom)
		byTile[t] = append(byTile[t], a.Path)
	}

	groups := make([]StartGroup, 0, len(byTile))
	for t, files := range byTile {
		sort.Strings(files)
		groups = append(groups, StartGroup{Tile: t, Files: files})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Tile.Name() < groups[j].Tile.Name()
	})
	return groups
}

// OutputName inserts suffix before the extension of output; an output
// without an extension gets ".png".
func OutputName(output, suffix string) string {
	ext := filepath.Ext(output)
	if ext == "" {
		return output + suffix + ".png"
	}
	return strings.TrimSuffix(output, ext) + suffix + ext
}

// outputFormat maps an output name to "png" or "jpeg".
func outputFormat(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want .png or .jpg)", filepath.Ext(name))
	}
}
