// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package waypoint

import "sort"

// NaturalLess orders strings with embedded numbers by numeric value, so
// "w2" < "w10". Runs of digits compare by value, then by length to keep
// "w01" and "w1" distinct.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && a[i] == '0' {
				i++
			}
			sj := j
			for j < len(b) && b[j] == '0' {
				j++
			}
			ni := i
			for ni < len(a) && isDigit(a[ni]) {
				ni++
			}
			nj := j
			for nj < len(b) && isDigit(b[nj]) {
				nj++
			}
			// Without leading zeros the longer run is the larger number.
			if ni-i != nj-j {
				return ni-i < nj-j
			}
			if da, db := a[i:ni], b[j:nj]; da != db {
				return da < db
			}
			// Same value: fewer leading zeros first.
			if i-si != j-sj {
				return i-si < j-sj
			}
			i, j = ni, nj
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// SortIDs sorts ids in place in natural order.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
}
