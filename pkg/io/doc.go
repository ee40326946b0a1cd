// Package io reads and writes island group descriptions.
//
// # Text Format
//
// The native format is line based. A line holding only digits announces a
// group and its declared island count. Each following line describes one
// island as three whitespace-separated fields, and a line holding a single
// 0 closes the group:
//
//	Example archipelago
//	3
//	0 0 120
//	4 3 40
//	-2 7 15
//	0
//
// Fields are x and y in kilometers followed by the number of inhabitants.
// The first island of every group is the main island. Anything between
// groups that is not a digit-only line (titles, comments, blank lines) is
// ignored. Blank lines inside a group are skipped.
//
// Reading fails with GROUP_TOO_LARGE when a declared or actual island count
// exceeds the configured maximum, and with INVALID_RECORD when a record has
// the wrong field count, a field does not parse, a population is negative,
// or the input ends inside a group. Errors carry the 1-based group index
// and the line number.
//
// # JSON Format
//
// Groups can also be supplied as JSON:
//
//	{
//	  "groups": [
//	    {"name": "north", "sites": [{"x": 0, "y": 0, "population": 120}, {"x": 4, "y": 3, "population": 40}]}
//	  ]
//	}
//
// [ImportGroups] picks the format from the file extension.
package io
