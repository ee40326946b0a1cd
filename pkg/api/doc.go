// Package api serves the island solver over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	POST /v1/solve         solve groups supplied as JSON
//	GET  /v1/runs          recent runs (history enabled)
//	GET  /v1/runs/{runID}  one run with its groups
//
// A solve request carries the same group shape as the JSON input format:
//
//	{
//	  "groups": [{"name": "north", "sites": [{"x": 0, "y": 0, "population": 0}, {"x": 3, "y": 4, "population": 10}]}],
//	  "formats": ["svg"]
//	}
//
// Every response uses one envelope: {"success": true, "data": ...} or
// {"success": false, "error": {"code": "GROUP_TOO_LARGE", "message": ..., "group": 2}}.
package api
