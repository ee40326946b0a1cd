// Package pkg provides the libraries behind islandlink.
//
// # Overview
//
// islandlink plans a cable network for each group of islands. Every island
// must reach the group's main island, messages travel one kilometer per day,
// and the network is built with the Esau-Williams savings heuristic: each
// island starts with its own cable to the main island and is relinked to a
// neighbor whenever that shortens the total cable. The figure of merit is
// the population-weighted average number of days a message needs.
//
// # Architecture
//
// The typical data flow:
//
//	text or JSON groups
//	         ↓
//	    [io] package (parse and validate records)
//	         ↓
//	    [islands] package (build the group, run the heuristic)
//	         ↓
//	    [islands] metric (average delivery days)
//	         ↓
//	    report lines, tables, SVG/PNG/PDF/DOT plots
//
// # Quick Start
//
//	import "github.com/matzehuels/islandlink/pkg/islands"
//
//	g, _ := islands.NewGroup([]islands.Record{
//	    {X: 0, Y: 0, Population: 0},
//	    {X: 0, Y: 3, Population: 1},
//	    {X: 1, Y: 3, Population: 3},
//	})
//	islands.Solve(g)
//	avg, _ := g.AverageDays() // 3.75
//
// # Main Packages
//
// [islands] - Site model, ancestor check, trade-off search, root distances
// and the weighted average.
//
// [io] - The line-based group format with digit-only headers, JSON
// groups, and serialized solutions.
//
// [errors] - Error codes shared by every layer, with the failing group index
// attached where one applies.
//
// [pipeline] - Parse → solve → render orchestration with caching, used by
// both the CLI and the HTTP API.
//
// [render/nodelink] - Graphviz drawings of a solved network with islands
// pinned at their coordinates. [render] converts SVG to PDF and PNG.
//
// [cache] - File, Redis, and no-op caches for solutions and plots.
//
// [store] - SQLite run history.
//
// [generate] - Synthetic island groups from simplex noise.
//
// [api] - HTTP API over the pipeline.
//
// [config], [observability], [buildinfo] - Configuration file, event hooks,
// and version information.
//
// [islands]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/islands
// [io]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/store
// [generate]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/generate
// [api]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/islandlink/pkg/buildinfo
package pkg
