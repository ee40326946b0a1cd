// Package nodelink draws a solved island group as a map of islands and cables.
//
// Islands are pinned at their surveyed coordinates and laid out with the
// Graphviz neato engine, so the picture is geographically faithful. The main
// island is drawn as a box; every other island is a circle whose area grows
// with its population. Each cable is one undirected edge.
//
//	dot := nodelink.ToDOT(g.Snapshot(), nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
