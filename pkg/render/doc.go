// Package render converts rendered SVG into other output formats.
//
// The [nodelink] subpackage draws solved island groups with Graphviz. PDF and
// PNG output is produced from that SVG by the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [Available] reports whether rsvg-convert is installed, so callers can fall
// back to SVG-only output.
package render
