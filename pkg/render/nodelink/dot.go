package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/render"
)

const (
	// canvasPoints is the length of the longer side of the drawing.
	canvasPoints = 600.0

	minNodeWidth = 0.12 // inches
	maxNodeWidth = 0.6  // inches
)

// Options configures node-link rendering.
type Options struct {
	// Labels prints each island's index and population next to it.
	Labels bool
	// Title is drawn above the map when set.
	Title string
}

// ToDOT converts a solved group to Graphviz DOT with pinned positions.
// The result can be rendered with [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(v islands.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=\"#7dd3fc\", color=\"#0369a1\", fixedsize=true, fontsize=10];\n")
	buf.WriteString("  edge [color=\"#334155\", penwidth=1.5];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	scale := fitScale(v.Coordinates)
	maxPop := 0
	if len(v.Populations) > 0 {
		maxPop = slices.Max(v.Populations)
	}

	for i, p := range v.Coordinates {
		pop := 0
		if i < len(v.Populations) {
			pop = v.Populations[i]
		}
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", fmtNum(p.X*scale), fmtNum(p.Y*scale)),
			`label=""`,
		}
		if i == islands.RootIndex {
			attrs = append(attrs, "shape=box", "fillcolor=\"#fbbf24\"", "color=\"#b45309\"", "width=0.35", "height=0.35")
		} else {
			attrs = append(attrs, "width="+fmtNum(nodeWidth(pop, maxPop)))
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("xlabel=\"%d (%d)\"", i, pop))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fitScale maps island coordinates onto a canvas of canvasPoints.
func fitScale(pts []islands.Point) float64 {
	if len(pts) == 0 {
		return 1
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		return 1
	}
	return canvasPoints / span
}

// nodeWidth makes node area proportional to population.
func nodeWidth(pop, maxPop int) float64 {
	if maxPop <= 0 || pop <= 0 {
		return minNodeWidth
	}
	return minNodeWidth + (maxNodeWidth-minNodeWidth)*math.Sqrt(float64(pop)/float64(maxPop))
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// Render produces the artifact for one format.
func Render(ctx context.Context, v islands.View, format string, opts Options, scale float64) ([]byte, error) {
	dot := ToDOT(v, opts)
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot, scale)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
