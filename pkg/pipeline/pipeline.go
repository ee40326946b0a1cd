// Package pipeline runs the parse → solve → render sequence shared by the CLI
// and the HTTP API.
//
// By centralizing this logic, both entry points get the same caching,
// error wrapping, and observability hooks.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read island groups from the text or JSON format
//  2. Solve: Run the exchange search on each group and compute the metric
//  3. Render: Optionally draw each solved group (SVG, PNG, PDF, DOT)
//
// Groups are processed in input order. The first failing group aborts the
// run and its error carries the 1-based group index.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	groups, err := runner.ParseFile(ctx, "islands.txt", opts)
//	result, err := runner.Execute(ctx, groups, opts)
//	for _, g := range result.Groups {
//	    fmt.Printf("Island Group: %d Average %.2f\n", g.Index, g.Average)
//	}
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/islandlink/pkg/cache"
	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxSites bounds the islands per group, main island included.
	DefaultMaxSites = errors.DefaultMaxSites

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG = render.FormatSVG
	FormatPNG = render.FormatPNG
	FormatPDF = render.FormatPDF
	FormatDOT = render.FormatDOT
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse and solve options
	MaxSites int  `json:"max_sites,omitempty"`
	Refresh  bool `json:"refresh,omitempty"` // Ignore cached solutions

	// Render options. Nothing is rendered when Formats is empty.
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized). Runner methods fall back to
	// Runner.Logger when Logger is nil.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Groups []GroupResult `json:"groups"`
	Stats  Stats         `json:"stats"`
}

// GroupResult is the outcome for one island group.
type GroupResult struct {
	Index       int     `json:"index"`
	Name        string  `json:"name,omitempty"`
	Sites       int     `json:"sites"`
	Population  int     `json:"population"`
	Average     float64 `json:"average"`
	CableBefore float64 `json:"cable_before"`
	CableAfter  float64 `json:"cable_after"`
	Commits     int     `json:"commits"`
	Iterations  int     `json:"iterations"`

	View      islands.View      `json:"view"`
	Artifacts map[string][]byte `json:"-"`

	CacheHit bool          `json:"cache_hit"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Groups     int           `json:"groups"`
	CacheHits  int           `json:"cache_hits"`
	SolveTime  time.Duration `json:"solve_time_ns"`
	RenderTime time.Duration `json:"render_time_ns"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid format: %q (must be one of: svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxSites < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_sites must not be negative, got %d", o.MaxSites)
	}
	o.SetSolveDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetSolveDefaults sets default values for parsing and solving.
func (o *Options) SetSolveDefaults() {
	if o.MaxSites == 0 {
		o.MaxSites = DefaultMaxSites
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.Formats = slices.Compact(o.Formats)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// WantsRender reports whether any artifact was requested.
func (o *Options) WantsRender() bool {
	return len(o.Formats) > 0
}

// SolutionKeyOpts returns cache key options for solving.
func (o *Options) SolutionKeyOpts() cache.SolutionKeyOpts {
	return cache.SolutionKeyOpts{MaxSites: o.MaxSites}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. The
// title is drawn into the plot, so it is part of the key.
func (o *Options) ArtifactKeyOpts(format, title string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Title:  title,
		Labels: o.Labels,
		Scale:  o.Scale,
	}
}

func (r GroupResult) String() string {
	return fmt.Sprintf("Island Group: %d Average %.2f", r.Index, r.Average)
}
