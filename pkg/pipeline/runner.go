package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/islandlink/pkg/cache"
	"github.com/matzehuels/islandlink/pkg/errors"
	islandio "github.com/matzehuels/islandlink/pkg/io"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and error handling live in one place.
//
// The Runner holds no per-run state, so several goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// SolutionTTL overrides cache.TTLSolution when positive.
	SolutionTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute solves every group in order and renders it when formats were
// requested. The first failing group aborts the run; its error carries the
// group index.
//
// On failure the returned Result still holds every group completed before
// the failing one, so callers can report them.
func (r *Runner) Execute(ctx context.Context, groups []islandio.Group, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Groups: make([]GroupResult, 0, len(groups))}
	for _, in := range groups {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		gr, err := r.executeGroup(ctx, in, opts, &result.Stats)
		if err != nil {
			return result, errors.InGroup(in.Index, err)
		}
		result.Groups = append(result.Groups, *gr)
		result.Stats.Groups = len(result.Groups)
	}
	return result, nil
}

func (r *Runner) executeGroup(ctx context.Context, in islandio.Group, opts Options, stats *Stats) (*GroupResult, error) {
	start := time.Now()
	g, solveStats, hit, err := r.SolveWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	avg, err := g.AverageDays()
	if err != nil {
		return nil, err
	}
	stats.SolveTime += time.Since(start)
	if hit {
		stats.CacheHits++
	}

	gr := &GroupResult{
		Index:       in.Index,
		Name:        in.Name,
		Sites:       g.Len(),
		Population:  g.TotalPopulation(),
		Average:     avg,
		CableBefore: solveStats.InitialCable,
		CableAfter:  g.CableLength(),
		Commits:     solveStats.Commits,
		Iterations:  solveStats.Iterations,
		View:        g.Snapshot(),
		CacheHit:    hit,
	}

	opts.Logger.Debug("solved group",
		"group", in.Index,
		"sites", gr.Sites,
		"commits", gr.Commits,
		"cable", gr.CableAfter,
		"cached", hit)

	if opts.WantsRender() {
		renderStart := time.Now()
		artifacts, _, err := r.RenderWithCacheInfo(ctx, in.Index, gr.View, opts)
		if err != nil {
			return nil, err
		}
		gr.Artifacts = artifacts
		stats.RenderTime += time.Since(renderStart)
	}

	gr.Duration = time.Since(start)
	return gr, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
