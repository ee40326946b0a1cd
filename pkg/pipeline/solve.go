package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/islandlink/pkg/cache"
	"github.com/matzehuels/islandlink/pkg/errors"
	islandio "github.com/matzehuels/islandlink/pkg/io"
	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/observability"
)

// SolveWithCacheInfo builds the group, restores or computes its links, and
// reports whether the links came from the cache.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, in islandio.Group, opts Options) (*islands.Group, islands.Stats, bool, error) {
	r.applyLogger(&opts)
	opts.SetSolveDefaults()

	g, err := islands.NewGroup(in.Records, islands.WithMaxSites(opts.MaxSites))
	if err != nil {
		return nil, islands.Stats{}, false, err
	}

	recordsHash, err := cache.HashJSON(in.Records)
	if err != nil {
		return nil, islands.Stats{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash records")
	}
	cacheKey := r.Keyer.SolutionKey(recordsHash, opts.SolutionKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			links, stats, err := islandio.UnmarshalSolution(data)
			if err == nil && g.SetLinks(links) == nil {
				return g, stats, true, nil
			}
			opts.Logger.Debug("discarding unusable cached solution", "group", in.Index, "error", err)
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "group", in.Index, "error", err)
		}
	}

	observability.Pipeline().OnSolveStart(ctx, in.Index, g.Len())
	start := time.Now()
	stats, err := islands.Solve(g, islands.WithMoveObserver(func(mv islands.Move) {
		observability.Pipeline().OnMoveCommitted(ctx, in.Index, mv)
	}))
	observability.Pipeline().OnSolveComplete(ctx, in.Index, stats, time.Since(start), err)
	if err != nil {
		return nil, stats, false, err
	}

	if data, err := islandio.MarshalSolution(g.Links(), stats); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.solutionTTL()); err != nil {
			opts.Logger.Warn("cache store failed", "group", in.Index, "error", err)
		}
	}
	return g, stats, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, in islandio.Group, opts Options) (*islands.Group, islands.Stats, error) {
	g, stats, _, err := r.SolveWithCacheInfo(ctx, in, opts)
	return g, stats, err
}

func (r *Runner) solutionTTL() time.Duration {
	if r.SolutionTTL > 0 {
		return r.SolutionTTL
	}
	return cache.TTLSolution
}
