package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/islandlink/pkg/cache"
	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/observability"
	"github.com/matzehuels/islandlink/pkg/render/nodelink"
)

// RenderView draws a solved group in every requested format without caching.
func RenderView(ctx context.Context, v islands.View, title string, opts Options) (map[string][]byte, error) {
	nlOpts := nodelink.Options{Labels: opts.Labels, Title: title}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := nodelink.Render(ctx, v, format, nlOpts, opts.Scale)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo renders a solved group with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, group int, v islands.View, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	title := fmt.Sprintf("Island group %d", group)
	viewHash, err := cache.HashJSON(v)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash view")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format, title))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		}
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	start := time.Now()
	rendered, err := RenderView(ctx, v, title, opts)
	observability.Pipeline().OnRenderComplete(ctx, group, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format, title))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache store failed", "group", group, "format", format, "error", err)
		}
	}
	return rendered, false, nil
}
