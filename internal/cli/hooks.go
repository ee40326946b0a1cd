package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/observability"
)

// logHooks writes pipeline and cache events to the logger attached to the
// event's context. Everything is logged at debug level.
type logHooks struct{}

func registerHooks(l *log.Logger) {
	log.SetDefault(l)
	observability.SetPipelineHooks(logHooks{})
	observability.SetCacheHooks(logHooks{})
}

func (logHooks) OnParseComplete(ctx context.Context, source string, groups int, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("parse failed", "source", source, "err", err)
		return
	}
	l.Debug("parsed input", "source", source, "groups", groups, "duration", d.Round(time.Microsecond))
}

func (logHooks) OnSolveStart(ctx context.Context, group, sites int) {
	loggerFromContext(ctx).Debug("solving", "group", group, "sites", sites)
}

func (logHooks) OnMoveCommitted(ctx context.Context, group int, mv islands.Move) {
	loggerFromContext(ctx).Debug("relink",
		"group", group,
		"island", mv.Mover,
		"to", mv.Target,
		"gain", mv.Gain)
}

func (logHooks) OnSolveComplete(ctx context.Context, group int, stats islands.Stats, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("solve failed", "group", group, "err", err)
		return
	}
	l.Debug("solved",
		"group", group,
		"iterations", stats.Iterations,
		"commits", stats.Commits,
		"rejected", stats.Rejected,
		"saved", stats.Saved(),
		"duration", d.Round(time.Microsecond))
}

func (logHooks) OnRenderComplete(ctx context.Context, group int, formats []string, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("render failed", "group", group, "err", err)
		return
	}
	l.Debug("rendered", "group", group, "formats", formats, "duration", d.Round(time.Millisecond))
}

func (logHooks) OnCacheHit(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("cache hit", "type", keyType)
}

func (logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("cache miss", "type", keyType)
}

func (logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	loggerFromContext(ctx).Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)
