package observability

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/islandlink/pkg/islands"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnParseComplete(ctx, "groups.txt", 9, time.Second, nil)
	p.OnSolveStart(ctx, 1, 12)
	p.OnMoveCommitted(ctx, 1, islands.Move{Mover: 2, Target: 1, Gain: 0.5})
	p.OnSolveComplete(ctx, 1, islands.Stats{Commits: 3}, time.Millisecond, nil)
	p.OnRenderComplete(ctx, 1, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "solution")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/solve")
	h.OnResponse(ctx, "POST", "/v1/solve", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the registered hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnMoveCommitted(ctx, 2, islands.Move{Mover: 3, Target: 1})
	Pipeline().OnMoveCommitted(ctx, 2, islands.Move{Mover: 4, Target: 3})

	if h.moves != 2 {
		t.Errorf("moves = %d, want 2", h.moves)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	moves int
}

func (h *testPipelineHooks) OnMoveCommitted(context.Context, int, islands.Move) { h.moves++ }

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }
