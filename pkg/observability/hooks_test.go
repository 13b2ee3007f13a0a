package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBuildHooks{}
	b.OnConstructStart(ctx, "chr1", 10)
	b.OnConstructComplete(ctx, "chr1", 21, time.Second, nil)
	b.OnDisambiguate(ctx, "structural", 3, time.Second, nil)
	b.OnSave(ctx, "out.sg", 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "varnodes")
	c.OnCacheSet(ctx, "graph", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/nodes/{id}")
	h.OnResponse(ctx, "GET", "/nodes/{id}", 200, time.Millisecond)
	h.OnError(ctx, "GET", "/nodes/{id}", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() default is not NoopBuildHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() default is not NoopHTTPHooks")
	}

	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks did not register")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks did not register")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks did not register")
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() did not restore NoopBuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testBuildHooks{}
	SetBuildHooks(custom)
	SetBuildHooks(nil)
	if Build() != custom {
		t.Error("SetBuildHooks(nil) replaced the registered hooks")
	}
}

type testBuildHooks struct{ NoopBuildHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
