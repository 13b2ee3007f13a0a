// Package observability lets callers receive build, cache and HTTP events
// without the libraries depending on a metrics backend.
//
// Hooks are registered once at startup; libraries fetch the current hooks
// at the point of the event:
//
//	func main() {
//	    observability.SetBuildHooks(&promBuildHooks{})
//	    // ...
//	}
//
//	observability.Build().OnConstructStart(ctx, "chr1", len(variants))
//	// ... construct ...
//	observability.Build().OnConstructComplete(ctx, "chr1", g.NodeCount(), time.Since(start), err)
//
// Every hook set defaults to a no-op implementation.
package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks receives events from graph construction.
type BuildHooks interface {
	OnConstructStart(ctx context.Context, chromosome string, variants int)
	OnConstructComplete(ctx context.Context, chromosome string, nodes int, duration time.Duration, err error)

	// OnDisambiguate reports a dummy-node pass.
	OnDisambiguate(ctx context.Context, strategy string, dummies int, duration time.Duration, err error)

	// OnSave reports an encoded graph written out; size is in bytes.
	OnSave(ctx context.Context, path string, size int, duration time.Duration, err error)
}

// CacheHooks receives events from the result cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the query server. Route is the chi route
// pattern, not the raw path, so ids do not explode label cardinality.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// NoopBuildHooks ignores all build events.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnConstructStart(context.Context, string, int) {}

func (NoopBuildHooks) OnConstructComplete(context.Context, string, int, time.Duration, error) {}

func (NoopBuildHooks) OnDisambiguate(context.Context, string, int, time.Duration, error) {}

func (NoopBuildHooks) OnSave(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers build hooks. Nil is ignored.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
