// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup and receive events about resolution runs and
// registry requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which avoids import
// cycles and keeps the core free of observability framework imports.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolutionHooks(&myResolutionHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolution().OnResolveStart(ctx, host, pkg)
//	// ... resolve ...
//	observability.Resolution().OnResolveComplete(ctx, host, pkg, depCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ResolutionHooks receives events from the dependency resolution pipeline.
type ResolutionHooks interface {
	// OnResolveStart records the start of a package or project resolution.
	OnResolveStart(ctx context.Context, registry, pkg string)

	// OnResolveComplete records the end of a resolution, with the number
	// of dependency entries produced.
	OnResolveComplete(ctx context.Context, registry, pkg string, depCount int, duration time.Duration, err error)

	// OnLockFound records a lock file discovered in a package directory.
	OnLockFound(ctx context.Context, registry, dir string)
}

// RegistryHooks receives events from registry HTTP operations.
type RegistryHooks interface {
	// OnRequest records an outgoing registry request.
	OnRequest(ctx context.Context, method, url string)

	// OnResponse records a registry response.
	OnResponse(ctx context.Context, method, url string, statusCode int, duration time.Duration)

	// OnError records a registry error (network failure, timeout).
	OnError(ctx context.Context, method, url string, err error)
}

// NoopResolutionHooks is a no-op implementation of ResolutionHooks.
type NoopResolutionHooks struct{}

func (NoopResolutionHooks) OnResolveStart(context.Context, string, string) {}
func (NoopResolutionHooks) OnResolveComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopResolutionHooks) OnLockFound(context.Context, string, string) {}

// NoopRegistryHooks is a no-op implementation of RegistryHooks.
type NoopRegistryHooks struct{}

func (NoopRegistryHooks) OnRequest(context.Context, string, string)                      {}
func (NoopRegistryHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopRegistryHooks) OnError(context.Context, string, string, error)                 {}

var (
	resolutionHooks ResolutionHooks = NoopResolutionHooks{}
	registryHooks   RegistryHooks   = NoopRegistryHooks{}
	hooksMu         sync.RWMutex
)

// SetResolutionHooks registers custom resolution hooks.
// This should be called once at application startup before any resolutions.
func SetResolutionHooks(h ResolutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolutionHooks = h
	}
}

// SetRegistryHooks registers custom registry hooks.
// This should be called once at application startup before any requests.
func SetRegistryHooks(h RegistryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		registryHooks = h
	}
}

// Resolution returns the registered resolution hooks.
func Resolution() ResolutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolutionHooks
}

// Registry returns the registered registry hooks.
func Registry() RegistryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return registryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolutionHooks = NoopResolutionHooks{}
	registryHooks = NoopRegistryHooks{}
}
