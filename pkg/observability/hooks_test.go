package observability

import (
	"context"
	"testing"
	"time"
)

type recordingResolutionHooks struct {
	starts    int
	completes int
	locks     int
}

func (r *recordingResolutionHooks) OnResolveStart(context.Context, string, string) { r.starts++ }
func (r *recordingResolutionHooks) OnResolveComplete(context.Context, string, string, int, time.Duration, error) {
	r.completes++
}
func (r *recordingResolutionHooks) OnLockFound(context.Context, string, string) { r.locks++ }

func TestSetResolutionHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingResolutionHooks{}
	SetResolutionHooks(rec)

	ctx := context.Background()
	Resolution().OnResolveStart(ctx, "crates.io", "serde")
	Resolution().OnResolveComplete(ctx, "crates.io", "serde", 3, time.Second, nil)
	Resolution().OnLockFound(ctx, "crates.io", "/tmp/crate")

	if rec.starts != 1 || rec.completes != 1 || rec.locks != 1 {
		t.Errorf("hooks not invoked: %+v", rec)
	}
}

func TestSetResolutionHooks_Nil(t *testing.T) {
	t.Cleanup(Reset)

	SetResolutionHooks(nil)
	if Resolution() == nil {
		t.Fatal("nil registration must keep the previous hooks")
	}
}

func TestReset(t *testing.T) {
	SetResolutionHooks(&recordingResolutionHooks{})
	Reset()

	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Reset should restore no-op resolution hooks")
	}
	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("Reset should restore no-op registry hooks")
	}
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	// Must not panic.
	ctx := context.Background()
	Resolution().OnResolveStart(ctx, "crates.io", "serde")
	Registry().OnRequest(ctx, "GET", "https://crates.io/api/v1/crates/serde")
	Registry().OnError(ctx, "GET", "https://crates.io/api/v1/crates/serde", context.Canceled)
}
