package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openfare/openfare-rs/pkg/observability"
)

// logHooks forwards resolution and registry events to the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func installHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetResolutionHooks(h)
	observability.SetRegistryHooks(h)
}

func (h *logHooks) OnResolveStart(_ context.Context, registry, pkg string) {
	h.logger.Debug("resolution started", "registry", registry, "target", pkg)
}

func (h *logHooks) OnResolveComplete(_ context.Context, registry, pkg string, depCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolution failed", "registry", registry, "target", pkg, "err", err)
		return
	}
	h.logger.Debug("resolution complete",
		"registry", registry,
		"target", pkg,
		"dependencies", depCount,
		"elapsed", duration.Round(time.Millisecond),
	)
}

func (h *logHooks) OnLockFound(_ context.Context, registry, dir string) {
	h.logger.Debug("lock file found", "registry", registry, "dir", dir)
}

func (h *logHooks) OnRequest(_ context.Context, method, url string) {
	h.logger.Debug("registry request", "method", method, "url", url)
}

func (h *logHooks) OnResponse(_ context.Context, method, url string, statusCode int, duration time.Duration) {
	h.logger.Debug("registry response",
		"method", method,
		"url", url,
		"status", statusCode,
		"elapsed", duration.Round(time.Millisecond),
	)
}

func (h *logHooks) OnError(_ context.Context, method, url string, err error) {
	h.logger.Debug("registry error", "method", method, "url", url, "err", err)
}
