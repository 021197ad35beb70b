package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trigen/pkg/observability"
)

// logHooks writes pipeline, cache and store events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnStepStart(_ context.Context, rule, input string) {
	h.logger.Debug("step started", "rule", rule, "input", input)
}

func (h *logHooks) OnStepComplete(_ context.Context, rule, input string, s observability.StepStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("step failed", "rule", rule, "input", input, "parents", s.Parents, "error", err)
		return
	}
	h.logger.Debug("step finished", "rule", rule, "input", input, "cached", s.Cached, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

// OnCacheMiss is silent: certificate misses happen once per new graph.
func (h *logHooks) OnCacheMiss(context.Context, string) {}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	if keyType == "step" {
		h.logger.Debug("cached step", "bytes", size)
	}
}

// OnAdmit is silent; admissions are summarized per step.
func (h *logHooks) OnAdmit(context.Context, string, string, bool, time.Duration) {}

func (h *logHooks) OnError(_ context.Context, backend, bucket string, err error) {
	h.logger.Warn("store error", "backend", backend, "bucket", bucket, "error", err)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
	_ observability.StoreHooks    = (*logHooks)(nil)
)
