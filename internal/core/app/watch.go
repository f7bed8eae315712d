package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"graphindex/internal/core/watcher"
	"graphindex/internal/reindex"
	"graphindex/internal/shared/observability"
	"graphindex/internal/shared/util"
)

// WatchAndReindex performs one initial pass with the requested flags, then
// stays resident and re-runs the orchestrator whenever base graph files
// change. Re-runs use empty flags: a watch-triggered pass only fills in
// missing artifacts. Runs are serialized and throttled by min_interval.
func (a *App) WatchAndReindex(ctx context.Context, prefix string, flags reindex.Flags) error {
	if err := a.Reindex(ctx, prefix, flags); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Watch.Exclude, func(paths []string) {
		slog.Debug("graph files changed", "count", len(paths))
		select {
		case trigger <- struct{}{}:
		default:
			observability.WatchRunsSuppressedTotal.Inc()
		}
	})
	if err != nil {
		return err
	}
	a.activeWatcher = w

	dir := filepath.Dir(prefix)
	if err := w.Watch(dir); err != nil {
		return err
	}
	slog.Info("watching graph directory", "dir", dir, "debounce", a.Config.Watch.Debounce)

	// min_interval maps to a token bucket refilling one run per interval.
	limiter := util.NewLimiter(1.0/a.Config.Watch.MinInterval.Seconds(), 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-trigger:
			if err := limiter.Wait(ctx, 1); err != nil {
				return err
			}
			if err := a.Reindex(ctx, prefix, reindex.Flags{}); err != nil {
				// Watch mode keeps running; the next change retries.
				slog.Error("watch-triggered reindex failed", "error", err)
			}
		}
	}
}
