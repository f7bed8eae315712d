// Package app wires configuration, the tool runner, the run journal and the
// reindex orchestrator into one application object.
package app

import (
	"context"
	"log/slog"

	"graphindex/internal/core/config"
	"graphindex/internal/core/errors"
	"graphindex/internal/core/watcher"
	"graphindex/internal/data/journal"
	"graphindex/internal/reindex"
	"graphindex/internal/runner"
)

type App struct {
	Config *config.Config

	toolRunner    *runner.ToolRunner
	journal       *journal.Store
	orchestrator  *reindex.Orchestrator
	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:     cfg,
		toolRunner: runner.New(cfg),
	}

	var recorder reindex.Recorder = reindex.NopRecorder{}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "open run journal")
		}
		a.journal = store
		recorder = store
	}

	a.orchestrator = reindex.New(a.toolRunner, recorder, slog.Default())
	return a, nil
}

// Reindex runs one orchestration pass against the graph prefix.
func (a *App) Reindex(ctx context.Context, prefix string, flags reindex.Flags) error {
	return a.orchestrator.Run(ctx, prefix, flags)
}

// History returns recent journal entries for the prefix, newest first.
func (a *App) History(ctx context.Context, prefix string, limit int) ([]journal.Run, error) {
	if a.journal == nil {
		return nil, errors.New(errors.CodeConfiguration, "run journal is disabled in configuration")
	}
	return a.journal.LoadRuns(ctx, prefix, limit)
}

func (a *App) Close(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
