// Package reindex decides which derived graph artifacts are stale or missing
// and regenerates them in dependency order by invoking the external indexing
// tools. All steps are idempotent; re-running after a crash converges.
//
// Usage constraint: no two orchestrator instances may target the same graph
// prefix concurrently. The orchestrator takes no locks.
package reindex

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"graphindex/internal/core/errors"
	"graphindex/internal/data/journal"
	"graphindex/internal/runner"
	"graphindex/internal/shared/observability"
)

// External tool names, resolved by the runner per build profile.
const (
	indexTool    = "graph-index"
	nodeTypeTool = "graph-node2type"
)

// Recorder persists the outcome of a run. journal.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run journal.Run) error
}

// NopRecorder is used when the run journal is disabled.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, journal.Run) error { return nil }

type Orchestrator struct {
	runner   runner.Runner
	recorder Recorder
	log      *slog.Logger
}

func New(r runner.Runner, rec Recorder, log *slog.Logger) *Orchestrator {
	if rec == nil {
		rec = NopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{runner: r, recorder: rec, log: log}
}

// Run reindexes the graph under prefix to the latest format. Steps execute
// strictly sequentially and short-circuit on the first error; already-written
// artifacts from earlier steps are not rolled back.
func (o *Orchestrator) Run(ctx context.Context, prefix string, flags Flags) error {
	ctx, span := observability.Tracer.Start(ctx, "reindex.Run", trace.WithAttributes(
		attribute.String("graph.prefix", prefix),
		attribute.Bool("reindex.force", flags.Force),
		attribute.Bool("reindex.ef", flags.EF),
	))
	defer span.End()

	run := journal.Run{
		Prefix:  prefix,
		Force:   flags.Force,
		EF:      flags.EF,
		Started: time.Now().UTC(),
	}

	plan := BuildPlan(flags, TakeSnapshot(prefix))
	err := o.execute(ctx, prefix, plan, &run)

	run.Finished = time.Now().UTC()
	run.Status = journal.StatusOK
	if err != nil {
		run.Status = journal.StatusFailed
	}
	observability.RunsTotal.WithLabelValues(run.Status).Inc()

	if recErr := o.recorder.RecordRun(ctx, run); recErr != nil {
		o.log.Warn("failed to record run in journal", "error", recErr)
	}
	return err
}

func (o *Orchestrator) execute(ctx context.Context, prefix string, plan Plan, run *journal.Run) error {
	if plan.ForwardEF {
		o.log.Info("recreating Elias-Fano index on adjacency lists", "path", ForwardEFPath(prefix))
		if err := o.step(ctx, run, ArtifactForwardEF, func(ctx context.Context) error {
			return o.runner.Run(ctx, indexTool, "ef", prefix)
		}); err != nil {
			return err
		}
	}

	if plan.LabelledEF {
		nodeCount, err := readNodeCount(prefix)
		if err != nil {
			return err
		}
		o.log.Info("recreating Elias-Fano index on arc labels", "path", LabelledEFPath(prefix))
		if err := o.step(ctx, run, ArtifactLabelledEF, func(ctx context.Context) error {
			return o.runner.Run(ctx, indexTool, "labels-ef", prefix+labelledSuffix, nodeCount)
		}); err != nil {
			return err
		}
	}

	if plan.NodeType {
		nodeTypePath := NodeTypePath(prefix)
		// Generators append into an existing file; a stale map must be gone
		// before the tool starts.
		if fileExists(nodeTypePath) {
			if err := os.Remove(nodeTypePath); err != nil {
				return errors.AddContext(
					errors.Wrap(err, errors.CodeIO, "delete stale node2type artifact"),
					errors.CtxPath, nodeTypePath)
			}
		}
		o.log.Info("creating node2type map", "path", nodeTypePath)
		if err := o.step(ctx, run, ArtifactNodeType, func(ctx context.Context) error {
			return o.runner.Run(ctx, nodeTypeTool, prefix)
		}); err != nil {
			return err
		}
	}

	return nil
}

// step runs one regeneration, timing it and recording outcome in metrics,
// tracing and the run journal.
func (o *Orchestrator) step(ctx context.Context, run *journal.Run, artifact string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, "reindex.step", trace.WithAttributes(
		attribute.String("reindex.artifact", artifact),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	result := journal.Step{Artifact: artifact, Action: journal.ActionRebuilt, Duration: elapsed}
	if err != nil {
		result.Action = journal.ActionFailed
		result.Error = err.Error()
	} else {
		observability.RebuildsTotal.WithLabelValues(artifact).Inc()
		observability.StepDuration.WithLabelValues(artifact).Observe(elapsed.Seconds())
	}
	run.Steps = append(run.Steps, result)
	return err
}

// readNodeCount reads the sidecar count file as UTF-8 and trims whitespace.
// The value is an opaque token passed through to the labelled-index tool; no
// numeric validation happens here.
func readNodeCount(prefix string) (string, error) {
	path := NodeCountPath(prefix)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeDataUnavailable, "node count sidecar unreadable"),
			errors.CtxPath, path)
	}
	count := strings.TrimSpace(string(data))
	if count == "" {
		return "", errors.AddContext(
			errors.New(errors.CodeDataUnavailable, "node count sidecar is empty"),
			errors.CtxPath, path)
	}
	return count, nil
}
