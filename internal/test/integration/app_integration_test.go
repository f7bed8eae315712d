package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphindex/internal/core/app"
	"graphindex/internal/core/config"
	"graphindex/internal/data/journal"
	"graphindex/internal/reindex"
)

// installFakeTools writes shell scripts that behave like the real generators:
// each invocation creates its output artifact next to the graph prefix.
func installFakeTools(t *testing.T, binDir string) {
	t.Helper()
	releaseDir := filepath.Join(binDir, "release")
	require.NoError(t, os.MkdirAll(releaseDir, 0o755))

	indexTool := `#!/bin/sh
case "$1" in
  ef) touch "$2.ef" ;;
  labels-ef) touch "$2.ef" ;;
  *) exit 64 ;;
esac
`
	nodeTypeTool := `#!/bin/sh
touch "$1.node2type.bin"
`
	require.NoError(t, os.WriteFile(filepath.Join(releaseDir, "graph-index"), []byte(indexTool), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(releaseDir, "graph-node2type"), []byte(nodeTypeTool), 0o755))
}

func newTestApp(t *testing.T) (*app.App, string) {
	t.Helper()
	tmpDir := t.TempDir()

	graphDir := filepath.Join(tmpDir, "graph")
	require.NoError(t, os.MkdirAll(graphDir, 0o755))
	prefix := filepath.Join(graphDir, "graph")
	require.NoError(t, os.WriteFile(prefix+".nodes.count.txt", []byte("1000\n"), 0o644))

	binDir := filepath.Join(tmpDir, "bin")
	installFakeTools(t, binDir)

	cfg := config.Default()
	cfg.Runner.BinDir = binDir
	cfg.Journal.Enabled = true
	cfg.Journal.Path = filepath.Join(tmpDir, "state", "journal.db")

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })

	return application, prefix
}

func TestReindexFullPipeline(t *testing.T) {
	application, prefix := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, application.Reindex(ctx, prefix, reindex.Flags{}))

	assert.FileExists(t, prefix+".ef")
	assert.FileExists(t, prefix+"-labelled.ef")
	assert.FileExists(t, prefix+".node2type.bin")

	runs, err := application.History(ctx, prefix, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, journal.StatusOK, runs[0].Status)
	assert.Len(t, runs[0].Steps, 3)
}

func TestReindexSecondRunDoesNothing(t *testing.T) {
	application, prefix := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, application.Reindex(ctx, prefix, reindex.Flags{}))
	require.NoError(t, application.Reindex(ctx, prefix, reindex.Flags{}))

	runs, err := application.History(ctx, prefix, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	var stepCounts []int
	for _, run := range runs {
		stepCounts = append(stepCounts, len(run.Steps))
	}
	assert.ElementsMatch(t, []int{3, 0}, stepCounts)
}

func TestReindexForceRegeneratesAll(t *testing.T) {
	application, prefix := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, application.Reindex(ctx, prefix, reindex.Flags{}))
	require.NoError(t, application.Reindex(ctx, prefix, reindex.Flags{Force: true}))

	runs, err := application.History(ctx, prefix, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Len(t, run.Steps, 3)
	}
}

func TestReindexMissingSidecarFails(t *testing.T) {
	application, prefix := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, os.Remove(prefix+".nodes.count.txt"))

	err := application.Reindex(ctx, prefix, reindex.Flags{})
	require.Error(t, err)

	// Step A ran and produced its artifact before the failure.
	assert.FileExists(t, prefix+".ef")
	assert.NoFileExists(t, prefix+"-labelled.ef")
}
