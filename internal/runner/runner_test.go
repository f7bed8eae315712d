package runner

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"graphindex/internal/core/config"
	"graphindex/internal/core/errors"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func newRunner(t *testing.T, binDir string) *ToolRunner {
	cfg := config.Default()
	cfg.Runner.BinDir = binDir
	return New(cfg)
}

func TestResolveFromBinDir(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "release", "graph-index")
	writeScript(t, tool, "exit 0")

	r := newRunner(t, binDir)
	path, err := r.Resolve("graph-index")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != tool {
		t.Errorf("expected %s, got %s", tool, path)
	}
}

func TestResolveRespectsProfile(t *testing.T) {
	binDir := t.TempDir()
	writeScript(t, filepath.Join(binDir, "debug", "graph-index"), "exit 0")

	r := newRunner(t, binDir)
	if _, err := r.Resolve("graph-index"); err == nil {
		t.Fatal("expected release-profile resolve to fail when only debug build exists")
	}

	cfg := config.Default()
	cfg.Runner.BinDir = binDir
	cfg.Profile = "debug"
	if _, err := New(cfg).Resolve("graph-index"); err != nil {
		t.Fatalf("debug-profile resolve failed: %v", err)
	}
}

func TestResolveMissingTool(t *testing.T) {
	r := newRunner(t, t.TempDir())
	_, err := r.Resolve("graph-index")
	if err == nil {
		t.Fatal("expected error for missing tool")
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRunSuccess(t *testing.T) {
	binDir := t.TempDir()
	marker := filepath.Join(binDir, "invoked")
	writeScript(t, filepath.Join(binDir, "release", "graph-index"), `echo "$@" > `+marker)

	r := newRunner(t, binDir)
	if err := r.Run(context.Background(), "graph-index", "ef", "g"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("tool was not invoked: %v", err)
	}
	if string(out) != "ef g\n" {
		t.Errorf("unexpected tool arguments: %q", string(out))
	}
}

func TestRunFailureCarriesStderr(t *testing.T) {
	binDir := t.TempDir()
	writeScript(t, filepath.Join(binDir, "release", "graph-index"), `echo "mmap failed" >&2; exit 3`)

	r := newRunner(t, binDir)
	err := r.Run(context.Background(), "graph-index", "ef", "g")
	if err == nil {
		t.Fatal("expected failure for non-zero exit")
	}
	if !errors.IsCode(err, errors.CodeGenerationFailure) {
		t.Errorf("expected GENERATION_FAILURE, got %v", err)
	}

	var de *errors.DomainError
	if !stderrors.As(err, &de) {
		t.Fatal("expected DomainError")
	}
	if de.Context["stderr"] != "mmap failed" {
		t.Errorf("expected captured stderr, got %v", de.Context["stderr"])
	}
}
