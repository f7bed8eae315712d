// Package runner resolves and executes the external graph indexing tools.
// The orchestrator only sees the narrow Runner interface so it can be tested
// with a fake executor.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"graphindex/internal/core/config"
	"graphindex/internal/core/errors"
)

// Runner executes one external tool invocation and blocks until the child
// process terminates.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) error
}

// maxStderrTail caps how much captured stderr is attached to a failure.
const maxStderrTail = 4096

// ToolRunner resolves tools either from <bin_dir>/<profile>/<tool> or, when
// no bin_dir is configured, from PATH.
type ToolRunner struct {
	binDir  string
	profile string
	timeout time.Duration
	stdout  *os.File
}

func New(cfg *config.Config) *ToolRunner {
	return &ToolRunner{
		binDir:  cfg.Runner.BinDir,
		profile: cfg.Profile,
		timeout: cfg.Runner.Timeout,
		stdout:  os.Stdout,
	}
}

// Resolve maps a tool name to an executable path for the configured profile.
func (r *ToolRunner) Resolve(tool string) (string, error) {
	if r.binDir != "" {
		path := filepath.Join(r.binDir, r.profile, tool)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		return "", errors.AddContext(errors.AddContext(
			errors.New(errors.CodeNotFound, "tool not found in bin_dir"),
			errors.CtxTool, tool), errors.CtxProfile, r.profile)
	}

	path, err := exec.LookPath(tool)
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "tool not found in PATH"),
			errors.CtxTool, tool)
	}
	return path, nil
}

func (r *ToolRunner) Run(ctx context.Context, tool string, args ...string) error {
	path, err := r.Resolve(tool)
	if err != nil {
		return err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = &stderr

	slog.Debug("running tool", "tool", tool, "path", path, "args", args)
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		failure := errors.Wrap(err, errors.CodeGenerationFailure, "external generator failed")
		failure = errors.AddContext(failure, errors.CtxTool, tool)
		if tail := stderrTail(stderr.Bytes()); tail != "" {
			failure = errors.AddContext(failure, "stderr", tail)
		}
		return failure
	}

	slog.Debug("tool finished", "tool", tool, "duration", elapsed)
	return nil
}

func stderrTail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxStderrTail {
		s = s[len(s)-maxStderrTail:]
	}
	return s
}
