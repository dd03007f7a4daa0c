// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// Executor implements ports.Executor using os/exec. Each step command is a
// single shell string: the toolchain binaries inside it are opaque
// subprocesses, and embedded pkg-config backticks are evaluated by the shell
// here, at execution time.
type Executor struct {
	logger ports.Logger

	// Root is the workspace directory commands run in. Empty means the
	// current directory.
	Root string
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the step's command for the given profile via `sh -c`.
// The step's output directory is created first so toolchain invocations
// never race on mkdir. A non-zero exit propagates verbatim with the exit
// code attached; retry policy, if any, belongs to the caller.
func (e *Executor) Execute(ctx context.Context, step *domain.Step, profile domain.Profile) error {
	command := step.Commands.Get(profile)
	if command == "" {
		err := zerr.With(domain.ErrIncompleteCommands, "step", step.ID.String())
		return zerr.With(err, "profile", string(profile))
	}

	if out := step.Output(profile); out != "" {
		dir := filepath.Join(e.Root, filepath.Dir(out))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return zerr.Wrap(err, "failed to create output directory")
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // synthesized build command
	cmd.Dir = e.Root
	cmd.Env = os.Environ()
	cmd.Stdout = &logWriter{logger: e.logger, level: "info"}
	cmd.Stderr = &logWriter{logger: e.logger, level: "error"}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, "step command failed"), "exit_code", exitCode)
		wrapped = zerr.With(wrapped, "step", step.ID.String())
		return zerr.With(wrapped, "profile", string(profile))
	}

	return nil
}

// logWriter forwards subprocess output line by line to the logger so the
// toolchain's own diagnostics reach the user unmodified.
type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}
