// Package shell provides the step executor adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the step's command in dir with the process environment plus
// the step's own variables, streaming output to the given writers. A
// non-zero exit returns domain.ErrStepFailed with the exit code attached.
func (e *Executor) Execute(ctx context.Context, step *domain.Step, dir string, stdout, stderr io.Writer) error {
	if len(step.Command) == 0 {
		return nil
	}

	name := step.Command[0]
	args := step.Command[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // user provided command
	cmd.Dir = dir
	cmd.Env = mergeEnvironment(os.Environ(), step.Environment)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	e.logger.Info("running step", "step", step.Name, "command", name)

	if err := cmd.Run(); err != nil {
		exitCode := -1 // Unknown or signal
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		failed := zerr.Wrap(domain.ErrStepFailed, "command failed")
		failed = zerr.With(failed, "step", step.Name)
		failed = zerr.With(failed, "exit_code", exitCode)
		return zerr.With(failed, "cause", err.Error())
	}
	return nil
}

// mergeEnvironment layers the step's variables over the base environment.
// Later entries win for duplicate keys in exec.Cmd, so overrides are simply
// appended.
func mergeEnvironment(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	env = append(env, base...)
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
