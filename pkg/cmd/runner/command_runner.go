// Package runner executes external programs and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/sirupsen/logrus"
)

// ErrCommandFailed wraps every non-zero exit or start failure.
var ErrCommandFailed = errors.New("command failed")

// Command describes one process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Interactive attaches the user's terminal so the process can prompt
	// (for example for an escalation password) and stream its output.
	Interactive bool
}

// String renders the command line for messages.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandResult holds the captured output of a finished process.
// Output is captured even when the process fails.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs a command to completion.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ExecCommandRunner runs commands with os/exec.
type ExecCommandRunner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger logrus.FieldLogger
}

// NewExecCommandRunner creates a runner whose interactive commands use the
// given streams. Nil streams default to the process's own.
func NewExecCommandRunner(
	stdin io.Reader,
	stdout, stderr io.Writer,
	logger logrus.FieldLogger,
) *ExecCommandRunner {
	if stdin == nil {
		stdin = os.Stdin
	}

	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	return &ExecCommandRunner{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logging.For(logger, "runner"),
	}
}

// Run starts cmd, waits for it and returns its captured output.
func (r *ExecCommandRunner) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	var outBuf, errBuf bytes.Buffer

	//nolint:gosec // commands are assembled from fixed program names
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir

	if cmd.Interactive {
		proc.Stdin = r.stdin
		proc.Stdout = io.MultiWriter(&outBuf, r.stdout)
		proc.Stderr = io.MultiWriter(&errBuf, r.stderr)
	} else {
		proc.Stdout = &outBuf
		proc.Stderr = &errBuf
	}

	log := r.logger.WithField("command", cmd.String())
	log.Debug("running command")

	runErr := proc.Run()

	result := CommandResult{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: exitCode(proc, runErr),
	}

	log.WithFields(logrus.Fields{
		"exit":   result.ExitCode,
		"stdout": result.Stdout,
		"stderr": result.Stderr,
	}).Debug("command finished")

	if runErr != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.String(), runErr)
	}

	return result, nil
}

func exitCode(proc *exec.Cmd, runErr error) int {
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode()
	}

	if runErr != nil {
		return -1
	}

	if proc.ProcessState != nil {
		return proc.ProcessState.ExitCode()
	}

	return 0
}

// Output returns the most useful text of a failed command: stderr when
// present, stdout otherwise.
func (r CommandResult) Output() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}

	return strings.TrimSpace(r.Stdout)
}
