// Package privilege runs commands as root and manages system packages.
package privilege

import (
	"context"
	"os"

	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
)

// Runner runs commands with root privileges.
type Runner interface {
	Run(ctx context.Context, cmd runner.Command) (runner.CommandResult, error)
	// Elevated reports whether commands already run as root.
	Elevated() bool
}

// DirectRunner runs commands unchanged; used when already root.
type DirectRunner struct {
	runner runner.CommandRunner
}

// Run implements Runner.
func (d DirectRunner) Run(ctx context.Context, cmd runner.Command) (runner.CommandResult, error) {
	return d.runner.Run(ctx, cmd)
}

// Elevated implements Runner.
func (DirectRunner) Elevated() bool { return true }

// SudoRunner prefixes commands with sudo. When NonInteractive, sudo is
// given -n so it fails instead of waiting for a password.
type SudoRunner struct {
	runner         runner.CommandRunner
	NonInteractive bool
}

// Run implements Runner.
func (s SudoRunner) Run(ctx context.Context, cmd runner.Command) (runner.CommandResult, error) {
	args := make([]string, 0, len(cmd.Args)+2)
	if s.NonInteractive {
		args = append(args, "-n")
	}

	args = append(args, cmd.Name)
	args = append(args, cmd.Args...)

	return s.runner.Run(ctx, runner.Command{
		Name:        "sudo",
		Args:        args,
		Dir:         cmd.Dir,
		Interactive: cmd.Interactive || !s.NonInteractive,
	})
}

// Elevated implements Runner.
func (SudoRunner) Elevated() bool { return false }

// NewRunner picks DirectRunner for euid 0 and SudoRunner otherwise.
func NewRunner(cmdRunner runner.CommandRunner, euid int, nonInteractive bool) Runner {
	if euid == 0 {
		return DirectRunner{runner: cmdRunner}
	}

	return SudoRunner{runner: cmdRunner, NonInteractive: nonInteractive}
}

// NewProcessRunner is NewRunner for the current process's effective user.
func NewProcessRunner(cmdRunner runner.CommandRunner, nonInteractive bool) Runner {
	return NewRunner(cmdRunner, os.Geteuid(), nonInteractive)
}
