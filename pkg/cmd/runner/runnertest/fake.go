// Package runnertest provides a scripted CommandRunner for tests.
package runnertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
)

// ErrUnscripted is returned for commands with no matching response.
var ErrUnscripted = errors.New("unscripted command")

// Response is the scripted outcome of a command.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err, when set, is wrapped in runner.ErrCommandFailed like a real failure.
	Err error
}

type rule struct {
	prefix    string
	responses []Response
}

// Runner matches each command line against registered prefixes. A prefix
// with several responses replays them in order and then repeats the last.
type Runner struct {
	mu    sync.Mutex
	rules []*rule
	calls []runner.Command
}

// New returns an empty Runner; unmatched commands fail with ErrUnscripted.
func New() *Runner {
	return &Runner{}
}

// On scripts the responses for commands whose line starts with prefix.
// Later registrations take precedence over earlier ones.
func (r *Runner) On(prefix string, responses ...Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(responses) == 0 {
		responses = []Response{{}}
	}

	r.rules = append([]*rule{{prefix: prefix, responses: responses}}, r.rules...)

	return r
}

// Run implements runner.CommandRunner.
func (r *Runner) Run(_ context.Context, cmd runner.Command) (runner.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)
	line := cmd.String()

	for _, candidate := range r.rules {
		if !strings.HasPrefix(line, candidate.prefix) {
			continue
		}

		resp := candidate.responses[0]
		if len(candidate.responses) > 1 {
			candidate.responses = candidate.responses[1:]
		}

		result := runner.CommandResult{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
		if resp.Err != nil {
			if result.ExitCode == 0 {
				result.ExitCode = 1
			}

			return result, fmt.Errorf("%w: %s: %w", runner.ErrCommandFailed, line, resp.Err)
		}

		return result, nil
	}

	return runner.CommandResult{ExitCode: -1}, fmt.Errorf("%w: %s", ErrUnscripted, line)
}

// Calls returns every command line run so far.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]string, 0, len(r.calls))
	for _, cmd := range r.calls {
		lines = append(lines, cmd.String())
	}

	return lines
}

// Commands returns every command run so far.
func (r *Runner) Commands() []runner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]runner.Command(nil), r.calls...)
}

// CallsWithPrefix returns the command lines starting with prefix.
func (r *Runner) CallsWithPrefix(prefix string) []string {
	var matched []string

	for _, line := range r.Calls() {
		if strings.HasPrefix(line, prefix) {
			matched = append(matched, line)
		}
	}

	return matched
}
