// Package errorhandler turns command failures into the message printed before exit.
package errorhandler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/spf13/cobra"
)

// Executor type.

// Executor runs a Cobra command tree with Cobra's own error printing disabled,
// so stderr stays free for diagnostics and playbook output.
type Executor struct {
	normalizer DefaultNormalizer
}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs the provided command. It returns nil on success, or a
// *CommandError carrying the normalized message, a remediation hint and the
// original error to preserve error-chain semantics.
//
// Usage errors (unknown commands, bad flags or arguments) get Cobra's
// "Run '... --help' for usage." line appended.
func (e *Executor) Execute(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	cmd.SilenceErrors = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{cause: err}
	})

	failed, err := cmd.ExecuteC()
	if err == nil {
		return nil
	}

	message := e.normalizer.Normalize(err.Error())
	if IsUsageError(err) && failed != nil {
		message += fmt.Sprintf("\nRun '%s --help' for usage.", failed.CommandPath())
	}

	return &CommandError{
		message: message,
		hint:    bootstraperr.Hint(err),
		cause:   err,
	}
}

// UsageError marks a command line that could not be parsed.
type UsageError struct {
	cause error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the parse error.
func (e *UsageError) Unwrap() error {
	return e.cause
}

// IsUsageError reports whether err stems from the command line rather than the run.
func IsUsageError(err error) bool {
	var usage *UsageError
	if errors.As(err, &usage) {
		return true
	}

	// Cobra reports these as plain errors.
	message := err.Error()

	return strings.HasPrefix(message, "unknown command ") ||
		strings.HasPrefix(message, "accepts ") ||
		strings.HasPrefix(message, "requires ")
}

// CommandError type.

// CommandError represents a command failure with its printable message.
type CommandError struct {
	message string
	hint    string
	cause   error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message != "":
		if strings.Contains(e.message, e.cause.Error()) {
			return e.message
		}

		return e.message + ": " + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Hint returns the remediation line for the failure, or "".
func (e *CommandError) Hint() string {
	if e == nil {
		return ""
	}

	return e.hint
}

// Unwrap exposes the underlying cause for errors.Is/errors.As consumers.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer implementation.

// DefaultNormalizer cleans up error text before it is shown.
type DefaultNormalizer struct{}

// Normalize trims whitespace, removes redundant "Error:" prefixes, and preserves multi-line usage hints.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")

	first := strings.TrimSpace(lines[0])
	first = strings.TrimPrefix(first, "Error: ")
	lines[0] = first

	return strings.Join(lines, "\n")
}
