// Package bootstraperr defines the failure kinds of a bootstrap run and
// decides which of them the supervisor may recover from.
package bootstraperr

import (
	"context"
	"errors"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
)

// ErrToolingMissing is returned when a required external program is not installed.
var ErrToolingMissing = errors.New("required tooling is missing")

// ErrFetchFailed is returned when the bundle could not be cloned.
var ErrFetchFailed = errors.New("failed to fetch bundle")

// ErrUntrustedCopy is returned when the working copy has local modifications.
var ErrUntrustedCopy = errors.New("bundle working copy has local modifications")

// ErrUpdateFailed is returned when a stale working copy could not be updated.
var ErrUpdateFailed = errors.New("failed to update bundle")

// ErrBundleCheckFailed is returned when the working copy could not be inspected.
var ErrBundleCheckFailed = errors.New("failed to inspect bundle")

// ErrInventoryNotFound is returned when a remote inventory path does not exist.
var ErrInventoryNotFound = errors.New("inventory not found")

// ErrDependencyInstallFailed is returned when the bundle's automation dependencies failed to install.
var ErrDependencyInstallFailed = errors.New("failed to install bundle dependencies")

// ErrExecutionFailed is returned when the playbook run exits non-zero.
var ErrExecutionFailed = errors.New("playbook run failed")

// ErrNoActionSpecified is returned when an unattended run has nothing to do.
var ErrNoActionSpecified = v1alpha1.ErrNoActionSpecified

// ErrAborted is returned when the user declines to continue.
var ErrAborted = errors.New("aborted by user")

// ErrQuit is returned when the user quits from the menu.
var ErrQuit = errors.New("quit")

// ErrVerificationFailed is returned when the installed workload cannot be verified.
var ErrVerificationFailed = errors.New("verification failed")

// ErrToolingInstallFailed is returned when installing or removing tooling fails.
var ErrToolingInstallFailed = errors.New("failed to change tooling")

// IsUnrecoverable reports whether err must end the program regardless of mode.
func IsUnrecoverable(err error) bool {
	return errors.Is(err, ErrUntrustedCopy) ||
		errors.Is(err, ErrNoActionSpecified) ||
		errors.Is(err, context.Canceled)
}

// Hint returns a remediation line for err, or "" when none applies.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUntrustedCopy):
		return "inspect the working copy with 'git status', then commit, stash or remove it"
	case errors.Is(err, ErrToolingMissing):
		return "install the missing tooling or re-run with --install-tooling"
	case errors.Is(err, ErrNoActionSpecified):
		return "pass an action such as 'bacboot install' when running unattended"
	case errors.Is(err, ErrInventoryNotFound):
		return "pass an existing inventory path, or --allow-absolute-inventory for absolute paths"
	default:
		return ""
	}
}
