package v1alpha1

import "errors"

// ErrInvalidInteractivity is returned when an invalid interactivity level is specified.
var ErrInvalidInteractivity = errors.New("invalid interactivity")

// ErrInvalidAction is returned when an invalid action is specified.
var ErrInvalidAction = errors.New("invalid action")

// ErrInvalidPlaybookKind is returned when an invalid playbook kind is specified.
var ErrInvalidPlaybookKind = errors.New("invalid playbook kind")

// ErrInvalidPrivilegeMode is returned when an invalid privilege mode is specified.
var ErrInvalidPrivilegeMode = errors.New("invalid privilege mode")

// ErrInvalidTooling is returned when an unknown removable tool is specified.
var ErrInvalidTooling = errors.New("invalid tooling")

// ErrBundlePathRequired is returned when the working copy path is empty.
var ErrBundlePathRequired = errors.New("bundle path is required")

// ErrBundleRepositoryRequired is returned when the bundle repository is empty.
var ErrBundleRepositoryRequired = errors.New("bundle repository is required")

// ErrNegativeDuration is returned when a configured wait is negative.
var ErrNegativeDuration = errors.New("duration must not be negative")

// ErrNoActionSpecified is returned when an unattended run has no pending action.
var ErrNoActionSpecified = errors.New("no action specified for unattended run")

// ErrSilentBecomePass is returned when silent mode is combined with a privilege
// mode that prompts for the escalation password.
var ErrSilentBecomePass = errors.New("silent mode cannot prompt for the become password")
