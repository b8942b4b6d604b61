// Package svc provides the service layer of bacboot.
//
// This package contains the logic that sits between the CLI commands and the
// external tools they drive.
//
// Subpackages:
//   - bootstraperr: Sentinel errors, recoverability and remediation hints
//   - bundle: Working copy presence, cleanliness and freshness checks
//   - invoker: ansible-galaxy and ansible-playbook runs with privilege handling
//   - privilege: sudo escalation and system package managers
//   - resolver: Version, target and overrides resolution for a run
//   - supervisor: The operating mode state machine with recovery
//   - workflow: Install, verify and uninstall flows
package svc
