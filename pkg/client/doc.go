// Package client wraps the external programs bacboot drives.
//
//   - ansible: ansible-galaxy and ansible-playbook invocations
//   - git: clone, status, fetch and pull of the playbook bundle
//   - netretry: classification of transient transport failures
//   - probe: PATH lookups for required tooling
//
// Every client runs its program through the runner package so tests can
// script the results.
package client
