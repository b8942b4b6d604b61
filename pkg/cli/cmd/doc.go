// Package cmd provides the command-line interface for bacboot.
//
// The root command shows the interactive menu. Subcommands request a single
// action up front, which is what unattended and silent runs need:
//   - install: fetch the bundle and run the client, node or cloud playbook
//   - verify: check the installed Bacalhau client
//   - uninstall: remove Ansible and pip
package cmd
