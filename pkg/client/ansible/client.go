// Package ansible drives ansible-galaxy and ansible-playbook.
package ansible

import (
	"context"

	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
)

const (
	// PlaybookBinary runs playbooks.
	PlaybookBinary = "ansible-playbook"
	// GalaxyBinary installs roles and collections.
	GalaxyBinary = "ansible-galaxy"
)

// PlaybookRun describes one ansible-playbook invocation.
type PlaybookRun struct {
	// Dir is the bundle directory the run starts in.
	Dir string
	// Inventory is passed with -i.
	Inventory string
	// Playbook is the playbook path.
	Playbook string
	// AskBecomePass adds --ask-become-pass.
	AskBecomePass bool
}

// Args returns the command-line arguments for the run. Escalation is always
// requested with --become.
func (r PlaybookRun) Args() []string {
	args := []string{"--become"}
	if r.AskBecomePass {
		args = append(args, "--ask-become-pass")
	}

	return append(args, "-i", r.Inventory, r.Playbook)
}

// Client runs ansible programs attached to the user's terminal.
type Client struct {
	runner runner.CommandRunner
}

// NewClient creates an ansible client.
func NewClient(cmdRunner runner.CommandRunner) *Client {
	return &Client{runner: cmdRunner}
}

// InstallRequirements installs the roles and collections listed in requirementsFile.
func (c *Client) InstallRequirements(ctx context.Context, dir, requirementsFile string) error {
	_, err := c.runner.Run(ctx, runner.Command{
		Name:        GalaxyBinary,
		Args:        []string{"install", "-r", requirementsFile},
		Dir:         dir,
		Interactive: true,
	})

	return err
}

// RunPlaybook runs the playbook and returns once it exits.
func (c *Client) RunPlaybook(ctx context.Context, run PlaybookRun) error {
	_, err := c.runner.Run(ctx, runner.Command{
		Name:        PlaybookBinary,
		Args:        run.Args(),
		Dir:         run.Dir,
		Interactive: true,
	})

	return err
}
