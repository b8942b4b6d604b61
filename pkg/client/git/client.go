// Package git drives the git command line for the bundle working copy.
package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
)

// Binary is the program name of git.
const Binary = "git"

// ErrUnexpectedOutput is returned when git prints something that cannot be parsed.
var ErrUnexpectedOutput = errors.New("unexpected git output")

// Client runs git subcommands through a CommandRunner.
type Client struct {
	runner runner.CommandRunner
}

// NewClient creates a git client.
func NewClient(cmdRunner runner.CommandRunner) *Client {
	return &Client{runner: cmdRunner}
}

// Clone clones repository into dir.
func (c *Client) Clone(ctx context.Context, repository, dir string) error {
	_, err := c.run(ctx, "", "clone", "--quiet", repository, dir)

	return err
}

// ModifiedFiles returns the porcelain status lines of modified tracked files.
// Untracked files are ignored.
func (c *Client) ModifiedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := c.run(ctx, dir, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return nil, err
	}

	var lines []string

	for line := range strings.SplitSeq(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

// Fetch updates remote-tracking refs.
func (c *Client) Fetch(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "fetch", "--quiet")

	return err
}

// CommitsBehind counts upstream commits missing from HEAD.
func (c *Client) CommitsBehind(ctx context.Context, dir string) (int, error) {
	out, err := c.run(ctx, dir, "rev-list", "--count", "HEAD..@{u}")
	if err != nil {
		return 0, err
	}

	count, convErr := strconv.Atoi(strings.TrimSpace(out))
	if convErr != nil {
		return 0, fmt.Errorf("%w: rev-list printed %q", ErrUnexpectedOutput, strings.TrimSpace(out))
	}

	return count, nil
}

// Pull fast-forwards the checked-out branch to its upstream.
func (c *Client) Pull(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "pull", "--quiet", "--ff-only")

	return err
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}

	res, err := c.runner.Run(ctx, runner.Command{Name: Binary, Args: args})
	if err != nil {
		if output := res.Output(); output != "" {
			return res.Stdout, fmt.Errorf("%w: %s", err, output)
		}

		return res.Stdout, err
	}

	return res.Stdout, nil
}
