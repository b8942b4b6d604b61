// Package probe answers "is this program installed" the way a shell's which does.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
)

// ErrNotInstalled is returned for programs that cannot be found on PATH.
var ErrNotInstalled = errors.New("not installed")

// Prober looks up programs.
type Prober interface {
	// IsInstalled reports whether name resolves to an executable.
	IsInstalled(name string) bool
	// Require checks every name in parallel, reporting progress to out,
	// and fails with ErrNotInstalled listing the missing ones.
	Require(ctx context.Context, out io.Writer, names ...string) error
}

// PathProber resolves programs against PATH.
type PathProber struct {
	lookPath func(string) (string, error)
}

// NewPathProber returns a Prober backed by exec.LookPath.
func NewPathProber() *PathProber {
	return &PathProber{lookPath: exec.LookPath}
}

// NewPathProberWithLookup returns a Prober backed by lookPath.
func NewPathProberWithLookup(lookPath func(string) (string, error)) *PathProber {
	return &PathProber{lookPath: lookPath}
}

// IsInstalled reports whether name resolves to an executable.
func (p *PathProber) IsInstalled(name string) bool {
	_, err := p.lookPath(name)

	return err == nil
}

// Require checks every name and lists all missing programs in one error.
func (p *PathProber) Require(ctx context.Context, out io.Writer, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	tasks := make([]notify.ProgressTask, 0, len(names))

	for _, name := range names {
		tasks = append(tasks, notify.ProgressTask{
			Name: name,
			Fn: func(context.Context) error {
				if !p.IsInstalled(name) {
					return ErrNotInstalled
				}

				return nil
			},
		})
	}

	err := notify.NewProgressGroup("Checking tooling", "🔎", out).Run(ctx, tasks...)
	if err != nil {
		missing := make([]string, 0, len(names))
		for _, name := range names {
			if !p.IsInstalled(name) {
				missing = append(missing, name)
			}
		}

		return fmt.Errorf("%w: %s", ErrNotInstalled, strings.Join(missing, ", "))
	}

	return nil
}
