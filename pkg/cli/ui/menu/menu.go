// Package menu shows the interactive entry menu.
package menu

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/asciiart"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
)

// Menu asks the user which action to run.
type Menu struct {
	prompter prompt.Prompter
	out      io.Writer
	version  string
}

// New creates a menu printing to out.
func New(prompter prompt.Prompter, out io.Writer, version string) *Menu {
	return &Menu{prompter: prompter, out: out, version: version}
}

// Choose shows the menu until an action is picked. Quitting returns bootstraperr.ErrQuit.
func (m *Menu) Choose(ctx context.Context, _ *v1alpha1.OperatingMode) (v1alpha1.PendingAction, error) {
	asciiart.WriteBanner(m.out, m.version, asciiart.DefaultWidth)

	for {
		m.render()

		answer, err := m.prompter.Ask(ctx, "Choose an option:")
		if err != nil {
			return v1alpha1.PendingAction{}, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "1":
			return v1alpha1.PendingAction{Action: v1alpha1.ActionInstall}, nil
		case "2":
			return v1alpha1.PendingAction{Action: v1alpha1.ActionVerify}, nil
		case "3":
			notify.Titlef(m.out, "📖", "About bacboot")
			_, _ = fmt.Fprintln(m.out, asciiart.About(asciiart.DefaultWidth))
		case "4":
			return v1alpha1.PendingAction{Action: v1alpha1.ActionUninstall}, nil
		case "q":
			return v1alpha1.PendingAction{}, bootstraperr.ErrQuit
		default:
			notify.Warningf(m.out, "invalid option %q", answer)
		}
	}
}

func (m *Menu) render() {
	notify.Titlef(m.out, "🐟", "What would you like to do?")
	_, _ = fmt.Fprint(m.out, "  1) Install Bacalhau\n  2) Verify an installation\n  3) About\n  4) Uninstall tooling\n  q) Quit\n")
}
