package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/client/ansible"
	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/svc/privilege"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/sirupsen/logrus"
)

const (
	ansibleBinary = "ansible"
	pipBinary     = "pip3"
)

// installer choices offered to the user.
const (
	choicePip    = "p"
	choiceSystem = "s"
)

// binaries maps each tooling to the programs that prove it is installed.
//
//nolint:gochecknoglobals // lookup table
var binaries = map[v1alpha1.Tooling][]string{
	v1alpha1.ToolingAnsible: {ansibleBinary, ansible.PlaybookBinary},
	v1alpha1.ToolingPip:     {pipBinary},
}

// Tooling installs and removes the prerequisites of a bundle run.
type Tooling struct {
	prober         probe.Prober
	privileged     privilege.Runner
	prompter       prompt.Prompter
	out            io.Writer
	logger         logrus.FieldLogger
	installAllowed bool
}

// NewTooling creates a Tooling. Unattended runs install missing tooling
// only when installAllowed.
func NewTooling(
	prober probe.Prober,
	privileged privilege.Runner,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	installAllowed bool,
) *Tooling {
	if out == nil {
		out = io.Discard
	}

	return &Tooling{
		prober:         prober,
		privileged:     privileged,
		prompter:       prompter,
		out:            out,
		logger:         logging.For(logger, "tooling"),
		installAllowed: installAllowed,
	}
}

// EnsureAnsible checks for ansible and installs it when the user, or
// --install-tooling, allows it.
func (t *Tooling) EnsureAnsible(ctx context.Context, mode *v1alpha1.OperatingMode) error {
	names := binaries[v1alpha1.ToolingAnsible]

	err := t.prober.Require(ctx, t.out, names...)
	if err == nil {
		return nil
	}

	if mode.IsUnattended() && !t.installAllowed {
		return fmt.Errorf("%w: %w", bootstraperr.ErrToolingMissing, err)
	}

	manager, err := t.chooseManager(ctx, mode, "Ansible is not installed. Install it with (p)ip or the (s)ystem package manager? Anything else aborts:")
	if err != nil {
		return err
	}

	if manager == nil {
		return fmt.Errorf("%w: ansible installation declined", bootstraperr.ErrAborted)
	}

	if manager.Name() == pipBinary {
		err = t.ensurePip(ctx)
		if err != nil {
			return err
		}
	}

	notify.Activityf(t.out, "installing Ansible with %s", manager.Name())

	err = manager.Install(ctx, v1alpha1.ToolingAnsible)
	if err != nil {
		return fmt.Errorf("%w: ansible: %w", bootstraperr.ErrToolingInstallFailed, err)
	}

	if missing := t.missing(v1alpha1.ToolingAnsible); len(missing) > 0 {
		return fmt.Errorf("%w: %s still not found after installing", bootstraperr.ErrToolingInstallFailed, strings.Join(missing, ", "))
	}

	notify.Successf(t.out, "Ansible installed")

	return nil
}

// Remove uninstalls each tooling in toRemove and confirms it is gone.
func (t *Tooling) Remove(ctx context.Context, toRemove []v1alpha1.Tooling, mode *v1alpha1.OperatingMode) error {
	var errs []error

	for _, tooling := range toRemove {
		if len(t.missing(tooling)) == len(binaries[tooling]) {
			notify.Infof(t.out, "%s is not installed", tooling)

			continue
		}

		removed, err := t.remove(ctx, tooling, mode)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if !removed {
			continue
		}

		if present := t.present(tooling); len(present) > 0 {
			errs = append(errs, fmt.Errorf(
				"%w: %s still found after removal: %s",
				bootstraperr.ErrToolingInstallFailed,
				tooling,
				strings.Join(present, ", "),
			))

			continue
		}

		notify.Successf(t.out, "%s removed", tooling)
	}

	return errors.Join(errs...)
}

// remove reports false when the user chose to keep tooling.
func (t *Tooling) remove(ctx context.Context, tooling v1alpha1.Tooling, mode *v1alpha1.OperatingMode) (bool, error) {
	var (
		manager privilege.PackageManager
		err     error
	)

	if tooling == v1alpha1.ToolingPip {
		manager, err = privilege.SystemManager(t.prober, t.privileged)
	} else {
		manager, err = t.chooseManager(ctx, mode,
			fmt.Sprintf("Remove %s with (p)ip or the (s)ystem package manager? Anything else keeps it:", tooling))
		if manager == nil && err == nil {
			notify.Infof(t.out, "keeping %s", tooling)

			return false, nil
		}
	}

	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", bootstraperr.ErrToolingInstallFailed, tooling, err)
	}

	notify.Activityf(t.out, "removing %s with %s", tooling, manager.Name())

	err = manager.Remove(ctx, tooling)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", bootstraperr.ErrToolingInstallFailed, tooling, err)
	}

	t.logger.WithField("tooling", tooling).Info("tooling removed")

	return true, nil
}

// chooseManager asks interactive users which manager to use and picks the
// system manager, falling back to pip, when unattended. A nil manager
// with a nil error means the user declined.
func (t *Tooling) chooseManager(
	ctx context.Context,
	mode *v1alpha1.OperatingMode,
	question string,
) (privilege.PackageManager, error) {
	if mode.IsUnattended() {
		manager, err := privilege.SystemManager(t.prober, t.privileged)
		if errors.Is(err, privilege.ErrNoPackageManager) {
			return privilege.NewPip(t.privileged), nil
		}

		return manager, err
	}

	answer, err := t.prompter.Ask(ctx, question)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case choicePip:
		return privilege.NewPip(t.privileged), nil
	case choiceSystem:
		return privilege.SystemManager(t.prober, t.privileged)
	default:
		return nil, nil //nolint:nilnil // declined
	}
}

// ensurePip installs pip with the system package manager when missing.
func (t *Tooling) ensurePip(ctx context.Context) error {
	if t.prober.IsInstalled(pipBinary) {
		return nil
	}

	manager, err := privilege.SystemManager(t.prober, t.privileged)
	if err != nil {
		return fmt.Errorf("%w: pip: %w", bootstraperr.ErrToolingInstallFailed, err)
	}

	notify.Activityf(t.out, "installing pip with %s", manager.Name())

	err = manager.Install(ctx, v1alpha1.ToolingPip)
	if err != nil {
		return fmt.Errorf("%w: pip: %w", bootstraperr.ErrToolingInstallFailed, err)
	}

	return nil
}

func (t *Tooling) missing(tooling v1alpha1.Tooling) []string {
	var missing []string

	for _, name := range binaries[tooling] {
		if !t.prober.IsInstalled(name) {
			missing = append(missing, name)
		}
	}

	return missing
}

func (t *Tooling) present(tooling v1alpha1.Tooling) []string {
	var present []string

	for _, name := range binaries[tooling] {
		if t.prober.IsInstalled(name) {
			present = append(present, name)
		}
	}

	return present
}
