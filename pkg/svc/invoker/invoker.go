// Package invoker runs a resolved RunSpecification with ansible.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/client/ansible"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/sirupsen/logrus"
)

// Playbooks runs the automation tooling.
type Playbooks interface {
	InstallRequirements(ctx context.Context, dir, requirementsFile string) error
	RunPlaybook(ctx context.Context, run ansible.PlaybookRun) error
}

// Options locate files inside the working copy and set the settle delay.
type Options struct {
	BundlePath       string
	RequirementsFile string
	InventoryFile    string
	SettleDelay      time.Duration
}

// Invoker runs playbooks with the right dependencies and escalation flags.
type Invoker struct {
	playbooks Playbooks
	prompter  prompt.Prompter
	out       io.Writer
	logger    logrus.FieldLogger
	opts      Options
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option customizes an Invoker.
type Option func(*Invoker)

// WithSleep replaces the settle wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(i *Invoker) {
		i.sleep = sleep
	}
}

// New creates an Invoker.
func New(
	playbooks Playbooks,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	opts Options,
	options ...Option,
) *Invoker {
	if out == nil {
		out = io.Discard
	}

	invoker := &Invoker{
		playbooks: playbooks,
		prompter:  prompter,
		out:       out,
		logger:    logging.For(logger, "invoker"),
		opts:      opts,
		sleep:     sleepContext,
	}

	for _, option := range options {
		option(invoker)
	}

	return invoker
}

// Run executes spec and, on success, waits for the user's confirmation or
// the settle delay.
func (i *Invoker) Run(ctx context.Context, spec v1alpha1.RunSpecification, mode *v1alpha1.OperatingMode) error {
	if spec.PlaybookKind.RequiresDependencies() {
		err := i.installDependencies(ctx)
		if err != nil {
			return err
		}
	}

	privilege, err := i.ResolvePrivilege(ctx, spec.PrivilegeMode, mode)
	if err != nil {
		return err
	}

	run := ansible.PlaybookRun{
		Dir:           i.opts.BundlePath,
		Inventory:     i.inventory(spec.Target),
		Playbook:      filepath.Join(i.opts.BundlePath, spec.PlaybookKind.PlaybookFile()),
		AskBecomePass: privilege == v1alpha1.PrivilegeAskBecomePass,
	}

	i.logger.WithFields(logrus.Fields{
		"playbook":  run.Playbook,
		"inventory": run.Inventory,
		"privilege": privilege,
	}).Info("running playbook")
	notify.Activityf(i.out, "running %s against %s", spec.PlaybookKind.PlaybookFile(), spec.Target)

	err = i.playbooks.RunPlaybook(ctx, run)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", bootstraperr.ErrExecutionFailed, spec.PlaybookKind.PlaybookFile(), err)
	}

	notify.Successf(i.out, "%s playbook finished", spec.PlaybookKind)

	return i.settle(ctx, mode)
}

// ResolvePrivilege returns the escalation mode for a run: the configured
// mode, else the user's answer, else NoAsk when unattended.
func (i *Invoker) ResolvePrivilege(
	ctx context.Context,
	configured v1alpha1.PrivilegeMode,
	mode *v1alpha1.OperatingMode,
) (v1alpha1.PrivilegeMode, error) {
	value, origin, err := prompt.Resolve(ctx, prompt.Source[v1alpha1.PrivilegeMode]{
		Name:        "privilege mode",
		Value:       configured,
		IsSet:       configured.IsSet(),
		Interactive: !mode.IsUnattended(),
		Ask:         i.askPrivilege,
		Default:     v1alpha1.PrivilegeNoAsk,
		HasDefault:  true,
	})
	if err != nil {
		return "", err
	}

	entry := i.logger.WithFields(logrus.Fields{"privilege": value, "origin": origin})

	if mode.IsSilent() && value == v1alpha1.PrivilegeAskBecomePass {
		entry.Warn("silent runs cannot prompt for the become password, running without the prompt")

		return v1alpha1.PrivilegeNoAsk, nil
	}

	if origin == prompt.OriginDefault {
		entry.Warn("no privilege mode given, running without an escalation password prompt")
	} else {
		entry.Debug("privilege mode resolved")
	}

	return value, nil
}

func (i *Invoker) askPrivilege(ctx context.Context) (v1alpha1.PrivilegeMode, error) {
	return prompt.AskUntil(ctx, i.prompter, i.out,
		"Can the target run sudo without a password? [y/n, q to abort]:",
		func(answer string) (v1alpha1.PrivilegeMode, error) {
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes":
				return v1alpha1.PrivilegeNoAsk, nil
			case "n", "no":
				return v1alpha1.PrivilegeAskBecomePass, nil
			case "q":
				return "", fmt.Errorf("%w: privilege mode not chosen", bootstraperr.ErrAborted)
			default:
				return "", fmt.Errorf("%w: please answer y, n or q", prompt.ErrInvalidAnswer)
			}
		})
}

func (i *Invoker) installDependencies(ctx context.Context) error {
	if i.opts.RequirementsFile == "" {
		return nil
	}

	requirements := filepath.Join(i.opts.BundlePath, i.opts.RequirementsFile)

	_, err := os.Stat(requirements)
	if errors.Is(err, fs.ErrNotExist) {
		i.logger.WithField("requirements", requirements).Debug("bundle declares no dependencies")

		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: %w", bootstraperr.ErrDependencyInstallFailed, err)
	}

	notify.Activityf(i.out, "installing bundle dependencies")

	err = i.playbooks.InstallRequirements(ctx, i.opts.BundlePath, i.opts.RequirementsFile)
	if err != nil {
		return fmt.Errorf("%w: %w", bootstraperr.ErrDependencyInstallFailed, err)
	}

	return nil
}

func (i *Invoker) inventory(target v1alpha1.Target) string {
	if target.Local {
		return filepath.Join(i.opts.BundlePath, i.opts.InventoryFile)
	}

	return target.Inventory
}

func (i *Invoker) settle(ctx context.Context, mode *v1alpha1.OperatingMode) error {
	if mode.IsUnattended() {
		return i.sleep(ctx, i.opts.SettleDelay)
	}

	answer, err := i.prompter.Ask(ctx, "Press ENTER to continue, or type anything to return to the menu:")
	if err != nil {
		return err
	}

	if strings.TrimSpace(answer) != "" {
		return fmt.Errorf("%w: returning to the menu", bootstraperr.ErrAborted)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
