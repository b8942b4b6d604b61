// Package workflow implements the install, verify and uninstall flows the
// supervisor dispatches to.
package workflow

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/svc/resolver"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/sirupsen/logrus"
)

// BundleEnsurer prepares a trustworthy working copy.
type BundleEnsurer interface {
	EnsureBundle(ctx context.Context, mode *v1alpha1.OperatingMode) (v1alpha1.WorkingCopyState, error)
}

// ParameterResolver turns a request into a RunSpecification.
type ParameterResolver interface {
	Resolve(ctx context.Context, req resolver.Request, mode *v1alpha1.OperatingMode) (v1alpha1.RunSpecification, error)
	Apply(spec v1alpha1.RunSpecification) error
}

// PlaybookInvoker runs a RunSpecification.
type PlaybookInvoker interface {
	Run(ctx context.Context, spec v1alpha1.RunSpecification, mode *v1alpha1.OperatingMode) error
}

// ToolingManager installs and removes prerequisites.
type ToolingManager interface {
	EnsureAnsible(ctx context.Context, mode *v1alpha1.OperatingMode) error
	Remove(ctx context.Context, toRemove []v1alpha1.Tooling, mode *v1alpha1.OperatingMode) error
}

// WorkloadVerifier checks an installation.
type WorkloadVerifier interface {
	Verify(ctx context.Context) error
}

// Dependencies are the components the flows drive.
type Dependencies struct {
	Bundle   BundleEnsurer
	Resolver ParameterResolver
	Invoker  PlaybookInvoker
	Tooling  ToolingManager
	Verifier WorkloadVerifier
}

// Settings carry the run parameters supplied by flags, environment or config.
type Settings struct {
	Version       string
	VersionSet    bool
	Inventory     string
	PrivilegeMode v1alpha1.PrivilegeMode
	RemoveTooling []v1alpha1.Tooling
}

// Flows dispatches actions to their flow.
type Flows struct {
	deps     Dependencies
	prompter prompt.Prompter
	out      io.Writer
	logger   logrus.FieldLogger
	settings Settings
}

// New creates the flows.
func New(
	deps Dependencies,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	settings Settings,
) *Flows {
	if out == nil {
		out = io.Discard
	}

	return &Flows{
		deps:     deps,
		prompter: prompter,
		out:      out,
		logger:   logging.For(logger, "workflow"),
		settings: settings,
	}
}

// Run executes the flow for action.
func (f *Flows) Run(ctx context.Context, action v1alpha1.PendingAction, mode *v1alpha1.OperatingMode) error {
	f.logger.WithField("action", action.Action).Debug("dispatching")

	switch action.Action {
	case v1alpha1.ActionInstall:
		return f.Install(ctx, action.Playbooks, mode)
	case v1alpha1.ActionVerify:
		return f.Verify(ctx)
	case v1alpha1.ActionUninstall:
		return f.Uninstall(ctx, mode)
	default:
		return fmt.Errorf("%w: %q", v1alpha1.ErrInvalidAction, action.Action)
	}
}

// Install runs the requested playbooks one after another. Each run
// re-validates the working copy before touching the overrides file.
func (f *Flows) Install(ctx context.Context, playbooks []v1alpha1.PlaybookKind, mode *v1alpha1.OperatingMode) error {
	kinds, _, err := prompt.Resolve(ctx, prompt.Source[[]v1alpha1.PlaybookKind]{
		Name:        "playbooks",
		Value:       playbooks,
		IsSet:       len(playbooks) > 0,
		Interactive: !mode.IsUnattended(),
		Ask:         f.askPlaybooks,
		Default:     []v1alpha1.PlaybookKind{v1alpha1.PlaybookClient},
		HasDefault:  true,
	})
	if err != nil {
		return err
	}

	notify.Titlef(f.out, "🚀", "Installing Bacalhau")

	err = f.deps.Tooling.EnsureAnsible(ctx, mode)
	if err != nil {
		return err
	}

	req := resolver.Request{
		Version:       f.settings.Version,
		VersionSet:    f.settings.VersionSet,
		Inventory:     f.settings.Inventory,
		PrivilegeMode: f.settings.PrivilegeMode,
	}

	for _, kind := range kinds {
		req.PlaybookKind = kind

		spec, err := f.install(ctx, req, mode)
		if err != nil {
			return err
		}

		// later playbooks reuse the version chosen for the first
		req.Version, req.VersionSet = spec.TargetVersion, true
	}

	if slices.Contains(kinds, v1alpha1.PlaybookClient) {
		return f.Verify(ctx)
	}

	return nil
}

func (f *Flows) install(
	ctx context.Context,
	req resolver.Request,
	mode *v1alpha1.OperatingMode,
) (v1alpha1.RunSpecification, error) {
	spec, err := f.deps.Resolver.Resolve(ctx, req, mode)
	if err != nil {
		return spec, err
	}

	state, err := f.deps.Bundle.EnsureBundle(ctx, mode)
	if err != nil {
		return spec, err
	}

	if !state.Runnable(true) {
		return spec, fmt.Errorf("%w: working copy is %s/%s/%s",
			bootstraperr.ErrBundleCheckFailed, state.Presence, state.Cleanliness, state.Freshness)
	}

	err = f.deps.Resolver.Apply(spec)
	if err != nil {
		return spec, err
	}

	err = f.deps.Invoker.Run(ctx, spec, mode)
	if err != nil {
		return spec, err
	}

	return spec, nil
}

// Verify checks the installed workload.
func (f *Flows) Verify(ctx context.Context) error {
	return f.deps.Verifier.Verify(ctx)
}

// Uninstall removes the tooling named in Settings, or the tooling the user picks.
func (f *Flows) Uninstall(ctx context.Context, mode *v1alpha1.OperatingMode) error {
	notify.Titlef(f.out, "🧹", "Uninstalling tooling")

	toRemove := slices.Clone(f.settings.RemoveTooling)

	if len(toRemove) == 0 && !mode.IsUnattended() {
		for _, tooling := range v1alpha1.ValidToolings() {
			remove, err := f.confirm(ctx, fmt.Sprintf("Remove %s? [y/N]:", tooling))
			if err != nil {
				return err
			}

			if remove {
				toRemove = append(toRemove, tooling)
			}
		}
	}

	if len(toRemove) == 0 {
		notify.Infof(f.out, "nothing to remove")

		return nil
	}

	// ansible may be removed with pip, so pip goes last
	slices.SortStableFunc(toRemove, func(a, b v1alpha1.Tooling) int {
		return slices.Index(v1alpha1.ValidToolings(), a) - slices.Index(v1alpha1.ValidToolings(), b)
	})

	return f.deps.Tooling.Remove(ctx, toRemove, mode)
}

func (f *Flows) askPlaybooks(ctx context.Context) ([]v1alpha1.PlaybookKind, error) {
	return prompt.AskUntil(ctx, f.prompter, f.out,
		"Install (1) the Bacalhau client, (2) a Bacalhau node, or (3) both? [1-3, q to abort]:",
		func(answer string) ([]v1alpha1.PlaybookKind, error) {
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "1":
				return []v1alpha1.PlaybookKind{v1alpha1.PlaybookClient}, nil
			case "2":
				return []v1alpha1.PlaybookKind{v1alpha1.PlaybookNode}, nil
			case "3":
				return []v1alpha1.PlaybookKind{v1alpha1.PlaybookClient, v1alpha1.PlaybookNode}, nil
			case "q":
				return nil, fmt.Errorf("%w: no playbook chosen", bootstraperr.ErrAborted)
			default:
				return nil, fmt.Errorf("%w: choose 1, 2, 3 or q", prompt.ErrInvalidAnswer)
			}
		})
}

func (f *Flows) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := f.prompter.Ask(ctx, question)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
