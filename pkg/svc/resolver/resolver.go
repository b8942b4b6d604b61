// Package resolver turns a requested capability into a RunSpecification and
// writes the version it selects into the bundle's overrides file.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/sirupsen/logrus"
)

// Overrides is the part of the overrides file the resolver writes.
type Overrides interface {
	Path() string
	Pin(version string) error
	ResetToLatest() (bool, error)
}

// Request is what the user asked for, before prompting or defaults.
type Request struct {
	PlaybookKind v1alpha1.PlaybookKind
	// Version is the raw requested version; VersionSet records whether any
	// flag, environment variable or config file supplied it.
	Version    string
	VersionSet bool
	// Inventory names a remote inventory. Empty means no inventory was given.
	Inventory     string
	PrivilegeMode v1alpha1.PrivilegeMode
}

// Options configure inventory validation.
type Options struct {
	// WorkDir anchors relative inventory paths. Empty means the process working directory.
	WorkDir                string
	AllowAbsoluteInventory bool
}

// Resolver resolves run parameters.
type Resolver struct {
	overrides Overrides
	prompter  prompt.Prompter
	out       io.Writer
	logger    logrus.FieldLogger
	opts      Options
}

// New creates a Resolver.
func New(
	overrides Overrides,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	opts Options,
) *Resolver {
	if out == nil {
		out = io.Discard
	}

	return &Resolver{
		overrides: overrides,
		prompter:  prompter,
		out:       out,
		logger:    logging.For(logger, "resolver"),
		opts:      opts,
	}
}

// Resolve builds the RunSpecification for req. It has no side effects on
// disk; Apply writes the overrides once the bundle is ready.
func (r *Resolver) Resolve(
	ctx context.Context,
	req Request,
	mode *v1alpha1.OperatingMode,
) (v1alpha1.RunSpecification, error) {
	spec := v1alpha1.RunSpecification{
		PlaybookKind:  req.PlaybookKind,
		PrivilegeMode: req.PrivilegeMode,
	}

	version, origin, err := prompt.Resolve(ctx, prompt.Source[string]{
		Name:        "target version",
		Value:       req.Version,
		IsSet:       req.VersionSet,
		Interactive: !mode.IsUnattended(),
		Ask: func(ctx context.Context) (string, error) {
			return r.prompter.Ask(ctx, "Which version of Bacalhau should be installed? (blank for latest):")
		},
		Default:    v1alpha1.LatestVersion,
		HasDefault: true,
	})
	if err != nil {
		return spec, err
	}

	spec.TargetVersion = v1alpha1.NormalizeVersion(version)

	r.logger.WithFields(logrus.Fields{
		"version": spec.TargetVersion,
		"origin":  origin,
	}).Debug("target version resolved")

	spec.Target, err = r.resolveTarget(ctx, req, mode)
	if err != nil {
		return spec, err
	}

	notify.Infof(r.out, "%s %s on %s", req.PlaybookKind, DisplayVersion(spec.TargetVersion), spec.Target)

	return spec, nil
}

// Apply records the version of spec in the overrides file. The latest
// sentinel rewrites an existing pin and creates nothing.
func (r *Resolver) Apply(spec v1alpha1.RunSpecification) error {
	if spec.IsLatest() {
		written, err := r.overrides.ResetToLatest()
		if err != nil {
			return fmt.Errorf("failed to reset %s: %w", r.overrides.Path(), err)
		}

		r.logger.WithField("written", written).Debug("overrides reset to latest")

		return nil
	}

	err := r.overrides.Pin(spec.TargetVersion)
	if err != nil {
		return fmt.Errorf("failed to pin version in %s: %w", r.overrides.Path(), err)
	}

	r.logger.WithField("version", spec.TargetVersion).Info("version pinned")

	return nil
}

// DisplayVersion renders version for messages. Semantic versions gain a
// leading v; anything else is shown as given.
func DisplayVersion(version string) string {
	if version == v1alpha1.LatestVersion {
		return "(latest)"
	}

	parsed, err := semver.NewVersion(version)
	if err != nil {
		return version
	}

	return "v" + parsed.String()
}

func (r *Resolver) resolveTarget(
	ctx context.Context,
	req Request,
	mode *v1alpha1.OperatingMode,
) (v1alpha1.Target, error) {
	raw, _, err := prompt.Resolve(ctx, prompt.Source[string]{
		Name:        "target",
		Value:       req.Inventory,
		IsSet:       strings.TrimSpace(req.Inventory) != "",
		Interactive: !mode.IsUnattended() && req.PlaybookKind == v1alpha1.PlaybookNode,
		Ask: func(ctx context.Context) (string, error) {
			return r.prompter.Ask(ctx, "Press ENTER to install on this machine, or enter the path of an inventory for remote nodes:")
		},
		HasDefault: true,
	})
	if err != nil {
		return v1alpha1.Target{}, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return v1alpha1.LocalTarget(), nil
	}

	target, err := r.inventory(raw)
	if err == nil || mode.IsUnattended() {
		return target, err
	}

	notify.Warningf(r.out, "%v", err)

	return prompt.AskUntil(ctx, r.prompter, r.out,
		"Enter the path of an existing inventory (blank to abort):",
		func(answer string) (v1alpha1.Target, error) {
			answer = strings.TrimSpace(answer)
			if answer == "" {
				return v1alpha1.Target{}, fmt.Errorf("%w: no inventory given", bootstraperr.ErrAborted)
			}

			target, err := r.inventory(answer)
			if err != nil {
				return target, fmt.Errorf("%w: %w", prompt.ErrInvalidAnswer, err)
			}

			return target, nil
		})
}

// inventory validates a remote inventory path.
func (r *Resolver) inventory(path string) (v1alpha1.Target, error) {
	if filepath.IsAbs(path) {
		if !r.opts.AllowAbsoluteInventory {
			return v1alpha1.Target{}, fmt.Errorf(
				"%w: absolute path %s requires --allow-absolute-inventory",
				bootstraperr.ErrInventoryNotFound,
				path,
			)
		}

		return v1alpha1.Target{Inventory: path}, nil
	}

	base := r.opts.WorkDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return v1alpha1.Target{}, fmt.Errorf("failed to get working directory: %w", err)
		}

		base = wd
	}

	resolved := filepath.Join(base, path)

	_, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return v1alpha1.Target{}, fmt.Errorf("%w: %s", bootstraperr.ErrInventoryNotFound, resolved)
	}

	if err != nil {
		return v1alpha1.Target{}, fmt.Errorf("%w: %w", bootstraperr.ErrInventoryNotFound, err)
	}

	return v1alpha1.Target{Inventory: resolved}, nil
}
