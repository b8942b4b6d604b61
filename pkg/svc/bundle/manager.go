// Package bundle owns the local working copy of the automation bundle.
//
// A run may only use a copy that is present and free of local
// modifications. A copy behind its upstream is updated, or used stale
// with the user's explicit consent. Local modifications are never
// resolved automatically.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/client/git"
	"github.com/bacalhau-project/bacboot/pkg/client/netretry"
	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/siderolabs/go-retry/retry"
	"github.com/sirupsen/logrus"
)

// AnswerRunCurrent is the answer that runs a stale copy without updating it.
const AnswerRunCurrent = "current"

// VersionControl is the subset of git the manager needs.
type VersionControl interface {
	Clone(ctx context.Context, repository, dir string) error
	ModifiedFiles(ctx context.Context, dir string) ([]string, error)
	Fetch(ctx context.Context, dir string) error
	CommitsBehind(ctx context.Context, dir string) (int, error)
	Pull(ctx context.Context, dir string) error
}

// Options locate the working copy and bound transient retries.
type Options struct {
	Path          string
	Repository    string
	RetryWindow   time.Duration
	RetryInterval time.Duration
}

// Manager ensures the working copy is trustworthy before a run.
type Manager struct {
	vcs      VersionControl
	prober   probe.Prober
	prompter prompt.Prompter
	out      io.Writer
	logger   logrus.FieldLogger
	opts     Options
}

// NewManager creates a Manager. Notifications go to out.
func NewManager(
	vcs VersionControl,
	prober probe.Prober,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	opts Options,
) *Manager {
	if out == nil {
		out = io.Discard
	}

	return &Manager{
		vcs:      vcs,
		prober:   prober,
		prompter: prompter,
		out:      out,
		logger:   logging.For(logger, "bundle").WithField("path", opts.Path),
		opts:     opts,
	}
}

// Path returns the working copy location.
func (m *Manager) Path() string {
	return m.opts.Path
}

// EnsureBundle makes the working copy runnable or explains why it cannot be.
// On success the returned state satisfies Runnable, with consent implied
// when the state is Behind.
func (m *Manager) EnsureBundle(ctx context.Context, mode *v1alpha1.OperatingMode) (v1alpha1.WorkingCopyState, error) {
	state := v1alpha1.WorkingCopyState{
		Cleanliness: v1alpha1.CleanlinessUnknown,
		Freshness:   v1alpha1.FreshnessUnknown,
	}

	if !m.prober.IsInstalled(git.Binary) {
		return state, fmt.Errorf("%w: %s", bootstraperr.ErrToolingMissing, git.Binary)
	}

	present, err := m.present()
	if err != nil {
		return state, err
	}

	if !present {
		state.Presence = v1alpha1.PresenceAbsent

		return m.fetch(ctx, state)
	}

	state.Presence = v1alpha1.PresencePresent

	state.Cleanliness, err = m.cleanliness(ctx)
	if err != nil {
		return state, err
	}

	state.Freshness, err = m.freshness(ctx)
	if err != nil {
		return state, err
	}

	if state.Freshness == v1alpha1.FreshnessCurrent {
		notify.Successf(m.out, "bundle is up to date")

		return state, nil
	}

	update, err := m.decideUpdate(ctx, mode)
	if err != nil {
		return state, err
	}

	if !update {
		notify.Warningf(m.out, "running the bundle without updating it")

		return state, nil
	}

	return m.update(ctx, state)
}

func (m *Manager) present() (bool, error) {
	info, err := os.Stat(m.opts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("%w: %w", bootstraperr.ErrBundleCheckFailed, err)
	}

	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s is not a directory", bootstraperr.ErrBundleCheckFailed, m.opts.Path)
	}

	entries, err := os.ReadDir(m.opts.Path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", bootstraperr.ErrBundleCheckFailed, err)
	}

	return len(entries) > 0, nil
}

func (m *Manager) fetch(ctx context.Context, state v1alpha1.WorkingCopyState) (v1alpha1.WorkingCopyState, error) {
	notify.Activityf(m.out, "cloning %s into %s", m.opts.Repository, m.opts.Path)

	err := m.withRetry(ctx, func(ctx context.Context) error {
		return m.vcs.Clone(ctx, m.opts.Repository, m.opts.Path)
	})
	if err != nil {
		return state, fmt.Errorf("%w: %w", bootstraperr.ErrFetchFailed, err)
	}

	m.logger.Info("bundle cloned")
	notify.Successf(m.out, "bundle fetched")

	return v1alpha1.FreshCloneState(), nil
}

func (m *Manager) cleanliness(ctx context.Context) (v1alpha1.Cleanliness, error) {
	modified, err := m.vcs.ModifiedFiles(ctx, m.opts.Path)
	if err != nil {
		return v1alpha1.CleanlinessUnknown, fmt.Errorf("%w: %w", bootstraperr.ErrBundleCheckFailed, err)
	}

	if len(modified) > 0 {
		m.logger.WithField("modified", modified).Warn("working copy has local modifications")

		return v1alpha1.CleanlinessDirty, fmt.Errorf(
			"%w: %s\n%s",
			bootstraperr.ErrUntrustedCopy,
			m.opts.Path,
			strings.Join(modified, "\n"),
		)
	}

	return v1alpha1.CleanlinessClean, nil
}

func (m *Manager) freshness(ctx context.Context) (v1alpha1.Freshness, error) {
	notify.Activityf(m.out, "checking for bundle updates")

	err := m.withRetry(ctx, func(ctx context.Context) error {
		return m.vcs.Fetch(ctx, m.opts.Path)
	})
	if err != nil {
		return v1alpha1.FreshnessUnknown, fmt.Errorf("%w: fetching upstream: %w", bootstraperr.ErrBundleCheckFailed, err)
	}

	behind, err := m.vcs.CommitsBehind(ctx, m.opts.Path)
	if err != nil {
		return v1alpha1.FreshnessUnknown, fmt.Errorf("%w: comparing with upstream: %w", bootstraperr.ErrBundleCheckFailed, err)
	}

	m.logger.WithField("behind", behind).Debug("freshness checked")

	if behind > 0 {
		notify.Warningf(m.out, "bundle is %d commit(s) behind upstream", behind)

		return v1alpha1.FreshnessBehind, nil
	}

	return v1alpha1.FreshnessCurrent, nil
}

// decideUpdate reports whether a stale copy should be updated.
func (m *Manager) decideUpdate(ctx context.Context, mode *v1alpha1.OperatingMode) (bool, error) {
	if mode.IsUnattended() {
		return true, nil
	}

	answer, err := m.prompter.Ask(ctx,
		"Press ENTER to update the bundle, type 'current' to run the current version, or anything else to abort:")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return true, nil
	case AnswerRunCurrent:
		return false, nil
	default:
		return false, fmt.Errorf("%w: bundle update declined", bootstraperr.ErrAborted)
	}
}

func (m *Manager) update(ctx context.Context, state v1alpha1.WorkingCopyState) (v1alpha1.WorkingCopyState, error) {
	notify.Activityf(m.out, "updating bundle")

	err := m.withRetry(ctx, func(ctx context.Context) error {
		return m.vcs.Pull(ctx, m.opts.Path)
	})
	if err != nil {
		return state, fmt.Errorf("%w: %w", bootstraperr.ErrUpdateFailed, err)
	}

	state.Cleanliness, err = m.cleanliness(ctx)
	if err != nil {
		return state, err
	}

	state.Freshness = v1alpha1.FreshnessCurrent

	m.logger.Info("bundle updated")
	notify.Successf(m.out, "bundle updated")

	return state, nil
}

// withRetry retries op while it fails with transient transport errors,
// returning op's last error.
func (m *Manager) withRetry(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	err := retry.Constant(m.opts.RetryWindow, retry.WithUnits(m.opts.RetryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			lastErr = op(ctx)
			if lastErr != nil && netretry.IsRetryable(lastErr) {
				m.logger.WithError(lastErr).Debug("transient failure, retrying")

				return retry.ExpectedError(lastErr)
			}

			return lastErr
		})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}

	if lastErr != nil {
		return lastErr
	}

	return fmt.Errorf("retry: %w", err)
}
