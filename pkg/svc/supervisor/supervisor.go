// Package supervisor drives a bacboot invocation from entry to exit.
//
// The supervisor is a small state machine:
//
//	Entry -> Dispatch -> Running -> Done
//	                        |
//	                        +-> Recovering -> Entry
//	                        +-> FatalExit
//
// Recovery announces the error, waits a bounded time for a keypress and
// re-enters Entry with HasReloopedOnce set. Silent runs, unrecoverable
// errors and a second failure of an unattended run exit instead.
package supervisor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	"github.com/sirupsen/logrus"
)

// State is a supervisor state.
type State string

const (
	// StateEntry picks the next action from pending actions or the menu.
	StateEntry State = "Entry"
	// StateDispatch hands the action to its flow.
	StateDispatch State = "Dispatch"
	// StateRunning means a flow is in progress.
	StateRunning State = "Running"
	// StateRecovering announces a failure and pauses before re-entry.
	StateRecovering State = "Recovering"
	// StateDone ends the run successfully.
	StateDone State = "Done"
	// StateFatalExit ends the run with an error.
	StateFatalExit State = "FatalExit"
)

// Flow runs one action.
type Flow interface {
	Run(ctx context.Context, action v1alpha1.PendingAction, mode *v1alpha1.OperatingMode) error
}

// Menu asks the user for an action.
type Menu interface {
	Choose(ctx context.Context, mode *v1alpha1.OperatingMode) (v1alpha1.PendingAction, error)
}

// Options tune recovery.
type Options struct {
	RecoveryTimeout time.Duration
	// Timer, when set, is reported on success.
	Timer timer.Timer
	// Observer, when set, sees every transition.
	Observer func(from, to State)
}

// Supervisor owns the OperatingMode of one invocation.
type Supervisor struct {
	flow     Flow
	menu     Menu
	prompter prompt.Prompter
	out      io.Writer
	logger   logrus.FieldLogger
	opts     Options

	state   State
	action  v1alpha1.PendingAction
	pending bool
	err     error
}

// New creates a Supervisor.
func New(
	flow Flow,
	menu Menu,
	prompter prompt.Prompter,
	out io.Writer,
	logger logrus.FieldLogger,
	opts Options,
) *Supervisor {
	if out == nil {
		out = io.Discard
	}

	return &Supervisor{
		flow:     flow,
		menu:     menu,
		prompter: prompter,
		out:      out,
		logger:   logging.For(logger, "supervisor"),
		opts:     opts,
	}
}

// Run drives mode to Done or FatalExit. It returns nil for Done and the
// classified error for FatalExit; an explicit quit returns bootstraperr.ErrQuit.
func (s *Supervisor) Run(ctx context.Context, mode *v1alpha1.OperatingMode) error {
	if s.opts.Timer != nil {
		s.opts.Timer.Start()
	}

	s.state = StateEntry

	for {
		switch s.state {
		case StateEntry:
			s.entry(ctx, mode)
		case StateDispatch:
			s.transition(StateRunning)
		case StateRunning:
			s.running(ctx, mode)
		case StateRecovering:
			s.recovering(ctx, mode)
		case StateDone:
			s.done()

			return nil
		case StateFatalExit:
			s.logger.WithError(s.err).Debug("fatal exit")

			return s.err
		}
	}
}

func (s *Supervisor) entry(ctx context.Context, mode *v1alpha1.OperatingMode) {
	err := mode.Validate()
	if err != nil {
		s.fail(err)

		return
	}

	if mode.HasPending() && (mode.IsUnattended() || !mode.HasReloopedOnce) {
		s.action = mode.PendingActions[0]
		s.pending = true
		s.transition(StateDispatch)

		return
	}

	action, err := s.menu.Choose(ctx, mode)
	if err != nil {
		s.fail(err)

		return
	}

	s.action = action
	s.pending = false
	s.transition(StateDispatch)
}

func (s *Supervisor) running(ctx context.Context, mode *v1alpha1.OperatingMode) {
	if s.opts.Timer != nil {
		s.opts.Timer.NewStage()
	}

	s.logger.WithField("action", s.action.Action).Info("running action")

	err := s.flow.Run(ctx, s.action, mode)
	if err == nil {
		s.completed(mode)

		return
	}

	s.err = err

	if s.isFatal(err, mode) {
		s.transition(StateFatalExit)

		return
	}

	s.transition(StateRecovering)
}

// completed moves past a successful action; remaining pending actions run next.
func (s *Supervisor) completed(mode *v1alpha1.OperatingMode) {
	if s.pending {
		mode.PendingActions = mode.PendingActions[1:]

		if len(mode.PendingActions) > 0 {
			s.transition(StateEntry)

			return
		}
	}

	s.transition(StateDone)
}

func (s *Supervisor) isFatal(err error, mode *v1alpha1.OperatingMode) bool {
	switch {
	case mode.IsSilent():
		return true
	case bootstraperr.IsUnrecoverable(err):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case mode.IsUnattended() && mode.HasReloopedOnce:
		return true
	default:
		return false
	}
}

func (s *Supervisor) recovering(ctx context.Context, mode *v1alpha1.OperatingMode) {
	notify.Errorf(s.out, "%v", s.err)

	if hint := bootstraperr.Hint(s.err); hint != "" {
		notify.Infof(s.out, "%s", hint)
	}

	notify.Warningf(s.out, "returning to the start in %s, press any key to continue now", s.opts.RecoveryTimeout)

	pressed, err := s.prompter.WaitForKey(ctx, s.opts.RecoveryTimeout)
	if err != nil {
		s.fail(err)

		return
	}

	s.logger.WithField("key_pressed", pressed).Debug("recovery pause over")

	mode.HasReloopedOnce = true
	s.err = nil
	s.transition(StateEntry)
}

func (s *Supervisor) done() {
	if s.opts.Timer == nil {
		notify.Successf(s.out, "%s complete", s.action.Action)

		return
	}

	s.opts.Timer.Stop()
	notify.SuccessWithTimerf(s.out, s.opts.Timer, "%s complete", s.action.Action)
}

func (s *Supervisor) fail(err error) {
	s.err = err
	s.transition(StateFatalExit)
}

func (s *Supervisor) transition(to State) {
	from := s.state
	s.state = to

	s.logger.WithFields(logrus.Fields{"from": from, "to": to}).Debug("transition")

	if s.opts.Observer != nil {
		s.opts.Observer(from, to)
	}
}
