package di

import (
	"fmt"

	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveProber retrieves the tooling prober.
func ResolveProber(injector Injector) (probe.Prober, error) {
	prober, err := do.Invoke[probe.Prober](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve prober dependency: %w", err)
	}

	return prober, nil
}

// ResolveCommandRunner retrieves the external command runner.
func ResolveCommandRunner(injector Injector) (runner.CommandRunner, error) {
	cmdRunner, err := do.Invoke[runner.CommandRunner](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve command runner dependency: %w", err)
	}

	return cmdRunner, nil
}

// ResolveLogger retrieves the invocation's logger.
func ResolveLogger(injector Injector) (*logrus.Logger, error) {
	logger, err := do.Invoke[*logrus.Logger](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve logger dependency: %w", err)
	}

	return logger, nil
}

// ResolveStreams retrieves the invocation's standard streams.
func ResolveStreams(injector Injector) (Streams, error) {
	streams, err := do.Invoke[Streams](injector)
	if err != nil {
		return Streams{}, fmt.Errorf("resolve streams dependency: %w", err)
	}

	return streams, nil
}

// Handler decorators.

// WithTimer decorates a handler to automatically resolve the timer dependency.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
