package di

import (
	"io"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

// Dependency providers.

// Streams are the process's standard streams as seen by external commands.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// ForMode returns the streams external commands may use in the given mode.
// Silent runs get an empty stdin and discard output; results still capture it.
func (s Streams) ForMode(mode v1alpha1.Interactivity) Streams {
	if !mode.IsSilent() {
		return s
	}

	return Streams{In: strings.NewReader(""), Out: io.Discard, ErrOut: io.Discard}
}

// NewRuntime constructs the shared runtime container used by commands and tests.
// The logger and streams are supplied per invocation with LoggerModule and StreamsModule.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideProber,
		provideCommandRunner,
	)
}

// LoggerModule supplies the invocation's logger.
func LoggerModule(logger *logrus.Logger) Module {
	return func(i Injector) error {
		do.ProvideValue(i, logger)

		return nil
	}
}

// StreamsModule supplies the invocation's standard streams.
func StreamsModule(streams Streams) Module {
	return func(i Injector) error {
		do.ProvideValue(i, streams)

		return nil
	}
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideProber registers the PATH prober.
func provideProber(i Injector) error {
	do.Provide(i, func(Injector) (probe.Prober, error) {
		return probe.NewPathProber(), nil
	})

	return nil
}

// provideCommandRunner registers the exec runner, attached to the invocation's streams.
func provideCommandRunner(i Injector) error {
	do.Provide(i, func(injector Injector) (runner.CommandRunner, error) {
		logger, err := ResolveLogger(injector)
		if err != nil {
			return nil, err
		}

		streams, err := ResolveStreams(injector)
		if err != nil {
			return nil, err
		}

		return runner.NewExecCommandRunner(streams.In, streams.Out, streams.ErrOut, logger), nil
	})

	return nil
}
