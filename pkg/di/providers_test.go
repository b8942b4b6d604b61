package di_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocationModules() []runtime.Module {
	return []runtime.Module{
		runtime.LoggerModule(logging.Discard()),
		runtime.StreamsModule(runtime.Streams{In: strings.NewReader(""), Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}),
	}
}

func TestNewRuntime_ProvidesTimer(t *testing.T) {
	t.Parallel()

	err := runtime.NewRuntime().Invoke(func(injector runtime.Injector) error {
		tmr, resolveErr := runtime.ResolveTimer(injector)
		require.NoError(t, resolveErr, "expected timer to be resolved")
		require.NotNil(t, tmr, "expected timer to be non-nil")

		return nil
	})

	require.NoError(t, err, "expected invoke to succeed")
}

func TestNewRuntime_ProvidesProberAndRunner(t *testing.T) {
	t.Parallel()

	err := runtime.NewRuntime().Invoke(func(injector runtime.Injector) error {
		prober, resolveErr := runtime.ResolveProber(injector)
		require.NoError(t, resolveErr)
		require.NotNil(t, prober)

		cmdRunner, resolveErr := runtime.ResolveCommandRunner(injector)
		require.NoError(t, resolveErr)
		require.NotNil(t, cmdRunner)

		return nil
	}, invocationModules()...)

	require.NoError(t, err)
}

func TestNewRuntime_RunnerNeedsLogger(t *testing.T) {
	t.Parallel()

	err := runtime.NewRuntime().Invoke(func(injector runtime.Injector) error {
		_, resolveErr := runtime.ResolveCommandRunner(injector)

		return resolveErr
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve command runner dependency")
}

func TestWithTimer(t *testing.T) {
	t.Parallel()

	var got timer.Timer

	runE := runtime.RunEWithRuntime(runtime.NewRuntime(), runtime.WithTimer(
		func(_ *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			got = tmr

			return nil
		},
	))

	require.NoError(t, runE(&cobra.Command{Use: "test"}, nil))
	assert.NotNil(t, got)
}

func TestStreamsForMode_KeepsStreamsOutsideSilentMode(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	in := strings.NewReader("y\n")
	streams := runtime.Streams{In: in, Out: &out, ErrOut: &errOut}

	for _, mode := range []v1alpha1.Interactivity{v1alpha1.InteractivityInteractive, v1alpha1.InteractivityUnattended} {
		got := streams.ForMode(mode)
		assert.Same(t, in, got.In, "mode %s", mode)
		assert.Same(t, &out, got.Out, "mode %s", mode)
		assert.Same(t, &errOut, got.ErrOut, "mode %s", mode)
	}
}

func TestStreamsForMode_SilentRunnerWritesNothing(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var out, errOut bytes.Buffer

	streams := runtime.Streams{In: strings.NewReader("secret\n"), Out: &out, ErrOut: &errOut}.
		ForMode(v1alpha1.InteractivitySilent)

	var res runner.CommandResult

	err := runtime.NewRuntime().Invoke(func(injector runtime.Injector) error {
		cmdRunner, resolveErr := runtime.ResolveCommandRunner(injector)
		require.NoError(t, resolveErr)

		var runErr error

		res, runErr = cmdRunner.Run(context.Background(), runner.Command{
			Name:        "sh",
			Args:        []string{"-c", "read line; echo got $line; echo noisy >&2"},
			Interactive: true,
		})

		return runErr
	}, runtime.LoggerModule(logging.Discard()), runtime.StreamsModule(streams))

	require.NoError(t, err)
	assert.Empty(t, out.String(), "silent runs must not stream to stdout")
	assert.Empty(t, errOut.String(), "silent runs must not stream to stderr")
	assert.Equal(t, "got\n", res.Stdout, "stdin must be empty in silent mode")
	assert.Equal(t, "noisy\n", res.Stderr)
}
