package invoker_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt/prompttest"
	"github.com/bacalhau-project/bacboot/pkg/client/ansible"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner/runnertest"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/svc/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleeper struct {
	slept []time.Duration
}

func (s *sleeper) sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)

	return nil
}

type harness struct {
	bundle   string
	runner   *runnertest.Runner
	sleeper  *sleeper
	prompter *prompttest.Prompter
	invoker  *invoker.Invoker
}

func newHarness(t *testing.T, withRequirements bool, answers ...string) *harness {
	t.Helper()

	bundle := t.TempDir()
	if withRequirements {
		require.NoError(t, os.WriteFile(filepath.Join(bundle, "requirements.yml"), []byte("roles: []\n"), 0o600))
	}

	h := &harness{
		bundle:   bundle,
		runner:   runnertest.New().On(""),
		sleeper:  &sleeper{},
		prompter: prompttest.New(answers...),
	}

	h.invoker = invoker.New(
		ansible.NewClient(h.runner),
		h.prompter,
		io.Discard,
		nil,
		invoker.Options{
			BundlePath:       bundle,
			RequirementsFile: v1alpha1.DefaultRequirementsFile,
			InventoryFile:    v1alpha1.DefaultInventoryFile,
			SettleDelay:      2 * time.Second,
		},
		invoker.WithSleep(h.sleeper.sleep),
	)

	return h
}

func unattended() *v1alpha1.OperatingMode {
	return &v1alpha1.OperatingMode{
		Interactivity:  v1alpha1.InteractivityUnattended,
		PendingActions: []v1alpha1.PendingAction{{Action: v1alpha1.ActionInstall}},
	}
}

func interactive() *v1alpha1.OperatingMode {
	return &v1alpha1.OperatingMode{Interactivity: v1alpha1.InteractivityInteractive}
}

func spec(kind v1alpha1.PlaybookKind, privilege v1alpha1.PrivilegeMode) v1alpha1.RunSpecification {
	return v1alpha1.RunSpecification{
		PlaybookKind:  kind,
		TargetVersion: v1alpha1.LatestVersion,
		Target:        v1alpha1.LocalTarget(),
		PrivilegeMode: privilege,
	}
}

func TestRun_UnattendedClientDefaultsToNoAsk(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookClient, ""), unattended())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"ansible-playbook --become -i " + filepath.Join(h.bundle, "inventory") + " " +
			filepath.Join(h.bundle, "bacalhau-client.yml"),
	}, h.runner.Calls(), "clients need no galaxy dependencies")
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sleeper.slept)
	assert.Empty(t, h.prompter.Questions())
}

func TestRun_SilentNeverAsksForBecomePassword(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	silent := &v1alpha1.OperatingMode{
		Interactivity:  v1alpha1.InteractivitySilent,
		PendingActions: []v1alpha1.PendingAction{{Action: v1alpha1.ActionInstall}},
	}

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookClient, v1alpha1.PrivilegeAskBecomePass), silent)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"ansible-playbook --become -i " + filepath.Join(h.bundle, "inventory") + " " +
			filepath.Join(h.bundle, "bacalhau-client.yml"),
	}, h.runner.Calls(), "silent runs must not pass --ask-become-pass")
	assert.Empty(t, h.prompter.Questions())
}

func TestRun_NodeInstallsDependenciesFirst(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookNode, v1alpha1.PrivilegeAskBecomePass), unattended())

	require.NoError(t, err)

	calls := h.runner.Commands()
	require.Len(t, calls, 2)
	assert.Equal(t, "ansible-galaxy install -r requirements.yml", calls[0].String())
	assert.Equal(t, h.bundle, calls[0].Dir)
	assert.Contains(t, calls[1].Args, "--ask-become-pass")
}

func TestRun_NodeWithoutRequirementsFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookCloud, v1alpha1.PrivilegeNoAsk), unattended())

	require.NoError(t, err)
	assert.Empty(t, h.runner.CallsWithPrefix("ansible-galaxy"))
	assert.Len(t, h.runner.CallsWithPrefix("ansible-playbook"), 1)
}

func TestRun_DependencyFailureStopsRun(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.runner.On("ansible-galaxy", runnertest.Response{Err: errors.New("exit status 1")})

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookNode, v1alpha1.PrivilegeNoAsk), unattended())

	require.ErrorIs(t, err, bootstraperr.ErrDependencyInstallFailed)
	assert.False(t, bootstraperr.IsUnrecoverable(err))
	assert.Empty(t, h.runner.CallsWithPrefix("ansible-playbook"))
}

func TestRun_PlaybookFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.runner.On("ansible-playbook", runnertest.Response{Err: errors.New("exit status 2")})

	err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookClient, v1alpha1.PrivilegeNoAsk), unattended())

	require.ErrorIs(t, err, bootstraperr.ErrExecutionFailed)
	assert.Empty(t, h.sleeper.slept)
}

func TestRun_RemoteInventory(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	run := spec(v1alpha1.PlaybookNode, v1alpha1.PrivilegeNoAsk)
	run.Target = v1alpha1.Target{Inventory: "/srv/inventory/nodes.ini"}

	require.NoError(t, h.invoker.Run(context.Background(), run, unattended()))

	calls := h.runner.Commands()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"--become", "-i", "/srv/inventory/nodes.ini", filepath.Join(h.bundle, "bacalhau-node.yml"),
	}, calls[0].Args)
}

func TestRun_InteractiveConfirmation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answers []string
		wantErr error
		askPass bool
	}{
		{name: "passwordless sudo and continue", answers: []string{"y", ""}},
		{name: "password needed and continue", answers: []string{"n", ""}, askPass: true},
		{name: "invalid answer is asked again", answers: []string{"maybe", "Y", ""}},
		{name: "non-blank confirmation returns to menu", answers: []string{"y", "menu"}, wantErr: bootstraperr.ErrAborted},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, false, testCase.answers...)

			err := h.invoker.Run(context.Background(), spec(v1alpha1.PlaybookClient, ""), interactive())

			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
			} else {
				require.NoError(t, err)
			}

			calls := h.runner.Commands()
			require.Len(t, calls, 1)
			assert.Equal(t, testCase.askPass, calls[0].Args[1] == "--ask-become-pass")
			assert.Empty(t, h.sleeper.slept)
			assert.Zero(t, h.prompter.Remaining())
		})
	}
}

func TestResolvePrivilege(t *testing.T) {
	t.Parallel()

	t.Run("configured mode wins without prompting", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, false)

		mode, err := h.invoker.ResolvePrivilege(context.Background(), v1alpha1.PrivilegeAskBecomePass, interactive())

		require.NoError(t, err)
		assert.Equal(t, v1alpha1.PrivilegeAskBecomePass, mode)
		assert.Empty(t, h.prompter.Questions())
	})

	t.Run("quit aborts", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, false, "q")

		_, err := h.invoker.ResolvePrivilege(context.Background(), "", interactive())

		require.ErrorIs(t, err, bootstraperr.ErrAborted)
	})

	t.Run("silent never prompts", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, false)
		silent := &v1alpha1.OperatingMode{
			Interactivity:  v1alpha1.InteractivitySilent,
			PendingActions: []v1alpha1.PendingAction{{Action: v1alpha1.ActionInstall}},
		}

		mode, err := h.invoker.ResolvePrivilege(context.Background(), "", silent)

		require.NoError(t, err)
		assert.Equal(t, v1alpha1.PrivilegeNoAsk, mode)
		assert.Empty(t, h.prompter.Questions())
	})
	t.Run("silent overrides a configured password prompt", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, false)
		silent := &v1alpha1.OperatingMode{
			Interactivity:  v1alpha1.InteractivitySilent,
			PendingActions: []v1alpha1.PendingAction{{Action: v1alpha1.ActionInstall}},
		}

		mode, err := h.invoker.ResolvePrivilege(context.Background(), v1alpha1.PrivilegeAskBecomePass, silent)

		require.NoError(t, err)
		assert.Equal(t, v1alpha1.PrivilegeNoAsk, mode)
		assert.Empty(t, h.prompter.Questions())
	})
}
