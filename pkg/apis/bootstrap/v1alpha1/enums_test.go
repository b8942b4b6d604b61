package v1alpha1_test

import (
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time checks that enum types can back command-line flags.
var (
	_ pflag.Value = (*v1alpha1.Interactivity)(nil)
	_ pflag.Value = (*v1alpha1.Action)(nil)
	_ pflag.Value = (*v1alpha1.PlaybookKind)(nil)
	_ pflag.Value = (*v1alpha1.PlaybookKinds)(nil)
	_ pflag.Value = (*v1alpha1.PrivilegeMode)(nil)
	_ pflag.Value = (*v1alpha1.Tooling)(nil)
	_ pflag.Value = (*v1alpha1.ToolingList)(nil)

	_ v1alpha1.EnumValuer = (*v1alpha1.Interactivity)(nil)
	_ v1alpha1.EnumValuer = (*v1alpha1.PlaybookKind)(nil)
)

func TestInteractivity_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  v1alpha1.Interactivity
	}{
		{"Interactive", v1alpha1.InteractivityInteractive},
		{"unattended", v1alpha1.InteractivityUnattended},
		{"SILENT", v1alpha1.InteractivitySilent},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			var mode v1alpha1.Interactivity

			require.NoError(t, mode.Set(testCase.input))
			assert.Equal(t, testCase.want, mode)
		})
	}
}

func TestInteractivity_SetInvalid(t *testing.T) {
	t.Parallel()

	var mode v1alpha1.Interactivity

	err := mode.Set("chatty")

	require.ErrorIs(t, err, v1alpha1.ErrInvalidInteractivity)
	assert.ErrorContains(t, err, "valid options: Interactive, Unattended, Silent")
}

func TestInteractivity_UnmarshalTextEmptyDefaults(t *testing.T) {
	t.Parallel()

	mode := v1alpha1.InteractivitySilent

	require.NoError(t, mode.UnmarshalText(nil))
	assert.Equal(t, v1alpha1.InteractivityInteractive, mode)
}

func TestInteractivity_SilentImpliesUnattended(t *testing.T) {
	t.Parallel()

	assert.False(t, v1alpha1.InteractivityInteractive.IsUnattended())
	assert.True(t, v1alpha1.InteractivityUnattended.IsUnattended())
	assert.True(t, v1alpha1.InteractivitySilent.IsUnattended())
	assert.True(t, v1alpha1.InteractivitySilent.IsSilent())
	assert.False(t, v1alpha1.InteractivityUnattended.IsSilent())
}

func TestPlaybookKind_FilesAndDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     v1alpha1.PlaybookKind
		file     string
		needDeps bool
	}{
		{v1alpha1.PlaybookClient, "bacalhau-client.yml", false},
		{v1alpha1.PlaybookNode, "bacalhau-node.yml", true},
		{v1alpha1.PlaybookCloud, "bacalhau-cloud.yml", true},
		{v1alpha1.PlaybookKind("Other"), "", false},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.kind), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.file, testCase.kind.PlaybookFile())
			assert.Equal(t, testCase.needDeps, testCase.kind.RequiresDependencies())
		})
	}
}

func TestPlaybookKinds_Set(t *testing.T) {
	t.Parallel()

	var kinds v1alpha1.PlaybookKinds

	require.NoError(t, kinds.Set("client, node"))
	require.NoError(t, kinds.Set("Client"))

	assert.Equal(t, v1alpha1.PlaybookKinds{v1alpha1.PlaybookClient, v1alpha1.PlaybookNode}, kinds)
	assert.Equal(t, "Client,Node", kinds.String())

	require.ErrorIs(t, kinds.Set("client,desktop"), v1alpha1.ErrInvalidPlaybookKind)
}

func TestPrivilegeMode(t *testing.T) {
	t.Parallel()

	var mode v1alpha1.PrivilegeMode

	assert.False(t, mode.IsSet())
	require.NoError(t, mode.Set("askbecomepass"))
	assert.Equal(t, v1alpha1.PrivilegeAskBecomePass, mode)
	assert.True(t, mode.IsSet())

	require.NoError(t, mode.UnmarshalText([]byte("")))
	assert.False(t, mode.IsSet())

	require.ErrorIs(t, mode.Set("sometimes"), v1alpha1.ErrInvalidPrivilegeMode)
}

func TestToolingList_Set(t *testing.T) {
	t.Parallel()

	var list v1alpha1.ToolingList

	require.NoError(t, list.Set("ansible,pip,ansible"))
	assert.Equal(t, v1alpha1.ToolingList{v1alpha1.ToolingAnsible, v1alpha1.ToolingPip}, list)
	assert.Equal(t, "Ansible,Pip", list.String())
	require.ErrorIs(t, list.Set("docker"), v1alpha1.ErrInvalidTooling)
}

func TestAction_Set(t *testing.T) {
	t.Parallel()

	var action v1alpha1.Action

	require.NoError(t, action.UnmarshalText([]byte("verify")))
	assert.Equal(t, v1alpha1.ActionVerify, action)
	require.ErrorIs(t, action.Set("reboot"), v1alpha1.ErrInvalidAction)
}
