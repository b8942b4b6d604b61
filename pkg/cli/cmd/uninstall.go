package cmd

import (
	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	configmanager "github.com/bacalhau-project/bacboot/pkg/io/config-manager"
	"github.com/spf13/cobra"
)

func newUninstallCmd(runtimeContainer *runtime.Runtime, cfgManager *configmanager.ConfigManager) *cobra.Command {
	var toRemove v1alpha1.ToolingList

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the tooling installed for the playbooks",
		Long: "Remove Ansible and pip. Without --remove-tooling each tool is asked for, " +
			"or nothing is removed when running unattended.",
		Args: cobra.NoArgs,
		RunE: newBootstrapRunE(runtimeContainer, cfgManager, func() request {
			return request{
				actions:       []v1alpha1.PendingAction{{Action: v1alpha1.ActionUninstall}},
				removeTooling: toRemove,
			}
		}),
		SilenceUsage: true,
	}

	cmd.Flags().Var(&toRemove, "remove-tooling", "tooling to remove: Ansible, Pip (comma-separated)")

	return cmd
}
