package cmd

import (
	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	configmanager "github.com/bacalhau-project/bacboot/pkg/io/config-manager"
	"github.com/spf13/cobra"
)

func newInstallCmd(runtimeContainer *runtime.Runtime, cfgManager *configmanager.ConfigManager) *cobra.Command {
	var playbooks v1alpha1.PlaybookKinds

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install Bacalhau by running the playbook bundle",
		Long: "Fetch or update the playbook bundle, pin the requested version and run the " +
			"client, node or cloud playbook. Without --playbook the playbooks are asked for, " +
			"or the client is installed when running unattended.",
		Args: cobra.NoArgs,
		RunE: newBootstrapRunE(runtimeContainer, cfgManager, func() request {
			return request{actions: []v1alpha1.PendingAction{{
				Action:    v1alpha1.ActionInstall,
				Playbooks: playbooks,
			}}}
		}),
		SilenceUsage: true,
	}

	cmd.Flags().Var(&playbooks, "playbook", "playbooks to run: Client, Node, Cloud (comma-separated)")

	return cmd
}
