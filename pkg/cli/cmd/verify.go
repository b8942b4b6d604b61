package cmd

import (
	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	configmanager "github.com/bacalhau-project/bacboot/pkg/io/config-manager"
	"github.com/spf13/cobra"
)

func newVerifyCmd(runtimeContainer *runtime.Runtime, cfgManager *configmanager.ConfigManager) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the Bacalhau client is installed",
		Args:  cobra.NoArgs,
		RunE: newBootstrapRunE(runtimeContainer, cfgManager, func() request {
			return request{actions: []v1alpha1.PendingAction{{Action: v1alpha1.ActionVerify}}}
		}),
		SilenceUsage: true,
	}
}
