package cmd

import (
	"fmt"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/errorhandler"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	configmanager "github.com/bacalhau-project/bacboot/pkg/io/config-manager"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
// Without a subcommand, bacboot shows the interactive menu.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := runtime.NewRuntime()
	cfgManager := configmanager.NewConfigManager(nil)

	cmd := &cobra.Command{
		Use:   "bacboot",
		Short: "Bootstrap Bacalhau with its Ansible playbooks",
		Long: "bacboot fetches the Bacalhau playbook bundle, checks that the local copy is " +
			"clean and current, and runs ansible-playbook to install a Bacalhau client, node or cloud deployment.",
		Args:         cobra.NoArgs,
		RunE:         newBootstrapRunE(runtimeContainer, cfgManager, menuRequest),
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	addPersistentFlags(cmd)

	// Binding cannot fail for flags defined just above.
	_ = cfgManager.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newInstallCmd(runtimeContainer, cfgManager))
	cmd.AddCommand(newVerifyCmd(runtimeContainer, cfgManager))
	cmd.AddCommand(newUninstallCmd(runtimeContainer, cfgManager))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// --- internals ---

func addPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	defaults := v1alpha1.NewConfig()

	mode := defaults.Mode
	flags.Var(&mode, "mode", "interaction level: Interactive, Unattended or Silent")

	become := defaults.BecomeMode
	flags.Var(&become, "become-mode", "privilege escalation: AskBecomePass or NoAsk (asked when unset)")

	flags.String("target-version", "", "Bacalhau version to install, or 'latest'")
	flags.String("inventory", "", "inventory for remote nodes, relative to the working directory")
	flags.Bool("allow-absolute-inventory", false, "accept an absolute --inventory path")
	flags.Bool("install-tooling", false, "install missing Ansible without asking")
	flags.String("bundle-path", defaults.Bundle.Path, "working copy of the playbook bundle")
	flags.String("bundle-repository", defaults.Bundle.Repository, "git repository of the playbook bundle")
	flags.Duration("recovery-timeout", defaults.RecoveryTimeout, "pause before returning to the start after a failure")
	flags.Duration("settle-delay", defaults.SettleDelay, "pause after a successful unattended run")
	flags.String("log-level", defaults.LogLevel, "diagnostic log level written to stderr")
}
