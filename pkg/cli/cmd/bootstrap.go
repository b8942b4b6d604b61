package cmd

import (
	"fmt"
	"io"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/menu"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/prompt"
	"github.com/bacalhau-project/bacboot/pkg/client/ansible"
	"github.com/bacalhau-project/bacboot/pkg/client/git"
	runtime "github.com/bacalhau-project/bacboot/pkg/di"
	configmanager "github.com/bacalhau-project/bacboot/pkg/io/config-manager"
	"github.com/bacalhau-project/bacboot/pkg/io/overrides"
	"github.com/bacalhau-project/bacboot/pkg/svc/bundle"
	"github.com/bacalhau-project/bacboot/pkg/svc/invoker"
	"github.com/bacalhau-project/bacboot/pkg/svc/privilege"
	"github.com/bacalhau-project/bacboot/pkg/svc/resolver"
	"github.com/bacalhau-project/bacboot/pkg/svc/supervisor"
	"github.com/bacalhau-project/bacboot/pkg/svc/workflow"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// request is what a command asks the supervisor to do.
type request struct {
	actions       []v1alpha1.PendingAction
	removeTooling []v1alpha1.Tooling
}

// menuRequest leaves the choice to the menu.
func menuRequest() request {
	return request{}
}

// newBootstrapRunE loads configuration and runs the supervisor for the request built by build.
func newBootstrapRunE(
	runtimeContainer *runtime.Runtime,
	cfgManager *configmanager.ConfigManager,
	build func() request,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfgManager.Writer = cmd.OutOrStdout()

		cfg, err := cfgManager.Load(configmanager.LoadOptions{})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err := logging.New(logging.Level(cfg.LogLevel), logging.Output(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}

		streams := runtime.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), ErrOut: cmd.ErrOrStderr()}.
			ForMode(cfg.Mode)

		return runtimeContainer.Invoke(func(injector runtime.Injector) error {
			return runBootstrap(cmd, injector, cfg, build())
		}, runtime.LoggerModule(logger), runtime.StreamsModule(streams))
	}
}

// runBootstrap assembles the components for one invocation.
func runBootstrap(cmd *cobra.Command, injector runtime.Injector, cfg *v1alpha1.Config, req request) error {
	tmr, err := runtime.ResolveTimer(injector)
	if err != nil {
		return err
	}

	prober, err := runtime.ResolveProber(injector)
	if err != nil {
		return err
	}

	cmdRunner, err := runtime.ResolveCommandRunner(injector)
	if err != nil {
		return err
	}

	logger, err := runtime.ResolveLogger(injector)
	if err != nil {
		return err
	}

	streams, err := runtime.ResolveStreams(injector)
	if err != nil {
		return err
	}

	mode := &v1alpha1.OperatingMode{
		Interactivity:  cfg.Mode,
		PendingActions: req.actions,
	}

	var out io.Writer = notify.NewStageSeparatingWriter(streams.Out)
	if mode.IsSilent() {
		out = io.Discard
	}

	prompter := prompt.NewTerminalPrompter(streams.In, out)

	flows := workflow.New(workflow.Dependencies{
		Bundle: bundle.NewManager(git.NewClient(cmdRunner), prober, prompter, out, logger, bundle.Options{
			Path:          cfg.Bundle.Path,
			Repository:    cfg.Bundle.Repository,
			RetryWindow:   cfg.Fetch.RetryWindow,
			RetryInterval: cfg.Fetch.RetryInterval,
		}),
		Resolver: newResolver(cfg, prompter, out, logger),
		Invoker: invoker.New(ansible.NewClient(cmdRunner), prompter, out, logger, invoker.Options{
			BundlePath:       cfg.Bundle.Path,
			RequirementsFile: cfg.Bundle.RequirementsFile,
			InventoryFile:    cfg.Bundle.InventoryFile,
			SettleDelay:      cfg.SettleDelay,
		}),
		Tooling: workflow.NewTooling(
			prober,
			privilege.NewProcessRunner(cmdRunner, mode.IsUnattended()),
			prompter,
			out,
			logger,
			cfg.InstallTooling,
		),
		Verifier: workflow.NewVerifier(prober, cmdRunner, out),
	}, prompter, out, logger, workflow.Settings{
		Version:       cfg.TargetVersion,
		VersionSet:    cfg.TargetVersionSet,
		Inventory:     cfg.Inventory,
		PrivilegeMode: cfg.BecomeMode,
		RemoveTooling: req.removeTooling,
	})

	sup := supervisor.New(flows, menu.New(prompter, out, cmd.Root().Version), prompter, out, logger, supervisor.Options{
		RecoveryTimeout: cfg.RecoveryTimeout,
		Timer:           tmr,
		Observer:        transitionLogger(logger),
	})

	return sup.Run(cmd.Context(), mode)
}

func newResolver(cfg *v1alpha1.Config, prompter prompt.Prompter, out io.Writer, logger logrus.FieldLogger) *resolver.Resolver {
	file := overrides.New(
		cfg.Bundle.Join(cfg.Bundle.OverridesFile),
		cfg.Bundle.Join(cfg.Bundle.OverridesTemplate),
		cfg.Bundle.VersionKey,
		logger,
	)

	return resolver.New(file, prompter, out, logger, resolver.Options{
		AllowAbsoluteInventory: cfg.AllowAbsoluteInventory,
	})
}

func transitionLogger(logger logrus.FieldLogger) func(from, to supervisor.State) {
	log := logging.For(logger, "supervisor")

	return func(from, to supervisor.State) {
		log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("transition")
	}
}
