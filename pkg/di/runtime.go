// Package di wires bacboot's shared dependencies with samber/do.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to command handlers.
type Injector = do.Injector

// Module registers dependencies with an injector.
type Module func(Injector) error

// Runtime builds a fresh injector for every invocation.
type Runtime struct {
	modules []Module
}

// New creates a Runtime applying modules, in order, to every injector it builds.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke builds an injector from the runtime's modules followed by extra,
// runs handler with it and shuts the injector down.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()
	defer func() { _ = injector.Shutdown() }()

	for _, module := range append(append([]Module(nil), r.modules...), extra...) {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts a handler needing an injector to cobra's RunE.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}
