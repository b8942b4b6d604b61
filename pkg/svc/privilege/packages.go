package privilege

import (
	"context"
	"errors"
	"fmt"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
)

// ErrUnsupportedTooling is returned when a manager cannot handle a tool.
var ErrUnsupportedTooling = errors.New("tooling not handled by this package manager")

// ErrNoPackageManager is returned when no supported package manager is installed.
var ErrNoPackageManager = errors.New("no supported package manager found")

// PackageManager installs and removes prerequisites.
type PackageManager interface {
	// Name is the manager's program name.
	Name() string
	// Package maps tooling to the package name this manager uses.
	Package(tooling v1alpha1.Tooling) (string, bool)
	Install(ctx context.Context, tooling v1alpha1.Tooling) error
	Remove(ctx context.Context, tooling v1alpha1.Tooling) error
}

type commandManager struct {
	name     string
	install  []string
	remove   []string
	packages map[v1alpha1.Tooling]string
	runner   Runner
}

func (m commandManager) Name() string { return m.name }

func (m commandManager) Package(tooling v1alpha1.Tooling) (string, bool) {
	pkg, ok := m.packages[tooling]

	return pkg, ok
}

func (m commandManager) Install(ctx context.Context, tooling v1alpha1.Tooling) error {
	return m.apply(ctx, m.install, tooling)
}

func (m commandManager) Remove(ctx context.Context, tooling v1alpha1.Tooling) error {
	return m.apply(ctx, m.remove, tooling)
}

func (m commandManager) apply(ctx context.Context, verb []string, tooling v1alpha1.Tooling) error {
	pkg, ok := m.packages[tooling]
	if !ok {
		return fmt.Errorf("%w: %s via %s", ErrUnsupportedTooling, tooling, m.name)
	}

	args := append(append([]string(nil), verb...), pkg)

	_, err := m.runner.Run(ctx, runner.Command{Name: m.name, Args: args, Interactive: true})
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", m.name, verb[0], pkg, err)
	}

	return nil
}

// NewApt returns the Debian/Ubuntu package manager.
func NewApt(privileged Runner) PackageManager {
	return commandManager{
		name:    "apt-get",
		install: []string{"install", "-y"},
		remove:  []string{"remove", "-y"},
		packages: map[v1alpha1.Tooling]string{
			v1alpha1.ToolingAnsible: "ansible",
			v1alpha1.ToolingPip:     "python3-pip",
		},
		runner: privileged,
	}
}

// NewDnf returns the Fedora/RHEL package manager.
func NewDnf(privileged Runner) PackageManager {
	return commandManager{
		name:    "dnf",
		install: []string{"install", "-y"},
		remove:  []string{"remove", "-y"},
		packages: map[v1alpha1.Tooling]string{
			v1alpha1.ToolingAnsible: "ansible-core",
			v1alpha1.ToolingPip:     "python3-pip",
		},
		runner: privileged,
	}
}

// NewPip returns Python's package installer. It manages ansible only.
func NewPip(privileged Runner) PackageManager {
	return commandManager{
		name:    "pip3",
		install: []string{"install"},
		remove:  []string{"uninstall", "-y"},
		packages: map[v1alpha1.Tooling]string{
			v1alpha1.ToolingAnsible: "ansible-core",
		},
		runner: privileged,
	}
}

// SystemManager returns the first supported system package manager installed.
func SystemManager(prober probe.Prober, privileged Runner) (PackageManager, error) {
	candidates := []PackageManager{NewApt(privileged), NewDnf(privileged)}

	for _, candidate := range candidates {
		if prober.IsInstalled(candidate.Name()) {
			return candidate, nil
		}
	}

	return nil, ErrNoPackageManager
}
