package v1alpha1

import (
	"fmt"
	"path/filepath"
	"time"
)

// Defaults for Config.
const (
	DefaultBundlePath        = "/tmp/bacalhau-ansible"
	DefaultBundleRepository  = "https://github.com/zorlin/bacalhau-playbook"
	DefaultOverridesFile     = "vars/overrides.yml"
	DefaultOverridesTemplate = "vars/overrides.yml.dist"
	DefaultVersionKey        = "bacalhau_version"
	DefaultRequirementsFile  = "requirements.yml"
	DefaultInventoryFile     = "inventory"
	DefaultRecoveryTimeout   = 3 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultFetchRetryWindow  = 30 * time.Second
	DefaultFetchRetryDelay   = 3 * time.Second
	DefaultLogLevel          = "warn"
)

// BundleConfig locates the automation bundle and the files bacboot manages inside it.
type BundleConfig struct {
	Path              string `mapstructure:"path"`
	Repository        string `mapstructure:"repository"`
	OverridesFile     string `mapstructure:"overrides_file"`
	OverridesTemplate string `mapstructure:"overrides_template"`
	VersionKey        string `mapstructure:"version_key"`
	RequirementsFile  string `mapstructure:"requirements_file"`
	InventoryFile     string `mapstructure:"inventory_file"`
}

// Join resolves rel inside the working copy.
func (b BundleConfig) Join(rel string) string {
	return filepath.Join(b.Path, rel)
}

// FetchConfig bounds retries of transient clone and pull failures.
type FetchConfig struct {
	RetryWindow   time.Duration `mapstructure:"retry_window"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// Config is the layered configuration of a bacboot invocation.
type Config struct {
	Bundle                 BundleConfig  `mapstructure:"bundle"`
	Fetch                  FetchConfig   `mapstructure:"fetch"`
	Mode                   Interactivity `mapstructure:"mode"`
	TargetVersion          string        `mapstructure:"target_version"`
	BecomeMode             PrivilegeMode `mapstructure:"become_mode"`
	Inventory              string        `mapstructure:"inventory"`
	AllowAbsoluteInventory bool          `mapstructure:"allow_absolute_inventory"`
	InstallTooling         bool          `mapstructure:"install_tooling"`
	RecoveryTimeout        time.Duration `mapstructure:"recovery_timeout"`
	SettleDelay            time.Duration `mapstructure:"settle_delay"`
	LogLevel               string        `mapstructure:"log_level"`

	// TargetVersionSet records whether any layer supplied target_version,
	// which decides whether the install flow asks for one.
	TargetVersionSet bool `mapstructure:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Bundle: BundleConfig{
			Path:              DefaultBundlePath,
			Repository:        DefaultBundleRepository,
			OverridesFile:     DefaultOverridesFile,
			OverridesTemplate: DefaultOverridesTemplate,
			VersionKey:        DefaultVersionKey,
			RequirementsFile:  DefaultRequirementsFile,
			InventoryFile:     DefaultInventoryFile,
		},
		Fetch: FetchConfig{
			RetryWindow:   DefaultFetchRetryWindow,
			RetryInterval: DefaultFetchRetryDelay,
		},
		Mode:            InteractivityInteractive,
		RecoveryTimeout: DefaultRecoveryTimeout,
		SettleDelay:     DefaultSettleDelay,
		LogLevel:        DefaultLogLevel,
	}
}

// Validate checks values no layer may leave invalid.
func (c *Config) Validate() error {
	if c.Bundle.Path == "" {
		return ErrBundlePathRequired
	}

	if c.Bundle.Repository == "" {
		return ErrBundleRepositoryRequired
	}

	if c.Mode.IsSilent() && c.BecomeMode == PrivilegeAskBecomePass {
		return fmt.Errorf("%w: use --become-mode NoAsk or a non-silent --mode", ErrSilentBecomePass)
	}

	durations := map[string]time.Duration{
		"recovery_timeout":     c.RecoveryTimeout,
		"settle_delay":         c.SettleDelay,
		"fetch.retry_window":   c.Fetch.RetryWindow,
		"fetch.retry_interval": c.Fetch.RetryInterval,
	}

	for name, value := range durations {
		if value < 0 {
			return fmt.Errorf("%w: %s=%s", ErrNegativeDuration, name, value)
		}
	}

	return nil
}
