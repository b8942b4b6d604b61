// Package configmanager loads bacboot's layered configuration.
//
// Priority, lowest first: defaults, bacboot.yaml, BACBOOT_* environment
// variables, command-line flags.
package configmanager

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/fsutil"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/bacalhau-project/bacboot/pkg/utils/envvar"
	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read as configuration.
	EnvPrefix = "BACBOOT"
	// ConfigName is the configuration file name without extension.
	ConfigName = "bacboot"
)

// keyTargetVersion is left without a default so IsSet reports whether a user supplied it.
const keyTargetVersion = "target_version"

// FlagKeys maps persistent flag names to configuration keys.
func FlagKeys() map[string]string {
	return map[string]string{
		"mode":                     "mode",
		"target-version":           keyTargetVersion,
		"become-mode":              "become_mode",
		"inventory":                "inventory",
		"allow-absolute-inventory": "allow_absolute_inventory",
		"install-tooling":          "install_tooling",
		"bundle-path":              "bundle.path",
		"bundle-repository":        "bundle.repository",
		"recovery-timeout":         "recovery_timeout",
		"settle-delay":             "settle_delay",
		"log-level":                "log_level",
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Timer adds timing to the success notification.
	Timer timer.Timer
	// Silent suppresses notifications.
	Silent bool
	// IgnoreConfigFile skips reading bacboot.yaml.
	IgnoreConfigFile bool
}

// ConfigManager loads a v1alpha1.Config once and caches it.
type ConfigManager struct {
	Viper  *viper.Viper
	Writer io.Writer
	Config *v1alpha1.Config

	loaded bool
}

// NewConfigManager returns a manager with defaults registered.
func NewConfigManager(writer io.Writer) *ConfigManager {
	if writer == nil {
		writer = io.Discard
	}

	return &ConfigManager{
		Viper:  InitializeViper(),
		Writer: writer,
		Config: v1alpha1.NewConfig(),
	}
}

// InitializeViper returns a viper instance with bacboot's defaults, search
// paths and environment handling.
func InitializeViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/bacboot")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := v1alpha1.NewConfig()
	v.SetDefault("bundle.path", defaults.Bundle.Path)
	v.SetDefault("bundle.repository", defaults.Bundle.Repository)
	v.SetDefault("bundle.overrides_file", defaults.Bundle.OverridesFile)
	v.SetDefault("bundle.overrides_template", defaults.Bundle.OverridesTemplate)
	v.SetDefault("bundle.version_key", defaults.Bundle.VersionKey)
	v.SetDefault("bundle.requirements_file", defaults.Bundle.RequirementsFile)
	v.SetDefault("bundle.inventory_file", defaults.Bundle.InventoryFile)
	v.SetDefault("fetch.retry_window", defaults.Fetch.RetryWindow)
	v.SetDefault("fetch.retry_interval", defaults.Fetch.RetryInterval)
	v.SetDefault("mode", string(defaults.Mode))
	v.SetDefault("become_mode", "")
	v.SetDefault("inventory", "")
	v.SetDefault("allow_absolute_inventory", false)
	v.SetDefault("install_tooling", false)
	v.SetDefault("recovery_timeout", defaults.RecoveryTimeout)
	v.SetDefault("settle_delay", defaults.SettleDelay)
	v.SetDefault("log_level", defaults.LogLevel)

	_ = v.BindEnv(keyTargetVersion)

	return v
}

// BindFlags binds every known persistent flag present in flags.
func (m *ConfigManager) BindFlags(flags *pflag.FlagSet) error {
	for flagName, key := range FlagKeys() {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}

		err := m.Viper.BindPFlag(key, flag)
		if err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
		}
	}

	return nil
}

// Load resolves the configuration, or returns the cached one.
func (m *ConfigManager) Load(opts LoadOptions) (*v1alpha1.Config, error) {
	if m.loaded {
		return m.Config, nil
	}

	var source string

	if !opts.IgnoreConfigFile {
		var err error

		source, err = m.readConfigFile()
		if err != nil {
			return nil, err
		}
	}

	writer := m.Writer
	if opts.Silent || m.silentRequested() {
		writer = io.Discard
	}

	notify.Activityf(writer, "loading configuration")

	if source != "" {
		notify.Activityf(writer, "%s", source)
	}

	cfg := v1alpha1.NewConfig()

	err := m.Viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.TargetVersionSet = m.Viper.IsSet(keyTargetVersion)

	envvar.ExpandAll(&cfg.Bundle.Path, &cfg.Bundle.Repository, &cfg.Inventory)

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Bundle.Path, err = fsutil.ExpandHomePath(cfg.Bundle.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle path: %w", err)
	}

	m.Config = cfg
	m.loaded = true

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "configuration loaded",
		Timer:   opts.Timer,
		Writer:  writer,
	})

	return cfg, nil
}

// silentRequested reports whether any layer asks for silent mode, before decoding.
func (m *ConfigManager) silentRequested() bool {
	return strings.EqualFold(m.Viper.GetString("mode"), string(v1alpha1.InteractivitySilent))
}

// readConfigFile reads bacboot.yaml when present and describes the outcome.
func (m *ConfigManager) readConfigFile() (string, error) {
	err := m.Viper.ReadInConfig()
	if err == nil {
		return fmt.Sprintf("'%s' found", m.Viper.ConfigFileUsed()), nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("no %s.yaml found, using defaults", ConfigName), nil
	}

	return "", fmt.Errorf("failed to read config file: %w", err)
}
