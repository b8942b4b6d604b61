package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// parseEnum matches value case-insensitively against the valid options.
func parseEnum[T ~string](value string, valid []T, sentinel error) (T, error) {
	for _, option := range valid {
		if strings.EqualFold(value, string(option)) {
			return option, nil
		}
	}

	names := make([]string, 0, len(valid))
	for _, option := range valid {
		names = append(names, string(option))
	}

	var zero T

	return zero, fmt.Errorf("%w: %s (valid options: %s)", sentinel, value, strings.Join(names, ", "))
}

// --- Interactivity Types ---

// Interactivity defines how much the bootstrapper may ask of the user.
type Interactivity string

const (
	// InteractivityInteractive prompts the user whenever a decision is needed.
	InteractivityInteractive Interactivity = "Interactive"
	// InteractivityUnattended runs from flags and defaults without prompting.
	InteractivityUnattended Interactivity = "Unattended"
	// InteractivitySilent is unattended with all output except fatal errors suppressed.
	InteractivitySilent Interactivity = "Silent"
)

// ValidInteractivities returns all supported interactivity levels.
func ValidInteractivities() []Interactivity {
	return []Interactivity{InteractivityInteractive, InteractivityUnattended, InteractivitySilent}
}

// Set for Interactivity (pflag.Value interface).
func (i *Interactivity) Set(value string) error {
	parsed, err := parseEnum(value, ValidInteractivities(), ErrInvalidInteractivity)
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// UnmarshalText lets configuration decoders reuse Set.
func (i *Interactivity) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*i = InteractivityInteractive

		return nil
	}

	return i.Set(string(text))
}

// String returns the string representation of the Interactivity.
func (i *Interactivity) String() string {
	return string(*i)
}

// Type returns the type of the Interactivity.
func (i *Interactivity) Type() string {
	return "Interactivity"
}

// ValidValues returns all valid Interactivity values as strings.
func (i *Interactivity) ValidValues() []string {
	return []string{
		string(InteractivityInteractive),
		string(InteractivityUnattended),
		string(InteractivitySilent),
	}
}

// IsUnattended reports whether prompts are forbidden. Silent implies unattended.
func (i Interactivity) IsUnattended() bool {
	return i == InteractivityUnattended || i == InteractivitySilent
}

// IsSilent reports whether only fatal errors may be printed.
func (i Interactivity) IsSilent() bool {
	return i == InteractivitySilent
}

// --- Action Types ---

// Action selects which top-level flow the supervisor dispatches to.
type Action string

const (
	// ActionInstall deploys Bacalhau by running the bundle.
	ActionInstall Action = "Install"
	// ActionVerify checks an existing installation.
	ActionVerify Action = "Verify"
	// ActionUninstall removes the tooling installed for the bundle.
	ActionUninstall Action = "Uninstall"
)

// ValidActions returns all supported actions.
func ValidActions() []Action {
	return []Action{ActionInstall, ActionVerify, ActionUninstall}
}

// Set for Action (pflag.Value interface).
func (a *Action) Set(value string) error {
	parsed, err := parseEnum(value, ValidActions(), ErrInvalidAction)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// UnmarshalText lets configuration decoders reuse Set.
func (a *Action) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// String returns the string representation of the Action.
func (a *Action) String() string {
	return string(*a)
}

// Type returns the type of the Action.
func (a *Action) Type() string {
	return "Action"
}

// ValidValues returns all valid Action values as strings.
func (a *Action) ValidValues() []string {
	return []string{string(ActionInstall), string(ActionVerify), string(ActionUninstall)}
}

// --- PlaybookKind Types ---

// PlaybookKind selects which deployment flow a run targets.
type PlaybookKind string

const (
	// PlaybookClient installs the Bacalhau client.
	PlaybookClient PlaybookKind = "Client"
	// PlaybookNode installs a Bacalhau node.
	PlaybookNode PlaybookKind = "Node"
	// PlaybookCloud provisions Bacalhau in the cloud.
	PlaybookCloud PlaybookKind = "Cloud"
)

// ValidPlaybookKinds returns all supported playbook kinds.
func ValidPlaybookKinds() []PlaybookKind {
	return []PlaybookKind{PlaybookClient, PlaybookNode, PlaybookCloud}
}

// Set for PlaybookKind (pflag.Value interface).
func (k *PlaybookKind) Set(value string) error {
	parsed, err := parseEnum(value, ValidPlaybookKinds(), ErrInvalidPlaybookKind)
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// UnmarshalText lets configuration decoders reuse Set.
func (k *PlaybookKind) UnmarshalText(text []byte) error {
	return k.Set(string(text))
}

// String returns the string representation of the PlaybookKind.
func (k *PlaybookKind) String() string {
	return string(*k)
}

// Type returns the type of the PlaybookKind.
func (k *PlaybookKind) Type() string {
	return "PlaybookKind"
}

// ValidValues returns all valid PlaybookKind values as strings.
func (k *PlaybookKind) ValidValues() []string {
	return []string{string(PlaybookClient), string(PlaybookNode), string(PlaybookCloud)}
}

// PlaybookFile returns the playbook file name inside the bundle.
func (k PlaybookKind) PlaybookFile() string {
	switch k {
	case PlaybookClient:
		return "bacalhau-client.yml"
	case PlaybookNode:
		return "bacalhau-node.yml"
	case PlaybookCloud:
		return "bacalhau-cloud.yml"
	default:
		return ""
	}
}

// RequiresDependencies reports whether the bundle's declared automation
// dependencies must be installed before running this kind.
func (k PlaybookKind) RequiresDependencies() bool {
	return k == PlaybookNode || k == PlaybookCloud
}

// PlaybookKinds is a comma-separated list flag of playbook kinds.
type PlaybookKinds []PlaybookKind

// Set for PlaybookKinds (pflag.Value interface). Repeated kinds are ignored.
func (l *PlaybookKinds) Set(value string) error {
	for raw := range strings.SplitSeq(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var kind PlaybookKind

		err := kind.Set(raw)
		if err != nil {
			return err
		}

		if !slices.Contains(*l, kind) {
			*l = append(*l, kind)
		}
	}

	return nil
}

// String returns the comma-separated representation.
func (l *PlaybookKinds) String() string {
	names := make([]string, 0, len(*l))
	for _, kind := range *l {
		names = append(names, string(kind))
	}

	return strings.Join(names, ",")
}

// Type returns the type of the PlaybookKinds.
func (l *PlaybookKinds) Type() string {
	return "PlaybookKinds"
}

// --- PrivilegeMode Types ---

// PrivilegeMode selects whether the runner prompts for the escalation password.
// The zero value means the mode has not been decided yet.
type PrivilegeMode string

const (
	// PrivilegeAskBecomePass runs the playbook with --ask-become-pass.
	PrivilegeAskBecomePass PrivilegeMode = "AskBecomePass"
	// PrivilegeNoAsk runs the playbook without an escalation password prompt.
	PrivilegeNoAsk PrivilegeMode = "NoAsk"
)

// ValidPrivilegeModes returns all supported privilege modes.
func ValidPrivilegeModes() []PrivilegeMode {
	return []PrivilegeMode{PrivilegeAskBecomePass, PrivilegeNoAsk}
}

// Set for PrivilegeMode (pflag.Value interface).
func (p *PrivilegeMode) Set(value string) error {
	parsed, err := parseEnum(value, ValidPrivilegeModes(), ErrInvalidPrivilegeMode)
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// UnmarshalText lets configuration decoders reuse Set. Empty text leaves the mode unset.
func (p *PrivilegeMode) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = ""

		return nil
	}

	return p.Set(string(text))
}

// String returns the string representation of the PrivilegeMode.
func (p *PrivilegeMode) String() string {
	return string(*p)
}

// Type returns the type of the PrivilegeMode.
func (p *PrivilegeMode) Type() string {
	return "PrivilegeMode"
}

// ValidValues returns all valid PrivilegeMode values as strings.
func (p *PrivilegeMode) ValidValues() []string {
	return []string{string(PrivilegeAskBecomePass), string(PrivilegeNoAsk)}
}

// IsSet reports whether a mode has been chosen.
func (p PrivilegeMode) IsSet() bool {
	return p != ""
}

// --- Tooling Types ---

// Tooling names a prerequisite the bootstrapper can install or remove.
type Tooling string

const (
	// ToolingAnsible is the automation runner.
	ToolingAnsible Tooling = "Ansible"
	// ToolingPip is Python's package installer.
	ToolingPip Tooling = "Pip"
)

// ValidToolings returns all removable prerequisites.
func ValidToolings() []Tooling {
	return []Tooling{ToolingAnsible, ToolingPip}
}

// Set for Tooling (pflag.Value interface).
func (t *Tooling) Set(value string) error {
	parsed, err := parseEnum(value, ValidToolings(), ErrInvalidTooling)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// UnmarshalText lets configuration decoders reuse Set.
func (t *Tooling) UnmarshalText(text []byte) error {
	return t.Set(string(text))
}

// String returns the string representation of the Tooling.
func (t *Tooling) String() string {
	return string(*t)
}

// Type returns the type of the Tooling.
func (t *Tooling) Type() string {
	return "Tooling"
}

// ToolingList is a comma-separated list flag of prerequisites.
type ToolingList []Tooling

// Set for ToolingList (pflag.Value interface).
func (l *ToolingList) Set(value string) error {
	for raw := range strings.SplitSeq(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var tooling Tooling

		err := tooling.Set(raw)
		if err != nil {
			return err
		}

		if !slices.Contains(*l, tooling) {
			*l = append(*l, tooling)
		}
	}

	return nil
}

// String returns the comma-separated representation.
func (l *ToolingList) String() string {
	names := make([]string, 0, len(*l))
	for _, tooling := range *l {
		names = append(names, string(tooling))
	}

	return strings.Join(names, ",")
}

// Type returns the type of the ToolingList.
func (l *ToolingList) Type() string {
	return "ToolingList"
}

// --- Working Copy State Types ---

// Presence records whether the working copy exists on disk.
type Presence string

const (
	// PresenceAbsent means no working copy exists at the configured path.
	PresenceAbsent Presence = "Absent"
	// PresencePresent means a working copy directory exists.
	PresencePresent Presence = "Present"
)

// Cleanliness records whether tracked files carry local modifications.
type Cleanliness string

const (
	// CleanlinessUnknown means cleanliness has not been inspected.
	CleanlinessUnknown Cleanliness = "Unknown"
	// CleanlinessClean means tracked files match the checked-out revision.
	CleanlinessClean Cleanliness = "Clean"
	// CleanlinessDirty means tracked files were modified locally.
	CleanlinessDirty Cleanliness = "Dirty"
)

// Freshness records how the working copy compares to its upstream.
type Freshness string

const (
	// FreshnessUnknown means freshness has not been inspected.
	FreshnessUnknown Freshness = "Unknown"
	// FreshnessCurrent means no upstream commits are missing locally.
	FreshnessCurrent Freshness = "Current"
	// FreshnessBehind means upstream has commits the working copy lacks.
	FreshnessBehind Freshness = "Behind"
)
