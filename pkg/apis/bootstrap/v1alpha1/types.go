package v1alpha1

import (
	"strings"
)

// LatestVersion is the sentinel meaning "whatever the bundle ships by default".
const LatestVersion = "latest"

// --- Working Copy ---

// WorkingCopyState describes the local bundle replica as last inspected.
type WorkingCopyState struct {
	Presence    Presence
	Cleanliness Cleanliness
	Freshness   Freshness
}

// FreshCloneState is the state of a copy that was just fetched.
func FreshCloneState() WorkingCopyState {
	return WorkingCopyState{
		Presence:    PresencePresent,
		Cleanliness: CleanlinessClean,
		Freshness:   FreshnessCurrent,
	}
}

// Runnable reports whether a run may proceed against this copy.
// A Behind copy is runnable only with explicit consent to use the stale version.
func (s WorkingCopyState) Runnable(consentStale bool) bool {
	if s.Presence != PresencePresent || s.Cleanliness != CleanlinessClean {
		return false
	}

	switch s.Freshness {
	case FreshnessCurrent:
		return true
	case FreshnessBehind:
		return consentStale
	default:
		return false
	}
}

// --- Run Specification ---

// Target is where the bundle is applied.
type Target struct {
	// Local applies the bundle to this machine via the bundle's own inventory.
	Local bool
	// Inventory is the path of a user-supplied inventory when Local is false.
	Inventory string
}

// LocalTarget returns the target that applies the bundle to this machine.
func LocalTarget() Target {
	return Target{Local: true}
}

// String renders the target for messages.
func (t Target) String() string {
	if t.Local {
		return "local"
	}

	return t.Inventory
}

// RunSpecification is the fully resolved set of parameters for one bundle run.
type RunSpecification struct {
	PlaybookKind  PlaybookKind
	TargetVersion string
	Target        Target
	PrivilegeMode PrivilegeMode
}

// IsLatest reports whether the run uses the bundle's default version.
func (s RunSpecification) IsLatest() bool {
	return s.TargetVersion == LatestVersion
}

// NormalizeVersion maps blank input and any casing of "latest" to the sentinel
// and otherwise returns the trimmed input.
func NormalizeVersion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, LatestVersion) {
		return LatestVersion
	}

	return trimmed
}

// --- Operating Mode ---

// PendingAction is an action requested up front, typically from flags.
type PendingAction struct {
	Action    Action
	Playbooks []PlaybookKind
}

// OperatingMode is the supervisor's view of how the bootstrapper runs.
type OperatingMode struct {
	Interactivity   Interactivity
	HasReloopedOnce bool
	PendingActions  []PendingAction
}

// IsUnattended reports whether prompting is forbidden.
func (m *OperatingMode) IsUnattended() bool {
	return m.Interactivity.IsUnattended()
}

// IsSilent reports whether non-fatal output is suppressed.
func (m *OperatingMode) IsSilent() bool {
	return m.Interactivity.IsSilent()
}

// HasPending reports whether an action was requested up front.
func (m *OperatingMode) HasPending() bool {
	return len(m.PendingActions) > 0
}

// Validate fails fast when an unattended run has nothing to do.
func (m *OperatingMode) Validate() error {
	if m.IsUnattended() && !m.HasPending() {
		return ErrNoActionSpecified
	}

	return nil
}
