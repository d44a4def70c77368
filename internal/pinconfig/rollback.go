package pinconfig

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/muurk/firmata/protocol"
)

// PinSnapshot represents saved pin states for rollback
type PinSnapshot struct {
	// States holds the saved pin states, keyed by pin number
	States map[int]*protocol.PinStateResponseMessage

	// Timestamp when this snapshot was created
	Timestamp time.Time

	// Description of what operation this snapshot was taken before
	Description string
}

// RollbackManager manages pin state snapshots for rollback support
type RollbackManager struct {
	applier *Applier

	// snapshots stores pin state snapshots
	// Limited to last 10 snapshots to prevent unbounded growth
	snapshots []*PinSnapshot

	// maxSnapshots is the maximum number of snapshots to retain
	maxSnapshots int

	// mutex protects concurrent access to snapshots
	mutex sync.RWMutex
}

// NewRollbackManager creates a new rollback manager for an applier
func NewRollbackManager(applier *Applier) *RollbackManager {
	return &RollbackManager{
		applier:      applier,
		snapshots:    make([]*PinSnapshot, 0, 10),
		maxSnapshots: 10,
	}
}

// SaveSnapshot captures the current state of every pin a profile names
// This should be called before applying the profile
func (rm *RollbackManager) SaveSnapshot(profile *Profile, description string) error {
	states, err := rm.applier.queryProfileStates(profile)
	if err != nil {
		return fmt.Errorf("failed to query pin states for snapshot: %w", err)
	}

	snapshot := &PinSnapshot{
		States:      states,
		Timestamp:   time.Now(),
		Description: description,
	}

	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = append(rm.snapshots, snapshot)

	// Limit snapshot history
	if len(rm.snapshots) > rm.maxSnapshots {
		rm.snapshots = rm.snapshots[1:]
	}

	return nil
}

// GetLatestSnapshot returns the most recent snapshot, or nil if no snapshots exist
func (rm *RollbackManager) GetLatestSnapshot() *PinSnapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	if len(rm.snapshots) == 0 {
		return nil
	}

	return rm.snapshots[len(rm.snapshots)-1]
}

// GetSnapshots returns all snapshots in chronological order (oldest first)
func (rm *RollbackManager) GetSnapshots() []*PinSnapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	// Return a copy to prevent external modification
	result := make([]*PinSnapshot, len(rm.snapshots))
	copy(result, rm.snapshots)
	return result
}

// ClearSnapshots removes all saved snapshots
func (rm *RollbackManager) ClearSnapshots() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = make([]*PinSnapshot, 0, 10)
}

// RollbackToSnapshot restores the board's pins to a previous snapshot
func (rm *RollbackManager) RollbackToSnapshot(snapshot *PinSnapshot) *VerificationResult {
	if snapshot == nil {
		return &VerificationResult{
			Success: false,
			Error:   fmt.Errorf("snapshot is nil"),
		}
	}

	restored := snapshotProfile(snapshot)
	if len(restored.Pins) == 0 {
		return &VerificationResult{
			Success: false,
			Error:   fmt.Errorf("snapshot holds no restorable pins"),
		}
	}

	// Apply the restored states with verification
	return rm.applier.ApplyAndVerify(restored, nil)
}

// snapshotProfile builds a profile that restores the snapshot's states.
// Reporting flags aren't part of pin state reports, so rollback cannot
// restore them; modes outside the standard table are skipped.
func snapshotProfile(snapshot *PinSnapshot) *Profile {
	pins := make([]int, 0, len(snapshot.States))
	for pin := range snapshot.States {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	restored := &Profile{
		Name:        "rollback",
		Description: fmt.Sprintf("restore states saved before: %s", snapshot.Description),
	}
	for _, pin := range pins {
		state := snapshot.States[pin]
		if _, ok := protocol.ParsePinMode(state.Mode.String()); !ok {
			continue
		}
		setting := PinSetting{Pin: pin, Mode: state.Mode.String()}
		if isWritableMode(state.Mode) {
			v := state.State
			setting.Value = &v
		}
		restored.Pins = append(restored.Pins, setting)
	}
	return restored
}

// RollbackToLatest restores the board's pins to the most recent snapshot
// Returns an error result if no snapshots exist
func (rm *RollbackManager) RollbackToLatest() *VerificationResult {
	snapshot := rm.GetLatestSnapshot()
	if snapshot == nil {
		return &VerificationResult{
			Success: false,
			Error:   fmt.Errorf("no snapshots available for rollback"),
		}
	}

	return rm.RollbackToSnapshot(snapshot)
}

// SafeApply applies a profile with automatic rollback on failure
// If verification fails, automatically attempts to restore the previous pin states
func (rm *RollbackManager) SafeApply(profile *Profile, opts *VerificationOptions, description string) *SafeApplyResult {
	result := &SafeApplyResult{
		Description: description,
	}

	// Save snapshot before applying
	if err := rm.SaveSnapshot(profile, description); err != nil {
		result.Error = fmt.Errorf("failed to save pre-apply snapshot: %w", err)
		return result
	}

	// Attempt apply with verification
	verifyResult := rm.applier.ApplyAndVerify(profile, opts)
	result.ApplyResult = verifyResult

	if verifyResult.Success {
		result.Success = true
		return result
	}

	// Apply failed - attempt rollback
	result.RollbackAttempted = true
	snapshot := rm.GetLatestSnapshot()

	if snapshot == nil {
		result.Error = fmt.Errorf("apply failed and no snapshot available for rollback: %w", verifyResult.Error)
		return result
	}

	rollbackResult := rm.RollbackToSnapshot(snapshot)
	result.RollbackResult = rollbackResult

	if rollbackResult.Success {
		result.RollbackSucceeded = true
		result.Error = fmt.Errorf("apply failed (verification: %w), successfully restored previous pin states", verifyResult.Error)
	} else {
		result.Error = fmt.Errorf("apply failed (verification: %w) AND rollback failed: %w", verifyResult.Error, rollbackResult.Error)
	}

	return result
}

// SafeApplyResult contains the results of a safe apply operation
type SafeApplyResult struct {
	// Success indicates whether the apply succeeded
	Success bool

	// Description of the apply operation
	Description string

	// ApplyResult contains the result of the apply attempt
	ApplyResult *VerificationResult

	// RollbackAttempted indicates whether rollback was attempted
	RollbackAttempted bool

	// RollbackSucceeded indicates whether rollback succeeded (only valid if RollbackAttempted is true)
	RollbackSucceeded bool

	// RollbackResult contains the result of the rollback attempt (only valid if RollbackAttempted is true)
	RollbackResult *VerificationResult

	// Error contains any error that occurred
	Error error
}

// String returns a human-readable summary of the safe apply result
func (r *SafeApplyResult) String() string {
	if r.Success {
		return fmt.Sprintf("✅ Profile applied: %s (verified in %d attempt(s))",
			r.Description, r.ApplyResult.Attempts)
	}

	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			return fmt.Sprintf("⚠️  Apply failed but previous pin states were restored: %s\nApply error: %v\nRollback: successful after %d attempt(s)",
				r.Description, r.ApplyResult.Error, r.RollbackResult.Attempts)
		}
		return fmt.Sprintf("❌ Apply failed and rollback failed: %s\nApply error: %v\nRollback error: %v",
			r.Description, r.ApplyResult.Error, r.RollbackResult.Error)
	}

	return fmt.Sprintf("❌ Apply failed: %s\nError: %v",
		r.Description, r.Error)
}

// PromptBeforeDestructive checks if a profile makes potentially disruptive pin
// changes and returns a warning message
// Returns empty string if the profile is safe
func PromptBeforeDestructive(current map[int]*protocol.PinStateResponseMessage, profile *Profile) string {
	warnings := []string{}

	for _, pin := range profile.PinNumbers() {
		s := profile.Setting(pin)
		mode, err := s.ResolveMode()
		if err != nil {
			continue
		}

		// Changing a driven output releases the line
		if state, ok := current[pin]; ok {
			if state.Mode == protocol.PinModeOutput && state.State != 0 && mode != protocol.PinModeOutput {
				warnings = append(warnings, fmt.Sprintf("⚠️  Pin %d is currently driving high; changing it to %s releases the line", pin, mode))
			}
		}

		// Most hobby servos stop at 180 degrees
		if mode == protocol.PinModeServo && s.HasValue() && *s.Value > 180 {
			warnings = append(warnings, fmt.Sprintf("⚠️  Pin %d servo angle %d exceeds 180", pin, *s.Value))
		}

		// Switching reporting off silences live readings
		if s.Report != nil && !*s.Report {
			warnings = append(warnings, fmt.Sprintf("⚠️  Pin %d reporting will be switched off (live readings stop)", pin))
		}
	}

	if len(warnings) == 0 {
		return ""
	}

	msg := "⚠️  POTENTIALLY DISRUPTIVE PIN CHANGES DETECTED ⚠️\n\n"
	for _, w := range warnings {
		msg += w + "\n"
	}
	msg += "\nIt is recommended to save a snapshot before proceeding.\n"
	msg += "You can restore the previous pin states if something goes wrong.\n"

	return msg
}
