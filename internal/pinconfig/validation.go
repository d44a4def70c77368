package pinconfig

import (
	"fmt"
	"strings"

	"github.com/muurk/firmata/protocol"
)

// ValidatePinNumber validates a pin number.
// Valid range is 0-127 (the widest range the wire format can address).
func ValidatePinNumber(pin int) error {
	if pin < 0 || pin > 127 {
		return NewValidationError(pin, fmt.Sprintf("pin number must be 0-127, got %d", pin))
	}
	return nil
}

// ValidateSetting validates a single pin setting.
// Returns a slice of validation errors (empty if valid).
func ValidateSetting(s *PinSetting) []error {
	var errs []error

	if err := ValidatePinNumber(s.Pin); err != nil {
		errs = append(errs, err)
	}

	mode, err := s.ResolveMode()
	if err != nil {
		errs = append(errs, err)
		// Value and report rules depend on the mode; stop here
		return errs
	}

	if s.HasValue() {
		if !isWritableMode(mode) {
			errs = append(errs, NewValidationError(s.Pin,
				fmt.Sprintf("value is only valid for output, pwm and servo modes, not %q", s.Mode)))
		} else if mode == protocol.PinModeOutput {
			if *s.Value != 0 && *s.Value != 1 {
				errs = append(errs, NewValidationError(s.Pin,
					fmt.Sprintf("output value must be 0 or 1, got %d", *s.Value)))
			}
		} else if *s.Value < 0 || *s.Value > protocol.MaxUint14 {
			errs = append(errs, NewValidationError(s.Pin,
				fmt.Sprintf("value must be 0-%d, got %d", protocol.MaxUint14, *s.Value)))
		}
	}

	if s.Report != nil && !isReportableMode(mode) {
		errs = append(errs, NewValidationError(s.Pin,
			fmt.Sprintf("report is only valid for input, pullup and analog modes, not %q", s.Mode)))
	}

	return errs
}

// ValidateProfile validates a complete profile.
// This is the main validation entry point before applying a profile.
// Returns a slice of validation errors (empty if valid).
func ValidateProfile(p *Profile) []error {
	var allErrors []error

	if len(p.Pins) == 0 {
		allErrors = append(allErrors, NewValidationError(-1, "profile defines no pins"))
	}

	if p.SamplingInterval < 0 || p.SamplingInterval > protocol.MaxUint14 {
		allErrors = append(allErrors, NewValidationError(-1,
			fmt.Sprintf("sampling interval must be 0-%d ms, got %d", protocol.MaxUint14, p.SamplingInterval)))
	}

	for i := range p.Pins {
		allErrors = append(allErrors, ValidateSetting(&p.Pins[i])...)
	}

	// Check for logical conflicts
	conflicts := CheckLogicalConflicts(p)
	allErrors = append(allErrors, conflicts...)

	return allErrors
}

// CheckLogicalConflicts checks for conflicts in the profile.
// These are settings that are valid individually but problematic together.
func CheckLogicalConflicts(p *Profile) []error {
	var conflicts []error

	// Duplicate pin entries: the later entry wins, which is rarely intended
	seen := make(map[int]bool, len(p.Pins))
	for _, s := range p.Pins {
		if seen[s.Pin] {
			conflicts = append(conflicts, NewValidationError(s.Pin,
				"warning: pin listed more than once (the last entry wins)"))
		}
		seen[s.Pin] = true
	}

	// Output pins without a value keep whatever the firmware last drove
	for i := range p.Pins {
		s := &p.Pins[i]
		mode, err := s.ResolveMode()
		if err != nil {
			continue
		}
		if isWritableMode(mode) && !s.HasValue() {
			conflicts = append(conflicts, NewValidationError(s.Pin,
				fmt.Sprintf("warning: %s pin has no value (current output level is kept)", s.Mode)))
		}
	}

	return conflicts
}

// ValidateAgainstCapabilities checks a profile against the board's reported
// pin inventory. Use this when a CapabilityResponse is available to catch
// unsupported modes before writing anything.
// Returns a slice of validation errors (empty if valid).
func ValidateAgainstCapabilities(p *Profile, caps *protocol.CapabilityResponseMessage) []error {
	var errs []error

	byPin := make(map[int]protocol.PinCapability, len(caps.Pins))
	for _, pc := range caps.Pins {
		byPin[pc.Pin] = pc
	}

	for i := range p.Pins {
		s := &p.Pins[i]
		mode, err := s.ResolveMode()
		if err != nil {
			// ValidateProfile reports unknown modes
			continue
		}

		pc, exists := byPin[s.Pin]
		if !exists {
			errs = append(errs, NewValidationError(s.Pin,
				fmt.Sprintf("board reports no pin %d (inventory has %d pins)", s.Pin, len(caps.Pins))))
			continue
		}

		if !pc.Supports(mode) {
			errs = append(errs, NewValidationError(s.Pin,
				fmt.Sprintf("board does not support mode %q on pin %d", s.Mode, s.Pin)))
		}
	}

	return errs
}

// FormatValidationErrors formats a slice of validation errors into a user-friendly message.
func FormatValidationErrors(errors []error) string {
	if len(errors) == 0 {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile validation failed with %d error(s):\n", len(errors)))

	for i, err := range errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return sb.String()
}

// IsWarning checks if a validation error is a warning (non-fatal).
// Warnings have error messages starting with "warning:".
func IsWarning(err error) bool {
	// Check if it's a ProfileError and inspect the Message field
	if profErr, ok := err.(*ProfileError); ok {
		return strings.HasPrefix(profErr.Message, "warning:")
	}
	// Fallback to checking the error string
	return strings.Contains(err.Error(), "warning:")
}

// SeparateWarningsAndErrors separates validation errors into warnings and errors.
// Warnings are non-fatal issues that the user should be aware of.
// Errors are fatal issues that prevent the profile from being applied.
func SeparateWarningsAndErrors(errors []error) (warnings []error, criticalErrors []error) {
	for _, err := range errors {
		if IsWarning(err) {
			warnings = append(warnings, err)
		} else {
			criticalErrors = append(criticalErrors, err)
		}
	}
	return warnings, criticalErrors
}
