package pinconfig

import (
	"fmt"
	"time"

	"github.com/muurk/firmata/protocol"
)

// VerificationOptions configures how profile verification behaves
type VerificationOptions struct {
	// MaxRetries is the maximum number of verification attempts
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first verification attempt
	// This gives the board time to settle after the writes
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between retry attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	// If true, each retry delay is doubled (up to MaxRetryDelay)
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay is the maximum delay between retries when using exponential backoff
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          500 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// VerificationResult contains the results of a profile verification
type VerificationResult struct {
	// Success indicates whether verification succeeded
	Success bool

	// Attempts is the number of attempts made
	Attempts int

	// ActualStates holds the pin states retrieved from the board, keyed
	// by pin number
	ActualStates map[int]*protocol.PinStateResponseMessage

	// Mismatches lists all detected differences between the profile and
	// the board's reported states
	Mismatches []string

	// Error is any error that occurred during verification
	Error error
}

// VerifyProfileWithRetry checks that the board's pin states match a profile.
// It queries the state of every pin the profile names and retries with
// exponential backoff, since boards answer state queries asynchronously and
// a write may not have settled yet.
func (a *Applier) VerifyProfileWithRetry(profile *Profile, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &VerificationResult{
		Success:    false,
		Attempts:   0,
		Mismatches: []string{},
	}

	// Initial delay to give the board time to apply the writes
	time.Sleep(opts.InitialDelay)

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts++

		// Delay before retry (not on first attempt)
		if attempt > 0 {
			time.Sleep(currentDelay)

			// Exponential backoff
			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}

		states, err := a.queryProfileStates(profile)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to query pin states: %w", attempt+1, err)
			if !IsRetryable(err) {
				return result
			}
			continue
		}

		result.ActualStates = states

		mismatches := verifyProfileMatch(profile, states)
		result.Mismatches = mismatches

		if len(mismatches) == 0 {
			result.Success = true
			return result
		}

		if attempt < opts.MaxRetries {
			result.Error = fmt.Errorf("attempt %d: pin state mismatch (will retry)", attempt+1)
		} else {
			result.Error = fmt.Errorf("verification failed after %d attempts: %s", result.Attempts, formatMismatches(mismatches))
		}
	}

	return result
}

// queryProfileStates fetches the current state of every pin in the profile
func (a *Applier) queryProfileStates(profile *Profile) (map[int]*protocol.PinStateResponseMessage, error) {
	states := make(map[int]*protocol.PinStateResponseMessage, len(profile.Pins))
	for _, pin := range profile.PinNumbers() {
		state, err := a.QueryPinState(pin)
		if err != nil {
			return nil, err
		}
		states[pin] = state
	}
	return states, nil
}

// verifyProfileMatch compares a profile with the board's reported states
// Returns a list of mismatches (empty if all matches)
func verifyProfileMatch(profile *Profile, states map[int]*protocol.PinStateResponseMessage) []string {
	var mismatches []string

	for _, pin := range profile.PinNumbers() {
		s := profile.Setting(pin)
		mode, err := s.ResolveMode()
		if err != nil {
			// Apply rejects unknown modes before verification runs
			continue
		}

		state, ok := states[pin]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("pin %d: no state reported", pin))
			continue
		}

		if state.Mode != mode {
			mismatches = append(mismatches, fmt.Sprintf("pin %d mode: expected %s, got %s", pin, mode, state.Mode))
			continue
		}

		if s.HasValue() {
			switch mode {
			case protocol.PinModeOutput:
				want := 0
				if *s.Value != 0 {
					want = 1
				}
				if state.State != want {
					mismatches = append(mismatches, fmt.Sprintf("pin %d level: expected %d, got %d", pin, want, state.State))
				}
			case protocol.PinModePWM, protocol.PinModeServo:
				if state.State != *s.Value {
					mismatches = append(mismatches, fmt.Sprintf("pin %d value: expected %d, got %d", pin, *s.Value, state.State))
				}
			}
		}
	}

	// Note: reporting flags cannot be verified (pin state reports omit them)

	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	if len(mismatches) == 0 {
		return "none"
	}
	if len(mismatches) == 1 {
		return mismatches[0]
	}
	result := fmt.Sprintf("%d mismatches: ", len(mismatches))
	for i, m := range mismatches {
		if i > 0 {
			result += "; "
		}
		result += m
	}
	return result
}

// ApplyAndVerify is a convenience method that applies a profile and verifies
// the board took it. This combines Apply and VerifyProfileWithRetry in a
// single call.
func (a *Applier) ApplyAndVerify(profile *Profile, opts *VerificationOptions) *VerificationResult {
	if err := a.Apply(profile); err != nil {
		return &VerificationResult{
			Success:  false,
			Attempts: 0,
			Error:    fmt.Errorf("apply failed: %w", err),
		}
	}

	return a.VerifyProfileWithRetry(profile, opts)
}

// VerifyPin is a convenience method to verify a single pin's mode and value
func (a *Applier) VerifyPin(pin int, mode string, value *int, opts *VerificationOptions) *VerificationResult {
	profile := &Profile{
		Pins: []PinSetting{{Pin: pin, Mode: mode, Value: value}},
	}
	return a.VerifyProfileWithRetry(profile, opts)
}
