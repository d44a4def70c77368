package pinconfig

import (
	"fmt"
	"strings"
)

// Error types for pin configuration operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeParse indicates a profile parsing error (malformed YAML, empty profile)
	ErrTypeParse ErrorType = iota
	// ErrTypeValidation indicates an invalid profile (bad pin, mode, or value)
	ErrTypeValidation
	// ErrTypeApply indicates a failure sending configuration to the board
	ErrTypeApply
	// ErrTypeQuery indicates a failure sending a state query to the board
	ErrTypeQuery
	// ErrTypeTimeout indicates the board did not answer a query in time
	ErrTypeTimeout
	// ErrTypeVerify indicates the board reported a state that does not match the profile
	ErrTypeVerify
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeApply:
		return "Apply Error"
	case ErrTypeQuery:
		return "Query Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeVerify:
		return "Verification Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ProfileError represents an error that occurred while loading, validating,
// or applying a pin profile
type ProfileError struct {
	Type      ErrorType // Category of error
	Pin       int       // Pin the error concerns, -1 when not pin-specific
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether the operation may succeed on retry
}

// Error implements the error interface
func (e *ProfileError) Error() string {
	msg := e.Message
	if e.Pin >= 0 {
		msg = fmt.Sprintf("pin %d: %s", e.Pin, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ProfileError) Unwrap() error {
	return e.Err
}

// NewParseError creates a profile parsing error
func NewParseError(message string, err error) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeParse,
		Pin:       -1,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewValidationError creates a validation error for a pin (-1 for profile-wide)
func NewValidationError(pin int, message string) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeValidation,
		Pin:       pin,
		Message:   message,
		Retryable: false,
	}
}

// NewApplyError creates an error for a failed board write
func NewApplyError(pin int, message string, err error) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeApply,
		Pin:       pin,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewQueryError creates an error for a failed state query
func NewQueryError(pin int, message string, err error) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeQuery,
		Pin:       pin,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewTimeoutError creates an error for an unanswered state query
func NewTimeoutError(pin int, message string) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeTimeout,
		Pin:       pin,
		Message:   message,
		Retryable: true,
	}
}

// NewVerifyError creates an error for a state mismatch after apply
func NewVerifyError(pin int, message string) *ProfileError {
	return &ProfileError{
		Type:      ErrTypeVerify,
		Pin:       pin,
		Message:   message,
		Retryable: true,
	}
}

// IsParseError checks if an error is a profile parsing error
func IsParseError(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Type == ErrTypeParse
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Type == ErrTypeValidation
	}
	return false
}

// IsApplyError checks if an error is a board write error
func IsApplyError(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Type == ErrTypeApply
	}
	return false
}

// IsTimeout checks if an error is a query timeout
func IsTimeout(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Type == ErrTypeTimeout
	}
	return false
}

// IsVerifyError checks if an error is a post-apply state mismatch
func IsVerifyError(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Type == ErrTypeVerify
	}
	return false
}

// IsRetryable checks if an operation should be retried
func IsRetryable(err error) bool {
	if profErr, ok := err.(*ProfileError); ok {
		return profErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	profErr, ok := err.(*ProfileError)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch profErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The board did not answer the pin state query in time.",
			"Troubleshooting:",
			"  • Check that the board is powered and the cable is seated",
			"  • Verify the baud rate matches the firmware (57600 is the default)",
			"  • Older firmwares lack pin state support - apply without --verify",
			"  • Try increasing the query timeout",
		}, "\n")

	case ErrTypeVerify:
		return strings.Join([]string{
			"The board reported a pin state that does not match the profile.",
			"Troubleshooting:",
			"  • The firmware may not support the requested mode on this pin",
			"  • Run the capability query to see what each pin supports",
			"  • Another client may be driving the same board",
		}, "\n")

	case ErrTypeApply:
		return strings.Join([]string{
			"Writing the configuration to the board failed.",
			"Troubleshooting:",
			"  • The connection may have dropped - reconnect and retry",
			"  • Check the transport (serial port still present, network reachable)",
		}, "\n")

	case ErrTypeValidation:
		return "The profile values are invalid. Check the error message for details."

	case ErrTypeParse:
		return "The profile file could not be parsed. Check the YAML syntax."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	profErr, ok := err.(*ProfileError)
	if !ok {
		return err.Error()
	}

	switch profErr.Type {
	case ErrTypeTimeout:
		return "Board not responding (timeout)"
	case ErrTypeVerify:
		return "Board state does not match profile"
	case ErrTypeApply:
		return "Failed to write configuration to board"
	case ErrTypeQuery:
		return "Failed to query board state"
	case ErrTypeParse:
		return "Failed to parse profile"
	case ErrTypeValidation:
		return profErr.Error()
	default:
		return profErr.Message
	}
}
