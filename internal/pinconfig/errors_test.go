package pinconfig

import (
	"errors"
	"strings"
	"testing"
)

func TestProfileErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProfileError
		expected string
	}{
		{
			name:     "Pin-specific error",
			err:      NewValidationError(13, "output value must be 0 or 1, got 2"),
			expected: "Validation Error: pin 13: output value must be 0 or 1, got 2",
		},
		{
			name:     "Profile-wide error",
			err:      NewValidationError(-1, "profile defines no pins"),
			expected: "Validation Error: profile defines no pins",
		},
		{
			name:     "Wrapped cause",
			err:      NewParseError("failed to parse profile YAML", errors.New("yaml: line 3: mapping values")),
			expected: "Parse Error: failed to parse profile YAML (caused by: yaml: line 3: mapping values)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProfileErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewApplyError(13, "failed to set mode output", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorTypeChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"Parse error matches IsParseError", NewParseError("bad yaml", nil), IsParseError, true},
		{"Validation error matches IsValidationError", NewValidationError(2, "bad value"), IsValidationError, true},
		{"Apply error matches IsApplyError", NewApplyError(2, "write failed", nil), IsApplyError, true},
		{"Timeout matches IsTimeout", NewTimeoutError(2, "no reply"), IsTimeout, true},
		{"Verify error matches IsVerifyError", NewVerifyError(2, "mode mismatch"), IsVerifyError, true},
		{"Timeout does not match IsParseError", NewTimeoutError(2, "no reply"), IsParseError, false},
		{"Plain error matches nothing", errors.New("plain"), IsApplyError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"Query error is retryable", NewQueryError(5, "query failed", nil), true},
		{"Timeout is retryable", NewTimeoutError(5, "no reply"), true},
		{"Verify error is retryable", NewVerifyError(5, "mismatch"), true},
		{"Parse error is not retryable", NewParseError("bad yaml", nil), false},
		{"Validation error is not retryable", NewValidationError(5, "bad value"), false},
		{"Apply error is not retryable", NewApplyError(5, "write failed", nil), false},
		{"Unknown error is not retryable", errors.New("unknown error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedText string
	}{
		{
			name:         "Timeout error",
			err:          NewTimeoutError(5, "no pin state reply within 2s"),
			expectedText: "Board not responding (timeout)",
		},
		{
			name:         "Verify error",
			err:          NewVerifyError(5, "mode mismatch"),
			expectedText: "Board state does not match profile",
		},
		{
			name:         "Apply error",
			err:          NewApplyError(5, "write failed", nil),
			expectedText: "Failed to write configuration to board",
		},
		{
			name:         "Query error",
			err:          NewQueryError(5, "query failed", nil),
			expectedText: "Failed to query board state",
		},
		{
			name:         "Parse error",
			err:          NewParseError("bad yaml", nil),
			expectedText: "Failed to parse profile",
		},
		{
			name:         "Validation error keeps detail",
			err:          NewValidationError(5, "output value must be 0 or 1, got 2"),
			expectedText: "Validation Error: pin 5: output value must be 0 or 1, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetShortErrorMessage(tt.err)
			if got != tt.expectedText {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.expectedText)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedTexts []string // Texts that should appear in the hint
	}{
		{
			name: "Timeout error",
			err:  NewTimeoutError(5, "no reply"),
			expectedTexts: []string{
				"did not answer",
				"Troubleshooting:",
				"baud rate",
				"--verify",
			},
		},
		{
			name: "Verify error",
			err:  NewVerifyError(5, "mismatch"),
			expectedTexts: []string{
				"does not match",
				"capability query",
				"Another client",
			},
		},
		{
			name: "Apply error",
			err:  NewApplyError(5, "write failed", nil),
			expectedTexts: []string{
				"failed",
				"connection may have dropped",
				"serial port",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := GetTroubleshootingHint(tt.err)

			for _, expectedText := range tt.expectedTexts {
				if !strings.Contains(hint, expectedText) {
					t.Errorf("GetTroubleshootingHint() missing expected text %q\nGot: %s", expectedText, hint)
				}
			}
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrTypeParse, "Parse Error"},
		{ErrTypeValidation, "Validation Error"},
		{ErrTypeApply, "Apply Error"},
		{ErrTypeQuery, "Query Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeVerify, "Verification Error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.errorType.String(); got != tt.expected {
				t.Errorf("ErrorType.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
