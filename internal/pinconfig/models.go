package pinconfig

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/muurk/firmata/protocol"
)

// Profile represents a declarative pin configuration loaded from YAML.
// A profile lists the modes, output values, and reporting flags to apply
// to a board in one operation.
type Profile struct {
	// Name is an optional profile identifier used in summaries and logs
	Name string `yaml:"name,omitempty"`

	// Description is free text shown when listing or applying the profile
	Description string `yaml:"description,omitempty"`

	// SamplingInterval is the analog sampling interval in milliseconds.
	// Zero leaves the board's current interval untouched.
	SamplingInterval int `yaml:"sampling_interval_ms,omitempty"`

	// Pins holds the per-pin settings in application order
	Pins []PinSetting `yaml:"pins"`
}

// PinSetting represents the desired configuration of a single pin.
type PinSetting struct {
	// Pin is the digital pin number (0-127)
	Pin int `yaml:"pin"`

	// Mode is the pin mode name: "input", "output", "analog", "pwm",
	// "servo", "pullup" and the other names understood by the protocol
	Mode string `yaml:"mode"`

	// Value is the value to write after setting the mode.
	// Only meaningful for output (0/1), pwm and servo modes.
	Value *int `yaml:"value,omitempty"`

	// Report enables or disables value reporting for the pin.
	// Digital input pins report per port, analog pins per channel.
	Report *bool `yaml:"report,omitempty"`
}

// ParseProfile parses a YAML pin profile from raw file contents.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, NewParseError("failed to parse profile YAML", err)
	}
	if len(profile.Pins) == 0 {
		return nil, NewParseError("profile defines no pins", nil)
	}
	return &profile, nil
}

// LoadProfile reads and parses a pin profile from a file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(fmt.Sprintf("failed to read profile %s", path), err)
	}
	return ParseProfile(data)
}

// Setting returns the setting for a pin, or nil if the profile doesn't
// mention it. When a pin appears more than once the last entry wins.
func (p *Profile) Setting(pin int) *PinSetting {
	for i := len(p.Pins) - 1; i >= 0; i-- {
		if p.Pins[i].Pin == pin {
			return &p.Pins[i]
		}
	}
	return nil
}

// PinNumbers returns the distinct pin numbers in the profile, sorted.
func (p *Profile) PinNumbers() []int {
	seen := make(map[int]bool, len(p.Pins))
	pins := make([]int, 0, len(p.Pins))
	for _, s := range p.Pins {
		if !seen[s.Pin] {
			seen[s.Pin] = true
			pins = append(pins, s.Pin)
		}
	}
	sort.Ints(pins)
	return pins
}

// ResolveMode maps the setting's mode name to its protocol value.
func (s *PinSetting) ResolveMode() (protocol.PinMode, error) {
	mode, ok := protocol.ParsePinMode(s.Mode)
	if !ok {
		return 0, NewValidationError(s.Pin, fmt.Sprintf("unknown pin mode %q", s.Mode))
	}
	return mode, nil
}

// HasValue reports whether the setting carries a value to write.
func (s *PinSetting) HasValue() bool {
	return s.Value != nil
}

// WantsReport reports whether the setting enables reporting.
func (s *PinSetting) WantsReport() bool {
	return s.Report != nil && *s.Report
}

// Mode classification helpers. These drive which write and report
// operations a setting translates into.

func isWritableMode(m protocol.PinMode) bool {
	return m == protocol.PinModeOutput || m == protocol.PinModePWM || m == protocol.PinModeServo
}

func isDigitalInputMode(m protocol.PinMode) bool {
	return m == protocol.PinModeInput || m == protocol.PinModePullup
}

func isReportableMode(m protocol.PinMode) bool {
	return isDigitalInputMode(m) || m == protocol.PinModeAnalog
}
