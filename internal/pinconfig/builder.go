package pinconfig

// ProfileBuilder provides a fluent API for building pin profiles.
// It tracks changes per pin and validates them before creating a Profile.
//
// Example usage:
//
//	builder := NewProfileBuilder()
//	profile, err := builder.
//	    SetOutput(13, 1).            // LED on, pin 13
//	    SetInput(2, true).           // button with digital reporting
//	    SetAnalogReport(14, true).   // A0 streaming
//	    SetSamplingInterval(50).
//	    Build()
type ProfileBuilder struct {
	name        string
	description string

	samplingChanged  bool
	samplingInterval int

	// settings preserves insertion order; index maps pin -> settings slot
	settings []PinSetting
	index    map[int]int
}

// NewProfileBuilder creates an empty profile builder.
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{
		index: make(map[int]int),
	}
}

// setting returns the builder's entry for a pin, creating it if needed.
func (b *ProfileBuilder) setting(pin int) *PinSetting {
	if i, ok := b.index[pin]; ok {
		return &b.settings[i]
	}
	b.settings = append(b.settings, PinSetting{Pin: pin})
	b.index[pin] = len(b.settings) - 1
	return &b.settings[len(b.settings)-1]
}

// SetName sets the profile name.
func (b *ProfileBuilder) SetName(name string) *ProfileBuilder {
	b.name = name
	return b
}

// SetDescription sets the profile description.
func (b *ProfileBuilder) SetDescription(description string) *ProfileBuilder {
	b.description = description
	return b
}

// SetSamplingInterval sets the analog sampling interval in milliseconds.
func (b *ProfileBuilder) SetSamplingInterval(millis int) *ProfileBuilder {
	b.samplingChanged = true
	b.samplingInterval = millis
	return b
}

// SetMode sets the mode for a pin.
// mode: a pin mode name such as "input", "output", "analog", "pwm", "servo", "pullup"
func (b *ProfileBuilder) SetMode(pin int, mode string) *ProfileBuilder {
	b.setting(pin).Mode = mode
	return b
}

// SetValue sets the value written to a pin after its mode is set.
// Only meaningful for output (0/1), pwm and servo pins.
func (b *ProfileBuilder) SetValue(pin int, value int) *ProfileBuilder {
	v := value
	b.setting(pin).Value = &v
	return b
}

// SetReport enables or disables value reporting for a pin.
func (b *ProfileBuilder) SetReport(pin int, enable bool) *ProfileBuilder {
	r := enable
	b.setting(pin).Report = &r
	return b
}

// SetOutput configures a pin as a digital output with an initial level.
func (b *ProfileBuilder) SetOutput(pin int, value int) *ProfileBuilder {
	return b.SetMode(pin, "output").SetValue(pin, value)
}

// SetPWM configures a pin for PWM output with an initial duty value.
func (b *ProfileBuilder) SetPWM(pin int, value int) *ProfileBuilder {
	return b.SetMode(pin, "pwm").SetValue(pin, value)
}

// SetServo configures a pin for servo output with an initial angle.
func (b *ProfileBuilder) SetServo(pin int, angle int) *ProfileBuilder {
	return b.SetMode(pin, "servo").SetValue(pin, angle)
}

// SetInput configures a pin as a digital input, optionally with reporting.
func (b *ProfileBuilder) SetInput(pin int, report bool) *ProfileBuilder {
	return b.SetMode(pin, "input").SetReport(pin, report)
}

// SetPullup configures a pin as a digital input with the internal pullup,
// optionally with reporting.
func (b *ProfileBuilder) SetPullup(pin int, report bool) *ProfileBuilder {
	return b.SetMode(pin, "pullup").SetReport(pin, report)
}

// SetAnalogReport configures a pin for analog input with reporting.
func (b *ProfileBuilder) SetAnalogReport(pin int, enable bool) *ProfileBuilder {
	return b.SetMode(pin, "analog").SetReport(pin, enable)
}

// HasChanges returns true if any settings have been made.
func (b *ProfileBuilder) HasChanges() bool {
	return len(b.settings) > 0 || b.samplingChanged
}

// Validate checks if the current settings form a valid profile.
// Returns the first validation error, or nil.
func (b *ProfileBuilder) Validate() error {
	profile := b.snapshot()
	_, critical := SeparateWarningsAndErrors(ValidateProfile(profile))
	if len(critical) > 0 {
		return critical[0]
	}
	return nil
}

// snapshot assembles the builder state into a Profile without validating.
func (b *ProfileBuilder) snapshot() *Profile {
	profile := &Profile{
		Name:        b.name,
		Description: b.description,
		Pins:        append([]PinSetting(nil), b.settings...),
	}
	if b.samplingChanged {
		profile.SamplingInterval = b.samplingInterval
	}
	return profile
}

// Build creates a Profile from the builder's state.
// Returns an error if validation fails.
func (b *ProfileBuilder) Build() (*Profile, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.snapshot(), nil
}

// Reset clears all settings and restores the builder to its initial state.
func (b *ProfileBuilder) Reset() *ProfileBuilder {
	b.name = ""
	b.description = ""
	b.samplingChanged = false
	b.samplingInterval = 0
	b.settings = nil
	b.index = make(map[int]int)
	return b
}
