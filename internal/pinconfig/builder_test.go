package pinconfig

import (
	"testing"
)

// TestNewProfileBuilder tests builder initialization
func TestNewProfileBuilder(t *testing.T) {
	builder := NewProfileBuilder()

	if builder.HasChanges() {
		t.Error("A fresh builder should have no changes")
	}
	if len(builder.settings) != 0 {
		t.Errorf("Expected no settings, got %d", len(builder.settings))
	}
}

// TestBuilderSetMode tests mode accumulation per pin
func TestBuilderSetMode(t *testing.T) {
	builder := NewProfileBuilder()

	builder.SetMode(13, "output").
		SetMode(2, "input").
		SetMode(13, "pwm") // same pin again updates in place

	if len(builder.settings) != 2 {
		t.Fatalf("Expected 2 settings, got %d", len(builder.settings))
	}
	if builder.settings[0].Pin != 13 || builder.settings[0].Mode != "pwm" {
		t.Errorf("Pin 13 setting = %+v, want mode pwm", builder.settings[0])
	}
	if !builder.HasChanges() {
		t.Error("HasChanges should be true after SetMode")
	}
}

// TestBuilderConveniences tests the mode+value shorthand methods
func TestBuilderConveniences(t *testing.T) {
	builder := NewProfileBuilder()

	builder.SetOutput(13, 1).
		SetPWM(9, 200).
		SetServo(10, 90).
		SetInput(2, true).
		SetPullup(4, false).
		SetAnalogReport(14, true)

	profile, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	checks := []struct {
		pin        int
		mode       string
		value      *int
		wantReport *bool
	}{
		{13, "output", intp(1), nil},
		{9, "pwm", intp(200), nil},
		{10, "servo", intp(90), nil},
		{2, "input", nil, boolp(true)},
		{4, "pullup", nil, boolp(false)},
		{14, "analog", nil, boolp(true)},
	}

	for _, c := range checks {
		s := profile.Setting(c.pin)
		if s == nil {
			t.Errorf("Pin %d missing from built profile", c.pin)
			continue
		}
		if s.Mode != c.mode {
			t.Errorf("Pin %d mode = %q, want %q", c.pin, s.Mode, c.mode)
		}
		if (s.Value == nil) != (c.value == nil) {
			t.Errorf("Pin %d value presence = %v, want %v", c.pin, s.Value != nil, c.value != nil)
		} else if s.Value != nil && *s.Value != *c.value {
			t.Errorf("Pin %d value = %d, want %d", c.pin, *s.Value, *c.value)
		}
		if (s.Report == nil) != (c.wantReport == nil) {
			t.Errorf("Pin %d report presence = %v, want %v", c.pin, s.Report != nil, c.wantReport != nil)
		} else if s.Report != nil && *s.Report != *c.wantReport {
			t.Errorf("Pin %d report = %v, want %v", c.pin, *s.Report, *c.wantReport)
		}
	}
}

// TestBuilderSamplingInterval tests sampling interval handling
func TestBuilderSamplingInterval(t *testing.T) {
	builder := NewProfileBuilder()
	builder.SetOutput(13, 1).SetSamplingInterval(50)

	if !builder.HasChanges() {
		t.Error("HasChanges should be true")
	}

	profile, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if profile.SamplingInterval != 50 {
		t.Errorf("SamplingInterval = %d, want 50", profile.SamplingInterval)
	}
}

// TestBuilderValidate tests validation during build
func TestBuilderValidate(t *testing.T) {
	t.Run("valid profile builds", func(t *testing.T) {
		builder := NewProfileBuilder()
		builder.SetOutput(13, 1)

		if err := builder.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("bad output value fails", func(t *testing.T) {
		builder := NewProfileBuilder()
		builder.SetOutput(13, 5)

		if _, err := builder.Build(); err == nil {
			t.Error("Build() should reject output value 5")
		} else if !IsValidationError(err) {
			t.Errorf("Expected ValidationError, got %T", err)
		}
	})

	t.Run("unknown mode fails", func(t *testing.T) {
		builder := NewProfileBuilder()
		builder.SetMode(13, "blinky")

		if _, err := builder.Build(); err == nil {
			t.Error("Build() should reject unknown mode")
		}
	})

	t.Run("empty builder fails", func(t *testing.T) {
		builder := NewProfileBuilder()

		if _, err := builder.Build(); err == nil {
			t.Error("Build() should reject an empty profile")
		}
	})

	t.Run("warnings do not block build", func(t *testing.T) {
		builder := NewProfileBuilder()
		builder.SetMode(13, "output") // no value: warning only

		if _, err := builder.Build(); err != nil {
			t.Errorf("Build() error = %v, warnings should not block", err)
		}
	})
}

// TestBuilderNameAndDescription tests metadata fields
func TestBuilderNameAndDescription(t *testing.T) {
	builder := NewProfileBuilder()
	profile, err := builder.
		SetName("rig").
		SetDescription("bench test rig").
		SetOutput(13, 0).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if profile.Name != "rig" {
		t.Errorf("Name = %q, want rig", profile.Name)
	}
	if profile.Description != "bench test rig" {
		t.Errorf("Description = %q, want 'bench test rig'", profile.Description)
	}
}

// TestBuilderReset tests restoring the builder to its initial state
func TestBuilderReset(t *testing.T) {
	builder := NewProfileBuilder()
	builder.SetOutput(13, 1).SetSamplingInterval(50).SetName("rig")

	builder.Reset()

	if builder.HasChanges() {
		t.Error("HasChanges should be false after Reset")
	}
	if builder.name != "" {
		t.Errorf("name = %q, want empty after Reset", builder.name)
	}

	// The builder is reusable after a reset
	profile, err := builder.SetInput(2, true).Build()
	if err != nil {
		t.Fatalf("Build() after Reset error = %v", err)
	}
	if len(profile.Pins) != 1 || profile.Pins[0].Pin != 2 {
		t.Errorf("Profile after Reset = %+v, want single pin 2", profile.Pins)
	}
}

// TestBuilderSnapshotIsolation tests that built profiles don't share state
func TestBuilderSnapshotIsolation(t *testing.T) {
	builder := NewProfileBuilder()
	builder.SetOutput(13, 1)

	first, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	builder.SetValue(13, 0)

	if *first.Setting(13).Value != 1 {
		t.Error("Mutating the builder changed an already-built profile")
	}
}

func BenchmarkBuilderBuild(b *testing.B) {
	for i := 0; i < b.N; i++ {
		builder := NewProfileBuilder()
		_, err := builder.
			SetOutput(13, 1).
			SetInput(2, true).
			SetAnalogReport(14, true).
			Build()
		if err != nil {
			b.Fatal(err)
		}
	}
}
