package pinconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/firmata/protocol"
)

// Summary returns a one-line summary of the profile
func (p *Profile) Summary() string {
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	if p.SamplingInterval > 0 {
		return fmt.Sprintf("Profile %s: %d pin(s), sampling every %dms", name, len(p.PinNumbers()), p.SamplingInterval)
	}
	return fmt.Sprintf("Profile %s: %d pin(s)", name, len(p.PinNumbers()))
}

// Describe returns a one-line description of the setting
func (s *PinSetting) Describe() string {
	desc := fmt.Sprintf("pin %d: %s", s.Pin, s.Mode)
	if s.HasValue() {
		desc += fmt.Sprintf(", value %d", *s.Value)
	}
	if s.Report != nil {
		if *s.Report {
			desc += ", reporting on"
		} else {
			desc += ", reporting off"
		}
	}
	return desc
}

// FormatChanges returns a formatted string showing what the profile will
// send to the board
func (p *Profile) FormatChanges() string {
	var b strings.Builder

	b.WriteString("=== Pin Changes ===\n")

	if p.SamplingInterval > 0 {
		b.WriteString(fmt.Sprintf("\nSampling interval: %dms\n", p.SamplingInterval))
	}

	if len(p.Pins) > 0 {
		b.WriteString("\nPins:\n")
		for _, pin := range p.PinNumbers() {
			b.WriteString("  " + p.Setting(pin).Describe() + "\n")
		}
	} else {
		b.WriteString("(no pins specified)\n")
	}

	return b.String()
}

// FormatDetailed returns a comprehensive formatted view of the profile
func (p *Profile) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                        PIN PROFILE                             ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	if p.Name != "" {
		b.WriteString(fmt.Sprintf("Name:        %s\n", p.Name))
	}
	if p.Description != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", p.Description))
	}
	b.WriteString("\n")
	b.WriteString(p.FormatChanges())

	return b.String()
}

// FormatPinStates returns a table of pin states suitable for terminal display
func FormatPinStates(states map[int]*protocol.PinStateResponseMessage) string {
	var b strings.Builder

	b.WriteString("=== Pin States ===\n")
	b.WriteString("Pin | Mode    | State\n")
	b.WriteString("----+---------+------\n")

	pins := make([]int, 0, len(states))
	for pin := range states {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	for _, pin := range pins {
		state := states[pin]
		b.WriteString(fmt.Sprintf("%3d | %-7s | %d\n", pin, state.Mode, state.State))
	}

	return b.String()
}

// FormatCapabilities returns the board's pin inventory, one line per pin
// with every supported mode and its resolution
func FormatCapabilities(caps *protocol.CapabilityResponseMessage) string {
	var b strings.Builder

	b.WriteString("=== Pin Capabilities ===\n")

	for _, pc := range caps.Pins {
		if len(pc.Modes) == 0 {
			b.WriteString(fmt.Sprintf("Pin %2d: (unavailable)\n", pc.Pin))
			continue
		}
		modes := make([]string, len(pc.Modes))
		for i, mr := range pc.Modes {
			modes[i] = fmt.Sprintf("%s(%d-bit)", mr.Mode, mr.Resolution)
		}
		b.WriteString(fmt.Sprintf("Pin %2d: %s\n", pc.Pin, strings.Join(modes, ", ")))
	}

	return b.String()
}

// FormatAnalogMapping returns the board's analog channel mapping
func FormatAnalogMapping(mapping *protocol.AnalogMappingResponseMessage) string {
	var b strings.Builder

	b.WriteString("=== Analog Mapping ===\n")

	found := false
	for pin, channel := range mapping.Channels {
		if channel == protocol.NoChannel {
			continue
		}
		b.WriteString(fmt.Sprintf("A%-2d = pin %d\n", channel, pin))
		found = true
	}
	if !found {
		b.WriteString("(no analog pins reported)\n")
	}

	return b.String()
}

// FormatDiff returns a formatted diff between two sets of pin states
func FormatDiff(old, new map[int]*protocol.PinStateResponseMessage) string {
	var b strings.Builder

	b.WriteString("=== Pin State Differences ===\n")

	seen := make(map[int]bool)
	pins := make([]int, 0, len(old)+len(new))
	for pin := range old {
		if !seen[pin] {
			seen[pin] = true
			pins = append(pins, pin)
		}
	}
	for pin := range new {
		if !seen[pin] {
			seen[pin] = true
			pins = append(pins, pin)
		}
	}
	sort.Ints(pins)

	hasChanges := false
	for _, pin := range pins {
		before, haveBefore := old[pin]
		after, haveAfter := new[pin]

		switch {
		case !haveBefore:
			b.WriteString(fmt.Sprintf("  pin %d: (unknown) → %s/%d\n", pin, after.Mode, after.State))
			hasChanges = true
		case !haveAfter:
			b.WriteString(fmt.Sprintf("  pin %d: %s/%d → (unknown)\n", pin, before.Mode, before.State))
			hasChanges = true
		case before.Mode != after.Mode || before.State != after.State:
			b.WriteString(fmt.Sprintf("  pin %d: %s/%d → %s/%d\n", pin, before.Mode, before.State, after.Mode, after.State))
			hasChanges = true
		}
	}

	if !hasChanges {
		b.WriteString("\n(no differences detected)\n")
	}

	return b.String()
}
