package pinconfig

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/protocol"
)

const (
	// DefaultQueryTimeout is how long to wait for the board to answer a
	// state, capability, or mapping query
	DefaultQueryTimeout = 2 * time.Second
)

// Applier translates pin profiles into Firmata messages and sends them to
// a board through a running client.
type Applier struct {
	// Client is the connected Firmata client. Queries need its read loop,
	// so Start must have been called before Apply or any Query method.
	Client *firmata.Client

	// QueryTimeout bounds each query sent to the board
	QueryTimeout time.Duration

	// cachedMapping is the board's analog pin mapping, fetched on first
	// use. The mapping is fixed per firmware so it never expires.
	cachedMapping *protocol.AnalogMappingResponseMessage

	// cacheMutex protects cachedMapping
	cacheMutex sync.RWMutex
}

// NewApplier creates a profile applier for a connected client.
func NewApplier(client *firmata.Client) *Applier {
	return &Applier{
		Client:       client,
		QueryTimeout: DefaultQueryTimeout,
	}
}

// Apply sends a profile to the board: the sampling interval first, then
// mode, value, and reporting per pin. Validation warnings do not block the
// apply; the first critical problem does. When a pin appears more than
// once only the last entry is applied.
func (a *Applier) Apply(profile *Profile) error {
	_, critical := SeparateWarningsAndErrors(ValidateProfile(profile))
	if len(critical) > 0 {
		return critical[0]
	}

	if profile.SamplingInterval > 0 {
		interval := time.Duration(profile.SamplingInterval) * time.Millisecond
		if err := a.Client.SetSamplingInterval(interval); err != nil {
			return NewApplyError(-1, "failed to set sampling interval", err)
		}
	}

	for _, pin := range profile.PinNumbers() {
		if err := a.applySetting(profile.Setting(pin)); err != nil {
			return err
		}
	}

	return nil
}

// applySetting configures one pin: mode, then value, then reporting.
func (a *Applier) applySetting(s *PinSetting) error {
	mode, err := s.ResolveMode()
	if err != nil {
		return err
	}

	if err := a.Client.SetPinMode(s.Pin, mode); err != nil {
		return NewApplyError(s.Pin, fmt.Sprintf("failed to set mode %s", mode), err)
	}

	if s.HasValue() {
		switch mode {
		case protocol.PinModeOutput:
			if err := a.Client.SetDigitalPinValue(s.Pin, *s.Value != 0); err != nil {
				return NewApplyError(s.Pin, "failed to write output level", err)
			}
		case protocol.PinModePWM, protocol.PinModeServo:
			if err := a.Client.WriteAnalog(s.Pin, *s.Value); err != nil {
				return NewApplyError(s.Pin, fmt.Sprintf("failed to write %s value", mode), err)
			}
		}
	}

	if s.Report != nil {
		if err := a.applyReporting(s.Pin, mode, *s.Report); err != nil {
			return err
		}
	}

	return nil
}

// applyReporting turns value reporting on or off for one pin. Analog pins
// report per channel, which needs the board's mapping to translate the pin
// number; digital inputs report per port, so toggling one pin changes its
// whole port.
func (a *Applier) applyReporting(pin int, mode protocol.PinMode, enable bool) error {
	if mode == protocol.PinModeAnalog {
		channel, err := a.analogChannel(pin)
		if err != nil {
			return err
		}
		if err := a.Client.ReportAnalog(channel, enable); err != nil {
			return NewApplyError(pin, "failed to set analog reporting", err)
		}
		return nil
	}

	if err := a.Client.ReportDigital(pin/8, enable); err != nil {
		return NewApplyError(pin, "failed to set digital reporting", err)
	}
	return nil
}

// QueryPinState asks the board for one pin's current mode and state.
func (a *Applier) QueryPinState(pin int) (*protocol.PinStateResponseMessage, error) {
	msg, err := a.Client.Request(
		&protocol.PinStateQueryMessage{Pin: pin},
		protocol.KindPinStateResponse,
		a.QueryTimeout,
		func(m protocol.Message) bool {
			return m.(*protocol.PinStateResponseMessage).Pin == pin
		},
	)
	if err != nil {
		if errors.Is(err, firmata.ErrRequestTimeout) {
			return nil, NewTimeoutError(pin, fmt.Sprintf("no pin state reply within %s", a.QueryTimeout))
		}
		return nil, NewQueryError(pin, "pin state query failed", err)
	}
	return msg.(*protocol.PinStateResponseMessage), nil
}

// QueryCapabilities asks the board for its full pin inventory.
func (a *Applier) QueryCapabilities() (*protocol.CapabilityResponseMessage, error) {
	msg, err := a.Client.Request(
		&protocol.CapabilityQueryMessage{},
		protocol.KindCapabilityResponse,
		a.QueryTimeout,
		nil,
	)
	if err != nil {
		if errors.Is(err, firmata.ErrRequestTimeout) {
			return nil, NewTimeoutError(-1, fmt.Sprintf("no capability reply within %s", a.QueryTimeout))
		}
		return nil, NewQueryError(-1, "capability query failed", err)
	}
	return msg.(*protocol.CapabilityResponseMessage), nil
}

// QueryAnalogMapping returns the board's analog channel mapping, fetching
// it on first use and serving the cached copy afterwards.
func (a *Applier) QueryAnalogMapping() (*protocol.AnalogMappingResponseMessage, error) {
	a.cacheMutex.RLock()
	cached := a.cachedMapping
	a.cacheMutex.RUnlock()
	if cached != nil {
		return cached, nil
	}

	msg, err := a.Client.Request(
		&protocol.AnalogMappingQueryMessage{},
		protocol.KindAnalogMappingResponse,
		a.QueryTimeout,
		nil,
	)
	if err != nil {
		if errors.Is(err, firmata.ErrRequestTimeout) {
			return nil, NewTimeoutError(-1, fmt.Sprintf("no analog mapping reply within %s", a.QueryTimeout))
		}
		return nil, NewQueryError(-1, "analog mapping query failed", err)
	}

	mapping := msg.(*protocol.AnalogMappingResponseMessage)
	a.cacheMutex.Lock()
	a.cachedMapping = mapping
	a.cacheMutex.Unlock()
	return mapping, nil
}

// InvalidateCache drops the cached analog mapping, forcing the next query
// to ask the board again. Use after reconnecting to a different board.
func (a *Applier) InvalidateCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cachedMapping = nil
}

// ValidateOnBoard checks a profile against the board's reported
// capabilities, combining static validation with the capability query.
func (a *Applier) ValidateOnBoard(profile *Profile) []error {
	errs := ValidateProfile(profile)

	caps, err := a.QueryCapabilities()
	if err != nil {
		return append(errs, err)
	}
	return append(errs, ValidateAgainstCapabilities(profile, caps)...)
}

// analogChannel resolves a digital pin number to its analog channel using
// the board's mapping.
func (a *Applier) analogChannel(pin int) (int, error) {
	mapping, err := a.QueryAnalogMapping()
	if err != nil {
		return 0, err
	}
	channel, ok := mapping.ChannelFor(pin)
	if !ok {
		return 0, NewApplyError(pin, "board maps no analog channel to this pin", nil)
	}
	return channel, nil
}
