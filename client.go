package firmata

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/firmata/protocol"
)

// ErrAlreadyStarted reports a second Start on the same client.
var ErrAlreadyStarted = errors.New("firmata: client already started")

// ErrRequestTimeout reports that a Request got no matching answer in time.
var ErrRequestTimeout = errors.New("firmata: request timed out")

// Client speaks the Firmata protocol over one transport connection. It owns
// the single read goroutine that decodes inbound bytes and fans the decoded
// messages out to listeners, and it serializes outbound writes so concurrent
// senders cannot interleave wire bytes.
//
// Construct with New, register listeners, then Start. The client never
// opens, reconfigures, or reconnects the transport; it only closes it on
// Stop.
type Client struct {
	conn     io.ReadWriteCloser
	registry *protocol.Registry
	log      *zap.Logger
	readBuf  int

	listeners *dispatcher
	decoder   *protocol.Decoder

	writeMu sync.Mutex

	started  atomic.Bool
	closing  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}

	errMu sync.Mutex
	err   error
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithRegistry decodes against reg instead of a fresh built-in registry.
// Use it to share one extended command set across connections.
func WithRegistry(reg *protocol.Registry) Option {
	return func(c *Client) {
		c.registry = reg
	}
}

// WithLogger routes the client's diagnostics to log. The default is a no-op
// logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithReadBuffer overrides the decoder's read buffer size.
func WithReadBuffer(size int) Option {
	return func(c *Client) {
		c.readBuf = size
	}
}

// New wraps an open transport connection in a Client. The connection is
// typically a serial port from the transport package, but anything that
// reads and writes raw protocol bytes serves.
func New(conn io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{
		conn: conn,
		log:  zap.NewNop(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = protocol.NewRegistry()
	}
	c.listeners = newDispatcher(c.log)

	decOpts := []protocol.DecoderOption{protocol.WithLogger(c.log)}
	if c.readBuf > 0 {
		decOpts = append(decOpts, protocol.WithReadBuffer(c.readBuf))
	}
	c.decoder = protocol.NewDecoder(c.registry, conn, decOpts...)
	return c
}

// Registry exposes the client's command registry so callers can install
// builders for custom commands.
func (c *Client) Registry() *protocol.Registry {
	return c.registry
}

// Start spawns the read goroutine. Decoding and dispatch run there until
// the transport fails, the stream ends, or Stop is called.
func (c *Client) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go c.readLoop()
	return nil
}

// Stop closes the transport and waits for the read goroutine to drain.
// Calling Stop more than once is safe.
func (c *Client) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		c.closing.Store(true)
		err = c.conn.Close()
		if c.started.Load() {
			<-c.done
		}
	})
	return err
}

// Done closes when the read goroutine has exited, whether by Stop, clean
// stream end, or failure.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports why the read goroutine exited. It is nil while the client
// runs and nil after a clean shutdown; a decode or transport failure sticks.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) setErr(err error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMu.Unlock()
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		msg, err := c.decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || c.closing.Load() {
				c.log.Debug("read loop finished", zap.Error(err))
				return
			}
			c.setErr(err)
			c.log.Error("read loop failed", zap.Error(err))
			return
		}
		c.log.Debug("received message", zap.String("message", msg.String()))
		c.listeners.dispatch(msg)
	}
}

// Listen registers fn for every message of the given kind, whatever channel
// it carries. The returned Subscription unregisters it.
func (c *Client) Listen(kind protocol.Kind, fn Listener) *Subscription {
	return c.listeners.add(kind, protocol.NoChannel, fn)
}

// ListenChannel registers fn for messages of the given kind whose channel
// (pin or port) equals channel. Messages without a channel never match.
func (c *Client) ListenChannel(kind protocol.Kind, channel int, fn Listener) *Subscription {
	return c.listeners.add(kind, channel, fn)
}

// Send serializes msg and writes it to the transport as one bulk write.
// Safe for concurrent use; sends do not wait for, or interfere with,
// inbound decoding.
func (c *Client) Send(msg protocol.Message) error {
	wire, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(wire); err != nil {
		return fmt.Errorf("write %s: %w", msg, err)
	}
	c.log.Debug("sent message", zap.String("message", msg.String()))
	return nil
}

// Request sends msg and waits for the first inbound message of the given
// kind that match accepts, or for the timeout. A nil match accepts any
// message of the kind. The listener is registered before msg goes out, so
// an answer cannot slip past between send and wait.
//
// Request needs the read goroutine: call it only after Start.
func (c *Client) Request(msg protocol.Message, kind protocol.Kind, timeout time.Duration, match func(protocol.Message) bool) (protocol.Message, error) {
	got := make(chan protocol.Message, 1)
	sub := c.Listen(kind, func(m protocol.Message) {
		if match != nil && !match(m) {
			return
		}
		select {
		case got <- m:
		default:
		}
	})
	defer sub.Close()

	if err := c.Send(msg); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case m := <-got:
		return m, nil
	case <-c.done:
		if err := c.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	case <-timer.C:
		return nil, fmt.Errorf("%w: no %s within %s", ErrRequestTimeout, kind, timeout)
	}
}

// SetPinMode configures pin into the given mode.
func (c *Client) SetPinMode(pin int, mode protocol.PinMode) error {
	return c.Send(&protocol.SetPinModeMessage{Pin: pin, Mode: mode})
}

// SetDigitalPinValue drives a single output pin high or low.
func (c *Client) SetDigitalPinValue(pin int, high bool) error {
	return c.Send(&protocol.SetDigitalPinValueMessage{Pin: pin, High: high})
}

// WriteAnalog writes an analog (PWM, servo) value to a pin. Pins and values
// that fit the compact form use it; larger ones ride the extended sysex
// form automatically.
func (c *Client) WriteAnalog(pin, value int) error {
	if pin > protocol.MaxChannel || value > protocol.MaxUint14 {
		return c.Send(&protocol.ExtendedAnalogMessage{Pin: pin, Value: value})
	}
	return c.Send(&protocol.AnalogMessage{Pin: pin, Value: value})
}

// WriteDigitalPort writes all eight pins of a digital port at once.
func (c *Client) WriteDigitalPort(port int, pins byte) error {
	return c.Send(&protocol.DigitalMessage{Port: port, Pins: pins})
}

// ReportAnalog enables or disables periodic value reports for one analog
// pin. Reports arrive as KindAnalog messages.
func (c *Client) ReportAnalog(pin int, enabled bool) error {
	return c.Send(&protocol.ReportAnalogMessage{Pin: pin, Enabled: enabled})
}

// ReportDigital enables or disables state-change reports for one digital
// port. Reports arrive as KindDigital messages.
func (c *Client) ReportDigital(port int, enabled bool) error {
	return c.Send(&protocol.ReportDigitalMessage{Port: port, Enabled: enabled})
}

// QueryFirmware asks the board to identify its sketch; the answer arrives
// as a KindReportFirmware message.
func (c *Client) QueryFirmware() error {
	return c.Send(&protocol.ReportFirmwareMessage{})
}

// QueryProtocolVersion asks for the wire protocol version; the answer
// arrives as a KindProtocolVersion message.
func (c *Client) QueryProtocolVersion() error {
	return c.Send(&protocol.ProtocolVersionQueryMessage{})
}

// QueryCapabilities asks for the pin inventory; the answer arrives as a
// KindCapabilityResponse message.
func (c *Client) QueryCapabilities() error {
	return c.Send(&protocol.CapabilityQueryMessage{})
}

// QueryAnalogMapping asks how analog channels map to pins; the answer
// arrives as a KindAnalogMappingResponse message.
func (c *Client) QueryAnalogMapping() error {
	return c.Send(&protocol.AnalogMappingQueryMessage{})
}

// QueryPinState asks for one pin's mode and state; the answer arrives as a
// KindPinStateResponse message.
func (c *Client) QueryPinState(pin int) error {
	return c.Send(&protocol.PinStateQueryMessage{Pin: pin})
}

// SetSamplingInterval sets how often the board sweeps its enabled analog
// pins. Sub-millisecond durations round down.
func (c *Client) SetSamplingInterval(interval time.Duration) error {
	return c.Send(&protocol.SamplingIntervalMessage{Millis: int(interval / time.Millisecond)})
}

// SendString sends free text to the board's string handler.
func (c *Client) SendString(s string) error {
	return c.Send(&protocol.StringDataMessage{Value: s})
}

// Reset asks the board to return to its power-up state. Reporting, pin
// modes, and the sampling interval all revert.
func (c *Client) Reset() error {
	return c.Send(&protocol.SystemResetMessage{})
}
