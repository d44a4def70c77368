package firmata

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/muurk/firmata/protocol"
)

// fakeConn feeds a canned inbound stream and records outbound writes.
type fakeConn struct {
	io.Reader
	mu     sync.Mutex
	writes bytes.Buffer
	closed bool
}

func newFakeConn(inbound []byte) *fakeConn {
	return &fakeConn{Reader: bytes.NewReader(inbound)}
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes.Write(p)
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.writes.Bytes()...)
}

func waitDone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client did not finish")
	}
}

func TestClientDispatchesStream(t *testing.T) {
	conn := newFakeConn([]byte{
		0xF9, 0x02, 0x05,
		0xE2, 0x10, 0x01,
		0xE2, 0x20, 0x01,
	})
	c := New(conn)

	var versions, readings []protocol.Message
	c.Listen(protocol.KindProtocolVersion, func(m protocol.Message) {
		versions = append(versions, m)
	})
	c.ListenChannel(protocol.KindAnalog, 2, func(m protocol.Message) {
		readings = append(readings, m)
	})

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitDone(t, c)

	if err := c.Err(); err != nil {
		t.Fatalf("Err() = %v after clean EOF", err)
	}
	if len(versions) != 1 {
		t.Errorf("version listener saw %d messages, want 1", len(versions))
	}
	if len(readings) != 2 {
		t.Fatalf("analog listener saw %d messages, want 2", len(readings))
	}
	if v := readings[0].(*protocol.AnalogMessage).Value; v != 144 {
		t.Errorf("first reading = %d, want 144", v)
	}
	if v := readings[1].(*protocol.AnalogMessage).Value; v != 160 {
		t.Errorf("second reading = %d, want 160", v)
	}
}

func TestClientStartTwice(t *testing.T) {
	c := New(newFakeConn(nil))
	if err := c.Start(); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	if err := c.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
	waitDone(t, c)
}

func TestClientStopUnblocksRead(t *testing.T) {
	// net.Pipe blocks reads until data or close; Stop must end the read
	// loop without surfacing the close as a failure.
	local, remote := net.Pipe()
	defer remote.Close()

	c := New(local)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	waitDone(t, c)

	if err := c.Err(); err != nil {
		t.Errorf("Err() = %v after Stop, want nil", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestClientDecodeFailureSticks(t *testing.T) {
	// A malformed body inside a registered sysex builder is stream-fatal.
	conn := newFakeConn([]byte{0xF0, 0x6C, 0x00, 0xF7})
	c := New(conn)

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitDone(t, c)

	err := c.Err()
	if !errors.Is(err, protocol.ErrMalformedBody) {
		t.Fatalf("Err() = %v, want ErrMalformedBody", err)
	}
	var de *protocol.DecodeError
	if !errors.As(err, &de) || de.Command != protocol.SysexCapabilityResponse {
		t.Errorf("Err() = %#v, want a DecodeError for 0x6C", err)
	}
}

func TestClientSendWiring(t *testing.T) {
	tests := []struct {
		name string
		send func(c *Client) error
		want []byte
	}{
		{
			name: "set pin mode",
			send: func(c *Client) error { return c.SetPinMode(13, protocol.PinModeOutput) },
			want: []byte{0xF4, 0x0D, 0x01},
		},
		{
			name: "set digital pin value",
			send: func(c *Client) error { return c.SetDigitalPinValue(7, true) },
			want: []byte{0xF5, 0x07, 0x01},
		},
		{
			name: "write analog compact",
			send: func(c *Client) error { return c.WriteAnalog(2, 144) },
			want: []byte{0xE2, 0x10, 0x01},
		},
		{
			name: "write analog extended pin",
			send: func(c *Client) error { return c.WriteAnalog(20, 144) },
			want: []byte{0xF0, 0x6F, 0x14, 0x10, 0x01, 0xF7},
		},
		{
			name: "write analog extended value",
			send: func(c *Client) error { return c.WriteAnalog(2, 0x4000) },
			want: []byte{0xF0, 0x6F, 0x02, 0x00, 0x00, 0x01, 0xF7},
		},
		{
			name: "write digital port",
			send: func(c *Client) error { return c.WriteDigitalPort(1, 0x85) },
			want: []byte{0x91, 0x05, 0x01},
		},
		{
			name: "report analog",
			send: func(c *Client) error { return c.ReportAnalog(0, true) },
			want: []byte{0xC0, 0x01},
		},
		{
			name: "report digital",
			send: func(c *Client) error { return c.ReportDigital(1, false) },
			want: []byte{0xD1, 0x00},
		},
		{
			name: "query firmware",
			send: func(c *Client) error { return c.QueryFirmware() },
			want: []byte{0xF0, 0x79, 0xF7},
		},
		{
			name: "query protocol version",
			send: func(c *Client) error { return c.QueryProtocolVersion() },
			want: []byte{0xF9},
		},
		{
			name: "query capabilities",
			send: func(c *Client) error { return c.QueryCapabilities() },
			want: []byte{0xF0, 0x6B, 0xF7},
		},
		{
			name: "query analog mapping",
			send: func(c *Client) error { return c.QueryAnalogMapping() },
			want: []byte{0xF0, 0x69, 0xF7},
		},
		{
			name: "query pin state",
			send: func(c *Client) error { return c.QueryPinState(5) },
			want: []byte{0xF0, 0x6D, 0x05, 0xF7},
		},
		{
			name: "sampling interval",
			send: func(c *Client) error { return c.SetSamplingInterval(100 * time.Millisecond) },
			want: []byte{0xF0, 0x7A, 0x64, 0x00, 0xF7},
		},
		{
			name: "send string",
			send: func(c *Client) error { return c.SendString("A") },
			want: []byte{0xF0, 0x71, 0x41, 0x00, 0xF7},
		},
		{
			name: "reset",
			send: func(c *Client) error { return c.Reset() },
			want: []byte{0xFF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn(nil)
			c := New(conn)
			if err := tt.send(c); err != nil {
				t.Fatalf("send error: %v", err)
			}
			if got := conn.written(); !bytes.Equal(got, tt.want) {
				t.Errorf("wrote % X, want % X", got, tt.want)
			}
		})
	}
}

func TestClientSendEncodeFailure(t *testing.T) {
	conn := newFakeConn(nil)
	c := New(conn)

	err := c.Send(&protocol.AnalogMessage{Pin: 0, Value: -1})
	if !errors.Is(err, protocol.ErrValueOutOfRange) {
		t.Fatalf("Send() error = %v, want ErrValueOutOfRange", err)
	}
	if len(conn.written()) != 0 {
		t.Error("a failed encode still reached the transport")
	}
}

func TestClientConcurrentSend(t *testing.T) {
	conn := newFakeConn(nil)
	c := New(conn)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if err := c.Reset(); err != nil {
					t.Errorf("Send() error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got := conn.written()
	if len(got) != 100 {
		t.Fatalf("wrote %d bytes, want 100", len(got))
	}
	for i, b := range got {
		if b != 0xFF {
			t.Fatalf("byte %d is 0x%02X, want 0xFF", i, b)
		}
	}
}

func TestClientRequest(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	c := New(local)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer c.Stop()

	// Board side: consume the pin state query, answer for pin 5.
	go func() {
		buf := make([]byte, 4)
		if _, err := io.ReadFull(remote, buf); err != nil {
			return
		}
		remote.Write([]byte{0xF0, 0x6E, 0x05, 0x01, 0x01, 0xF7})
	}()

	msg, err := c.Request(
		&protocol.PinStateQueryMessage{Pin: 5},
		protocol.KindPinStateResponse,
		2*time.Second,
		func(m protocol.Message) bool {
			return m.(*protocol.PinStateResponseMessage).Pin == 5
		},
	)
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	state := msg.(*protocol.PinStateResponseMessage)
	if state.Pin != 5 || state.Mode != protocol.PinModeOutput || state.State != 1 {
		t.Errorf("Request() = %v, want pin 5 in output mode with state 1", state)
	}
}

func TestClientRequestTimeout(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	c := New(local)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer c.Stop()

	go io.Copy(io.Discard, remote)

	_, err := c.Request(&protocol.ReportFirmwareMessage{}, protocol.KindReportFirmware, 50*time.Millisecond, nil)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("Request() error = %v, want ErrRequestTimeout", err)
	}
}

const (
	kindEcho = protocol.Kind("echo")
	subEcho  = 0x0F
)

type echoMessage struct {
	body []byte
}

func (m *echoMessage) MessageKind() protocol.Kind { return kindEcho }
func (m *echoMessage) String() string             { return "echo{}" }

func TestClientCustomCommand(t *testing.T) {
	// A custom sysex registration decodes and dispatches like a built-in.
	conn := newFakeConn([]byte{0xF0, subEcho, 0x12, 0x34, 0xF7})
	c := New(conn)
	c.Registry().RegisterSysex(subEcho, func(r protocol.ByteSource) (protocol.Message, error) {
		body, err := protocol.ReadSysexBody(r)
		if err != nil {
			return nil, err
		}
		return &echoMessage{body: body}, nil
	})

	var got []protocol.Message
	c.Listen(kindEcho, func(m protocol.Message) { got = append(got, m) })

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitDone(t, c)

	if len(got) != 1 {
		t.Fatalf("echo listener saw %d messages, want 1", len(got))
	}
	if body := got[0].(*echoMessage).body; !bytes.Equal(body, []byte{0x12, 0x34}) {
		t.Errorf("echo body = % X, want 12 34", body)
	}
}
