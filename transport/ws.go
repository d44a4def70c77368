package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn adapts a WebSocket connection carrying binary frames to the byte
// stream the client consumes. Frame boundaries disappear on Read: a frame
// larger than the caller's buffer is drained across several reads before
// the next frame is pulled. Each Write leaves as exactly one binary frame.
//
// One concurrent reader and one concurrent writer are supported, matching
// the client's single read goroutine and serialized sends.
type WSConn struct {
	conn    *websocket.Conn
	current io.Reader
}

// NewWSConn wraps an established WebSocket connection, dialed or accepted,
// in the byte-stream adapter. The firmata-bridge uses it for connections its
// /ws endpoint upgrades.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// DialWebSocket connects to a WebSocket endpoint relaying a board's byte
// stream, such as the firmata-bridge /ws endpoint (ws://host:port/ws).
// A timeout of zero uses DefaultDialTimeout for the handshake.
func DialWebSocket(rawURL string, timeout time.Duration) (*WSConn, error) {
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.Dial(rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return &WSConn{conn: conn}, nil
}

// Read returns bytes from the current binary frame, pulling the next frame
// once it is drained. Text and control frames from the peer are skipped.
// A normal close from the peer surfaces as io.EOF.
func (w *WSConn) Read(p []byte) (int, error) {
	for {
		if w.current == nil {
			msgType, r, err := w.conn.NextReader()
			if err != nil {
				return 0, translateClose(err)
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			w.current = r
		}
		n, err := w.current.Read(p)
		if err == io.EOF {
			w.current = nil
			if n == 0 {
				continue
			}
			return n, nil
		}
		return n, err
	}
}

// Write sends p as one binary frame.
func (w *WSConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close tells the peer the session is over and closes the underlying
// connection.
func (w *WSConn) Close() error {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	// Best effort; the peer may already be gone.
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return w.conn.Close()
}

func translateClose(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	return err
}
