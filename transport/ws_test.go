package transport

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// wsServer runs handler against every connection and returns the ws:// URL.
func wsServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSConnReassemblesFrames(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0xF9, 0x02})
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x05})
		_, _, _ = conn.ReadMessage() // hold until the client closes
	})

	ws, err := DialWebSocket(url, 5*time.Second)
	if err != nil {
		t.Fatalf("DialWebSocket error: %v", err)
	}
	defer ws.Close()

	// One byte at a time forces the adapter to span frame boundaries.
	var got []byte
	buf := make([]byte, 1)
	for len(got) < 3 {
		n, err := ws.Read(buf)
		if err != nil {
			t.Fatalf("Read error after % X: %v", got, err)
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, []byte{0xF9, 0x02, 0x05}) {
		t.Errorf("read % X, want F9 02 05", got)
	}
}

func TestWSConnSkipsTextFrames(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("status: ok"))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x42})
		_, _, _ = conn.ReadMessage()
	})

	ws, err := DialWebSocket(url, 5*time.Second)
	if err != nil {
		t.Fatalf("DialWebSocket error: %v", err)
	}
	defer ws.Close()

	buf := make([]byte, 8)
	n, err := ws.Read(buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 1 || buf[0] != 0x42 {
		t.Errorf("read % X, want 42", buf[:n])
	}
}

func TestWSConnWriteSendsBinaryFrame(t *testing.T) {
	frames := make(chan []byte, 1)
	url := wsServer(t, func(conn *websocket.Conn) {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("server read failed: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage {
			t.Errorf("server got frame type %d, want binary", msgType)
		}
		frames <- payload
		_, _, _ = conn.ReadMessage()
	})

	ws, err := DialWebSocket(url, 5*time.Second)
	if err != nil {
		t.Fatalf("DialWebSocket error: %v", err)
	}
	defer ws.Close()

	wire := []byte{0xE2, 0x10, 0x01}
	n, err := ws.Write(wire)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(wire) {
		t.Errorf("Write reported %d bytes, want %d", n, len(wire))
	}

	select {
	case got := <-frames:
		if !bytes.Equal(got, wire) {
			t.Errorf("server received % X, want % X", got, wire)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the frame")
	}
}

func TestWSConnNormalCloseIsEOF(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_, _, _ = conn.ReadMessage() // wait for the close response
	})

	ws, err := DialWebSocket(url, 5*time.Second)
	if err != nil {
		t.Fatalf("DialWebSocket error: %v", err)
	}
	defer ws.Close()

	buf := make([]byte, 8)
	if _, err := ws.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read after peer close = %v, want io.EOF", err)
	}
}

func TestDialWebSocketFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no upgrade here", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if _, err := DialWebSocket(url, 2*time.Second); err == nil {
		t.Error("DialWebSocket succeeded against a non-WebSocket endpoint")
	}
}
