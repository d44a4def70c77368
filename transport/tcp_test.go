package transport

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"
)

func TestDialTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte{0xF9, 0x02, 0x05})
		_ = conn.Close()
	}()

	conn, err := DialTCP(ln.Addr().String(), 5*time.Second)
	if err != nil {
		t.Fatalf("DialTCP error: %v", err)
	}
	defer conn.Close()

	got, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte{0xF9, 0x02, 0x05}) {
		t.Errorf("read % X, want F9 02 05", got)
	}
}

func TestDialTCPRefused(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	if _, err := DialTCP(addr, 2*time.Second); err == nil {
		t.Error("DialTCP succeeded against a closed port")
	}
}

func TestDefaultSerialConfig(t *testing.T) {
	cfg := DefaultSerialConfig()
	if cfg.Baud != DefaultBaud {
		t.Errorf("Baud = %d, want %d", cfg.Baud, DefaultBaud)
	}
	if cfg.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", cfg.DataBits)
	}
}
