package transport

import (
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout bounds how long DialTCP waits for a connection.
const DefaultDialTimeout = 10 * time.Second

// DialTCP connects to a board, or a bridge in front of one, that serves the
// raw protocol byte stream on addr (host:port). A timeout of zero uses
// DefaultDialTimeout.
func DialTCP(addr string, timeout time.Duration) (net.Conn, error) {
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return conn, nil
}
