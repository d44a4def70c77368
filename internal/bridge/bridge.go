package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/firmata/internal/discovery"
	"github.com/muurk/firmata/internal/logging"
	"github.com/muurk/firmata/transport"
)

// Config holds the bridge configuration
type Config struct {
	Listen    string // TCP listen address for raw byte-stream clients (empty disables)
	WSListen  string // HTTP listen address for the /ws WebSocket endpoint (empty disables)
	BoardName string // Human-readable name of the board side, e.g. "/dev/ttyACM0"
	Announce  bool   // Advertise the TCP listener over mDNS so scanners can find it
	LogLevel  string
}

// Stats is a snapshot of the relay counters.
type Stats struct {
	Board          string `json:"board"`
	ClientAttached bool   `json:"client_attached"`
	ClientAddr     string `json:"client_addr,omitempty"`
	BytesToBoard   uint64 `json:"bytes_to_board"`
	BytesFromBoard uint64 `json:"bytes_from_board"`
	BytesDropped   uint64 `json:"bytes_dropped"`
}

// session is one attached network client.
type session struct {
	id     uint64
	kind   string // "tcp" or "ws"
	remote string
	conn   io.ReadWriteCloser
}

// Bridge serves one local board to the network. It relays the raw byte
// stream in both directions without parsing it, so any client speaking the
// wire format works through it.
//
// The board link carries a single conversation: replies are not addressed to
// a requester. The bridge therefore allows one attached client at a time,
// and a newly connecting client takes over from the current one.
type Bridge struct {
	config *Config
	board  io.ReadWriteCloser

	tcpListener net.Listener
	wsListener  net.Listener
	httpServer  *http.Server
	announcer   *discovery.Announcer

	mu     sync.Mutex
	active *session
	nextID uint64

	// Serializes writes to the board across client handoffs.
	boardWriteMu sync.Mutex

	wg      sync.WaitGroup
	closing atomic.Bool
	fatal   chan error

	bytesToBoard   atomic.Uint64
	bytesFromBoard atomic.Uint64
	bytesDropped   atomic.Uint64
}

// wsUpgrader accepts any origin: the bridge is a LAN tool and the WebSocket
// endpoint speaks a binary protocol, not a browser session.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New creates a new Bridge serving the given board connection. The bridge
// takes ownership of board and closes it on shutdown.
func New(board io.ReadWriteCloser, config *Config) (*Bridge, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if config.Listen == "" && config.WSListen == "" {
		return nil, errors.New("at least one of the TCP and WebSocket listen addresses is required")
	}

	return &Bridge{
		config: config,
		board:  board,
		fatal:  make(chan error, 1),
	}, nil
}

// Start binds the configured listeners and starts the relay goroutines.
// It returns once the bridge is serving; use Run for the blocking
// signal-handling variant.
func (b *Bridge) Start() error {
	if b.config.Listen != "" {
		ln, err := net.Listen("tcp", b.config.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", b.config.Listen, err)
		}
		b.tcpListener = ln
		b.wg.Add(1)
		go b.acceptTCP()
		logging.Info("Bridge listening for TCP clients",
			zap.String("addr", ln.Addr().String()),
			zap.String("board", b.config.BoardName),
		)
	}

	if b.config.WSListen != "" {
		ln, err := net.Listen("tcp", b.config.WSListen)
		if err != nil {
			if b.tcpListener != nil {
				_ = b.tcpListener.Close()
			}
			return fmt.Errorf("failed to listen on %s: %w", b.config.WSListen, err)
		}
		b.wsListener = ln

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", b.handleWS)
		mux.HandleFunc("/status", b.handleStatus)
		b.httpServer = &http.Server{Handler: mux}

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				if !b.closing.Load() {
					b.reportFatal(fmt.Errorf("websocket server failed: %w", err))
				}
			}
		}()
		logging.Info("Bridge listening for WebSocket clients",
			zap.String("addr", ln.Addr().String()),
			zap.String("path", "/ws"),
			zap.String("board", b.config.BoardName),
		)
	}

	if b.config.Announce && b.tcpListener != nil {
		port := b.tcpListener.Addr().(*net.TCPAddr).Port
		announcer, err := discovery.Announce("", port, map[string]string{"board": b.config.BoardName})
		if err != nil {
			logging.Warn("mDNS announce failed, bridge will not be discoverable", zap.Error(err))
		} else {
			b.announcer = announcer
			logging.Info("Announced board over mDNS", zap.Int("port", port))
		}
	}

	b.wg.Add(1)
	go b.pumpBoard()

	return nil
}

// Run starts the bridge and blocks until a shutdown signal arrives or the
// board link fails.
func (b *Bridge) Run() error {
	if err := b.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping bridge...")
		return b.Shutdown(context.Background())
	case err := <-b.fatal:
		_ = b.Shutdown(context.Background())
		return err
	}
}

// TCPAddr returns the bound address of the TCP listener, or nil if the TCP
// listener is disabled or the bridge has not started.
func (b *Bridge) TCPAddr() net.Addr {
	if b.tcpListener == nil {
		return nil
	}
	return b.tcpListener.Addr()
}

// WSAddr returns the bound address of the WebSocket listener, or nil if the
// WebSocket listener is disabled or the bridge has not started.
func (b *Bridge) WSAddr() net.Addr {
	if b.wsListener == nil {
		return nil
	}
	return b.wsListener.Addr()
}

// Stats returns a snapshot of the relay counters.
func (b *Bridge) Stats() Stats {
	st := Stats{
		Board:          b.config.BoardName,
		BytesToBoard:   b.bytesToBoard.Load(),
		BytesFromBoard: b.bytesFromBoard.Load(),
		BytesDropped:   b.bytesDropped.Load(),
	}
	b.mu.Lock()
	if b.active != nil {
		st.ClientAttached = true
		st.ClientAddr = b.active.remote
	}
	b.mu.Unlock()
	return st
}

// acceptTCP accepts raw TCP clients and attaches each as the active session.
func (b *Bridge) acceptTCP() {
	defer b.wg.Done()
	for {
		conn, err := b.tcpListener.Accept()
		if err != nil {
			if b.closing.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s := b.attach(conn, "tcp", conn.RemoteAddr().String())
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.serveSession(s)
		}()
	}
}

// handleWS upgrades an HTTP request to a WebSocket session and serves it
// until the client disconnects or is taken over.
func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, headerMap(r))

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	s := b.attach(transport.NewWSConn(conn), "ws", conn.RemoteAddr().String())

	b.wg.Add(1)
	defer b.wg.Done()
	b.serveSession(s)
}

// handleStatus reports the relay counters as JSON.
func (b *Bridge) handleStatus(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, headerMap(r))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(b.Stats()); err != nil {
		logging.Error("Failed to write status response", zap.Error(err))
	}
}

func headerMap(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	return headers
}

// attach installs conn as the active session, disconnecting the previous
// client if one is attached.
func (b *Bridge) attach(conn io.ReadWriteCloser, kind, remote string) *session {
	b.mu.Lock()
	prev := b.active
	b.nextID++
	s := &session{id: b.nextID, kind: kind, remote: remote, conn: conn}
	b.active = s
	b.mu.Unlock()

	if prev != nil {
		logging.Info("Board is exclusive, disconnecting previous client",
			zap.String("remote_addr", prev.remote),
			zap.String("replaced_by", remote),
		)
		_ = prev.conn.Close()
	}

	logging.LogConnection(remote, "client_attached")
	return s
}

// detach removes the session if it is still the active one and closes its
// connection. Safe to call more than once per session.
func (b *Bridge) detach(s *session) {
	b.mu.Lock()
	wasActive := b.active == s
	if wasActive {
		b.active = nil
	}
	b.mu.Unlock()

	_ = s.conn.Close()
	if wasActive {
		logging.LogConnection(s.remote, "client_detached")
	}
}

// serveSession copies bytes from the client to the board until the client
// disconnects, the board write fails, or another client takes over.
func (b *Bridge) serveSession(s *session) {
	defer b.detach(s)

	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			logging.LogRawBytes("relay to board", buf[:n])

			b.boardWriteMu.Lock()
			_, werr := b.board.Write(buf[:n])
			b.boardWriteMu.Unlock()
			if werr != nil {
				if !b.closing.Load() {
					b.reportFatal(fmt.Errorf("board write failed: %w", werr))
				}
				return
			}
			b.bytesToBoard.Add(uint64(n))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !b.closing.Load() {
				logging.Debug("Client read ended",
					zap.String("remote_addr", s.remote),
					zap.String("kind", s.kind),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// pumpBoard copies bytes from the board to the active client. Bytes arriving
// while no client is attached are dropped and counted; the board keeps
// streaming reports whether or not anyone is listening.
func (b *Bridge) pumpBoard() {
	defer b.wg.Done()

	buf := make([]byte, 4096)
	for {
		n, err := b.board.Read(buf)
		if n > 0 {
			b.bytesFromBoard.Add(uint64(n))
			logging.LogRawBytes("relay from board", buf[:n])

			b.mu.Lock()
			s := b.active
			b.mu.Unlock()

			if s == nil {
				b.bytesDropped.Add(uint64(n))
			} else if _, werr := s.conn.Write(buf[:n]); werr != nil {
				if !b.closing.Load() {
					logging.Warn("Client write failed, dropping client",
						zap.String("remote_addr", s.remote),
						zap.Error(werr),
					)
				}
				b.detach(s)
			}
		}
		if err != nil {
			if b.closing.Load() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			b.reportFatal(fmt.Errorf("board read failed: %w", err))
			return
		}
	}
}

func (b *Bridge) reportFatal(err error) {
	select {
	case b.fatal <- err:
	default:
	}
}

// Shutdown gracefully shuts down the bridge: it stops accepting clients,
// disconnects the active one, closes the board link, and waits for the
// relay goroutines to finish.
func (b *Bridge) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down bridge...")
	b.closing.Store(true)

	if b.announcer != nil {
		b.announcer.Close()
	}
	if b.tcpListener != nil {
		if err := b.tcpListener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Error("Error closing TCP listener", zap.Error(err))
		}
	}
	if b.httpServer != nil {
		// Close rather than Shutdown: upgraded WebSocket connections are
		// hijacked and invisible to the HTTP server, so they are closed
		// through the active session below.
		if err := b.httpServer.Close(); err != nil {
			logging.Error("Error closing WebSocket server", zap.Error(err))
		}
	}

	b.mu.Lock()
	s := b.active
	b.mu.Unlock()
	if s != nil {
		logging.Info("Closing active client", zap.String("remote_addr", s.remote))
		_ = s.conn.Close()
	}

	_ = b.board.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Bridge stopped",
			zap.Uint64("bytes_to_board", b.bytesToBoard.Load()),
			zap.Uint64("bytes_from_board", b.bytesFromBoard.Load()),
			zap.Uint64("bytes_dropped", b.bytesDropped.Load()),
		)
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}
