package camera

import (
	"encoding/binary"
	"log/slog"
	"net"
	"sync"
)

// RelayServer publishes frames to TCP subscribers using the relay
// wire format (uint32 big-endian length + payload). Each subscriber
// has a single pending frame slot: a subscriber that cannot keep up
// gets the newest frame next, never a backlog, and one that stalls
// outright is dropped.
type RelayServer struct {
	ln     net.Listener
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[net.Conn]chan []byte
	closed bool
}

// NewRelayServer starts listening on addr (use ":0" for an ephemeral
// port in tests).
func NewRelayServer(addr string, logger *slog.Logger) (*RelayServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &RelayServer{
		ln:     ln,
		logger: logger,
		subs:   make(map[net.Conn]chan []byte),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound listen address.
func (s *RelayServer) Addr() string {
	return s.ln.Addr().String()
}

// SubscriberCount returns the number of connected subscribers.
func (s *RelayServer) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Publish sends a frame payload to every subscriber, overwriting any
// frame still pending for a slow one.
func (s *RelayServer) Publish(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		// Drain the stale pending frame, then install the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- data:
		default:
		}
	}
}

// Close stops the listener and disconnects all subscribers.
func (s *RelayServer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for conn, ch := range s.subs {
		close(ch)
		conn.Close()
	}
	s.subs = make(map[net.Conn]chan []byte)
	s.mu.Unlock()

	return s.ln.Close()
}

func (s *RelayServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return // listener closed
		}

		ch := make(chan []byte, 1)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.subs[conn] = ch
		count := len(s.subs)
		s.mu.Unlock()

		s.logger.Info("relay subscriber connected",
			"remote", conn.RemoteAddr().String(), "total", count)
		go s.writeLoop(conn, ch)
		go s.watchClose(conn)
	}
}

// watchClose notices a subscriber hanging up. Subscribers never send
// payload, so the first read returning means the connection is gone.
func (s *RelayServer) watchClose(conn net.Conn) {
	var one [1]byte
	for {
		if _, err := conn.Read(one[:]); err != nil {
			s.drop(conn)
			return
		}
	}
}

func (s *RelayServer) writeLoop(conn net.Conn, ch chan []byte) {
	defer s.drop(conn)

	var lenBuf [4]byte
	for data := range ch {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
		if _, err := conn.Write(lenBuf[:]); err != nil {
			return
		}
		if _, err := conn.Write(data); err != nil {
			return
		}
	}
}

// drop removes a subscriber. Idempotent: the write loop, the close
// watcher, and Close may all race to it. The pending-frame channel is
// closed under the mutex so Publish can never send on a closed channel.
func (s *RelayServer) drop(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	if ch, ok := s.subs[conn]; ok {
		delete(s.subs, conn)
		close(ch)
		s.logger.Info("relay subscriber disconnected",
			"remote", conn.RemoteAddr().String(), "remaining", len(s.subs))
	}
	s.mu.Unlock()
}
