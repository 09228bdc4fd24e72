package chat

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state for one connected client: the stream,
// the negotiated display name, and a liveness flag. The stream is owned
// exclusively by this session; all writes go through WriteLine so that
// concurrent broadcasts never interleave partial lines.
type Session struct {
	// ID correlates log entries for a connection before it has a name.
	ID   string
	Conn net.Conn

	mu    sync.Mutex
	name  string
	alive bool
}

func NewSession(conn net.Conn) *Session {
	return &Session{
		ID:    uuid.NewString(),
		Conn:  conn,
		alive: true,
	}
}

// Name returns the negotiated display name, or "" before negotiation.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName assigns the display name. Called exactly once, by the owning
// worker, after a successful registration.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// WriteLine writes one newline-terminated line to the peer. Writes are
// serialized by the session mutex and bounded by writeTimeout; a failed
// write marks the session dead so later fan-outs skip it cheaply.
func (s *Session) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return ErrSessionClosed
	}
	_ = s.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.Conn.Write([]byte(line + "\n")); err != nil {
		s.alive = false
		return err
	}
	return nil
}

// Close marks the session dead and closes the stream. Safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	wasAlive := s.alive
	s.alive = false
	s.mu.Unlock()
	if !wasAlive {
		return nil
	}
	return s.Conn.Close()
}
