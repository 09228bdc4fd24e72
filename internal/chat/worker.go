package chat

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	greetingLine  = "Enter your username:"
	rejectionLine = "Username already taken. Disconnecting."
)

// SessionWorker drives one connection through its lifecycle: name
// negotiation, the message read loop, and cleanup. It is the only
// goroutine that reads from the connection.
type SessionWorker struct {
	session     *Session
	registry    *Registry
	broadcaster *Broadcaster
	logger      *slog.Logger
}

func NewSessionWorker(session *Session, registry *Registry, broadcaster *Broadcaster, logger *slog.Logger) *SessionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionWorker{
		session:     session,
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Run executes the full session lifecycle and returns once the connection
// is released. Faults inside one session never cross into the registry or
// queue; everything funnels into the same cleanup path.
func (w *SessionWorker) Run() {
	defer func() {
		_ = w.session.Close()
	}()

	reader := bufio.NewReader(w.session.Conn)

	name, ok := w.negotiate(reader)
	if !ok {
		return
	}

	w.logger.Info("user joined", "conn_id", w.session.ID, "username", name)
	w.broadcaster.BroadcastSystem(name + " has joined the chat.")
	w.broadcaster.BroadcastRoster()

	w.readLoop(reader, name)

	// Normal quit, EOF, and read errors all converge here.
	w.registry.Unregister(name)
	w.logger.Info("user left", "conn_id", w.session.ID, "username", name)
	w.broadcaster.BroadcastSystem(name + " has left the chat.")
	w.broadcaster.BroadcastRoster()
}

// negotiate sends the greeting and resolves the proposed name against the
// registry. An empty name or a failed read closes the connection without
// touching the registry; a taken name is rejected with a client-visible
// line.
func (w *SessionWorker) negotiate(reader *bufio.Reader) (string, bool) {
	if err := w.session.WriteLine(greetingLine); err != nil {
		return "", false
	}

	line, err := readLine(reader)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", false
	}

	if err := w.registry.Register(name, w.session); err != nil {
		w.logger.Info("name rejected", "conn_id", w.session.ID, "username", name)
		_ = w.session.WriteLine(rejectionLine)
		return "", false
	}

	w.session.SetName(name)
	return name, true
}

func (w *SessionWorker) readLoop(reader *bufio.Reader, name string) {
	for {
		line, err := readLine(reader)
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			// Blank lines are not chat content.
			continue
		case strings.EqualFold(line, QuitCommand):
			return
		default:
			w.broadcaster.BroadcastChat(name, line)
		}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
