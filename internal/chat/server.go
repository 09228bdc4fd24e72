package chat

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server owns the listening socket, the shared registry, the delivery
// queue, and the transcript drainer. One goroutine per accepted
// connection, plus the drainer, plus the accept loop itself.
type Server struct {
	cfg         Config
	logger      *slog.Logger
	registry    *Registry
	queue       *DeliveryQueue
	broadcaster *Broadcaster
	history     *HistoryStore

	listener net.Listener
	stopOnce sync.Once
	drained  chan struct{}
}

func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry()
	queue := NewDeliveryQueue(cfg.QueueCapacity)
	return &Server{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		queue:       queue,
		broadcaster: NewBroadcaster(registry, queue, logger),
		drained:     make(chan struct{}),
	}
}

// Start binds the listening endpoint and launches the drainer and accept
// loops. A bind failure is fatal to the caller; everything after a
// successful Start is handled per-session.
func (s *Server) Start() error {
	history, err := OpenHistory(s.cfg.HistoryFile)
	if err != nil {
		return err
	}
	s.history = history

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		_ = history.Close()
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln

	go s.drainLoop()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String(), "history", s.cfg.HistoryFile)
	return nil
}

// Addr reports the bound listen address, useful when the configured port
// was 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Registry exposes the shared session directory for inspection.
func (s *Server) Registry() *Registry {
	return s.registry
}

// drainLoop is the single writer of the transcript: dequeue order is the
// persistence order. An append failure is logged and skipped; chat
// delivery already happened and must not stall on disk errors.
func (s *Server) drainLoop() {
	defer close(s.drained)
	for {
		line, ok := s.queue.Pop()
		if !ok {
			return
		}
		QueueDepth.Set(float64(s.queue.Len()))
		if err := s.history.Append(line); err != nil {
			s.logger.Error("history append failed", "error", err)
		}
	}
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed during Stop; clean shutdown, not a fault.
			return
		}

		session := NewSession(conn)
		s.logger.Info("client connected", "conn_id", session.ID, "addr", conn.RemoteAddr().String())

		worker := NewSessionWorker(session, s.registry, s.broadcaster, s.logger)
		go worker.Run()
	}
}

// Stop closes the listener, disconnects every session with a final
// quit line, and flushes the queue into the transcript before closing it.
// Workers are not forcibly terminated; their next read fails and they
// clean up through the normal departure path.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("shutting down")

		if s.listener != nil {
			_ = s.listener.Close()
		}

		for _, name := range s.registry.SnapshotNames() {
			if session := s.registry.Lookup(name); session != nil {
				_ = session.WriteLine(QuitCommand)
				_ = session.Close()
			}
		}

		s.queue.Close()
		<-s.drained
		if s.history != nil {
			_ = s.history.Close()
		}

		s.logger.Info("shutdown complete")
	})
}
