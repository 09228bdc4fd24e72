package chat

import (
	"log/slog"
	"strings"
	"time"
)

// Message kinds reported to the processed-messages counter.
const (
	kindChat   = "chat"
	kindSystem = "system"
	kindRoster = "roster"
)

// Broadcaster stamps outbound lines with a timestamp, queues them for
// ordered persistence, and fans them out best-effort to every registered
// session.
type Broadcaster struct {
	registry *Registry
	queue    *DeliveryQueue
	logger   *slog.Logger
}

func NewBroadcaster(registry *Registry, queue *DeliveryQueue, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		registry: registry,
		queue:    queue,
		logger:   logger,
	}
}

// BroadcastChat relays one chat line from a named sender.
func (b *Broadcaster) BroadcastChat(sender, text string) {
	b.broadcast(sender+": "+text, kindChat)
}

// BroadcastSystem relays a system notice (joins, departures).
func (b *Broadcaster) BroadcastSystem(text string) {
	b.broadcast(text, kindSystem)
}

func (b *Broadcaster) broadcast(text, kind string) {
	formatted := "[" + time.Now().Format(TimestampLayout) + "] " + text

	// Queue first: the transcript records lines in enqueue order even when
	// fan-out is slow or partially fails.
	b.queue.Push(formatted)
	QueueDepth.Set(float64(b.queue.Len()))

	b.fanout(formatted)
	MessagesTotal.WithLabelValues(kind).Inc()
}

// BroadcastRoster delivers the USERLIST control line to every session.
// Roster updates are ephemeral, so they bypass the queue and the
// transcript.
func (b *Broadcaster) BroadcastRoster() {
	line := RosterPrefix + strings.Join(b.registry.SnapshotNames(), ",")
	b.fanout(line)
	MessagesTotal.WithLabelValues(kindRoster).Inc()
}

func (b *Broadcaster) fanout(line string) {
	start := time.Now()
	for _, name := range b.registry.SnapshotNames() {
		s := b.registry.Lookup(name)
		if s == nil {
			// Disconnected between snapshot and lookup.
			continue
		}
		if err := s.WriteLine(line); err != nil {
			// One bad peer never aborts delivery to the rest.
			b.logger.Warn("recipient write failed", "username", name, "error", err)
		}
	}
	BroadcastDuration.Observe(time.Since(start).Seconds())
}
