package chat

import "sync"

// DefaultQueueCapacity bounds the delivery queue when no explicit capacity
// is configured. Sustained load beyond it stalls producers; that
// backpressure is what keeps memory bounded when persistence is slow.
const DefaultQueueCapacity = 1000

// DeliveryQueue is a bounded FIFO of formatted outbound lines. It decouples
// message production from ordered persistence: producers block while the
// queue is full, the drainer blocks while it is empty, and Close releases
// every waiter so shutdown never leaves a goroutine parked.
type DeliveryQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	lines    []string
	capacity int
	closed   bool
}

func NewDeliveryQueue(capacity int) *DeliveryQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	q := &DeliveryQueue{capacity: capacity}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends line at the tail, blocking while the queue is at capacity.
// Pushing to a closed queue is a silent no-op: shutdown is not an error.
func (q *DeliveryQueue) Push(line string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.lines) >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return
	}
	q.lines = append(q.lines, line)
	q.notEmpty.Signal()
}

// Pop removes and returns the head, blocking while the queue is empty.
// ok is false only once the queue is closed and fully drained, so no
// enqueued line is ever lost to shutdown.
func (q *DeliveryQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.lines) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.lines) == 0 {
		return "", false
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	q.notFull.Signal()
	return line, true
}

// TryPeek inspects the head without removing it and without blocking.
func (q *DeliveryQueue) TryPeek() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.lines) == 0 {
		return "", false
	}
	return q.lines[0], true
}

// Drain empties the queue, returning all lines in FIFO order. Used by
// inspection tooling; waiting producers are released.
func (q *DeliveryQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.lines
	q.lines = nil
	q.notFull.Broadcast()
	return out
}

func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// Close wakes every blocked producer and consumer. Lines already enqueued
// remain available to Pop.
func (q *DeliveryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}
