// Package queue buffers outbound notifications between the reputation
// facade and the dispatcher workers.
//
// Publication never blocks: a full or closed queue drops the notification
// and counts the drop.
package queue

import (
	"context"
	"sync"

	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/pkg/metrics"
)

const defaultQueueCapacity = 4096

// Notification is the payload type flowing through the queue.
type Notification = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a notification to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, n Notification) bool

	// Dequeue returns a channel that receives notifications as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Notification

	// Len returns the current number of queued notifications.
	Len(ctx context.Context) int

	// Close stops accepting notifications. Queued ones can still be drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	notifications chan Notification
	capacity      int
	mu            sync.RWMutex
	closed        bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.notifications = make(chan Notification, q.capacity)
	metrics.UpdateNotifyQueueSize(0)
	return q
}

// Enqueue adds a notification without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordNotificationDropped()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.notifications <- n:
		metrics.RecordNotificationPublished(string(n.Kind))
		metrics.UpdateNotifyQueueSize(len(q.notifications))
		return true
	case <-ctx.Done():
		metrics.RecordNotificationDropped()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordNotificationDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Publish enqueues n and forgets about it. It satisfies the facade's
// notification sink.
func (q *InMemoryQueue) Publish(ctx context.Context, n Notification) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	_ = q.Enqueue(ctx, n)
}

// Dequeue returns a channel that receives queued notifications.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for n := range q.notifications {
			select {
			case out <- n:
				metrics.UpdateNotifyQueueSize(len(q.notifications))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued notifications.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.notifications)
	metrics.UpdateNotifyQueueSize(size)
	return size
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.notifications)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
