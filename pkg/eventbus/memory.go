package eventbus

import (
	"context"
	"sync"
	"time"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryBus routes messages inside one process. Queues are unbounded, so
// Publish never blocks on a slow consumer.
type MemoryBus struct {
	dispatcher

	mu       sync.Mutex
	queues   map[string]*memQueue
	bindings []Binding
	closed   bool

	// inflight counts messages queued or being handled. idle is signalled
	// whenever it drops to zero.
	inflightMu sync.Mutex
	inflight   int
	idle       *sync.Cond
}

type memQueue struct {
	mu      sync.Mutex
	pending []Message
	notify  chan struct{}
}

func newMemQueue() *memQueue {
	return &memQueue{notify: make(chan struct{}, 1)}
}

func (q *memQueue) push(m Message) {
	q.mu.Lock()
	q.pending = append(q.pending, m)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *memQueue) pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Message{}, false
	}
	m := q.pending[0]
	q.pending = q.pending[1:]
	return m, true
}

func NewMemoryBus(logger *zap.Logger, metrics *awspkg.MetricsClient) *MemoryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &MemoryBus{
		dispatcher: dispatcher{logger: logger, metrics: metrics},
		queues:     make(map[string]*memQueue),
	}
	b.idle = sync.NewCond(&b.inflightMu)
	return b
}

func (b *MemoryBus) track() {
	b.inflightMu.Lock()
	b.inflight++
	b.inflightMu.Unlock()
}

func (b *MemoryBus) settle() {
	b.inflightMu.Lock()
	b.inflight--
	if b.inflight == 0 {
		b.idle.Broadcast()
	}
	b.inflightMu.Unlock()
}

// Publish copies the message into every queue bound to a matching pattern.
// A message with no matching binding is discarded, as a broker would.
func (b *MemoryBus) Publish(_ context.Context, exchange, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	id := uuid.NewString()
	seen := map[string]bool{}
	for _, bind := range b.bindings {
		if bind.Exchange != exchange || seen[bind.Queue] || !MatchTopic(bind.RoutingKey, routingKey) {
			continue
		}
		seen[bind.Queue] = true

		body := make([]byte, len(payload))
		copy(body, payload)
		b.track()
		b.queues[bind.Queue].push(Message{
			ID:         id,
			Exchange:   exchange,
			RoutingKey: routingKey,
			Body:       body,
		})
	}
	return nil
}

// Redeliver pushes msg onto queue again with Redelivered set. Tests use it
// to reproduce at-least-once duplicates.
func (b *MemoryBus) Redeliver(queue string, msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queue]
	if !ok || b.closed {
		return
	}
	msg.Redelivered = true
	b.track()
	q.push(msg)
}

func (b *MemoryBus) Subscribe(ctx context.Context, bind Binding, h Handler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	q, ok := b.queues[bind.Queue]
	if !ok {
		q = newMemQueue()
		b.queues[bind.Queue] = q
	}
	b.bindings = append(b.bindings, bind)
	b.mu.Unlock()

	go b.consume(ctx, bind, q, h)
	b.logger.Info("subscribed", zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange), zap.String("routing_key", bind.RoutingKey))
	return nil
}

func (b *MemoryBus) consume(ctx context.Context, bind Binding, q *memQueue, h Handler) {
	for {
		for {
			msg, ok := q.pop()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				// left for any other consumer on the queue; still in flight
				q.push(msg)
				return
			}
			b.deliver(ctx, bind, h, msg)
			b.settle()
		}

		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		}
	}
}

// Drain blocks until every published message has been handled or the
// timeout elapses. It reports whether the bus went idle. Publishing while a
// Drain is waiting is allowed; the new messages are waited for too.
func (b *MemoryBus) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.inflightMu.Lock()
		for b.inflight > 0 {
			b.idle.Wait()
		}
		b.inflightMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}
