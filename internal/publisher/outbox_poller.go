package publisher

import (
	"context"
	"sync"
	"time"

	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"go.uber.org/zap"
)

// Publisher is implemented by OrderPublisher.
type Publisher interface {
	Publish(ctx context.Context, order d.Order) error
}

// OutboxPoller decouples order creation from Kafka. Orders are queued in
// memory and published on every tick; an order that fails stays queued and
// is retried on the next tick, up to maxAttempts.
type OutboxPoller struct {
	mu          sync.Mutex
	pending     []outboxEvent
	publisher   Publisher
	log         *zap.Logger
	tick        time.Duration
	timeout     time.Duration
	maxAttempts int
}

type outboxEvent struct {
	order    d.Order
	attempts int
}

func NewOutboxPoller(publisher Publisher, log *zap.Logger) *OutboxPoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxPoller{
		publisher:   publisher,
		log:         log,
		tick:        time.Second,
		timeout:     5 * time.Second,
		maxAttempts: 10,
	}
}

// Enqueue stores a copy of the order for publication.
func (p *OutboxPoller) Enqueue(order d.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, outboxEvent{order: order.Clone()})
}

func (p *OutboxPoller) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Run publishes until ctx is done, then makes one last attempt to drain the
// queue.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processPending(ctx)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
			p.processPending(drainCtx)
			cancel()
			return
		}
	}
}

func (p *OutboxPoller) processPending(ctx context.Context) {
	p.mu.Lock()
	events := p.pending
	p.pending = nil
	p.mu.Unlock()

	var retry []outboxEvent
	for _, event := range events {
		pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.publisher.Publish(pubCtx, event.order)
		cancel()
		if err == nil {
			p.log.Info("order published", zap.Int64("order_id", event.order.ID))
			continue
		}

		event.attempts++
		if event.attempts >= p.maxAttempts {
			p.log.Error("dropping order event after retries",
				zap.Int64("order_id", event.order.ID),
				zap.Int("attempts", event.attempts),
				zap.Error(err))
			continue
		}
		p.log.Warn("failed to publish order",
			zap.Int64("order_id", event.order.ID),
			zap.Int("attempts", event.attempts),
			zap.Error(err))
		retry = append(retry, event)
	}

	if len(retry) == 0 {
		return
	}
	p.mu.Lock()
	p.pending = append(retry, p.pending...)
	p.mu.Unlock()
}
