package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cissero/platform/internal/domain"
)

// Publisher sends one message to the event bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxPublisher queues lifecycle notifications in memory and publishes
// them from a single goroutine. Enqueue never blocks the caller: when the
// queue is full the draft is dropped and counted.
type OutboxPublisher struct {
	queue    chan domain.OutboxDraft
	producer Publisher
	logger   *slog.Logger
	metrics  *Metrics
	done     chan struct{}
	timeout  time.Duration
}

// NewOutboxPublisher creates a publisher with room for buffer pending drafts.
func NewOutboxPublisher(producer Publisher, buffer int, logger *slog.Logger, metrics *Metrics) *OutboxPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &OutboxPublisher{
		queue:    make(chan domain.OutboxDraft, buffer),
		producer: producer,
		logger:   logger,
		metrics:  metrics,
		done:     make(chan struct{}),
		timeout:  5 * time.Second,
	}
}

// Enqueue implements domain.Outbox.
func (p *OutboxPublisher) Enqueue(d domain.OutboxDraft) {
	select {
	case p.queue <- d:
	default:
		p.metrics.OutboxResult(string(d.EventType), "dropped")
		p.logger.Warn("outbox queue full, dropping notification",
			"event_type", d.EventType, "aggregate_id", d.AggregateID)
	}
}

// Start begins publishing in a goroutine. When ctx is cancelled the queue
// is drained before Done is closed.
func (p *OutboxPublisher) Start(ctx context.Context) {
	p.logger.Info("outbox publisher started", "buffer", cap(p.queue))

	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				p.logger.Info("outbox publisher stopped")
				return
			case d := <-p.queue:
				p.publish(ctx, d)
			}
		}
	}()
}

// Done is closed once the publisher goroutine has exited.
func (p *OutboxPublisher) Done() <-chan struct{} { return p.done }

func (p *OutboxPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	for {
		select {
		case d := <-p.queue:
			p.publish(ctx, d)
		default:
			return
		}
	}
}

func (p *OutboxPublisher) publish(ctx context.Context, d domain.OutboxDraft) {
	msg, err := json.Marshal(map[string]interface{}{
		"event_id":       d.EventID,
		"aggregate_type": d.AggregateType,
		"aggregate_id":   d.AggregateID,
		"event_type":     d.EventType,
		"payload":        d.Payload,
		"occurred_at":    d.OccurredAt,
	})
	if err != nil {
		p.logger.Error("outbox marshal failed", "event_id", d.EventID, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.producer.Publish(pubCtx, d.Topic(), []byte(d.PartitionKey), msg); err != nil {
		p.metrics.OutboxResult(string(d.EventType), "failed")
		p.logger.Error("outbox publish failed", "event_id", d.EventID, "event_type", d.EventType, "error", err)
		return
	}
	p.metrics.OutboxResult(string(d.EventType), "published")
	p.logger.Debug("outbox published", "event_id", d.EventID, "event_type", d.EventType)
}
