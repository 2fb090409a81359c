// Command outbox-consumer tails the lifecycle notifications the API publishes
// to Kafka and logs each one as a structured event feed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/infra"
)

var topics = []string{
	string(domain.EventCreated),
	string(domain.EventUpdated),
	string(domain.EventApproved),
	string(domain.EventRejected),
	string(domain.EventAssigned),
	string(domain.EventCompleted),
	string(domain.EventDeleted),
	string(domain.EventRestored),
	string(domain.EventSettled),
	string(domain.EventPredictionPlaced),
	string(domain.EventChatMessagePosted),
}

// envelope is the message shape written by infra.OutboxPublisher.
type envelope struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func decodeEnvelope(value []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return env, errors.New("decode envelope: missing event_type")
	}
	return env, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topics, cfg.KafkaConsumerGID, cfg.KafkaEnabled, logger)
	defer consumer.Close()
	if !consumer.Enabled() {
		return errors.New("kafka is disabled; set KAFKA_ENABLED=true and KAFKA_BROKERS")
	}

	logger.Info("outbox-consumer starting", "brokers", cfg.KafkaBrokers, "group", cfg.KafkaConsumerGID, "topics", len(topics))

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("outbox-consumer shutting down")
				return nil
			}
			logger.Error("read error", "error", err)
			continue
		}

		env, err := decodeEnvelope(msg.Value)
		if err != nil {
			logger.Warn("skipping malformed message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			continue
		}
		logger.Info("outbox event",
			"event_id", env.EventID,
			"aggregate_type", env.AggregateType,
			"event_type", env.EventType,
			"aggregate_id", env.AggregateID,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"occurred_at", env.OccurredAt,
		)
	}
}
