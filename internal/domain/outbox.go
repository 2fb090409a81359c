package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventType enumerates the lifecycle notifications published to the event bus.
type OutboxEventType string

const (
	EventCreated           OutboxEventType = "cissero.event.created"
	EventUpdated           OutboxEventType = "cissero.event.updated"
	EventApproved          OutboxEventType = "cissero.event.approved"
	EventRejected          OutboxEventType = "cissero.event.rejected"
	EventAssigned          OutboxEventType = "cissero.event.assigned"
	EventCompleted         OutboxEventType = "cissero.event.completed"
	EventDeleted           OutboxEventType = "cissero.event.deleted"
	EventRestored          OutboxEventType = "cissero.event.restored"
	EventSettled           OutboxEventType = "cissero.event.settled"
	EventPredictionPlaced  OutboxEventType = "cissero.prediction.placed"
	EventChatMessagePosted OutboxEventType = "cissero.chat.message.posted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateEvent      AggregateType = "event"
	AggregatePrediction AggregateType = "prediction"
	AggregateChat       AggregateType = "chat"
)

// OutboxDraft is a notification waiting to be published.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     OutboxEventType `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic returns the bus topic for the draft.
func (d OutboxDraft) Topic() string {
	return string(d.EventType)
}

// NewEventLifecycleDraft wraps an event snapshot in a lifecycle notification.
func NewEventLifecycleDraft(evtType OutboxEventType, e Event) OutboxDraft {
	payload, _ := json.Marshal(e)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateEvent,
		AggregateID:   e.ID,
		EventType:     evtType,
		PartitionKey:  e.ID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPredictionPlacedDraft creates the notification for a new prediction.
func NewPredictionPlacedDraft(p Prediction, balanceAfter int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"prediction":   p,
		"balanceAfter": balanceAfter,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePrediction,
		AggregateID:   p.ID,
		EventType:     EventPredictionPlaced,
		PartitionKey:  p.EventID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSettlementDraft creates the notification for a settled event.
func NewSettlementDraft(s Settlement) OutboxDraft {
	payload, _ := json.Marshal(s)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateEvent,
		AggregateID:   s.EventID,
		EventType:     EventSettled,
		PartitionKey:  s.EventID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewChatMessageDraft creates the notification for a chat line.
func NewChatMessageDraft(m Message) OutboxDraft {
	payload, _ := json.Marshal(m)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateChat,
		AggregateID:   m.ID,
		EventType:     EventChatMessagePosted,
		PartitionKey:  m.EventID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// Outbox accepts drafts for asynchronous publication. Enqueue must not block.
type Outbox interface {
	Enqueue(draft OutboxDraft)
}

// DiscardOutbox drops every draft.
type DiscardOutbox struct{}

func (DiscardOutbox) Enqueue(OutboxDraft) {}
