package events

import (
	"context"
	"time"
)

// Domain event codes. Each one has a matching notification type.
const (
	ApplicationSubmitted     = "APPLICATION_SUBMITTED"
	ApplicationStatusChanged = "APPLICATION_STATUS_CHANGED"
	CaseCreated              = "CASE_CREATED"
	DocumentReady            = "DOCUMENT_READY"
	DeadlineApproaching      = "DEADLINE_APPROACHING"
	PaymentSucceeded         = "PAYMENT_SUCCEEDED"
)

// Event defines the contract for all domain events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

type Handler func(ctx context.Context, event Event) error

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
