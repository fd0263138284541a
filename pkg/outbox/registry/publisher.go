package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, fmt.Errorf("orders topic is required")
	}
	if cfg.PaymentsTopic == "" {
		return nil, fmt.Errorf("payments topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	ordersTopic := cfg.OrdersTopic
	paymentsTopic := cfg.PaymentsTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventOrderCreated,
			AggregateType:  enums.AggregateOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderCreatedEvent{} },
		},
		{
			EventType:      enums.EventOrderClaimed,
			AggregateType:  enums.AggregateOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderClaimedEvent{} },
		},
		{
			EventType:      enums.EventOrderStatusChanged,
			AggregateType:  enums.AggregateOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventOrderCancelled,
			AggregateType:  enums.AggregateOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderCancelledEvent{} },
		},
		{
			EventType:      enums.EventOrderAssignmentExpired,
			AggregateType:  enums.AggregateOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderAssignmentExpiredEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, eventType := range []enums.OutboxEventType{
		enums.EventPaymentInitiated,
		enums.EventPaymentCompleted,
		enums.EventPaymentFailed,
		enums.EventPaymentRefunded,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregatePayment,
			Topic:          paymentsTopic,
			PayloadFactory: func() interface{} { return &payloads.PaymentEvent{} },
		})
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Topics returns the distinct topics events can be routed to.
func (r *EventRegistry) Topics() []string {
	seen := map[string]struct{}{}
	topics := []string{}
	for _, desc := range r.entries {
		if _, ok := seen[desc.Topic]; ok {
			continue
		}
		seen[desc.Topic] = struct{}{}
		topics = append(topics, desc.Topic)
	}
	return topics
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
