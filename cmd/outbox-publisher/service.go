package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond

	messageSource = "mtaani-fulfillment"
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// publishOutcome records what happened to one outbox row.
type publishOutcome int

const (
	outcomePublished publishOutcome = iota
	outcomeRetry
	outcomeDeadLettered
)

type batchStats struct {
	published    int
	retried      int
	deadLettered int
}

func (b *batchStats) record(outcome publishOutcome) {
	switch outcome {
	case outcomePublished:
		b.published++
	case outcomeRetry:
		b.retried++
	case outcomeDeadLettered:
		b.deadLettered++
	}
}

func (b batchStats) fields() map[string]any {
	return map[string]any{
		"published":     b.published,
		"retried":       b.retried,
		"dead_lettered": b.deadLettered,
	}
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
}

// Service relays order and payment events from outbox_events to Pub/Sub.
// A batch shares one transaction, so a row is marked published only after
// the broker acknowledged the message.
type Service struct {
	cfg              *config.Config
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	dlq              dlqRepository
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration

	mu         sync.Mutex
	publishers map[string]publisher
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	case params.DLQRepository == nil:
		return nil, errors.New("dlq repository is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return newGCPPubPublisher(params.PubSub.Publisher(topic))
		}
	}

	outboxCfg := params.Config.Outbox
	return &Service{
		cfg:              params.Config,
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		dlq:              params.DLQRepository,
		publisherFactory: factory,
		batchSize:        positiveOr(outboxCfg.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(outboxCfg.MaxAttempts, defaultMaxAttempts),
		pollInterval:     time.Duration(positiveOr(outboxCfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
		publishers:       make(map[string]publisher),
	}, nil
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for _, dep := range []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", s.db.Ping},
		{"pubsub", s.pubsub.Ping},
	} {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", dep.name), err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}
	s.logg.Info(ctx, "outbox dependencies ready")
	return nil
}

// Run polls until ctx is cancelled. Empty polls wait one interval; failed
// batches back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		processed, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
		case processed:
			backoff = s.pollInterval
		default:
			backoff = s.pollInterval
			if err := s.sleep(ctx, withJitter(s.pollInterval)); err != nil {
				return err
			}
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var stats batchStats
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events) > 0
		for _, event := range events {
			outcome, err := s.processEvent(ctx, tx, event)
			if err != nil {
				return err
			}
			stats.record(outcome)
		}
		return nil
	})
	if err == nil && processed {
		s.logg.Info(s.logg.WithFields(ctx, stats.fields()), "outbox.batch_processed")
	}
	return processed, err
}

// processEvent publishes one row and records the result on it. The returned
// error is reserved for bookkeeping failures that must abort the batch.
func (s *Service) processEvent(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (publishOutcome, error) {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return outcomeDeadLettered, s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, "", nil)
	}

	topic := resolved.Descriptor.Topic
	fields := s.eventFields(event, resolved.Envelope, topic)
	publishErr := s.publishResolved(ctx, event, resolved)
	if publishErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return outcomePublished, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
		return outcomePublished, nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(publishErr, &nonRetry) {
		return outcomeDeadLettered, s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, publishErr, topic, fields)
	}

	nextAttempt := event.AttemptCount + 1
	fields["attempt_count"] = nextAttempt
	if nextAttempt >= s.maxAttempts {
		fields["terminal_reason"] = "max_attempts"
		terminalErr := fmt.Errorf("max publish attempts reached: %w", publishErr)
		return outcomeDeadLettered, s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts, terminalErr, topic, fields)
	}

	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", publishErr.Error())
	s.logg.Warn(logCtx, "outbox publish failed")
	if err := s.repo.MarkFailedTx(tx, event.ID, publishErr); err != nil {
		return outcomeRetry, fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return outcomeRetry, nil
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, topic string, fields map[string]any) error {
	if fields == nil {
		fields = s.eventFields(event, outbox.PayloadEnvelope{}, topic)
	}
	fields["error_reason"] = reason
	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", cause.Error())
	s.logg.Warn(logCtx, "outbox event will not be retried")

	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

// publisherFor returns the cached publisher for topic, building it on first use.
func (s *Service) publisherFor(topic string) publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	pub := s.publisherFactory(topic)
	if pub != nil {
		s.publishers[topic] = pub
	}
	return pub
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFor(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: messageAttributes(event, resolved.Envelope),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

// messageAttributes lets subscribers filter on the order or payment id
// without decoding the payload.
func messageAttributes(event models.OutboxEvent, envelope outbox.PayloadEnvelope) map[string]string {
	attrs := map[string]string{
		"source":         messageSource,
		"event_id":       envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"event_version":  strconv.Itoa(envelope.Version),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	switch event.AggregateType {
	case enums.AggregateOrder:
		attrs["order_id"] = event.AggregateID.String()
	case enums.AggregatePayment:
		attrs["payment_id"] = event.AggregateID.String()
	}
	return attrs
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, max)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

func newGCPPubPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
