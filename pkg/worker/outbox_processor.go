package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/internal/repository"
	"github.com/testra/backoffice-api/pkg/logger"
	"github.com/testra/backoffice-api/pkg/messaging"
	"github.com/testra/backoffice-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     100,
		PollInterval:  5 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
	}
}

// OutboxProcessor drains pending collection-change events and publishes them
// to the per-collection channel. Events are fetched with a lock so multiple
// worker instances never double-publish a batch.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox events")
			}
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, evt := range events {
		if err := p.publish(ctx, evt); err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			p.logger.Error(err, "failed to publish event after retries", "event_id", evt.ID)

			errMsg := err.Error()
			retryAt := time.Now().Add(p.config.RetryDelay * time.Duration(p.config.RetryAttempts))
			if updateErr := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusRetry, &errMsg, &retryAt); updateErr != nil {
				p.logger.Error(updateErr, "failed to mark event for retry", "event_id", evt.ID)
			}
			continue
		}

		if err := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusProcessed, nil, nil); err != nil {
			p.logger.Error(err, "failed to mark event as processed", "event_id", evt.ID)
			continue
		}
		p.metrics.OutboxEventsProcessed.Inc()
	}

	return nil
}

func (p *OutboxProcessor) publish(ctx context.Context, evt *model.OutboxEvent) error {
	change := model.ChangeEvent{
		Collection: evt.Collection,
		Action:     evt.EventType,
		EntityID:   evt.EntityID,
	}
	// The payload is the mutated document; subscribers only use it to decide
	// whether to re-fetch, never to merge.
	if len(evt.Payload) > 0 {
		change.Payload = json.RawMessage(evt.Payload)
	}

	var publishErr error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			p.metrics.OutboxRetries.WithLabelValues(evt.EventType).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * p.config.RetryDelay):
			}
		}

		publishErr = p.broker.Publish(ctx, messaging.CollectionChannel(evt.Collection), change)
		if publishErr == nil {
			return nil
		}
		p.logger.Warn("retrying event publish", "event_id", evt.ID, "attempt", attempt+1)
	}
	return publishErr
}
