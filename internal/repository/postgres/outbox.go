package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/testra/backoffice-api/internal/model"
)

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (
			id, collection, event_type, entity_id, payload, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := r.GetDB().ExecContext(ctx, query,
		event.ID,
		event.Collection,
		event.EventType,
		event.EntityID,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingEventsWithLock claims a batch of pending events. SKIP LOCKED
// keeps concurrent workers from draining the same rows.
func (r *outboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, collection, event_type, entity_id, payload, status, error,
			   retry_at, created_at, updated_at
		FROM outbox_events
		WHERE status IN ($1, $2)
		  AND (retry_at IS NULL OR retry_at <= $3)
		ORDER BY created_at ASC
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.GetDB().QueryxContext(ctx, query,
		model.OutboxStatusPending, model.OutboxStatusRetry, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	defer rows.Close()

	events := []*model.OutboxEvent{}
	for rows.Next() {
		var evt model.OutboxEvent
		var payload []byte
		if err := rows.Scan(
			&evt.ID, &evt.Collection, &evt.EventType, &evt.EntityID, &payload,
			&evt.Status, &evt.Error, &evt.RetryAt, &evt.CreatedAt, &evt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		evt.Payload = json.RawMessage(payload)
		events = append(events, &evt)
	}
	return events, rows.Err()
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string, retryAt *time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error = $2, retry_at = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := r.GetDB().ExecContext(ctx, query, status, errMsg, retryAt, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}
	return nil
}
