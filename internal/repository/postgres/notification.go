package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/testra/backoffice-api/internal/model"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
)

const collectionNotifications = "notifications"

const notificationColumns = `
	id, user_id, type, title, message, read, created_at, read_at
`

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	notification.ID = uuid.New()
	notification.Read = false
	notification.CreatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			notification.ID,
			notification.UserID,
			notification.Type,
			notification.Title,
			notification.Message,
			notification.Read,
			notification.CreatedAt,
		)
		if err != nil {
			return err
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "created", notification.ID, notification)
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, n := range notifications {
			n.ID = uuid.New()
			n.Read = false
			n.CreatedAt = time.Now()
			if _, err := tx.ExecContext(ctx, query,
				n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.CreatedAt,
			); err != nil {
				return err
			}
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "created_batch", notifications[0].UserID, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to create notification batch: %w", err)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var notification model.Notification
	err := r.GetDB().GetContext(ctx, &notification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("notification", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

func (r *notificationRepository) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []interface{}{filters.UserID}

	if filters.UnreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filters.Limit)
	}

	notifications := []*model.Notification{}
	if err := r.GetDB().SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.GetDB().GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE notifications SET read = true, read_at = $1 WHERE id = $2 AND read = false`, at, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Already read, or gone. Either way nothing changed.
			return nil
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "read", id, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var updated int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE notifications SET read = true, read_at = $1 WHERE user_id = $2 AND read = false`, at, userID)
		if err != nil {
			return err
		}
		updated, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if updated == 0 {
			return nil
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "read_all", userID, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return updated, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NotFound("notification", nil)
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "deleted", id, nil)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var deleted int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if deleted == 0 {
			return nil
		}
		return r.CreateChangeEventTx(ctx, tx, collectionNotifications, "deleted_all", userID, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return deleted, nil
}

func (r *notificationRepository) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.GetDB().ExecContext(ctx,
		`DELETE FROM notifications WHERE read = true AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return result.RowsAffected()
}
