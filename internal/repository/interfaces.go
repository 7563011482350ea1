package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/testra/backoffice-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment persistence. Every mutation
	// records a collection-change outbox event in the same transaction.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		// UpdateDate is the partial update behind drag-reschedule: only the
		// date column moves. The returned appointment reflects the new
		// server state; last write wins regardless of the version the
		// caller saw.
		UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	// CompanyRepository returns records already normalized into canonical
	// shape; legacy columns never leak past this boundary.
	CompanyRepository interface {
		Create(ctx context.Context, company *model.Company) error
		Get(ctx context.Context, id uuid.UUID) (*model.Company, error)
		Update(ctx context.Context, company *model.Company) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Company, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		CreateBatch(ctx context.Context, notifications []*model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
		CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
		MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
		// MarkAllRead flips every unread notification for the user in one
		// batch and returns how many transitioned. Zero unread means no
		// write is issued at all.
		MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
		PurgeRead(ctx context.Context, before time.Time) (int64, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	// TokenRepository is the refresh-token denylist consulted on refresh.
	TokenRepository interface {
		Invalidate(ctx context.Context, token string, expiry time.Time) error
		IsInvalidated(ctx context.Context, token string) (bool, error)
		DeleteExpired(ctx context.Context, before time.Time) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string, retryAt *time.Time) error
	}
)
