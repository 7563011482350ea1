package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Notification is an in-app message delivered to a single recipient.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
}

// Icon maps the notification type to its display icon name. Unknown types
// fall back to a generic bell.
func (n Notification) Icon() string {
	switch n.Type {
	case NotificationTypeInfo:
		return "info-circle"
	case NotificationTypeSuccess:
		return "check-circle"
	case NotificationTypeWarning:
		return "exclamation-triangle"
	case NotificationTypeError:
		return "exclamation-circle"
	default:
		return "bell"
	}
}

// MarshalJSON adds the resolved icon name to the wire payload so clients
// never map types themselves.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	return json.Marshal(struct {
		plain
		Icon string `json:"icon"`
	}{plain(n), n.Icon()})
}

type CreateNotificationRequest struct {
	UserID  uuid.UUID        `json:"user_id" binding:"required"`
	Type    NotificationType `json:"type" binding:"required,oneof=info success warning error"`
	Title   string           `json:"title" binding:"required"`
	Message string           `json:"message" binding:"required"`
}

type NotificationFilters struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
}
