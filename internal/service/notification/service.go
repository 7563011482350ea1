package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/testra/backoffice-api/internal/email"
	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/internal/repository"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
	"github.com/testra/backoffice-api/pkg/logger"
)

// Service delivers in-app notifications. Warning and error notifications are
// additionally mirrored to the recipient's email, best effort.
type Service struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	mailer email.Sender
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, mailer email.Sender, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

func (s *Service) CreateNotification(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.mirrorAlert(ctx, n)
	return n, nil
}

// mirrorAlert sends warning/error notifications to the recipient's inbox.
// Failures are logged, never surfaced; the in-app copy already landed.
func (s *Service) mirrorAlert(ctx context.Context, n *model.Notification) {
	if s.mailer == nil {
		return
	}
	if n.Type != model.NotificationTypeWarning && n.Type != model.NotificationTypeError {
		return
	}
	user, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("notification email mirror: recipient lookup failed", "user_id", n.UserID.String(), "error", err.Error())
		return
	}
	if err := s.mailer.Send(user.Email, n.Title, email.AlertBody(n.Title, n.Message)); err != nil {
		s.logger.Warn("notification email mirror failed", "user_id", n.UserID.String(), "error", err.Error())
	}
}

func (s *Service) ListNotifications(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, time.Now())
}

// MarkAllRead flips every unread notification for the user in one batch and
// returns how many transitioned. Zero unread is a successful no-op.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}

func (s *Service) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteAllForUser(ctx, userID)
}

// quickSeeds are the canned per-type notifications behind the admin testing
// panel's one-click buttons.
var quickSeeds = map[model.NotificationType]model.Notification{
	model.NotificationTypeInfo: {
		Title:   "Information Update",
		Message: "This is a test info notification from the testing panel",
	},
	model.NotificationTypeSuccess: {
		Title:   "Operation Successful",
		Message: "Test success notification - everything is working correctly",
	},
	model.NotificationTypeWarning: {
		Title:   "Warning Alert",
		Message: "Test warning notification - please review this carefully",
	},
	model.NotificationTypeError: {
		Title:   "Error Detected",
		Message: "Test error notification - this simulates an error condition",
	},
}

// bulkSeeds is the realistic sample set behind the testing panel's bulk
// button.
var bulkSeeds = []model.Notification{
	{Type: model.NotificationTypeInfo, Title: "New Appointment", Message: "Drug test scheduled for tomorrow at 10 AM"},
	{Type: model.NotificationTypeSuccess, Title: "Payment Received", Message: "Invoice #2024-001 has been paid"},
	{Type: model.NotificationTypeWarning, Title: "Low Inventory", Message: "10-panel drug tests running low"},
	{Type: model.NotificationTypeInfo, Title: "Quote Request", Message: "New website design quote request received"},
	{Type: model.NotificationTypeSuccess, Title: "Project Complete", Message: "Website deployment completed successfully"},
}

// SeedQuickTest creates the canned notification for the given type. Types
// outside the known set are rejected.
func (s *Service) SeedQuickTest(ctx context.Context, userID uuid.UUID, typ model.NotificationType) (*model.Notification, error) {
	seed, ok := quickSeeds[typ]
	if !ok {
		return nil, apperrors.BadRequest("unknown notification type", nil)
	}
	return s.CreateNotification(ctx, &model.CreateNotificationRequest{
		UserID:  userID,
		Type:    typ,
		Title:   seed.Title,
		Message: seed.Message,
	})
}

// SeedBulk inserts the sample notification set for the user in one batch.
func (s *Service) SeedBulk(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	batch := make([]*model.Notification, 0, len(bulkSeeds))
	for _, seed := range bulkSeeds {
		n := seed
		n.UserID = userID
		batch = append(batch, &n)
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}
