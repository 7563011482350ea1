package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
	"github.com/testra/backoffice-api/pkg/logger"
)

type fakeRepo struct {
	byID map[uuid.UUID]*model.Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	r.byID[n.ID] = n
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	for _, n := range ns {
		if err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("notification", nil)
	}
	return n, nil
}

func (r *fakeRepo) List(_ context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	out := make([]*model.Notification, 0, len(r.byID))
	for _, n := range r.byID {
		if n.UserID != filters.UserID {
			continue
		}
		if filters.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	n, ok := r.byID[id]
	if !ok || n.Read {
		return apperrors.NotFound("notification", nil)
	}
	n.Read = true
	n.ReadAt = &at
	return nil
}

func (r *fakeRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var count int64
	for _, n := range r.byID {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for id, n := range r.byID {
		if n.UserID == userID {
			delete(r.byID, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) PurgeRead(_ context.Context, before time.Time) (int64, error) {
	var count int64
	for id, n := range r.byID {
		if n.Read && n.CreatedAt.Before(before) {
			delete(r.byID, id)
			count++
		}
	}
	return count, nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*model.User
}

func (u *fakeUsers) Create(_ context.Context, user *model.User) error { u.byID[user.ID] = user; return nil }
func (u *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := u.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return user, nil
}
func (u *fakeUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (u *fakeUsers) Update(context.Context, *model.User) error   { return nil }
func (u *fakeUsers) List(context.Context) ([]*model.User, error) { return nil, nil }

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, _ string) error {
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

func newTestService(repo *fakeRepo, userID uuid.UUID) (*Service, *recordingMailer) {
	mailer := &recordingMailer{}
	users := &fakeUsers{byID: map[uuid.UUID]*model.User{
		userID: {Base: model.Base{ID: userID}, Email: "sam@testra.test"},
	}}
	return NewService(repo, users, mailer, logger.NewLogger(nil)), mailer
}

func TestMarkAllReadCountsTransitions(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc, _ := newTestService(repo, userID)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNotification(ctx, &model.CreateNotificationRequest{
			UserID: userID, Type: model.NotificationTypeInfo, Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}

	count, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	unread, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// With nothing unread the batch is a successful no-op.
	count, err = svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateNotificationMirrorsAlertsToEmail(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc, mailer := newTestService(repo, userID)
	ctx := context.Background()

	_, err := svc.CreateNotification(ctx, &model.CreateNotificationRequest{
		UserID: userID, Type: model.NotificationTypeInfo, Title: "FYI", Message: "m",
	})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent, "info stays in-app only")

	_, err = svc.CreateNotification(ctx, &model.CreateNotificationRequest{
		UserID: userID, Type: model.NotificationTypeError, Title: "Sync failed", Message: "m",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "sam@testra.test: Sync failed", mailer.sent[0])
}

func TestSeedQuickTestUsesCannedMessage(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc, _ := newTestService(repo, userID)

	n, err := svc.SeedQuickTest(context.Background(), userID, model.NotificationTypeSuccess)
	require.NoError(t, err)
	assert.Equal(t, "Operation Successful", n.Title)
	assert.Equal(t, model.NotificationTypeSuccess, n.Type)
}

func TestSeedQuickTestRejectsUnknownType(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc, _ := newTestService(repo, userID)

	_, err := svc.SeedQuickTest(context.Background(), userID, model.NotificationType("bogus"))
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestSeedBulkInsertsSampleSet(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc, _ := newTestService(repo, userID)
	ctx := context.Background()

	batch, err := svc.SeedBulk(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, batch, 5)

	unread, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, unread)
}

func TestNotificationIconFallback(t *testing.T) {
	n := &model.Notification{Type: model.NotificationType("bogus")}
	assert.Equal(t, "bell", n.Icon())
	n.Type = model.NotificationTypeWarning
	assert.Equal(t, "exclamation-triangle", n.Icon())
}
