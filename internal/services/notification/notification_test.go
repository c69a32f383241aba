package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mdc-cast/expense-approval/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateNotification(ctx context.Context, n models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *RepoMock) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *RepoMock) CountUnread(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) MarkNotificationRead(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) DeleteNotification(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) DeleteAllNotifications(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNotificationService_Publish(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UID != "" &&
			n.Message == "New user registration from: Test (test@example.com) - needs approval" &&
			n.Type == models.NotificationNewUser &&
			!n.Read
	})).Return(nil).Once()

	svc := NewNotificationService(repo, newNoopLogger())
	n, err := svc.Publish(context.Background(),
		"New user registration from: Test (test@example.com) - needs approval",
		models.NotificationNewUser,
		map[string]any{"user_uid": "uid-1"})

	require.NoError(t, err)
	assert.NotEmpty(t, n.UID)
	assert.False(t, n.Read)
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_UnknownUIDIsNoop(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkNotificationRead", mock.Anything, "ghost").Return(0, nil).Once()

	svc := NewNotificationService(repo, newNoopLogger())
	err := svc.MarkRead(context.Background(), "ghost")

	assert.NoError(t, err)
}

func TestNotificationService_MarkAllRead_Idempotent(t *testing.T) {
	repo := new(RepoMock)
	// Первый вызов помечает, второй не затрагивает строк; оба успешны.
	repo.On("MarkAllNotificationsRead", mock.Anything).Return(3, nil).Once()
	repo.On("MarkAllNotificationsRead", mock.Anything).Return(0, nil).Once()

	svc := NewNotificationService(repo, newNoopLogger())
	assert.NoError(t, svc.MarkAllRead(context.Background()))
	assert.NoError(t, svc.MarkAllRead(context.Background()))
	repo.AssertExpectations(t)
}

func TestNotificationService_DismissAll(t *testing.T) {
	repo := new(RepoMock)
	repo.On("DeleteAllNotifications", mock.Anything).Return(5, nil).Once()

	svc := NewNotificationService(repo, newNoopLogger())
	assert.NoError(t, svc.DismissAll(context.Background()))
}

func TestNotificationService_UnreadCount(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountUnread", mock.Anything).Return(2, nil).Once()

	svc := NewNotificationService(repo, newNoopLogger())
	count, err := svc.UnreadCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
