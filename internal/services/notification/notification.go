// Package services содержит бизнес-логику ленты уведомлений:
// публикацию, флаги прочтения и очистку.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mdc-cast/expense-approval/internal/models"
)

// NotificationRepository определяет методы для работы с уведомлениями в хранилище.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) error
	ListNotifications(ctx context.Context) ([]*models.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, uid string) (int, error)
	MarkAllNotificationsRead(ctx context.Context) (int, error)
	DeleteNotification(ctx context.Context, uid string) (int, error)
	DeleteAllNotifications(ctx context.Context) (int, error)
}

// NotificationService реализует ленту системных уведомлений.
type NotificationService struct {
	repo NotificationRepository
	log  *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo NotificationRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo: repo,
		log:  log,
	}
}

// Publish добавляет непрочитанное уведомление в начало ленты.
func (s *NotificationService) Publish(ctx context.Context, message, notificationType string, metadata map[string]any) (*models.Notification, error) {
	n := models.Notification{
		UID:       uuid.NewString(),
		Message:   message,
		Type:      notificationType,
		Metadata:  metadata,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.log.Info("notification published",
		slog.String("uid", n.UID), slog.String("type", notificationType))
	return &n, nil
}

// List возвращает ленту уведомлений, самые свежие первыми.
func (s *NotificationService) List(ctx context.Context) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx)
}

// UnreadCount пересчитывает число непрочитанных уведомлений на каждом
// вызове: значение производное и нигде не хранится.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}

// MarkRead помечает уведомление прочитанным. Неизвестный UID — no-op.
func (s *NotificationService) MarkRead(ctx context.Context, uid string) error {
	_, err := s.repo.MarkNotificationRead(ctx, uid)
	return err
}

// MarkAllRead помечает все уведомления прочитанными. Идемпотентна.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	_, err := s.repo.MarkAllNotificationsRead(ctx)
	return err
}

// Dismiss удаляет уведомление. Неизвестный UID — no-op.
func (s *NotificationService) Dismiss(ctx context.Context, uid string) error {
	_, err := s.repo.DeleteNotification(ctx, uid)
	return err
}

// DismissAll очищает ленту целиком.
func (s *NotificationService) DismissAll(ctx context.Context) error {
	_, err := s.repo.DeleteAllNotifications(ctx)
	return err
}
