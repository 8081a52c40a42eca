package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// RecipientLister возвращает получателей по фильтру рассылки.
type RecipientLister interface {
	ListRecipients(ctx context.Context, filter models.RecipientFilter) ([]*models.User, error)
}

// NotificationRepository описывает контракт для работы с уведомлениями.
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, recipients []int64, title, message, link string) (int, error)
	ListNotificationsForRecipient(ctx context.Context, recipient int64) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipient int64) error
}

// NotificationService отвечает за внутрисистемные уведомления.
type NotificationService struct {
	repo  NotificationRepository
	users RecipientLister
	log   *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo NotificationRepository, users RecipientLister, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
		log:   log,
	}
}

// Broadcast создает уведомление для каждого получателя, подходящего под
// фильтр. Пустая выборка получателей — ошибка.
func (s *NotificationService) Broadcast(ctx context.Context, filter models.RecipientFilter, title, message, link string) (int, error) {
	recipients, err := s.users.ListRecipients(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, ErrNoRecipients
	}

	ids := make([]int64, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
	}
	count, err := s.repo.CreateNotifications(ctx, ids, title, message, link)
	if err != nil {
		return 0, err
	}
	s.log.Info("notifications created", slog.Int("count", count))
	return count, nil
}

// ListForUser возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	return s.repo.ListNotificationsForRecipient(ctx, userID)
}

// MarkRead помечает уведомление прочитанным. Чужое уведомление пометить
// нельзя.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	err := s.repo.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
