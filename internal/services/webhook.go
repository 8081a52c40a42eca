package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/token"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// WebhookRepository описывает контракт для работы с вебхуками.
type WebhookRepository interface {
	CreateWebhook(ctx context.Context, hook models.Webhook) (int64, error)
	ListWebhooks(ctx context.Context) ([]*models.WebhookOverview, error)
	DeleteWebhook(ctx context.Context, id int64) error
}

// WebhookService отвечает за подписки внешних потребителей на события.
type WebhookService struct {
	repo WebhookRepository
	log  *slog.Logger
}

// NewWebhookService создает новый экземпляр WebhookService.
func NewWebhookService(repo WebhookRepository, log *slog.Logger) *WebhookService {
	return &WebhookService{
		repo: repo,
		log:  log,
	}
}

// Create регистрирует вебхук. Секрет подписи генерируется сервером
// и возвращается в ответе на создание.
func (s *WebhookService) Create(ctx context.Context, hook models.Webhook) (int64, string, error) {
	secret, err := token.NewWebhookSecret()
	if err != nil {
		return 0, "", err
	}
	hook.Secret = secret
	if hook.Status == "" {
		hook.Status = models.WebhookStatusActive
	}
	id, err := s.repo.CreateWebhook(ctx, hook)
	if err != nil {
		return 0, "", err
	}
	s.log.Info("webhook created", slog.String("url", hook.URL))
	return id, secret, nil
}

// List возвращает все вебхуки с данными владельцев.
func (s *WebhookService) List(ctx context.Context) ([]*models.WebhookOverview, error) {
	return s.repo.ListWebhooks(ctx)
}

// Delete удаляет вебхук.
func (s *WebhookService) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteWebhook(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
