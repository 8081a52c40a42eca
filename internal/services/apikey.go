package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/token"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// APIKeyRepository описывает контракт для работы с API-ключами.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, key models.APIKey) (int64, error)
	GetActiveKeyByUser(ctx context.Context, userID int64) (*models.APIKey, error)
	GetActiveKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*models.APIKeyOverview, error)
	RevokeAPIKey(ctx context.Context, id int64) error
	UpdateKeyLastUsed(ctx context.Context, id int64, at time.Time) error
}

// APIUsageLogger записывает обращения к публичному API.
type APIUsageLogger interface {
	InsertAPIUsageLog(ctx context.Context, entry models.APIUsageLog) error
}

// APIKeyService отвечает за выпуск, отзыв и проверку API-ключей.
// У пользователя может быть не больше одного активного ключа.
type APIKeyService struct {
	repo  APIKeyRepository
	usage APIUsageLogger
	log   *slog.Logger
}

// NewAPIKeyService создает новый экземпляр APIKeyService.
func NewAPIKeyService(repo APIKeyRepository, usage APIUsageLogger, log *slog.Logger) *APIKeyService {
	return &APIKeyService{
		repo:  repo,
		usage: usage,
		log:   log,
	}
}

// Generate выпускает новый ключ для пользователя. Секрет возвращается
// ровно один раз; далее доступна только маскированная форма. Повторный
// выпуск при живом активном ключе отклоняется.
func (s *APIKeyService) Generate(ctx context.Context, userID int64, name, description string, perms []string) (string, error) {
	_, err := s.repo.GetActiveKeyByUser(ctx, userID)
	if err == nil {
		return "", ErrActiveKeyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	secret, err := token.NewAPIKey()
	if err != nil {
		return "", err
	}
	if len(perms) == 0 {
		perms = []string{models.APIKeyPermissionRead}
	}
	key := models.APIKey{
		UserID:      userID,
		Name:        name,
		Description: description,
		Key:         secret,
		Permissions: perms,
		Status:      models.APIKeyStatusActive,
	}
	if _, err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return "", err
	}
	s.log.Info("api key generated", slog.Int64("user_id", userID))
	return secret, nil
}

// List возвращает все ключи с маскированными секретами и владельцами.
func (s *APIKeyService) List(ctx context.Context) ([]*models.APIKeyOverview, error) {
	return s.repo.ListAPIKeys(ctx)
}

// Revoke отзывает ключ. Отозванный ключ остается в базе для аудита.
func (s *APIKeyService) Revoke(ctx context.Context, id int64) error {
	err := s.repo.RevokeAPIKey(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("api key revoked", slog.Int64("key_id", id))
	return nil
}

// Authenticate проверяет секрет и возвращает активный ключ. Время
// последнего использования обновляется по принципу best-effort.
func (s *APIKeyService) Authenticate(ctx context.Context, secret string) (*models.APIKey, error) {
	key, err := s.repo.GetActiveKeyBySecret(ctx, secret)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrKeyRevoked
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateKeyLastUsed(ctx, key.ID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update key last used", sl.Err(err))
	}
	return key, nil
}

// LogUsage записывает обращение к публичному API. Сбой записи не
// влияет на обработку запроса.
func (s *APIKeyService) LogUsage(ctx context.Context, entry models.APIUsageLog) {
	if err := s.usage.InsertAPIUsageLog(ctx, entry); err != nil {
		s.log.Warn("failed to record api usage", sl.Err(err))
	}
}
