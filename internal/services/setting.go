package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// SettingRepository описывает контракт для работы с системными настройками.
type SettingRepository interface {
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	UpsertSetting(ctx context.Context, upd models.SettingUpdate) error
}

// SettingService отвечает за системные настройки вида ключ/значение.
type SettingService struct {
	repo SettingRepository
	log  *slog.Logger
}

// NewSettingService создает новый экземпляр SettingService.
func NewSettingService(repo SettingRepository, log *slog.Logger) *SettingService {
	return &SettingService{
		repo: repo,
		log:  log,
	}
}

// List возвращает все настройки по категориям.
func (s *SettingService) List(ctx context.Context) ([]*models.Setting, error) {
	return s.repo.ListSettings(ctx)
}

// BulkUpdate применяет массовое обновление настроек: каждый элемент —
// upsert по ключу. Возвращает количество примененных элементов.
func (s *SettingService) BulkUpdate(ctx context.Context, updates []models.SettingUpdate) (int, error) {
	for i, upd := range updates {
		if err := s.repo.UpsertSetting(ctx, upd); err != nil {
			return i, err
		}
	}
	s.log.Info("settings updated", slog.Int("count", len(updates)))
	return len(updates), nil
}
