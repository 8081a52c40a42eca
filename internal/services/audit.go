package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// AuditRepository описывает контракт для чтения журналов аудита.
type AuditRepository interface {
	ListActivityLogs(ctx context.Context) ([]*models.ActivityLog, error)
	ListLoginAttempts(ctx context.Context) ([]*models.LoginAttempt, error)
	ListAPIUsageLogs(ctx context.Context) ([]*models.APIUsageLog, error)
}

// AuditService отдает журналы аудита суперадмину.
type AuditService struct {
	repo AuditRepository
	log  *slog.Logger
}

// NewAuditService создает новый экземпляр AuditService.
func NewAuditService(repo AuditRepository, log *slog.Logger) *AuditService {
	return &AuditService{
		repo: repo,
		log:  log,
	}
}

// ActivityLogs возвращает последние записи журнала привилегированных действий.
func (s *AuditService) ActivityLogs(ctx context.Context) ([]*models.ActivityLog, error) {
	return s.repo.ListActivityLogs(ctx)
}

// LoginAttempts возвращает последние попытки входа.
func (s *AuditService) LoginAttempts(ctx context.Context) ([]*models.LoginAttempt, error) {
	return s.repo.ListLoginAttempts(ctx)
}

// APIUsage возвращает последние обращения к публичному API.
func (s *AuditService) APIUsage(ctx context.Context) ([]*models.APIUsageLog, error) {
	return s.repo.ListAPIUsageLogs(ctx)
}
