package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// EmailTemplateService отвечает за управление шаблонами писем.
type EmailTemplateService struct {
	repo EmailTemplateRepository
	log  *slog.Logger
}

// NewEmailTemplateService создает новый экземпляр EmailTemplateService.
func NewEmailTemplateService(repo EmailTemplateRepository, log *slog.Logger) *EmailTemplateService {
	return &EmailTemplateService{
		repo: repo,
		log:  log,
	}
}

// Create сохраняет новый шаблон письма.
func (s *EmailTemplateService) Create(ctx context.Context, t models.EmailTemplate) (int64, error) {
	id, err := s.repo.CreateEmailTemplate(ctx, t)
	if err != nil {
		return 0, err
	}
	s.log.Info("email template created", slog.String("name", t.Name))
	return id, nil
}

// List возвращает все шаблоны писем.
func (s *EmailTemplateService) List(ctx context.Context) ([]*models.EmailTemplate, error) {
	return s.repo.ListEmailTemplates(ctx)
}

// Update заменяет содержимое шаблона письма.
func (s *EmailTemplateService) Update(ctx context.Context, id int64, t models.EmailTemplate) error {
	err := s.repo.UpdateEmailTemplate(ctx, id, t)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete удаляет шаблон письма.
func (s *EmailTemplateService) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteEmailTemplate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
