package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// EmailTemplateRepository описывает контракт для работы с шаблонами писем.
type EmailTemplateRepository interface {
	CreateEmailTemplate(ctx context.Context, t models.EmailTemplate) (int64, error)
	ListEmailTemplates(ctx context.Context) ([]*models.EmailTemplate, error)
	GetEmailTemplate(ctx context.Context, id int64) (*models.EmailTemplate, error)
	UpdateEmailTemplate(ctx context.Context, id int64, t models.EmailTemplate) error
	DeleteEmailTemplate(ctx context.Context, id int64) error
}

// BroadcastService отвечает за массовые рассылки по шаблону. Задания
// на отправку уходят в очередь; ответ клиенту не ждет доставки писем.
type BroadcastService struct {
	templates EmailTemplateRepository
	users     RecipientLister
	publisher EmailPublisher
	log       *slog.Logger
}

// NewBroadcastService создает новый экземпляр BroadcastService.
func NewBroadcastService(templates EmailTemplateRepository, users RecipientLister,
	publisher EmailPublisher, log *slog.Logger) *BroadcastService {
	return &BroadcastService{
		templates: templates,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// Send ставит в очередь письмо по шаблону для каждого получателя,
// подходящего под фильтр, и возвращает их количество. Подстановка
// {{name}} выполняется при отправке.
func (s *BroadcastService) Send(ctx context.Context, templateID int64, filter models.RecipientFilter) (int, error) {
	tmpl, err := s.templates.GetEmailTemplate(ctx, templateID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	recipients, err := s.users.ListRecipients(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, ErrNoRecipients
	}

	for _, u := range recipients {
		job := models.EmailJob{
			Email:   u.Email,
			Name:    u.Name,
			Subject: tmpl.Subject,
			Body:    tmpl.Body,
		}
		if err := s.publisher.Publish(rabbitmq.BroadcastRoutingKey, job); err != nil {
			s.log.Error("failed to publish broadcast email", sl.Err(err),
				slog.String("email", u.Email))
		}
	}

	s.log.Info("broadcast queued", slog.Int("recipients", len(recipients)),
		slog.String("template", tmpl.Name))
	return len(recipients), nil
}
