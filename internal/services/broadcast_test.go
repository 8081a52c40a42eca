package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Мок для EmailTemplateRepository
type TemplateRepoMock struct {
	mock.Mock
}

func (m *TemplateRepoMock) CreateEmailTemplate(ctx context.Context, t models.EmailTemplate) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TemplateRepoMock) ListEmailTemplates(ctx context.Context) ([]*models.EmailTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EmailTemplate), args.Error(1)
}

func (m *TemplateRepoMock) GetEmailTemplate(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailTemplate), args.Error(1)
}

func (m *TemplateRepoMock) UpdateEmailTemplate(ctx context.Context, id int64, t models.EmailTemplate) error {
	args := m.Called(ctx, id, t)
	return args.Error(0)
}

func (m *TemplateRepoMock) DeleteEmailTemplate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок для RecipientLister
type RecipientListerMock struct {
	mock.Mock
}

func (m *RecipientListerMock) ListRecipients(ctx context.Context, filter models.RecipientFilter) ([]*models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func TestBroadcastService_Send(t *testing.T) {
	tmpl := &models.EmailTemplate{ID: 1, Name: "welcome",
		Subject: "Привет, {{name}}", Body: "Здравствуйте, {{name}}!"}

	t.Run("задание публикуется для каждого получателя", func(t *testing.T) {
		templates := new(TemplateRepoMock)
		users := new(RecipientListerMock)
		publisher := new(PublisherMock)

		templates.On("GetEmailTemplate", mock.Anything, int64(1)).Return(tmpl, nil).Once()
		users.On("ListRecipients", mock.Anything, models.RecipientFilter{Type: "plan", Value: "basic"}).
			Return([]*models.User{
				{ID: 1, Name: "Иван", Email: "ivan@example.com"},
				{ID: 2, Name: "Мария", Email: "maria@example.com"},
			}, nil).Once()
		publisher.On("Publish", "broadcast", mock.MatchedBy(func(msg any) bool {
			job, ok := msg.(models.EmailJob)
			return ok && job.Subject == "Привет, {{name}}"
		})).Return(nil).Twice()

		svc := services.NewBroadcastService(templates, users, publisher, sl.DiscardLogger())
		count, err := svc.Send(context.Background(), 1,
			models.RecipientFilter{Type: "plan", Value: "basic"})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		publisher.AssertExpectations(t)
	})

	t.Run("пустая выборка получателей", func(t *testing.T) {
		templates := new(TemplateRepoMock)
		users := new(RecipientListerMock)
		templates.On("GetEmailTemplate", mock.Anything, int64(1)).Return(tmpl, nil).Once()
		users.On("ListRecipients", mock.Anything, mock.Anything).
			Return([]*models.User{}, nil).Once()

		svc := services.NewBroadcastService(templates, users, new(PublisherMock), sl.DiscardLogger())
		_, err := svc.Send(context.Background(), 1, models.RecipientFilter{Type: "all"})
		assert.ErrorIs(t, err, services.ErrNoRecipients)
	})

	t.Run("неизвестный шаблон", func(t *testing.T) {
		templates := new(TemplateRepoMock)
		templates.On("GetEmailTemplate", mock.Anything, int64(9)).
			Return(nil, repository.ErrNotFound).Once()

		svc := services.NewBroadcastService(templates, new(RecipientListerMock),
			new(PublisherMock), sl.DiscardLogger())
		_, err := svc.Send(context.Background(), 9, models.RecipientFilter{Type: "all"})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("сбой публикации одного письма не прерывает рассылку", func(t *testing.T) {
		templates := new(TemplateRepoMock)
		users := new(RecipientListerMock)
		publisher := new(PublisherMock)

		templates.On("GetEmailTemplate", mock.Anything, int64(1)).Return(tmpl, nil).Once()
		users.On("ListRecipients", mock.Anything, mock.Anything).
			Return([]*models.User{
				{ID: 1, Name: "Иван", Email: "ivan@example.com"},
				{ID: 2, Name: "Мария", Email: "maria@example.com"},
			}, nil).Once()
		publisher.On("Publish", "broadcast", mock.Anything).
			Return(errors.New("broker down")).Once()
		publisher.On("Publish", "broadcast", mock.Anything).Return(nil).Once()

		svc := services.NewBroadcastService(templates, users, publisher, sl.DiscardLogger())
		count, err := svc.Send(context.Background(), 1, models.RecipientFilter{Type: "all"})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestNotificationService_Broadcast(t *testing.T) {
	t.Run("уведомление создается для каждого получателя", func(t *testing.T) {
		repo := new(NotificationRepoMock)
		users := new(RecipientListerMock)
		users.On("ListRecipients", mock.Anything, models.RecipientFilter{Type: "role", Value: "admin"}).
			Return([]*models.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil).Once()
		repo.On("CreateNotifications", mock.Anything, []int64{1, 2, 3},
			"Обновление", "Вышла новая версия", "").Return(3, nil).Once()

		svc := services.NewNotificationService(repo, users, sl.DiscardLogger())
		count, err := svc.Broadcast(context.Background(),
			models.RecipientFilter{Type: "role", Value: "admin"},
			"Обновление", "Вышла новая версия", "")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("пустая выборка получателей", func(t *testing.T) {
		repo := new(NotificationRepoMock)
		users := new(RecipientListerMock)
		users.On("ListRecipients", mock.Anything, mock.Anything).
			Return([]*models.User{}, nil).Once()

		svc := services.NewNotificationService(repo, users, sl.DiscardLogger())
		_, err := svc.Broadcast(context.Background(),
			models.RecipientFilter{Type: "plan", Value: "ghost"}, "t", "m", "")
		assert.ErrorIs(t, err, services.ErrNoRecipients)
		repo.AssertNotCalled(t, "CreateNotifications",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// Мок для NotificationRepository
type NotificationRepoMock struct {
	mock.Mock
}

func (m *NotificationRepoMock) CreateNotifications(ctx context.Context, recipients []int64, title, message, link string) (int, error) {
	args := m.Called(ctx, recipients, title, message, link)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepoMock) ListNotificationsForRecipient(ctx context.Context, recipient int64) ([]*models.Notification, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *NotificationRepoMock) MarkNotificationRead(ctx context.Context, id, recipient int64) error {
	args := m.Called(ctx, id, recipient)
	return args.Error(0)
}
