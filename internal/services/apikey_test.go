package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Мок для APIKeyRepository
type APIKeyRepoMock struct {
	mock.Mock
}

func (m *APIKeyRepoMock) CreateAPIKey(ctx context.Context, key models.APIKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *APIKeyRepoMock) GetActiveKeyByUser(ctx context.Context, userID int64) (*models.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *APIKeyRepoMock) GetActiveKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *APIKeyRepoMock) ListAPIKeys(ctx context.Context) ([]*models.APIKeyOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.APIKeyOverview), args.Error(1)
}

func (m *APIKeyRepoMock) RevokeAPIKey(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *APIKeyRepoMock) UpdateKeyLastUsed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Мок для APIUsageLogger
type UsageLoggerMock struct {
	mock.Mock
}

func (m *UsageLoggerMock) InsertAPIUsageLog(ctx context.Context, entry models.APIUsageLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestAPIKeyService_Generate(t *testing.T) {
	t.Run("секрет выдается один раз с нужным префиксом", func(t *testing.T) {
		repo := new(APIKeyRepoMock)
		repo.On("GetActiveKeyByUser", mock.Anything, int64(5)).
			Return(nil, repository.ErrNotFound).Once()
		repo.On("CreateAPIKey", mock.Anything, mock.MatchedBy(func(key models.APIKey) bool {
			return key.UserID == 5 &&
				key.Status == models.APIKeyStatusActive &&
				strings.HasPrefix(key.Key, "crm_live_")
		})).Return(int64(1), nil).Once()

		svc := services.NewAPIKeyService(repo, new(UsageLoggerMock), sl.DiscardLogger())
		secret, err := svc.Generate(context.Background(), 5, "Integration", "", nil)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(secret, "crm_live_"))
		assert.Len(t, secret, len("crm_live_")+32)
		repo.AssertExpectations(t)
	})

	t.Run("второй активный ключ не выдается", func(t *testing.T) {
		repo := new(APIKeyRepoMock)
		repo.On("GetActiveKeyByUser", mock.Anything, int64(5)).
			Return(&models.APIKey{ID: 1, UserID: 5, Status: models.APIKeyStatusActive}, nil).Once()

		svc := services.NewAPIKeyService(repo, new(UsageLoggerMock), sl.DiscardLogger())
		_, err := svc.Generate(context.Background(), 5, "Second", "", nil)
		assert.ErrorIs(t, err, services.ErrActiveKeyExists)
		repo.AssertNotCalled(t, "CreateAPIKey", mock.Anything, mock.Anything)
	})

	t.Run("права по умолчанию read", func(t *testing.T) {
		repo := new(APIKeyRepoMock)
		repo.On("GetActiveKeyByUser", mock.Anything, int64(5)).
			Return(nil, repository.ErrNotFound).Once()
		repo.On("CreateAPIKey", mock.Anything, mock.MatchedBy(func(key models.APIKey) bool {
			return len(key.Permissions) == 1 && key.Permissions[0] == models.APIKeyPermissionRead
		})).Return(int64(1), nil).Once()

		svc := services.NewAPIKeyService(repo, new(UsageLoggerMock), sl.DiscardLogger())
		_, err := svc.Generate(context.Background(), 5, "Default", "", nil)
		require.NoError(t, err)
	})
}

func TestAPIKeyService_Authenticate(t *testing.T) {
	t.Run("активный ключ проходит и обновляет last_used", func(t *testing.T) {
		repo := new(APIKeyRepoMock)
		repo.On("GetActiveKeyBySecret", mock.Anything, "crm_live_abc").
			Return(&models.APIKey{ID: 2, UserID: 5, Status: models.APIKeyStatusActive}, nil).Once()
		repo.On("UpdateKeyLastUsed", mock.Anything, int64(2), mock.Anything).Return(nil).Once()

		svc := services.NewAPIKeyService(repo, new(UsageLoggerMock), sl.DiscardLogger())
		key, err := svc.Authenticate(context.Background(), "crm_live_abc")
		require.NoError(t, err)
		assert.Equal(t, int64(5), key.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("отозванный или неизвестный ключ отклоняется", func(t *testing.T) {
		repo := new(APIKeyRepoMock)
		repo.On("GetActiveKeyBySecret", mock.Anything, "crm_live_revoked").
			Return(nil, repository.ErrNotFound).Once()

		svc := services.NewAPIKeyService(repo, new(UsageLoggerMock), sl.DiscardLogger())
		_, err := svc.Authenticate(context.Background(), "crm_live_revoked")
		assert.ErrorIs(t, err, services.ErrKeyRevoked)
	})
}
