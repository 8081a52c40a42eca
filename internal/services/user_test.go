package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Мок для UserRepository
type UserAdminRepoMock struct {
	mock.Mock
}

func (m *UserAdminRepoMock) ListUsersWithCreatedCounts(ctx context.Context) ([]*models.UserOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserOverview), args.Error(1)
}

func (m *UserAdminRepoMock) ListAdmins(ctx context.Context) ([]*models.AdminSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminSummary), args.Error(1)
}

func (m *UserAdminRepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserAdminRepoMock) UpdateUserRole(ctx context.Context, id int64, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *UserAdminRepoMock) UpdateUserPlan(ctx context.Context, id int64, plan string) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

func (m *UserAdminRepoMock) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserAdminRepoMock) ListContactsByCreator(ctx context.Context, creatorID int64) ([]*models.Contact, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}

// Мок для ActivityLogger
type ActivityLoggerMock struct {
	mock.Mock
}

func (m *ActivityLoggerMock) InsertActivityLog(ctx context.Context, entry models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestUserService_UpdateRole(t *testing.T) {
	t.Run("в журнал попадают прежняя и новая роль", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUser", mock.Anything, int64(7)).
			Return(&models.User{ID: 7, Email: "ivan@client.io", Role: "user"}, nil).Once()
		repo.On("UpdateUserRole", mock.Anything, int64(7), "superadmin").Return(nil).Once()

		activity := new(ActivityLoggerMock)
		var captured models.ActivityLog
		activity.On("InsertActivityLog", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(models.ActivityLog)
			}).Return(nil).Once()

		svc := services.NewUserService(repo, activity, sl.DiscardLogger())
		err := svc.UpdateRole(context.Background(), 1, 7, "superadmin")
		require.NoError(t, err)

		assert.Equal(t, int64(1), captured.ActorID)
		assert.Equal(t, models.ActionUserRoleUpdated, captured.Action)
		require.NotNil(t, captured.TargetUser)
		assert.Equal(t, int64(7), *captured.TargetUser)
		assert.Contains(t, captured.Details, "from user")
		assert.Contains(t, captured.Details, "to superadmin")
		assert.Contains(t, captured.Details, "ivan@client.io")
		repo.AssertExpectations(t)
		activity.AssertExpectations(t)
	})

	t.Run("неизвестный пользователь не обновляется и не журналируется", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUser", mock.Anything, int64(404)).
			Return(nil, repository.ErrNotFound).Once()

		activity := new(ActivityLoggerMock)
		svc := services.NewUserService(repo, activity, sl.DiscardLogger())
		err := svc.UpdateRole(context.Background(), 1, 404, "admin")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		repo.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything)
		activity.AssertNotCalled(t, "InsertActivityLog", mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdatePlan(t *testing.T) {
	t.Run("в журнал попадают прежний и новый план", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUser", mock.Anything, int64(7)).
			Return(&models.User{ID: 7, Email: "ivan@client.io", Plan: "basic"}, nil).Once()
		repo.On("UpdateUserPlan", mock.Anything, int64(7), "enterprise").Return(nil).Once()

		activity := new(ActivityLoggerMock)
		var captured models.ActivityLog
		activity.On("InsertActivityLog", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(models.ActivityLog)
			}).Return(nil).Once()

		svc := services.NewUserService(repo, activity, sl.DiscardLogger())
		err := svc.UpdatePlan(context.Background(), 1, 7, "enterprise")
		require.NoError(t, err)

		assert.Equal(t, models.ActionUserPlanUpdated, captured.Action)
		assert.Contains(t, captured.Details, "from basic")
		assert.Contains(t, captured.Details, "to enterprise")
		assert.Contains(t, captured.Details, "ivan@client.io")
		repo.AssertExpectations(t)
	})

	t.Run("сбой журнала не откатывает смену плана", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUser", mock.Anything, int64(7)).
			Return(&models.User{ID: 7, Email: "ivan@client.io", Plan: "basic"}, nil).Once()
		repo.On("UpdateUserPlan", mock.Anything, int64(7), "pro").Return(nil).Once()

		activity := new(ActivityLoggerMock)
		activity.On("InsertActivityLog", mock.Anything, mock.Anything).
			Return(assert.AnError).Once()

		svc := services.NewUserService(repo, activity, sl.DiscardLogger())
		err := svc.UpdatePlan(context.Background(), 1, 7, "pro")
		assert.NoError(t, err)
	})
}
