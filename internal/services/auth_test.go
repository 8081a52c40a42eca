package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/crm-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/password"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Мок для AuthUserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) MarkVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, id, tokenHash, expires)
	return args.Error(0)
}

func (m *UserRepoMock) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// Мок для RoleReader
type RoleReaderMock struct {
	mock.Mock
}

func (m *RoleReaderMock) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

// Мок для PlanReader
type PlanReaderMock struct {
	mock.Mock
}

func (m *PlanReaderMock) GetPlanByIdentifier(ctx context.Context, identifier string) (*models.Plan, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

// Мок для LoginAttemptLogger
type AttemptLoggerMock struct {
	mock.Mock
}

func (m *AttemptLoggerMock) InsertLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

// Мок для EmailPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newAuthService(users *UserRepoMock, roles *RoleReaderMock, plans *PlanReaderMock,
	attempts *AttemptLoggerMock, publisher *PublisherMock) *services.AuthService {
	jwtMaker := customjwt.NewMaker("test-secret", time.Hour)
	return services.NewAuthService(users, roles, plans, attempts, jwtMaker, publisher,
		sl.DiscardLogger(), "http://localhost:8080", "http://localhost:3000")
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "успешная регистрация",
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "new@example.com" &&
						user.Role == "admin" &&
						user.PasswordHash != "" &&
						!user.IsVerified &&
						user.VerificationToken != nil
				})).Return(int64(1), nil).Once()
				p.On("Publish", "account", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "email уже занят",
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(&models.User{ID: 7, Email: "new@example.com"}, nil).Once()
			},
			wantErr: services.ErrUserExists,
		},
		{
			name: "сбой публикации письма не мешает регистрации",
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
				p.On("Publish", "account", mock.Anything).
					Return(errors.New("broker down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			publisher := new(PublisherMock)
			svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
				new(AttemptLoggerMock), publisher)

			tt.setupMocks(repo, publisher)

			user := models.User{Name: "Тест", Email: "new@example.com", Plan: "basic"}
			ticket, err := svc.Register(context.Background(), user, "password123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Regexp(t, `^CRM-\d{6}$`, ticket)
			}

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	verifiedUser := &models.User{
		ID:           3,
		Name:         "Иван",
		Email:        "ivan@example.com",
		PasswordHash: hash,
		Plan:         "basic",
		Role:         "admin",
		IsVerified:   true,
	}

	tests := []struct {
		name        string
		password    string
		setupMocks  func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock)
		wantErr     error
		wantSuccess bool
		wantPerms   []string
	}{
		{
			name:     "успешный вход с пересечением прав",
			password: rawPassword,
			setupMocks: func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock) {
				u.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(verifiedUser, nil).Once()
				r.On("GetRoleByName", mock.Anything, "admin").
					Return(&models.Role{Name: "admin",
						Permissions: []string{"view_dashboard", "manage_users", "view_reports"}}, nil).Once()
				p.On("GetPlanByIdentifier", mock.Anything, "basic").
					Return(&models.Plan{Identifier: "basic",
						Permissions: []string{"view_dashboard", "view_reports"}}, nil).Once()
			},
			wantSuccess: true,
			wantPerms:   []string{"view_dashboard", "view_reports"},
		},
		{
			name:     "неизвестный email",
			password: rawPassword,
			setupMocks: func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock) {
				u.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: services.ErrUserNotFound,
		},
		{
			name:     "неверный пароль",
			password: "wrongpassword",
			setupMocks: func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock) {
				u.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(verifiedUser, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "email не подтвержден",
			password: rawPassword,
			setupMocks: func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock) {
				unverified := *verifiedUser
				unverified.IsVerified = false
				u.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(&unverified, nil).Once()
			},
			wantErr: services.ErrNotVerified,
		},
		{
			name:     "отсутствующий план дает пустые права",
			password: rawPassword,
			setupMocks: func(u *UserRepoMock, r *RoleReaderMock, p *PlanReaderMock) {
				u.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(verifiedUser, nil).Once()
				r.On("GetRoleByName", mock.Anything, "admin").
					Return(&models.Role{Name: "admin", Permissions: []string{"view_dashboard"}}, nil).Once()
				p.On("GetPlanByIdentifier", mock.Anything, "basic").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantSuccess: true,
			wantPerms:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			roles := new(RoleReaderMock)
			plans := new(PlanReaderMock)
			attempts := new(AttemptLoggerMock)
			attempts.On("InsertLoginAttempt", mock.Anything, mock.MatchedBy(func(a models.LoginAttempt) bool {
				return a.Email == "ivan@example.com" && a.Success == tt.wantSuccess
			})).Return(nil).Once()

			svc := newAuthService(repo, roles, plans, attempts, new(PublisherMock))
			tt.setupMocks(repo, roles, plans)

			token, user, perms, err := svc.Login(context.Background(),
				"ivan@example.com", tt.password, "127.0.0.1", "go-test")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, "ivan@example.com", user.Email)
				assert.ElementsMatch(t, tt.wantPerms, perms)
			}

			repo.AssertExpectations(t)
			attempts.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginSuperadminIgnoresPlan(t *testing.T) {
	rawPassword := "superpassword"
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	repo := new(UserRepoMock)
	roles := new(RoleReaderMock)
	plans := new(PlanReaderMock)
	attempts := new(AttemptLoggerMock)

	repo.On("GetUserByEmail", mock.Anything, "root@example.com").
		Return(&models.User{
			ID: 1, Name: "Root", Email: "root@example.com",
			PasswordHash: hash, Plan: "basic", Role: "superadmin", IsVerified: true,
		}, nil).Once()
	roles.On("GetRoleByName", mock.Anything, "superadmin").
		Return(&models.Role{Name: "superadmin", Permissions: []string{"manage_everything"}}, nil).Once()
	plans.On("GetPlanByIdentifier", mock.Anything, "basic").
		Return(&models.Plan{Identifier: "basic", Permissions: []string{"view_dashboard"}}, nil).Once()
	attempts.On("InsertLoginAttempt", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newAuthService(repo, roles, plans, attempts, new(PublisherMock))
	_, _, perms, err := svc.Login(context.Background(), "root@example.com", rawPassword, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"manage_everything"}, perms)
}

func TestAuthService_Verify(t *testing.T) {
	t.Run("успешное подтверждение", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByVerificationToken", mock.Anything, "goodtoken").
			Return(&models.User{ID: 5, Email: "a@b.c"}, nil).Once()
		repo.On("MarkVerified", mock.Anything, int64(5)).Return(nil).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), new(PublisherMock))
		assert.NoError(t, svc.Verify(context.Background(), "goodtoken"))
		repo.AssertExpectations(t)
	})

	t.Run("неизвестный или использованный токен", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByVerificationToken", mock.Anything, "badtoken").
			Return(nil, repository.ErrNotFound).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), new(PublisherMock))
		assert.ErrorIs(t, svc.Verify(context.Background(), "badtoken"), services.ErrTokenInvalid)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("неизвестный email не раскрывается", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.ErrNotFound).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), new(PublisherMock))
		assert.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
		repo.AssertExpectations(t)
	})

	t.Run("в базе хранится хэш, в письме сырой токен", func(t *testing.T) {
		repo := new(UserRepoMock)
		publisher := new(PublisherMock)
		repo.On("GetUserByEmail", mock.Anything, "ivan@example.com").
			Return(&models.User{ID: 3, Name: "Иван", Email: "ivan@example.com"}, nil).Once()
		repo.On("SetResetToken", mock.Anything, int64(3),
			mock.MatchedBy(func(hash string) bool { return len(hash) == 64 }),
			mock.Anything).Return(nil).Once()
		publisher.On("Publish", "account", mock.Anything).Return(nil).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), publisher)
		assert.NoError(t, svc.ForgotPassword(context.Background(), "ivan@example.com"))
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("истекший токен отклоняется", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByResetToken", mock.Anything, mock.Anything).
			Return(nil, repository.ErrNotFound).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), new(PublisherMock))
		err := svc.ResetPassword(context.Background(), "expired", "newpassword1")
		assert.ErrorIs(t, err, services.ErrTokenInvalid)
	})

	t.Run("успешный сброс", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByResetToken", mock.Anything, mock.Anything).
			Return(&models.User{ID: 3, Email: "ivan@example.com"}, nil).Once()
		repo.On("UpdatePassword", mock.Anything, int64(3),
			mock.MatchedBy(func(hash string) bool { return hash != "" })).Return(nil).Once()

		svc := newAuthService(repo, new(RoleReaderMock), new(PlanReaderMock),
			new(AttemptLoggerMock), new(PublisherMock))
		assert.NoError(t, svc.ResetPassword(context.Background(), "rawtoken", "newpassword1"))
		repo.AssertExpectations(t)
	})
}
