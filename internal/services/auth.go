package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/password"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/token"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/permissions"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Срок действия токена сброса пароля.
const resetTokenTTL = 15 * time.Minute

// AuthUserRepository описывает контракт для работы с учетными записями
// в сценариях аутентификации.
type AuthUserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkVerified(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// RoleReader возвращает роль по имени.
type RoleReader interface {
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
}

// PlanReader возвращает план по идентификатору.
type PlanReader interface {
	GetPlanByIdentifier(ctx context.Context, identifier string) (*models.Plan, error)
}

// LoginAttemptLogger записывает попытки входа.
type LoginAttemptLogger interface {
	InsertLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error
}

// EmailPublisher публикует почтовое задание в очередь по ключу маршрутизации.
type EmailPublisher interface {
	Publish(routingKey string, message any) error
}

// AuthService отвечает за регистрацию, подтверждение email, вход и
// восстановление пароля.
type AuthService struct {
	users       AuthUserRepository
	roles       RoleReader
	plans       PlanReader
	attempts    LoginAttemptLogger
	jwtMaker    jwt.Maker
	publisher   EmailPublisher
	log         *slog.Logger
	baseURL     string
	frontendURL string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users AuthUserRepository, roles RoleReader, plans PlanReader,
	attempts LoginAttemptLogger, jwtMaker jwt.Maker, publisher EmailPublisher,
	log *slog.Logger, baseURL, frontendURL string) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		plans:       plans,
		attempts:    attempts,
		jwtMaker:    jwtMaker,
		publisher:   publisher,
		log:         log,
		baseURL:     baseURL,
		frontendURL: frontendURL,
	}
}

// Register создает учетную запись с ролью admin, номером тикета поддержки
// и одноразовым токеном подтверждения email. Письмо с ссылкой подтверждения
// уходит через очередь; сбой публикации не откатывает регистрацию.
func (s *AuthService) Register(ctx context.Context, user models.User, rawPassword string) (string, error) {
	if _, err := s.users.GetUserByEmail(ctx, user.Email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	verificationToken, err := token.NewVerificationToken()
	if err != nil {
		return "", err
	}
	supportTicket, err := token.NewSupportTicket()
	if err != nil {
		return "", err
	}

	user.PasswordHash = hashed
	user.Role = "admin" // дефолтная роль при регистрации
	user.SupportTicket = supportTicket
	user.VerificationToken = &verificationToken
	user.IsVerified = false

	if _, err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}
	s.log.Info("registered new user", slog.String("email", user.Email))

	job := models.EmailJob{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Подтверждение регистрации в CRM",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nДля подтверждения email перейдите по ссылке: %s/api/auth/verify/%s\n\nВаш тикет поддержки: %s.",
			user.Name, s.baseURL, verificationToken, supportTicket),
	}
	if err := s.publisher.Publish(rabbitmq.AccountRoutingKey, job); err != nil {
		s.log.Error("failed to publish verification email", sl.Err(err))
	}

	return supportTicket, nil
}

// Verify подтверждает email по одноразовому токену. Повторное использование
// токена невозможно: при подтверждении он стирается.
func (s *AuthService) Verify(ctx context.Context, verificationToken string) error {
	user, err := s.users.GetUserByVerificationToken(ctx, verificationToken)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	s.log.Info("email verified", slog.String("email", user.Email))
	return nil
}

// Login проверяет учетные данные, вычисляет эффективные права и выдает JWT.
// Попытка входа записывается в журнал при любом исходе, включая
// несуществующий email; сбой записи не влияет на результат.
func (s *AuthService) Login(ctx context.Context, email, rawPassword, ipAddress, userAgent string) (string, *models.User, []string, error) {
	logAttempt := func(success bool) {
		attempt := models.LoginAttempt{
			Email:     email,
			Success:   success,
			IPAddress: ipAddress,
			UserAgent: userAgent,
		}
		if err := s.attempts.InsertLoginAttempt(ctx, attempt); err != nil {
			s.log.Warn("failed to record login attempt", sl.Err(err))
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		logAttempt(false)
		return "", nil, nil, ErrUserNotFound
	}
	if err != nil {
		logAttempt(false)
		return "", nil, nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		logAttempt(false)
		return "", nil, nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		logAttempt(false)
		return "", nil, nil, ErrNotVerified
	}

	perms, err := s.resolvePermissions(ctx, user)
	if err != nil {
		logAttempt(false)
		return "", nil, nil, err
	}

	sessionToken, err := s.jwtMaker.GenerateToken(user.ID, user.Name, user.Email, user.Role, perms)
	if err != nil {
		logAttempt(false)
		return "", nil, nil, err
	}

	logAttempt(true)
	s.log.Info("user logged in", slog.String("email", email), slog.String("role", user.Role))
	return sessionToken, user, perms, nil
}

// resolvePermissions вычисляет эффективные права пользователя на момент
// входа. Отсутствующая роль или план дают пустой набор прав.
func (s *AuthService) resolvePermissions(ctx context.Context, user *models.User) ([]string, error) {
	var rolePerms, planPerms []string

	role, err := s.roles.GetRoleByName(ctx, user.Role)
	switch {
	case err == nil:
		rolePerms = role.Permissions
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}

	plan, err := s.plans.GetPlanByIdentifier(ctx, user.Plan)
	switch {
	case err == nil:
		planPerms = plan.Permissions
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}

	return permissions.Resolve(user.Role, rolePerms, planPerms), nil
}

// ForgotPassword запускает сброс пароля. Ответ одинаков для существующих
// и несуществующих email, чтобы не раскрывать базу учетных записей.
// В базе хранится только SHA-256 хэш токена.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rawToken, err := token.NewResetToken()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token.HashSHA256(rawToken), expires); err != nil {
		return err
	}

	job := models.EmailJob{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Сброс пароля в CRM",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nДля сброса пароля перейдите по ссылке: %s/reset-password/%s\n\nСсылка действует 15 минут.",
			user.Name, s.frontendURL, rawToken),
	}
	if err := s.publisher.Publish(rabbitmq.AccountRoutingKey, job); err != nil {
		s.log.Error("failed to publish reset email", sl.Err(err))
	}
	return nil
}

// ResetPassword устанавливает новый пароль по сырому токену сброса.
// Истекший или неизвестный токен отклоняется одной ошибкой.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := s.users.GetUserByResetToken(ctx, token.HashSHA256(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	s.log.Info("password reset completed", slog.String("email", user.Email))
	return nil
}
