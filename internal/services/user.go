package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// UserRepository описывает контракт для административного управления
// учетными записями.
type UserRepository interface {
	ListUsersWithCreatedCounts(ctx context.Context) ([]*models.UserOverview, error)
	ListAdmins(ctx context.Context) ([]*models.AdminSummary, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) error
	UpdateUserPlan(ctx context.Context, id int64, plan string) error
	DeleteUser(ctx context.Context, id int64) error
	ListContactsByCreator(ctx context.Context, creatorID int64) ([]*models.Contact, error)
}

// ActivityLogger записывает привилегированные действия в журнал.
type ActivityLogger interface {
	InsertActivityLog(ctx context.Context, entry models.ActivityLog) error
}

// UserService отвечает за административные операции над учетными записями.
type UserService struct {
	repo     UserRepository
	activity ActivityLogger
	log      *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, activity ActivityLogger, log *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		activity: activity,
		log:      log,
	}
}

// logActivity записывает действие в журнал по принципу best-effort:
// сбой записи не откатывает основную операцию.
func (s *UserService) logActivity(ctx context.Context, entry models.ActivityLog) {
	if err := s.activity.InsertActivityLog(ctx, entry); err != nil {
		s.log.Warn("failed to record activity log", sl.Err(err))
	}
}

// Profile возвращает карточку пользователя без хэша пароля и токенов.
func (s *UserService) Profile(ctx context.Context, id int64) (*models.Profile, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		Address:       user.Address,
		CompanyName:   user.CompanyName,
		CompanySize:   user.CompanySize,
		IndustryType:  user.IndustryType,
		Plan:          user.Plan,
		Role:          user.Role,
		SupportTicket: user.SupportTicket,
		IsVerified:    user.IsVerified,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// List возвращает всех пользователей со статусом и счетчиком созданных записей.
func (s *UserService) List(ctx context.Context) ([]*models.UserOverview, error) {
	return s.repo.ListUsersWithCreatedCounts(ctx)
}

// ListAdmins возвращает краткие карточки всех админов для страницы подписок.
func (s *UserService) ListAdmins(ctx context.Context) ([]*models.AdminSummary, error) {
	return s.repo.ListAdmins(ctx)
}

// UpdateRole меняет роль пользователя. В журнал попадают прежнее и
// новое значения.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID int64, role string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info("user role updated", slog.Int64("user_id", userID), slog.String("role", role))
	s.logActivity(ctx, models.ActivityLog{
		ActorID:    actorID,
		Action:     models.ActionUserRoleUpdated,
		TargetUser: &userID,
		Details:    fmt.Sprintf("changed role from %s to %s for user %s", user.Role, role, user.Email),
	})
	return nil
}

// UpdatePlan меняет тарифный план пользователя. В журнал попадают
// прежнее и новое значения.
func (s *UserService) UpdatePlan(ctx context.Context, actorID, userID int64, plan string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPlan(ctx, userID, plan); err != nil {
		return err
	}
	s.log.Info("user plan updated", slog.Int64("user_id", userID), slog.String("plan", plan))
	s.logActivity(ctx, models.ActivityLog{
		ActorID:    actorID,
		Action:     models.ActionUserPlanUpdated,
		TargetUser: &userID,
		Details:    fmt.Sprintf("changed plan from %s to %s for user %s", user.Plan, plan, user.Email),
	})
	return nil
}

// Delete удаляет учетную запись и фиксирует действие в журнале.
func (s *UserService) Delete(ctx context.Context, actorID, userID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user deleted", slog.Int64("user_id", userID))
	s.logActivity(ctx, models.ActivityLog{
		ActorID: actorID,
		Action:  models.ActionUserDeleted,
		Details: fmt.Sprintf("deleted user %s", user.Email),
	})
	return nil
}

// ListContacts возвращает контакты, созданные указанным админом,
// для выдачи через публичный API.
func (s *UserService) ListContacts(ctx context.Context, creatorID int64) ([]*models.Contact, error) {
	return s.repo.ListContactsByCreator(ctx, creatorID)
}
