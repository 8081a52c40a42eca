package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Дефолтные наборы прав, задаваемые при первом запуске.
var defaultRolePermissions = map[string][]string{
	"admin": {"view_dashboard", "manage_users", "view_reports"},
	"user":  {"view_dashboard"},
}

// RoleRepository описывает контракт для работы с ролями.
type RoleRepository interface {
	CreateRole(ctx context.Context, name string, permissions []string) (int64, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context, names []string) ([]*models.Role, error)
	UpdateRolePermissions(ctx context.Context, id int64, permissions []string) (*models.Role, error)
}

// MenuPermissionReader возвращает все уникальные строки-разрешения меню.
type MenuPermissionReader interface {
	ListMenuPermissions(ctx context.Context) ([]string, error)
}

// RoleService отвечает за управление ролями и их наборами прав.
type RoleService struct {
	roles RoleRepository
	menu  MenuPermissionReader
	log   *slog.Logger
}

// NewRoleService создает новый экземпляр RoleService.
func NewRoleService(roles RoleRepository, menu MenuPermissionReader, log *slog.Logger) *RoleService {
	return &RoleService{
		roles: roles,
		menu:  menu,
		log:   log,
	}
}

// SeedDefaults создает роли admin и user с дефолтными правами, если они
// еще не существуют. Повторный вызов ничего не меняет.
func (s *RoleService) SeedDefaults(ctx context.Context) error {
	for _, name := range []string{"admin", "user"} {
		_, err := s.roles.GetRoleByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := s.roles.CreateRole(ctx, name, defaultRolePermissions[name]); err != nil {
			return err
		}
		s.log.Info("seeded default role", slog.String("role", name))
	}
	return nil
}

// List возвращает редактируемые роли admin и user. Роль superadmin
// не показывается и не редактируется.
func (s *RoleService) List(ctx context.Context) ([]*models.Role, error) {
	return s.roles.ListRoles(ctx, []string{"admin", "user"})
}

// UpdatePermissions заменяет набор прав роли целиком. Изменение влияет
// только на токены, выданные после него.
func (s *RoleService) UpdatePermissions(ctx context.Context, id int64, perms []string) (*models.Role, error) {
	role, err := s.roles.UpdateRolePermissions(ctx, id, perms)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("role permissions updated", slog.String("role", role.Name))
	return role, nil
}

// ListPermissions возвращает все известные строки-разрешения — по одной
// на каждый пункт меню.
func (s *RoleService) ListPermissions(ctx context.Context) ([]string, error) {
	return s.menu.ListMenuPermissions(ctx)
}
