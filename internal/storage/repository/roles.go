package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateRole сохраняет новую роль с набором разрешений.
func (s *Storage) CreateRole(ctx context.Context, name string, permissions []string) (int64, error) {
	const op = "storage.CreateRole"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	perms, err := json.Marshal(permissions)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var newID int64
	query := `INSERT INTO roles (name, permissions) VALUES ($1, $2) RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, name, perms).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetRoleByName возвращает роль по имени.
func (s *Storage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	const op = "storage.GetRoleByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, permissions, created_at FROM roles WHERE name = $1`
	r := &models.Role{}
	var perms []byte
	err := s.DB.QueryRowContext(ctx, query, name).Scan(&r.ID, &r.Name, &perms, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(perms, &r.Permissions); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListRoles возвращает роли с указанными именами.
func (s *Storage) ListRoles(ctx context.Context, names []string) ([]*models.Role, error) {
	const op = "storage.ListRoles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, permissions, created_at FROM roles WHERE name = ANY($1) ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Role
	for rows.Next() {
		var r models.Role
		var perms []byte
		if err = rows.Scan(&r.ID, &r.Name, &perms, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(perms, &r.Permissions); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateRolePermissions заменяет набор разрешений роли целиком.
func (s *Storage) UpdateRolePermissions(ctx context.Context, id int64, permissions []string) (*models.Role, error) {
	const op = "storage.UpdateRolePermissions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	perms, err := json.Marshal(permissions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE roles SET permissions = $1 WHERE id = $2
			  RETURNING id, name, permissions, created_at`
	r := &models.Role{}
	var raw []byte
	err = s.DB.QueryRowContext(ctx, query, perms, id).Scan(&r.ID, &r.Name, &raw, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(raw, &r.Permissions); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}
