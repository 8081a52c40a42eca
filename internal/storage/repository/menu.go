package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// ListMenuItems возвращает все пункты меню по возрастанию порядка.
func (s *Storage) ListMenuItems(ctx context.Context) ([]*models.MenuItem, error) {
	const op = "storage.ListMenuItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, path, icon, permission, item_order, parent, created_at
			  FROM menu_items
			  ORDER BY item_order`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		var path sql.NullString
		var parent sql.NullInt64
		if err = rows.Scan(&m.ID, &m.Title, &path, &m.Icon, &m.Permission,
			&m.Order, &parent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if path.Valid {
			m.Path = &path.String
		}
		if parent.Valid {
			m.Parent = &parent.Int64
		}
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListMenuPermissions возвращает уникальные строки-разрешения всех пунктов меню.
func (s *Storage) ListMenuPermissions(ctx context.Context) ([]string, error) {
	const op = "storage.ListMenuPermissions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT permission FROM menu_items`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []string
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateMenuItem сохраняет новый пункт меню и возвращает его ID.
func (s *Storage) CreateMenuItem(ctx context.Context, item models.MenuItem) (int64, error) {
	const op = "storage.CreateMenuItem"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO menu_items (title, path, icon, permission, item_order, parent)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, item.Title, item.Path, item.Icon,
		item.Permission, item.Order, item.Parent).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateMenuItem заменяет все поля пункта меню.
func (s *Storage) UpdateMenuItem(ctx context.Context, id int64, item models.MenuItem) error {
	const op = "storage.UpdateMenuItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE menu_items
			  SET title = $1, path = $2, icon = $3, permission = $4, item_order = $5, parent = $6
			  WHERE id = $7`
	res, err := s.DB.ExecContext(ctx, query, item.Title, item.Path, item.Icon,
		item.Permission, item.Order, item.Parent, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// HasChildren сообщает, ссылается ли на пункт меню хотя бы один дочерний.
func (s *Storage) HasChildren(ctx context.Context, id int64) (bool, error) {
	const op = "storage.HasChildren"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM menu_items WHERE parent = $1)`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// DeleteMenuItem удаляет пункт меню.
func (s *Storage) DeleteMenuItem(ctx context.Context, id int64) error {
	const op = "storage.DeleteMenuItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
