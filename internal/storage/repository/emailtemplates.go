package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateEmailTemplate сохраняет новый шаблон письма и возвращает его ID.
func (s *Storage) CreateEmailTemplate(ctx context.Context, t models.EmailTemplate) (int64, error) {
	const op = "storage.CreateEmailTemplate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO email_templates (name, subject, body)
			  VALUES ($1, $2, $3)
			  RETURNING id;`
	err := s.DB.QueryRowContext(ctx, query, t.Name, t.Subject, t.Body).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListEmailTemplates возвращает все шаблоны писем, новые первыми.
func (s *Storage) ListEmailTemplates(ctx context.Context) ([]*models.EmailTemplate, error) {
	const op = "storage.ListEmailTemplates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, subject, body, created_at
			  FROM email_templates
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.EmailTemplate
	for rows.Next() {
		var t models.EmailTemplate
		if err = rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetEmailTemplate возвращает шаблон письма по ID.
func (s *Storage) GetEmailTemplate(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	const op = "storage.GetEmailTemplate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var t models.EmailTemplate
	query := `SELECT id, name, subject, body, created_at
			  FROM email_templates
			  WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// UpdateEmailTemplate заменяет содержимое шаблона письма.
func (s *Storage) UpdateEmailTemplate(ctx context.Context, id int64, t models.EmailTemplate) error {
	const op = "storage.UpdateEmailTemplate"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE email_templates SET name = $1, subject = $2, body = $3 WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, t.Name, t.Subject, t.Body, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteEmailTemplate удаляет шаблон письма.
func (s *Storage) DeleteEmailTemplate(ctx context.Context, id int64) error {
	const op = "storage.DeleteEmailTemplate"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
