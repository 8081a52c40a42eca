package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateWebhook сохраняет новый вебхук и возвращает его ID.
func (s *Storage) CreateWebhook(ctx context.Context, hook models.Webhook) (int64, error) {
	const op = "storage.CreateWebhook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	events, err := json.Marshal(hook.Events)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var newID int64
	query := `INSERT INTO webhooks (user_id, url, events, secret, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, hook.UserID, hook.URL, events,
		hook.Secret, hook.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListWebhooks возвращает все вебхуки с данными владельцев.
func (s *Storage) ListWebhooks(ctx context.Context) ([]*models.WebhookOverview, error) {
	const op = "storage.ListWebhooks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT w.id, w.url, w.events, w.status, w.created_at,
			      u.id, u.name, u.email, u.company_name
			  FROM webhooks w
			  JOIN users u ON u.id = w.user_id
			  ORDER BY w.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.WebhookOverview
	for rows.Next() {
		var o models.WebhookOverview
		var events []byte
		if err = rows.Scan(&o.ID, &o.URL, &events, &o.Status, &o.CreatedAt,
			&o.Owner.ID, &o.Owner.Name, &o.Owner.Email, &o.Owner.CompanyName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(events, &o.Events); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteWebhook удаляет вебхук.
func (s *Storage) DeleteWebhook(ctx context.Context, id int64) error {
	const op = "storage.DeleteWebhook"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
