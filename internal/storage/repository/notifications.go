package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateNotifications создает уведомления для набора получателей одной
// вставкой. Возвращает количество созданных записей.
func (s *Storage) CreateNotifications(ctx context.Context, recipients []int64, title, message, link string) (int, error) {
	const op = "storage.CreateNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if len(recipients) == 0 {
		return 0, nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (recipient, title, message, link) VALUES `)
	args := make([]any, 0, len(recipients)*4)
	for i, recipient := range recipients {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, recipient, title, message, link)
	}
	res, err := s.DB.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ListNotificationsForRecipient возвращает уведомления пользователя, новые первыми.
func (s *Storage) ListNotificationsForRecipient(ctx context.Context, recipient int64) ([]*models.Notification, error) {
	const op = "storage.ListNotificationsForRecipient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, recipient, title, message, is_read, link, created_at
			  FROM notifications
			  WHERE recipient = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, recipient)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err = rows.Scan(&n.ID, &n.Recipient, &n.Title, &n.Message,
			&n.IsRead, &n.Link, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление прочитанным. Чужое уведомление
// пометить нельзя.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, recipient int64) error {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient = $2`
	res, err := s.DB.ExecContext(ctx, query, id, recipient)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
