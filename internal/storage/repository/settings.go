package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// ListSettings возвращает все системные настройки по категориям.
func (s *Storage) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	const op = "storage.ListSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, key, value, display_name, category, is_secret, created_at
			  FROM settings
			  ORDER BY category, key`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Setting
	for rows.Next() {
		var st models.Setting
		if err = rows.Scan(&st.ID, &st.Key, &st.Value, &st.DisplayName,
			&st.Category, &st.IsSecret, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertSetting создает настройку или обновляет значение существующей по ключу.
func (s *Storage) UpsertSetting(ctx context.Context, upd models.SettingUpdate) error {
	const op = "storage.UpsertSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (key, value)
			  VALUES ($1, $2)
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.DB.ExecContext(ctx, query, upd.Key, []byte(upd.Value)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
