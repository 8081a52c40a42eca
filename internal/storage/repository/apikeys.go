package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/token"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateAPIKey сохраняет новый API-ключ и возвращает его ID.
func (s *Storage) CreateAPIKey(ctx context.Context, key models.APIKey) (int64, error) {
	const op = "storage.CreateAPIKey"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	perms, err := json.Marshal(key.Permissions)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var newID int64
	query := `INSERT INTO api_keys (user_id, name, description, key, permissions, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, key.UserID, key.Name, key.Description,
		key.Key, perms, key.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const apiKeyColumns = `id, user_id, name, description, key, permissions, status, last_used, created_at`

func scanAPIKey(scan func(dest ...any) error) (*models.APIKey, error) {
	k := &models.APIKey{}
	var perms []byte
	var lastUsed sql.NullTime
	if err := scan(&k.ID, &k.UserID, &k.Name, &k.Description, &k.Key, &perms,
		&k.Status, &lastUsed, &k.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &k.Permissions); err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		k.LastUsed = &lastUsed.Time
	}
	return k, nil
}

// GetActiveKeyByUser возвращает активный ключ пользователя, если он есть.
func (s *Storage) GetActiveKeyByUser(ctx context.Context, userID int64) (*models.APIKey, error) {
	const op = "storage.GetActiveKeyByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE user_id = $1 AND status = 'active'`
	k, err := scanAPIKey(s.DB.QueryRowContext(ctx, query, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// GetActiveKeyBySecret возвращает активный ключ по его секрету.
func (s *Storage) GetActiveKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error) {
	const op = "storage.GetActiveKeyBySecret"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key = $1 AND status = 'active'`
	k, err := scanAPIKey(s.DB.QueryRowContext(ctx, query, secret).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// ListAPIKeys возвращает все ключи с маскированными секретами и данными владельцев.
func (s *Storage) ListAPIKeys(ctx context.Context) ([]*models.APIKeyOverview, error) {
	const op = "storage.ListAPIKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT k.id, k.key, k.name, k.description, k.permissions, k.status,
			      k.last_used, k.created_at, u.id, u.name, u.email, u.company_name
			  FROM api_keys k
			  JOIN users u ON u.id = k.user_id
			  ORDER BY k.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.APIKeyOverview
	for rows.Next() {
		var o models.APIKeyOverview
		var rawKey string
		var perms []byte
		var lastUsed sql.NullTime
		if err = rows.Scan(&o.ID, &rawKey, &o.Name, &o.Description, &perms, &o.Status,
			&lastUsed, &o.CreatedAt, &o.Owner.ID, &o.Owner.Name, &o.Owner.Email,
			&o.Owner.CompanyName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(perms, &o.Permissions); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lastUsed.Valid {
			o.LastUsed = &lastUsed.Time
		}
		o.MaskedKey = token.Mask(rawKey)
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevokeAPIKey переводит ключ в статус revoked. Запись не удаляется.
func (s *Storage) RevokeAPIKey(ctx context.Context, id int64) error {
	const op = "storage.RevokeAPIKey"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE api_keys SET status = $1 WHERE id = $2`, models.APIKeyStatusRevoked, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateKeyLastUsed обновляет отметку последнего использования ключа.
func (s *Storage) UpdateKeyLastUsed(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.UpdateKeyLastUsed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE api_keys SET last_used = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
