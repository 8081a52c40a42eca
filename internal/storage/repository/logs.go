package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// InsertActivityLog записывает действие в журнал активности.
func (s *Storage) InsertActivityLog(ctx context.Context, entry models.ActivityLog) error {
	const op = "storage.InsertActivityLog"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO activity_logs (actor_id, action, target_user, details)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query, entry.ActorID, entry.Action,
		entry.TargetUser, entry.Details); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListActivityLogs возвращает последние 100 записей журнала активности
// вместе с данными автора и целевого пользователя.
func (s *Storage) ListActivityLogs(ctx context.Context) ([]*models.ActivityLog, error) {
	const op = "storage.ListActivityLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.actor_id, l.action, l.target_user, l.details, l.created_at,
			      a.name, a.email, t.name, t.email
			  FROM activity_logs l
			  LEFT JOIN users a ON a.id = l.actor_id
			  LEFT JOIN users t ON t.id = l.target_user
			  ORDER BY l.created_at DESC
			  LIMIT 100`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.ActivityLog
	for rows.Next() {
		var entry models.ActivityLog
		var actorName, actorEmail, targetName, targetEmail sql.NullString
		if err = rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.TargetUser,
			&entry.Details, &entry.CreatedAt,
			&actorName, &actorEmail, &targetName, &targetEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if actorName.Valid {
			entry.Actor = &models.OwnerInfo{ID: entry.ActorID, Name: actorName.String, Email: actorEmail.String}
		}
		if entry.TargetUser != nil && targetName.Valid {
			entry.Target = &models.OwnerInfo{ID: *entry.TargetUser, Name: targetName.String, Email: targetEmail.String}
		}
		result = append(result, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// InsertLoginAttempt записывает попытку входа. Email сохраняется и для
// несуществующих учетных записей.
func (s *Storage) InsertLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	const op = "storage.InsertLoginAttempt"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO login_attempts (email, success, ip_address, user_agent)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query, attempt.Email, attempt.Success,
		attempt.IPAddress, attempt.UserAgent); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLoginAttempts возвращает последние 100 попыток входа.
func (s *Storage) ListLoginAttempts(ctx context.Context) ([]*models.LoginAttempt, error) {
	const op = "storage.ListLoginAttempts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, success, ip_address, user_agent, created_at
			  FROM login_attempts
			  ORDER BY created_at DESC
			  LIMIT 100`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.LoginAttempt
	for rows.Next() {
		var attempt models.LoginAttempt
		if err = rows.Scan(&attempt.ID, &attempt.Email, &attempt.Success,
			&attempt.IPAddress, &attempt.UserAgent, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &attempt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// InsertAPIUsageLog записывает обращение к публичному API по ключу.
func (s *Storage) InsertAPIUsageLog(ctx context.Context, entry models.APIUsageLog) error {
	const op = "storage.InsertAPIUsageLog"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO api_usage_logs (api_key_id, user_id, endpoint, method, status_code, ip_address)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query, entry.APIKeyID, entry.UserID,
		entry.Endpoint, entry.Method, entry.StatusCode, entry.IPAddress); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListAPIUsageLogs возвращает последние 200 обращений к публичному API
// с именем ключа и данными владельца.
func (s *Storage) ListAPIUsageLogs(ctx context.Context) ([]*models.APIUsageLog, error) {
	const op = "storage.ListAPIUsageLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.api_key_id, l.user_id, l.endpoint, l.method,
			      l.status_code, l.ip_address, l.created_at,
			      COALESCE(k.name, ''), u.name, u.email
			  FROM api_usage_logs l
			  LEFT JOIN api_keys k ON k.id = l.api_key_id
			  LEFT JOIN users u ON u.id = l.user_id
			  ORDER BY l.created_at DESC
			  LIMIT 200`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.APIUsageLog
	for rows.Next() {
		var entry models.APIUsageLog
		var ownerName, ownerEmail sql.NullString
		if err = rows.Scan(&entry.ID, &entry.APIKeyID, &entry.UserID, &entry.Endpoint,
			&entry.Method, &entry.StatusCode, &entry.IPAddress, &entry.CreatedAt,
			&entry.KeyName, &ownerName, &ownerEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ownerName.Valid {
			entry.Owner = &models.OwnerInfo{ID: entry.UserID, Name: ownerName.String, Email: ownerEmail.String}
		}
		result = append(result, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
