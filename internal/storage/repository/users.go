package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreateUser сохраняет новую учетную запись и возвращает ее ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (name, email, phone, address, company_name, company_size,
			      industry_type, password_hash, plan, role, created_by, support_ticket,
			      verification_token, is_verified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Address, user.CompanyName, user.CompanySize,
		user.IndustryType, user.PasswordHash, user.Plan, user.Role, user.CreatedBy,
		user.SupportTicket, user.VerificationToken, user.IsVerified).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const userColumns = `id, name, email, phone, address, company_name, company_size,
			      industry_type, password_hash, plan, role, created_by, support_ticket,
			      verification_token, is_verified, password_reset_token,
			      password_reset_expires, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var createdBy sql.NullInt64
	var verificationToken, resetToken sql.NullString
	var resetExpires sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.CompanyName,
		&u.CompanySize, &u.IndustryType, &u.PasswordHash, &u.Plan, &u.Role, &createdBy,
		&u.SupportTicket, &verificationToken, &u.IsVerified, &resetToken,
		&resetExpires, &u.CreatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		u.CreatedBy = &createdBy.Int64
	}
	if verificationToken.Valid {
		u.VerificationToken = &verificationToken.String
	}
	if resetToken.Valid {
		u.PasswordResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		u.PasswordResetExpires = &resetExpires.Time
	}
	return u, nil
}

// GetUserByEmail возвращает учетную запись по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает учетную запись по ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByVerificationToken возвращает учетную запись по одноразовому
// токену подтверждения email.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerificationToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// MarkVerified помечает email подтвержденным и стирает одноразовый токен.
func (s *Storage) MarkVerified(ctx context.Context, id int64) error {
	const op = "storage.MarkVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_verified = TRUE, verification_token = NULL
			  WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetResetToken сохраняет хэш токена сброса пароля и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_reset_token = $1, password_reset_expires = $2
			  WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, tokenHash, expires, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByResetToken возвращает учетную запись по хэшу неистекшего
// токена сброса пароля.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE password_reset_token = $1 AND password_reset_expires > now()`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword сохраняет новый хэш пароля и стирает поля сброса.
func (s *Storage) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1, password_reset_token = NULL, password_reset_expires = NULL
			  WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsersWithCreatedCounts возвращает всех пользователей со счетчиком
// созданных ими записей и производным статусом active/pending.
func (s *Storage) ListUsersWithCreatedCounts(ctx context.Context) ([]*models.UserOverview, error) {
	const op = "storage.ListUsersWithCreatedCounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.name, u.email, u.phone, u.company_name, u.role, u.plan,
			      u.is_verified, u.created_at,
			      (SELECT COUNT(*) FROM users c WHERE c.created_by = u.id) AS created_users_count
			  FROM users u
			  ORDER BY u.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.UserOverview
	for rows.Next() {
		var u models.UserOverview
		if err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CompanyName, &u.Role,
			&u.Plan, &u.IsVerified, &u.CreatedAt, &u.CreatedUsersCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.Status = "pending"
		if u.IsVerified {
			u.Status = "active"
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAdmins возвращает краткие карточки всех пользователей с ролью admin.
func (s *Storage) ListAdmins(ctx context.Context) ([]*models.AdminSummary, error) {
	const op = "storage.ListAdmins"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, company_name, plan, created_at
			  FROM users
			  WHERE role = 'admin'
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.AdminSummary
	for rows.Next() {
		var a models.AdminSummary
		if err = rows.Scan(&a.ID, &a.Name, &a.Email, &a.CompanyName, &a.Plan, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserRole обновляет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, id int64, role string) error {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateUserPlan обновляет план пользователя.
func (s *Storage) UpdateUserPlan(ctx context.Context, id int64, plan string) error {
	const op = "storage.UpdateUserPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET plan = $1 WHERE id = $2`, plan, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteUser удаляет учетную запись.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListRecipients возвращает получателей по фильтру рассылки:
// all — все пользователи, plan — по идентификатору плана, role — по роли.
func (s *Storage) ListRecipients(ctx context.Context, filter models.RecipientFilter) ([]*models.User, error) {
	const op = "storage.ListRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email FROM users`
	var args []any
	switch filter.Type {
	case "plan":
		query += ` WHERE plan = $1`
		args = append(args, filter.Value)
	case "role":
		query += ` WHERE role = $1`
		args = append(args, filter.Value)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListContactsByCreator возвращает контакты, созданные указанным админом,
// для выдачи через публичный API.
func (s *Storage) ListContactsByCreator(ctx context.Context, creatorID int64) ([]*models.Contact, error) {
	const op = "storage.ListContactsByCreator"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, email, phone, company_name
			  FROM users
			  WHERE created_by = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err = rows.Scan(&c.Name, &c.Email, &c.Phone, &c.CompanyName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
