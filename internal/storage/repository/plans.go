package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// ListPlans возвращает все тарифные планы, отсортированные по цене в USD.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, identifier, price_usd, price_inr, features, is_public,
			      permissions, created_at
			  FROM plans
			  ORDER BY price_usd`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanPlan(scan func(dest ...any) error) (*models.Plan, error) {
	p := &models.Plan{}
	var features, perms []byte
	if err := scan(&p.ID, &p.Name, &p.Identifier, &p.Prices.USD, &p.Prices.INR,
		&features, &p.IsPublic, &perms, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &p.Permissions); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlanByIdentifier возвращает план по его строчному идентификатору.
func (s *Storage) GetPlanByIdentifier(ctx context.Context, identifier string) (*models.Plan, error) {
	const op = "storage.GetPlanByIdentifier"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, identifier, price_usd, price_inr, features, is_public,
			      permissions, created_at
			  FROM plans
			  WHERE identifier = $1`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, identifier).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlan сохраняет новый тарифный план и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (int64, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	perms, err := json.Marshal(plan.Permissions)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var newID int64
	query := `INSERT INTO plans (name, identifier, price_usd, price_inr, features,
			      is_public, permissions)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, plan.Name, plan.Identifier,
		plan.Prices.USD, plan.Prices.INR, features, plan.IsPublic, perms).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdatePlan заменяет все поля плана целиком и возвращает обновленную запись.
func (s *Storage) UpdatePlan(ctx context.Context, id int64, plan models.Plan) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	perms, err := json.Marshal(plan.Permissions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE plans
			  SET name = $1, identifier = $2, price_usd = $3, price_inr = $4,
			      features = $5, is_public = $6, permissions = $7
			  WHERE id = $8
			  RETURNING id, name, identifier, price_usd, price_inr, features, is_public,
			      permissions, created_at`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, plan.Name, plan.Identifier,
		plan.Prices.USD, plan.Prices.INR, features, plan.IsPublic, perms, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeletePlan удаляет тарифный план.
func (s *Storage) DeletePlan(ctx context.Context, id int64) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
