package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// ListInvoices возвращает все счета с данными клиентов, новые первыми.
func (s *Storage) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	const op = "storage.ListInvoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT i.id, i.invoice_number, i.client_id, i.created_by, i.items,
			      i.total_amount, i.status, i.due_date, i.created_at,
			      u.id, u.name, u.email, u.company_name
			  FROM invoices i
			  JOIN users u ON u.id = i.client_id
			  ORDER BY i.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		var items []byte
		var client models.OwnerInfo
		if err = rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.CreatedBy,
			&items, &inv.TotalAmount, &inv.Status, &inv.DueDate, &inv.CreatedAt,
			&client.ID, &client.Name, &client.Email, &client.CompanyName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inv.Client = &client
		result = append(result, &inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetLatestInvoiceNumber возвращает номер последнего созданного счета.
func (s *Storage) GetLatestInvoiceNumber(ctx context.Context) (string, error) {
	const op = "storage.GetLatestInvoiceNumber"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var number string
	query := `SELECT invoice_number FROM invoices ORDER BY created_at DESC LIMIT 1`
	err := s.DB.QueryRowContext(ctx, query).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return number, nil
}

// CreateInvoice сохраняет новый счет и возвращает его ID.
func (s *Storage) CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error) {
	const op = "storage.CreateInvoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	items, err := json.Marshal(inv.Items)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var newID int64
	query := `INSERT INTO invoices (invoice_number, client_id, created_by, items,
			      total_amount, status, due_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, inv.InvoiceNumber, inv.ClientID,
		inv.CreatedBy, items, inv.TotalAmount, inv.Status, inv.DueDate).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateInvoice заменяет изменяемые поля счета. Номер счета не меняется.
func (s *Storage) UpdateInvoice(ctx context.Context, id int64, inv models.Invoice) error {
	const op = "storage.UpdateInvoice"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE invoices
			  SET client_id = $1, items = $2, total_amount = $3, status = $4, due_date = $5
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query, inv.ClientID, items, inv.TotalAmount,
		inv.Status, inv.DueDate, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteInvoice удаляет счет.
func (s *Storage) DeleteInvoice(ctx context.Context, id int64) error {
	const op = "storage.DeleteInvoice"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
