package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// CreatePayment сохраняет запись о платеже и возвращает ее ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO payments (invoice_id, amount, payment_date, payment_method,
			      transaction_id, recorded_by)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	err := s.DB.QueryRowContext(ctx, query, p.InvoiceID, p.Amount, p.PaymentDate,
		p.PaymentMethod, p.TransactionID, p.RecordedBy).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPaymentsByInvoice возвращает платежи по счету, новые первыми.
func (s *Storage) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByInvoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, invoice_id, amount, payment_date, payment_method,
			      transaction_id, recorded_by, created_at
			  FROM payments
			  WHERE invoice_id = $1
			  ORDER BY payment_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err = rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate,
			&p.PaymentMethod, &p.TransactionID, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeletePayment удаляет запись о платеже.
func (s *Storage) DeletePayment(ctx context.Context, id int64) error {
	const op = "storage.DeletePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
