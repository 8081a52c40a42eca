package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Номер первого счета в системе.
const firstInvoiceNumber = 1001

// InvoiceRepository описывает контракт для работы со счетами и платежами.
type InvoiceRepository interface {
	ListInvoices(ctx context.Context) ([]*models.Invoice, error)
	GetLatestInvoiceNumber(ctx context.Context) (string, error)
	CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error)
	UpdateInvoice(ctx context.Context, id int64, inv models.Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	CreatePayment(ctx context.Context, p models.Payment) (int64, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*models.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// InvoiceService отвечает за счета: нумерацию, подсчет сумм и платежи.
type InvoiceService struct {
	repo InvoiceRepository
	log  *slog.Logger
}

// NewInvoiceService создает новый экземпляр InvoiceService.
func NewInvoiceService(repo InvoiceRepository, log *slog.Logger) *InvoiceService {
	return &InvoiceService{
		repo: repo,
		log:  log,
	}
}

// List возвращает все счета с данными клиентов.
func (s *InvoiceService) List(ctx context.Context) ([]*models.Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// nextInvoiceNumber выдает следующий номер счета по последнему созданному.
// Первый счет в системе получает номер INV-1001.
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context) (string, error) {
	last, err := s.repo.GetLatestInvoiceNumber(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("INV-%d", firstInvoiceNumber), nil
	}
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, "INV-"))
	if err != nil {
		return fmt.Sprintf("INV-%d", firstInvoiceNumber), nil
	}
	return fmt.Sprintf("INV-%d", n+1), nil
}

func totalAmount(items []models.InvoiceItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.Price
	}
	return total
}

// Create выставляет новый счет. Номер назначается сервером, итоговая
// сумма пересчитывается по строкам счета.
func (s *InvoiceService) Create(ctx context.Context, inv models.Invoice) (int64, string, error) {
	number, err := s.nextInvoiceNumber(ctx)
	if err != nil {
		return 0, "", err
	}
	inv.InvoiceNumber = number
	inv.TotalAmount = totalAmount(inv.Items)
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusDraft
	}

	id, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return 0, "", err
	}
	s.log.Info("invoice created", slog.String("number", number))
	return id, number, nil
}

// Update заменяет изменяемые поля счета, пересчитывая итоговую сумму.
// Номер счета не меняется.
func (s *InvoiceService) Update(ctx context.Context, id int64, inv models.Invoice) error {
	inv.TotalAmount = totalAmount(inv.Items)
	err := s.repo.UpdateInvoice(ctx, id, inv)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete удаляет счет вместе с платежами по нему.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteInvoice(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// RecordPayment фиксирует платеж по счету.
func (s *InvoiceService) RecordPayment(ctx context.Context, p models.Payment) (int64, error) {
	if p.PaymentMethod == "" {
		p.PaymentMethod = models.PaymentMethodBankTransfer
	}
	id, err := s.repo.CreatePayment(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("payment recorded", slog.Int64("invoice_id", p.InvoiceID))
	return id, nil
}

// ListPayments возвращает платежи по счету.
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID int64) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByInvoice(ctx, invoiceID)
}

// DeletePayment удаляет ошибочно внесенный платеж.
func (s *InvoiceService) DeletePayment(ctx context.Context, id int64) error {
	err := s.repo.DeletePayment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
