package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// Мок для InvoiceRepository
type InvoiceRepoMock struct {
	mock.Mock
}

func (m *InvoiceRepoMock) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *InvoiceRepoMock) GetLatestInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *InvoiceRepoMock) CreateInvoice(ctx context.Context, inv models.Invoice) (int64, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InvoiceRepoMock) UpdateInvoice(ctx context.Context, id int64, inv models.Invoice) error {
	args := m.Called(ctx, id, inv)
	return args.Error(0)
}

func (m *InvoiceRepoMock) DeleteInvoice(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *InvoiceRepoMock) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InvoiceRepoMock) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*models.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *InvoiceRepoMock) DeletePayment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestInvoiceService_CreateNumbering(t *testing.T) {
	tests := []struct {
		name       string
		lastNumber string
		lastErr    error
		wantNumber string
	}{
		{
			name:       "первый счет в системе",
			lastErr:    repository.ErrNotFound,
			wantNumber: "INV-1001",
		},
		{
			name:       "следующий номер за последним",
			lastNumber: "INV-1042",
			wantNumber: "INV-1043",
		},
		{
			name:       "нечитаемый последний номер начинает нумерацию заново",
			lastNumber: "LEGACY-7",
			wantNumber: "INV-1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(InvoiceRepoMock)
			repo.On("GetLatestInvoiceNumber", mock.Anything).
				Return(tt.lastNumber, tt.lastErr).Once()
			repo.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(inv models.Invoice) bool {
				return inv.InvoiceNumber == tt.wantNumber
			})).Return(int64(1), nil).Once()

			svc := services.NewInvoiceService(repo, sl.DiscardLogger())
			inv := models.Invoice{
				ClientID:  2,
				CreatedBy: 1,
				Items:     []models.InvoiceItem{{Description: "Консалтинг", Quantity: 2, Price: 100}},
				DueDate:   time.Now().AddDate(0, 1, 0),
			}
			_, number, err := svc.Create(context.Background(), inv)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, number)
			repo.AssertExpectations(t)
		})
	}
}

func TestInvoiceService_CreateComputesTotal(t *testing.T) {
	repo := new(InvoiceRepoMock)
	repo.On("GetLatestInvoiceNumber", mock.Anything).Return("", repository.ErrNotFound).Once()
	repo.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(inv models.Invoice) bool {
		return inv.TotalAmount == 350 && inv.Status == models.InvoiceStatusDraft
	})).Return(int64(1), nil).Once()

	svc := services.NewInvoiceService(repo, sl.DiscardLogger())
	inv := models.Invoice{
		ClientID:  2,
		CreatedBy: 1,
		Items: []models.InvoiceItem{
			{Description: "Лицензия", Quantity: 3, Price: 100},
			{Description: "Поддержка", Quantity: 1, Price: 50},
		},
		TotalAmount: 9999, // клиентское значение игнорируется
		DueDate:     time.Now().AddDate(0, 1, 0),
	}
	_, _, err := svc.Create(context.Background(), inv)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestInvoiceService_UpdateRecomputesTotal(t *testing.T) {
	repo := new(InvoiceRepoMock)
	repo.On("UpdateInvoice", mock.Anything, int64(4), mock.MatchedBy(func(inv models.Invoice) bool {
		return inv.TotalAmount == 200
	})).Return(nil).Once()

	svc := services.NewInvoiceService(repo, sl.DiscardLogger())
	err := svc.Update(context.Background(), 4, models.Invoice{
		Items:  []models.InvoiceItem{{Description: "Лицензия", Quantity: 2, Price: 100}},
		Status: models.InvoiceStatusSent,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestInvoiceService_DeleteNotFound(t *testing.T) {
	repo := new(InvoiceRepoMock)
	repo.On("DeleteInvoice", mock.Anything, int64(99)).Return(repository.ErrNotFound).Once()

	svc := services.NewInvoiceService(repo, sl.DiscardLogger())
	assert.ErrorIs(t, svc.Delete(context.Background(), 99), services.ErrNotFound)
}
