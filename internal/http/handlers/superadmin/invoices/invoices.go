// Package invoices реализует HTTP-обработчики суперадмина для счетов
// и платежей по ним.
package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для создания или обновления счета.
// Итоговая сумма не принимается от клиента и считается на сервере.
type Request struct {
	ClientID int64                `json:"client_id" validate:"required"`
	Items    []models.InvoiceItem `json:"items" validate:"required,min=1,dive"`
	Status   string               `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate  time.Time            `json:"due_date" validate:"required"`
}

// PaymentRequest — входные данные для фиксации платежа по счету.
type PaymentRequest struct {
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate   time.Time `json:"payment_date" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"omitempty,oneof=credit_card bank_transfer cash other"`
	TransactionID string    `json:"transaction_id"`
}

// Service описывает интерфейс бизнес-логики счетов.
type Service interface {
	List(ctx context.Context) ([]*models.Invoice, error)
	Create(ctx context.Context, inv models.Invoice) (int64, string, error)
	Update(ctx context.Context, id int64, inv models.Invoice) error
	Delete(ctx context.Context, id int64) error
	RecordPayment(ctx context.Context, p models.Payment) (int64, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]*models.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// Handler управляет HTTP-запросами суперадмина к счетам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func invoiceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func actorID(r *http.Request) int64 {
	if claims, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		return claims.UserID
	}
	return 0
}

// List godoc
// @Summary Список счетов
// @Description Возвращает все счета с данными клиентов.
// @Tags SuperadminInvoices
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список счетов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.list")

	invoices, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list invoices", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load invoices"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(invoices))
}

// Create godoc
// @Summary Создать счет
// @Description Создает счет. Номер назначается сервером монотонно, сумма считается по строкам.
// @Tags SuperadminInvoices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные счета"
// @Success 200 {object} response.Response "ID и номер созданного счета"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.create")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, number, err := h.service.Create(r.Context(), models.Invoice{
		ClientID:  req.ClientID,
		CreatedBy: actorID(r),
		Items:     req.Items,
		Status:    req.Status,
		DueDate:   req.DueDate,
	})
	if err != nil {
		log.Error("failed to create invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create invoice"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":             id,
		"invoice_number": number,
	}))
}

// Update godoc
// @Summary Обновить счет
// @Description Обновляет строки, статус и срок оплаты счета; сумма пересчитывается сервером.
// @Tags SuperadminInvoices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID счета"
// @Param request body Request true "Данные счета"
// @Success 200 {object} response.Response "Счет обновлен"
// @Failure 404 {object} response.ErrorResponse "Счет не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.update")

	id, err := invoiceID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid invoice id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err = h.service.Update(r.Context(), id, models.Invoice{
		ClientID: req.ClientID,
		Items:    req.Items,
		Status:   req.Status,
		DueDate:  req.DueDate,
	})
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("invoice not found"))
		return
	}
	if err != nil {
		log.Error("failed to update invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update invoice"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "invoice updated"}))
}

// Delete godoc
// @Summary Удалить счет
// @Description Удаляет счет вместе с платежами по нему.
// @Tags SuperadminInvoices
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID счета"
// @Success 200 {object} response.Response "Счет удален"
// @Failure 404 {object} response.ErrorResponse "Счет не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.delete")

	id, err := invoiceID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid invoice id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("invoice not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete invoice"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "invoice deleted"}))
}

// RecordPayment godoc
// @Summary Зафиксировать платеж
// @Description Записывает платеж по счету. Способ оплаты по умолчанию — bank_transfer.
// @Tags SuperadminInvoices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID счета"
// @Param request body PaymentRequest true "Данные платежа"
// @Success 200 {object} response.Response "ID платежа"
// @Failure 404 {object} response.ErrorResponse "Счет не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices/{id}/payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.recordpayment")

	id, err := invoiceID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid invoice id"))
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	paymentID, err := h.service.RecordPayment(r.Context(), models.Payment{
		InvoiceID:     id,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		RecordedBy:    actorID(r),
	})
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("invoice not found"))
		return
	}
	if err != nil {
		log.Error("failed to record payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to record payment"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": paymentID}))
}

// ListPayments godoc
// @Summary Платежи по счету
// @Description Возвращает все зафиксированные платежи по счету.
// @Tags SuperadminInvoices
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID счета"
// @Success 200 {object} response.Response "Список платежей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/invoices/{id}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.listpayments")

	id, err := invoiceID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid invoice id"))
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load payments"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(payments))
}

// DeletePayment godoc
// @Summary Удалить платеж
// @Description Удаляет ошибочно внесенный платеж по счету.
// @Tags SuperadminInvoices
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID платежа"
// @Success 200 {object} response.Response "Платеж удален"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/payments/{id} [delete]
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.invoices.deletepayment")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payment id"))
		return
	}

	err = h.service.DeletePayment(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("payment not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete payment"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "payment deleted"}))
}
