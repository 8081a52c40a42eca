// Package templates реализует HTTP-обработчики суперадмина для шаблонов
// писем и запуска массовых рассылок по ним.
package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для создания или обновления шаблона письма.
type Request struct {
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// SendRequest — входные данные для запуска рассылки по шаблону.
type SendRequest struct {
	TemplateID int64                  `json:"template_id" validate:"required"`
	Filter     models.RecipientFilter `json:"filter" validate:"required"`
}

// Service описывает интерфейс бизнес-логики шаблонов писем.
type Service interface {
	Create(ctx context.Context, t models.EmailTemplate) (int64, error)
	List(ctx context.Context) ([]*models.EmailTemplate, error)
	Update(ctx context.Context, id int64, t models.EmailTemplate) error
	Delete(ctx context.Context, id int64) error
}

// BroadcastService описывает интерфейс запуска рассылки по шаблону.
type BroadcastService interface {
	Send(ctx context.Context, templateID int64, filter models.RecipientFilter) (int, error)
}

// Handler управляет HTTP-запросами суперадмина к шаблонам писем.
type Handler struct {
	log       *slog.Logger
	service   Service
	broadcast BroadcastService
	validate  *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, broadcast BroadcastService) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		broadcast: broadcast,
		validate:  validator.New(),
	}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список шаблонов писем
// @Tags SuperadminTemplates
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список шаблонов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/email-templates [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.templates.list")

	items, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list email templates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load email templates"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(items))
}

// Create godoc
// @Summary Создать шаблон письма
// @Description Создает шаблон. В теле допускается подстановка {{name}}.
// @Tags SuperadminTemplates
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные шаблона"
// @Success 200 {object} response.Response "ID созданного шаблона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/email-templates [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.templates.create")

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

	id, err := h.service.Create(r.Context(), models.EmailTemplate{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		log.Error("failed to create email template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create email template"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id}))
}

// Update godoc
// @Summary Обновить шаблон письма
// @Tags SuperadminTemplates
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID шаблона"
// @Param request body Request true "Данные шаблона"
// @Success 200 {object} response.Response "Шаблон обновлен"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/email-templates/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.templates.update")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid template id"))
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

	err = h.service.Update(r.Context(), id, models.EmailTemplate{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("template not found"))
		return
	}
	if err != nil {
		log.Error("failed to update email template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update email template"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "template updated"}))
}

// Delete godoc
// @Summary Удалить шаблон письма
// @Tags SuperadminTemplates
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID шаблона"
// @Success 200 {object} response.Response "Шаблон удален"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/email-templates/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.templates.delete")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid template id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("template not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete email template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete email template"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "template deleted"}))
}

// Send godoc
// @Summary Запустить рассылку по шаблону
// @Description Подбирает получателей по фильтру и публикует по письму на каждого в очередь. Ответ возвращается до фактической доставки.
// @Tags SuperadminTemplates
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body SendRequest true "Шаблон и фильтр получателей"
// @Success 200 {object} response.Response "Число получателей в очереди"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден или получатели отсутствуют"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/broadcast-email [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.templates.send")

	var req SendRequest
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

	count, err := h.broadcast.Send(r.Context(), req.TemplateID, req.Filter)
	switch {
	case errors.Is(err, services.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("template not found"))
		return
	case errors.Is(err, services.ErrNoRecipients):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no recipients matched the filter"))
		return
	case err != nil:
		log.Error("failed to start broadcast", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to start broadcast"))
		return
	}

	log.Info("broadcast queued", slog.Int("recipients", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": fmt.Sprintf("queued for %d users", count),
		"count":   count,
	}))
}
