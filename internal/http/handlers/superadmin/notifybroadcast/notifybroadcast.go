// Package notifybroadcast реализует HTTP-обработчик суперадмина для
// массовой отправки внутрисистемных уведомлений.
package notifybroadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для рассылки уведомлений по фильтру получателей.
type Request struct {
	Filter  models.RecipientFilter `json:"filter" validate:"required"`
	Title   string                 `json:"title" validate:"required"`
	Message string                 `json:"message" validate:"required"`
	Link    string                 `json:"link" validate:"omitempty,url"`
}

// Service описывает интерфейс бизнес-логики рассылки уведомлений.
type Service interface {
	Broadcast(ctx context.Context, filter models.RecipientFilter, title, message, link string) (int, error)
}

// Handler управляет HTTP-запросами рассылки уведомлений.
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

// ServeHTTP godoc
// @Summary Разослать уведомления
// @Description Создает уведомление для каждого пользователя, подпадающего под фильтр, одной пакетной вставкой.
// @Tags SuperadminNotifications
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Фильтр и текст уведомления"
// @Success 200 {object} response.Response "Число получателей"
// @Failure 404 {object} response.ErrorResponse "Получатели отсутствуют"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/notifications [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.superadmin.notifybroadcast.servehttp"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	count, err := h.service.Broadcast(r.Context(), req.Filter, req.Title, req.Message, req.Link)
	if errors.Is(err, services.ErrNoRecipients) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no recipients matched the filter"))
		return
	}
	if err != nil {
		log.Error("failed to broadcast notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to broadcast notifications"))
		return
	}

	log.Info("notifications broadcast", slog.Int("recipients", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"count": count}))
}
