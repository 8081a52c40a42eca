// Package webhooks реализует HTTP-обработчики суперадмина для подписок
// внешних потребителей на события системы.
package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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

// Request — входные данные для создания вебхука. Секрет не принимается
// от клиента и генерируется сервером.
type Request struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1"`
}

// Service описывает интерфейс бизнес-логики вебхуков.
type Service interface {
	Create(ctx context.Context, hook models.Webhook) (int64, string, error)
	List(ctx context.Context) ([]*models.WebhookOverview, error)
	Delete(ctx context.Context, id int64) error
}

// Handler управляет HTTP-запросами суперадмина к вебхукам.
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

// List godoc
// @Summary Список вебхуков
// @Tags SuperadminWebhooks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список вебхуков"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/webhooks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.webhooks.list")

	hooks, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list webhooks", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load webhooks"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(hooks))
}

// Create godoc
// @Summary Создать вебхук
// @Description Создает подписку и возвращает секрет подписи. Секрет показывается только один раз.
// @Tags SuperadminWebhooks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "URL и список событий"
// @Success 200 {object} response.Response "ID и секрет вебхука"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/webhooks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.webhooks.create")

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

	var userID int64
	if claims, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		userID = claims.UserID
	}

	id, secret, err := h.service.Create(r.Context(), models.Webhook{
		UserID: userID,
		URL:    req.URL,
		Events: req.Events,
	})
	if err != nil {
		log.Error("failed to create webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create webhook"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":     id,
		"secret": secret,
	}))
}

// Delete godoc
// @Summary Удалить вебхук
// @Tags SuperadminWebhooks
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID вебхука"
// @Success 200 {object} response.Response "Вебхук удален"
// @Failure 404 {object} response.ErrorResponse "Вебхук не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/webhooks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.webhooks.delete")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("webhook not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete webhook"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "webhook deleted"}))
}
