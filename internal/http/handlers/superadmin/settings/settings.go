// Package settings реализует HTTP-обработчики суперадмина для системных
// настроек вида ключ/значение.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// UpdateRequest — входные данные массового обновления настроек.
type UpdateRequest struct {
	Settings []models.SettingUpdate `json:"settings" validate:"required,min=1,dive"`
}

// Service описывает интерфейс бизнес-логики системных настроек.
type Service interface {
	List(ctx context.Context) ([]*models.Setting, error)
	BulkUpdate(ctx context.Context, updates []models.SettingUpdate) (int, error)
}

// Handler управляет HTTP-запросами суперадмина к настройкам.
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
// @Summary Список настроек
// @Description Возвращает все системные настройки, сгруппированные по категории.
// @Tags SuperadminSettings
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список настроек"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/settings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.settings.list")

	items, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load settings"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(items))
}

// Update godoc
// @Summary Массово обновить настройки
// @Description Применяет upsert по каждому ключу и возвращает число примененных изменений.
// @Tags SuperadminSettings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body UpdateRequest true "Обновляемые пары ключ/значение"
// @Success 200 {object} response.Response "Число примененных изменений"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/settings [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.settings.update")

	var req UpdateRequest
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

	applied, err := h.service.BulkUpdate(r.Context(), req.Settings)
	if err != nil {
		log.Error("failed to update settings", sl.Err(err), slog.Int("applied", applied))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update settings"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"applied": applied}))
}
